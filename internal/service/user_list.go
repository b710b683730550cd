package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/dtroode/themekeeper/internal/logger"
	"github.com/dtroode/themekeeper/internal/model"
)

// CreatePolicy decides what happens to earlier steps when a later step of
// user creation fails.
type CreatePolicy int

const (
	// PolicyBestEffort keeps completed steps in place.
	PolicyBestEffort CreatePolicy = iota
	// PolicyCompensate deletes the created identity when a later step fails.
	PolicyCompensate
)

// ParseCreatePolicy parses "best-effort" or "compensate".
func ParseCreatePolicy(s string) (CreatePolicy, error) {
	switch s {
	case "", "best-effort":
		return PolicyBestEffort, nil
	case "compensate":
		return PolicyCompensate, nil
	default:
		return 0, fmt.Errorf("unknown create policy %q", s)
	}
}

// SagaState names the last completed step of user creation.
type SagaState string

const (
	StateStarted         SagaState = "started"
	StateIdentityCreated SagaState = "identity_created"
	StateProfileUpdated  SagaState = "profile_updated"
	StatePersisted       SagaState = "persisted"
)

// SagaError reports a user creation that failed after the identity was
// created. Completed steps are undone only under PolicyCompensate.
type SagaError struct {
	State   SagaState
	UID     string
	Message string
	Err     error
	// Compensated is set when the identity was deleted again.
	Compensated     bool
	CompensationErr error
}

func (e *SagaError) Error() string {
	msg := fmt.Sprintf("%s after %s (uid %s): %v", e.Message, e.State, e.UID, e.Err)
	if e.CompensationErr != nil {
		msg += fmt.Sprintf("; compensation failed: %v", e.CompensationErr)
	}
	return msg
}

func (e *SagaError) Unwrap() []error {
	if e.Compensated {
		return []error{model.ErrRemoteWriteFailed, e.Err}
	}
	return []error{model.ErrPartialSuccess, model.ErrRemoteWriteFailed, e.Err}
}

// CreateUserResult is returned once a user has been fully created.
// Password is the only copy of the plaintext password handed back.
type CreateUserResult struct {
	UID      string
	Email    string
	Password string
	State    SagaState
}

// UserCard is the read-only inspection view of an account.
type UserCard struct {
	UID          string
	FullName     string
	Email        string
	Role         string
	PasswordNote string
	DeletionNote string
}

const (
	emailPlaceholder = "—"
	passwordNote     = "Password hidden"
	deletionNote     = "Accounts can only be deleted from the identity console"
)

// UserList mirrors the users collection with one-shot loads and creates
// accounts through the identity provider.
type UserList struct {
	store      model.DocumentStore
	identities model.IdentityProvider
	logger     *logger.Logger
	roles      []string
	policy     CreatePolicy

	mu     sync.RWMutex
	users  []model.UserAccount
	loaded bool
}

// NewUserList creates a user list. roles is the assignable role set.
func NewUserList(
	store model.DocumentStore,
	identities model.IdentityProvider,
	roles []string,
	policy CreatePolicy,
	logger *logger.Logger,
) *UserList {
	return &UserList{
		store:      store,
		identities: identities,
		logger:     logger,
		roles:      slices.Clone(roles),
		policy:     policy,
	}
}

// Roles returns the assignable role set.
func (l *UserList) Roles() []string {
	return slices.Clone(l.roles)
}

// LoadOnce fetches the users collection and replaces the cache. On failure
// the previous cache is kept.
func (l *UserList) LoadOnce(ctx context.Context) ([]model.UserAccount, error) {
	snapshot, err := l.store.FetchOnce(ctx, model.CollectionUsers)
	if err != nil {
		l.logger.Error("User service: failed to load users",
			"error", err.Error())
		return nil, readFailed(MsgUsersLoadFailed, err)
	}

	users := make([]model.UserAccount, 0, len(snapshot.Documents))
	for _, doc := range snapshot.Documents {
		users = append(users, model.UserFromDocument(doc))
	}

	l.mu.Lock()
	l.users = users
	l.loaded = true
	l.mu.Unlock()

	l.logger.Debug("User service: users loaded", "count", len(users))
	return slices.Clone(users), nil
}

// Users returns the cached accounts and whether a load has completed.
func (l *UserList) Users() ([]model.UserAccount, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.users), l.loaded
}

// Describe builds the inspection card of a cached account.
func (l *UserList) Describe(uid string) (UserCard, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, user := range l.users {
		if user.UID == uid {
			return NewUserCard(user), nil
		}
	}
	return UserCard{}, notFound(MsgUserNotFound, fmt.Errorf("user %s: %w", uid, model.ErrNotFound))
}

// NewUserCard renders the inspection card of an account.
func NewUserCard(user model.UserAccount) UserCard {
	email := emailPlaceholder
	if user.Email != nil {
		email = *user.Email
	}
	return UserCard{
		UID:          user.UID,
		FullName:     DisplayName(user),
		Email:        email,
		Role:         user.RoleOrDefault(),
		PasswordNote: passwordNote,
		DeletionNote: deletionNote,
	}
}

// DisplayName renders "last first", skipping absent parts.
func DisplayName(user model.UserAccount) string {
	var parts []string
	if user.LastName != nil {
		parts = append(parts, *user.LastName)
	}
	if user.FirstName != nil {
		parts = append(parts, *user.FirstName)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// CreateUser validates the input, creates the identity, sets its display
// name, persists the profile and reloads the list. Any failing step stops
// the remaining ones.
func (l *UserList) CreateUser(ctx context.Context, in model.NewUser) (CreateUserResult, error) {
	in = normalizeNewUser(in)
	if err := ValidateNewUser(in.Email, in.FirstName, in.LastName, in.Password); err != nil {
		return CreateUserResult{}, err
	}
	if err := validateRole(in.Role, l.roles); err != nil {
		return CreateUserResult{}, err
	}

	l.logger.Debug("User service: creating user",
		"email", in.Email,
		"role", in.Role)

	uid, err := l.identities.CreateIdentity(ctx, in.Email, in.Password)
	if err != nil {
		l.logger.Error("User service: failed to create identity",
			"email", in.Email,
			"error", err.Error())
		return CreateUserResult{}, &OperationError{
			Kind:      model.ErrRemoteWriteFailed,
			Message:   MsgUserCreateFailed,
			Err:       err,
			ShowCause: true,
		}
	}

	state := StateIdentityCreated

	displayName := in.FirstName + " " + in.LastName
	if err := l.identities.UpdateDisplayName(ctx, uid, displayName); err != nil {
		return CreateUserResult{}, l.fail(ctx, state, uid, MsgProfileFailed, err)
	}
	state = StateProfileUpdated

	if err := l.store.Write(ctx, model.JoinPath(model.CollectionUsers, uid), in.ProfileFields()); err != nil {
		return CreateUserResult{}, l.fail(ctx, state, uid, MsgUserSaveFailed, err)
	}
	state = StatePersisted

	l.logger.Info("User service: user created",
		"uid", uid,
		"email", in.Email,
		"role", in.Role)

	if _, err := l.LoadOnce(ctx); err != nil {
		l.logger.Warn("User service: reload after create failed",
			"uid", uid,
			"error", err.Error())
	}

	return CreateUserResult{
		UID:      uid,
		Email:    in.Email,
		Password: in.Password,
		State:    state,
	}, nil
}

func (l *UserList) fail(ctx context.Context, state SagaState, uid, message string, err error) error {
	sagaErr := &SagaError{State: state, UID: uid, Message: message, Err: err}

	l.logger.Error("User service: user creation stopped",
		"uid", uid,
		"state", string(state),
		"error", err.Error())

	if l.policy != PolicyCompensate {
		return sagaErr
	}

	if cerr := l.identities.DeleteIdentity(context.WithoutCancel(ctx), uid); cerr != nil {
		sagaErr.CompensationErr = cerr
		l.logger.Error("User service: failed to delete identity during compensation",
			"uid", uid,
			"error", cerr.Error())
		return sagaErr
	}

	sagaErr.Compensated = true
	l.logger.Info("User service: identity deleted during compensation", "uid", uid)
	return sagaErr
}

// IsPartialSuccess reports whether err left completed steps behind.
func IsPartialSuccess(err error) bool {
	return errors.Is(err, model.ErrPartialSuccess)
}
