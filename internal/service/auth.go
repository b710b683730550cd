package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dtroode/themekeeper/internal/logger"
	"github.com/dtroode/themekeeper/internal/model"
)

var (
	// ErrUnauthenticated is returned for unknown credentials or tokens.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden is returned when the principal is not an administrator.
	ErrForbidden = errors.New("administrator role required")
)

// Auth signs administrators in and resolves access tokens.
type Auth struct {
	store      model.DocumentStore
	identities model.IdentityProvider
	tokens     model.TokenManager
	logger     *logger.Logger
}

// NewAuth creates the admin authentication service.
func NewAuth(
	store model.DocumentStore,
	identities model.IdentityProvider,
	tokens model.TokenManager,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		store:      store,
		identities: identities,
		tokens:     tokens,
		logger:     logger,
	}
}

// SignIn verifies the credentials and issues an access token when the
// profile of the identity carries the admin role.
func (a *Auth) SignIn(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)

	uid, err := a.identities.Authenticate(ctx, email, password)
	if errors.Is(err, model.ErrInvalidCredential) || errors.Is(err, model.ErrNotFound) {
		a.logger.Info("Auth service: rejected sign in", "email", email)
		return "", ErrUnauthenticated
	}
	if err != nil {
		return "", fmt.Errorf("failed to authenticate: %w", err)
	}

	role, err := a.roleOf(ctx, uid)
	if err != nil {
		return "", err
	}
	if role != model.AdminRole {
		a.logger.Info("Auth service: sign in without admin role",
			"uid", uid,
			"role", role)
		return "", ErrForbidden
	}

	token, err := a.tokens.GenerateAccessToken(model.Principal{UID: uid, Role: role})
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	a.logger.Info("Auth service: administrator signed in", "uid", uid)
	return token, nil
}

// Principal resolves an access token to an administrator principal.
func (a *Auth) Principal(_ context.Context, token string) (model.Principal, error) {
	principal, err := a.tokens.ParseAccessToken(token)
	if err != nil {
		return model.Principal{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if principal.Role != model.AdminRole {
		return model.Principal{}, ErrForbidden
	}
	return principal, nil
}

// EnsureAdmin makes sure an administrator account exists for email.
// Existing accounts are promoted to the admin role; the password of an
// existing identity must match.
func (a *Auth) EnsureAdmin(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if err := ValidateNewUser(email, "admin", "admin", password); err != nil {
		return "", err
	}

	uid, err := a.identities.Authenticate(ctx, email, password)
	switch {
	case errors.Is(err, model.ErrNotFound):
		uid, err = a.identities.CreateIdentity(ctx, email, password)
		if err != nil {
			return "", fmt.Errorf("failed to create admin identity: %w", err)
		}
		if err := a.identities.UpdateDisplayName(ctx, uid, "Administrator"); err != nil {
			return "", fmt.Errorf("failed to set admin display name: %w", err)
		}
		a.logger.Info("Auth service: bootstrap admin identity created", "uid", uid)
	case err != nil:
		return "", fmt.Errorf("failed to authenticate bootstrap admin: %w", err)
	}

	profile := model.UserAccount{UID: uid}
	doc, err := a.store.Get(ctx, model.JoinPath(model.CollectionUsers, uid))
	switch {
	case err == nil:
		profile = model.UserFromDocument(doc)
	case !errors.Is(err, model.ErrNotFound):
		return "", fmt.Errorf("failed to read admin profile: %w", err)
	}

	if profile.Role != nil && *profile.Role == model.AdminRole {
		return uid, nil
	}

	fields := map[string]any{"email": email, "role": model.AdminRole}
	if profile.FirstName != nil {
		fields["firstName"] = *profile.FirstName
	}
	if profile.LastName != nil {
		fields["lastName"] = *profile.LastName
	}
	if err := a.store.Write(ctx, model.JoinPath(model.CollectionUsers, uid), fields); err != nil {
		return "", fmt.Errorf("failed to write admin profile: %w", err)
	}

	a.logger.Info("Auth service: admin profile written", "uid", uid)
	return uid, nil
}

func (a *Auth) roleOf(ctx context.Context, uid string) (string, error) {
	doc, err := a.store.Get(ctx, model.JoinPath(model.CollectionUsers, uid))
	if errors.Is(err, model.ErrNotFound) {
		return "", ErrForbidden
	}
	if err != nil {
		return "", fmt.Errorf("failed to read profile: %w", err)
	}
	return model.UserFromDocument(doc).RoleOrDefault(), nil
}
