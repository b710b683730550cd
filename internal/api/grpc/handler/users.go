package handler

import (
	"context"
	"errors"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dtroode/themekeeper/internal/api/grpc/adminapi"
	"github.com/dtroode/themekeeper/internal/logger"
	"github.com/dtroode/themekeeper/internal/model"
	"github.com/dtroode/themekeeper/internal/service"
)

// UserService loads, inspects and creates user accounts.
type UserService interface {
	LoadOnce(ctx context.Context) ([]model.UserAccount, error)
	Users() ([]model.UserAccount, bool)
	Describe(uid string) (service.UserCard, error)
	CreateUser(ctx context.Context, in model.NewUser) (service.CreateUserResult, error)
	Roles() []string
}

// Users handles the admin.Users service.
type Users struct {
	userService    UserService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewUsers creates a new Users handler.
func NewUsers(userService UserService, contextManager model.ContextManager, logger *logger.Logger) *Users {
	return &Users{
		userService:    userService,
		contextManager: contextManager,
		logger:         logger,
	}
}

// ListUsers returns the cached accounts, loading them first when asked to
// or when no load has completed yet.
func (h *Users) ListUsers(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req adminapi.UserQuery
	if err := adminapi.Decode(in, &req); err != nil {
		return nil, invalidRequest(err)
	}

	users, loaded := h.userService.Users()
	if req.Reload || !loaded {
		var err error
		users, err = h.userService.LoadOnce(ctx)
		if err != nil {
			h.logger.Error("Users handler: load failed", "error", err.Error())
			return nil, handleError(err)
		}
	}

	out := make([]adminapi.User, 0, len(users))
	for _, user := range users {
		out = append(out, userToAPI(user))
	}

	return adminapi.Encode(adminapi.UserList{
		Users:  out,
		Loaded: true,
		Roles:  h.userService.Roles(),
	})
}

// GetUser returns the inspection card of one account.
func (h *Users) GetUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req adminapi.UserRef
	if err := adminapi.Decode(in, &req); err != nil {
		return nil, invalidRequest(err)
	}

	card, err := h.userService.Describe(req.UID)
	if errors.Is(err, model.ErrNotFound) {
		if _, loaded := h.userService.Users(); !loaded {
			if _, err := h.userService.LoadOnce(ctx); err != nil {
				return nil, handleError(err)
			}
			card, err = h.userService.Describe(req.UID)
		}
	}
	if err != nil {
		h.logger.Debug("Users handler: describe failed",
			"uid", req.UID,
			"error", err.Error())
		return nil, handleError(err)
	}

	return adminapi.Encode(userCardToAPI(card))
}

// CreateUser runs the create-user flow. The response is the only place the
// plaintext password is returned.
func (h *Users) CreateUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req adminapi.NewUser
	if err := adminapi.Decode(in, &req); err != nil {
		return nil, invalidRequest(err)
	}

	principal, _ := h.contextManager.GetPrincipalFromContext(ctx)
	h.logger.Debug("Users handler: processing create request",
		"admin_uid", principal.UID,
		"email", req.Email,
		"role", req.Role)

	result, err := h.userService.CreateUser(ctx, model.NewUser{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
		Role:      req.Role,
	})
	if err != nil {
		h.logger.Error("Users handler: create failed",
			"admin_uid", principal.UID,
			"email", req.Email,
			"error", err.Error())
		return nil, handleError(err)
	}

	h.logger.Info("Users handler: user created",
		"admin_uid", principal.UID,
		"uid", result.UID)

	return adminapi.Encode(adminapi.CreatedUser{
		UID:      result.UID,
		Email:    result.Email,
		Password: result.Password,
		State:    string(result.State),
		Message:  service.MsgUserCreated,
	})
}
