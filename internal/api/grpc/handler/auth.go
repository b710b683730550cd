package handler

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dtroode/themekeeper/internal/api/grpc/adminapi"
	"github.com/dtroode/themekeeper/internal/logger"
)

// AuthService signs administrators in.
type AuthService interface {
	SignIn(ctx context.Context, email, password string) (string, error)
}

// Auth handles the admin.Auth service.
type Auth struct {
	authService AuthService
	logger      *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, logger *logger.Logger) *Auth {
	return &Auth{
		authService: authService,
		logger:      logger,
	}
}

// SignIn exchanges administrator credentials for an access token.
func (h *Auth) SignIn(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req adminapi.SignInRequest
	if err := adminapi.Decode(in, &req); err != nil {
		return nil, invalidRequest(err)
	}

	h.logger.Debug("Auth handler: processing sign in request",
		"email", req.Email)

	token, err := h.authService.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.Error("Auth handler: sign in failed",
			"email", req.Email,
			"error", err.Error())
		return nil, handleError(err)
	}

	h.logger.Info("Auth handler: sign in completed",
		"email", req.Email)

	return adminapi.Encode(adminapi.SignInResponse{AccessToken: token})
}
