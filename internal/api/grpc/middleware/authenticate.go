package middleware

import (
	"context"
	"errors"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/themekeeper/internal/logger"
	"github.com/dtroode/themekeeper/internal/model"
	"github.com/dtroode/themekeeper/internal/service"
)

// PrincipalResolver resolves a bearer token to an administrator.
type PrincipalResolver interface {
	Principal(ctx context.Context, token string) (model.Principal, error)
}

// Authenticate validates bearer tokens and injects the principal into context.
type Authenticate struct {
	resolver       PrincipalResolver
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(resolver PrincipalResolver, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{resolver: resolver, contextManager: contextManager, logger: logger}
}

// AuthFunc reads the bearer token, resolves it and returns a context
// carrying the principal.
func (m *Authenticate) AuthFunc(ctx context.Context) (context.Context, error) {
	token, err := auth.AuthFromMD(ctx, "bearer")
	if err != nil {
		return nil, err
	}

	principal, err := m.resolver.Principal(ctx, token)
	if errors.Is(err, service.ErrForbidden) {
		m.logger.Info("Authenticate middleware: principal is not an administrator")
		return nil, status.Error(codes.PermissionDenied, "administrator role required")
	}
	if err != nil {
		m.logger.Debug("Authenticate middleware: token rejected", "error", err.Error())
		return nil, status.Error(codes.Unauthenticated, "invalid authorization token")
	}

	return m.contextManager.SetPrincipalToContext(ctx, principal), nil
}
