package context

import (
	"context"

	"google.golang.org/grpc/metadata"

	"github.com/dtroode/themekeeper/internal/model"
)

// Metadata keys carrying the authenticated principal inside the server.
const (
	principalUIDKey  string = "principal_uid"
	principalRoleKey string = "principal_role"
)

// Manager stores the authenticated principal in incoming gRPC metadata.
// Values sent by the client under the same keys are overwritten.
type Manager struct{}

// NewManager creates a new gRPC context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetPrincipalToContext returns a context whose incoming metadata carries
// the principal.
func (m *Manager) SetPrincipalToContext(ctx context.Context, principal model.Principal) context.Context {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		md = metadata.New(nil)
	} else {
		md = md.Copy()
	}
	md.Set(principalUIDKey, principal.UID)
	md.Set(principalRoleKey, principal.Role)

	return metadata.NewIncomingContext(ctx, md)
}

// GetPrincipalFromContext returns the principal set by the authentication
// middleware.
func (m *Manager) GetPrincipalFromContext(ctx context.Context) (model.Principal, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return model.Principal{}, false
	}

	uids := md.Get(principalUIDKey)
	if len(uids) == 0 || uids[0] == "" {
		return model.Principal{}, false
	}

	principal := model.Principal{UID: uids[0]}
	if roles := md.Get(principalRoleKey); len(roles) > 0 {
		principal.Role = roles[0]
	}

	return principal, true
}
