package model

import "context"

// Principal identifies the caller of an admin API request.
type Principal struct {
	UID  string
	Role string
}

// ContextManager stores and retrieves the authenticated principal.
type ContextManager interface {
	SetPrincipalToContext(ctx context.Context, principal Principal) context.Context
	GetPrincipalFromContext(ctx context.Context) (Principal, bool)
}
