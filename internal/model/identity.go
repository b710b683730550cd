package model

import "context"

// IdentityProvider is the authentication service collaborator.
type IdentityProvider interface {
	CreateIdentity(ctx context.Context, email, password string) (string, error)
	UpdateDisplayName(ctx context.Context, id, name string) error
	DeleteIdentity(ctx context.Context, id string) error
	// Authenticate checks the credentials and returns the identity id.
	Authenticate(ctx context.Context, email, password string) (string, error)
}
