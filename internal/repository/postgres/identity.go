package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dtroode/themekeeper/internal/identity"
	"github.com/dtroode/themekeeper/internal/model"
)

// uniqueViolation is the SQLSTATE of a unique constraint failure.
const uniqueViolation = "23505"

var _ model.IdentityProvider = (*IdentityRepository)(nil)

// IdentityRepository keeps identities with bcrypt password hashes.
type IdentityRepository struct {
	db        *Connection
	passwords identity.Passwords
}

func NewIdentityRepository(db *Connection, passwords identity.Passwords) *IdentityRepository {
	return &IdentityRepository{
		db:        db,
		passwords: passwords,
	}
}

func (r *IdentityRepository) CreateIdentity(ctx context.Context, email, password string) (string, error) {
	hash, err := r.passwords.Hash(password)
	if err != nil {
		return "", err
	}

	id := uuid.New()
	query := `INSERT INTO identities (id, email, password_hash, created_at, updated_at)
			  VALUES ($1, $2, $3, NOW(), NOW())`

	if _, err := r.db.Exec(ctx, query, id, identity.NormalizeEmail(email), hash); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("email %s: %w", email, model.ErrAlreadyExists)
		}
		return "", fmt.Errorf("failed to create identity: %w", err)
	}

	return id.String(), nil
}

func (r *IdentityRepository) UpdateDisplayName(ctx context.Context, id, name string) error {
	identityID, err := uuid.Parse(id)
	if err != nil {
		return model.ErrNotFound
	}

	cmd, err := r.db.Exec(ctx,
		`UPDATE identities SET display_name = $2, updated_at = NOW() WHERE id = $1`,
		identityID, name)
	if err != nil {
		return fmt.Errorf("failed to update display name: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *IdentityRepository) DeleteIdentity(ctx context.Context, id string) error {
	identityID, err := uuid.Parse(id)
	if err != nil {
		return model.ErrNotFound
	}

	cmd, err := r.db.Exec(ctx, `DELETE FROM identities WHERE id = $1`, identityID)
	if err != nil {
		return fmt.Errorf("failed to delete identity: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *IdentityRepository) Authenticate(ctx context.Context, email, password string) (string, error) {
	var (
		id   uuid.UUID
		hash string
	)
	err := r.db.QueryRow(ctx,
		`SELECT id, password_hash FROM identities WHERE email = $1`,
		identity.NormalizeEmail(email)).Scan(&id, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", model.ErrNotFound
		}
		return "", fmt.Errorf("failed to get identity by email: %w", err)
	}

	if err := r.passwords.Check(hash, password); err != nil {
		return "", err
	}
	return id.String(), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
