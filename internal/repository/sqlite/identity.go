package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/dtroode/themekeeper/internal/identity"
	"github.com/dtroode/themekeeper/internal/model"
)

var _ model.IdentityProvider = (*IdentityRepository)(nil)

// IdentityRepository keeps identities with bcrypt password hashes.
type IdentityRepository struct {
	db        *sql.DB
	passwords identity.Passwords
}

func NewIdentityRepository(db *DB, passwords identity.Passwords) *IdentityRepository {
	return &IdentityRepository{db: db.SqlDB, passwords: passwords}
}

func (r *IdentityRepository) CreateIdentity(ctx context.Context, email, password string) (string, error) {
	hash, err := r.passwords.Hash(password)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO identities (id, email, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
		id, identity.NormalizeEmail(email), hash,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return "", fmt.Errorf("email %s: %w", email, model.ErrAlreadyExists)
		}
		return "", fmt.Errorf("insert identity: %w", err)
	}

	return id, nil
}

func (r *IdentityRepository) UpdateDisplayName(ctx context.Context, id, name string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE identities SET display_name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, id)
	if err != nil {
		return fmt.Errorf("update display name: %w", err)
	}
	return requireRow(result)
}

func (r *IdentityRepository) DeleteIdentity(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM identities WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}
	return requireRow(result)
}

func (r *IdentityRepository) Authenticate(ctx context.Context, email, password string) (string, error) {
	var id, hash string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM identities WHERE email = ?`,
		identity.NormalizeEmail(email),
	).Scan(&id, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", model.ErrNotFound
		}
		return "", fmt.Errorf("query identity by email: %w", err)
	}

	if err := r.passwords.Check(hash, password); err != nil {
		return "", err
	}
	return id, nil
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// isUniqueConstraintError checks if the error is a SQLite unique constraint violation.
func isUniqueConstraintError(err error) bool {
	var sqliteErr *msqlite.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
