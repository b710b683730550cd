package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dtroode/themekeeper/internal/model"
)

// notifyChannel is the channel the collections trigger notifies on. The
// payload is the collection name.
const notifyChannel = "documents"

var _ model.DocumentStore = (*DocumentRepository)(nil)

// DocumentRepository stores documents as JSONB rows and publishes changes
// through LISTEN/NOTIFY.
type DocumentRepository struct {
	db *Connection
}

func NewDocumentRepository(db *Connection) *DocumentRepository {
	return &DocumentRepository{
		db: db,
	}
}

func (r *DocumentRepository) FetchOnce(ctx context.Context, collection string) (model.Snapshot, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	snapshot := model.Snapshot{Collection: collection, Documents: []model.Document{}}

	err = tx.QueryRow(ctx, `SELECT revision FROM collections WHERE name = $1`, collection).
		Scan(&snapshot.Revision)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return model.Snapshot{}, fmt.Errorf("failed to read collection revision: %w", err)
	}

	rows, err := tx.Query(ctx,
		`SELECT key, fields FROM documents WHERE collection = $1 ORDER BY key`, collection)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var doc model.Document
		if err := rows.Scan(&doc.Key, &doc.Fields); err != nil {
			return model.Snapshot{}, fmt.Errorf("failed to scan document: %w", err)
		}
		snapshot.Documents = append(snapshot.Documents, doc)
	}
	if err := rows.Err(); err != nil {
		return model.Snapshot{}, fmt.Errorf("failed to read documents: %w", err)
	}

	return snapshot, nil
}

func (r *DocumentRepository) Get(ctx context.Context, path string) (model.Document, error) {
	collection, key, err := model.SplitPath(path)
	if err != nil {
		return model.Document{}, err
	}

	doc := model.Document{Key: key}
	err = r.db.QueryRow(ctx,
		`SELECT fields FROM documents WHERE collection = $1 AND key = $2`, collection, key).
		Scan(&doc.Fields)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Document{}, model.ErrNotFound
		}
		return model.Document{}, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

// Write replaces the document at path and bumps the collection revision in
// the same transaction.
func (r *DocumentRepository) Write(ctx context.Context, path string, fields map[string]any) error {
	collection, key, err := model.SplitPath(path)
	if err != nil {
		return err
	}
	if fields == nil {
		fields = map[string]any{}
	}

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		const query = `
			INSERT INTO documents (collection, key, fields, updated_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (collection, key) DO UPDATE
			SET fields = EXCLUDED.fields, updated_at = NOW()`
		if _, err := tx.Exec(ctx, query, collection, key, fields); err != nil {
			return fmt.Errorf("failed to write document: %w", err)
		}
		return bumpRevision(ctx, tx, collection)
	})
}

// Delete removes the document at path. Deleting a missing document is not
// an error and does not change the revision.
func (r *DocumentRepository) Delete(ctx context.Context, path string) error {
	collection, key, err := model.SplitPath(path)
	if err != nil {
		return err
	}

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx,
			`DELETE FROM documents WHERE collection = $1 AND key = $2`, collection, key)
		if err != nil {
			return fmt.Errorf("failed to delete document: %w", err)
		}
		if cmd.RowsAffected() == 0 {
			return nil
		}
		return bumpRevision(ctx, tx, collection)
	})
}

func bumpRevision(ctx context.Context, tx pgx.Tx, collection string) error {
	const query = `
		INSERT INTO collections (name, revision) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET revision = collections.revision + 1`
	if _, err := tx.Exec(ctx, query, collection); err != nil {
		return fmt.Errorf("failed to bump collection revision: %w", err)
	}
	return nil
}

// Subscribe holds a pooled connection listening for collection changes.
// The current snapshot is sent first; every notification for the
// collection triggers a refetch. The connection is closed, not returned to
// the pool, when ctx is cancelled.
func (r *DocumentRepository) Subscribe(ctx context.Context, collection string) (<-chan model.SnapshotEvent, error) {
	conn, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire listener connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		conn.Release()
		return nil, fmt.Errorf("failed to listen for changes: %w", err)
	}

	initial, err := r.FetchOnce(ctx, collection)
	if err != nil {
		_ = conn.Conn().Close(context.Background())
		conn.Release()
		return nil, err
	}

	events := make(chan model.SnapshotEvent, 1)

	go func() {
		defer close(events)
		defer func() {
			_ = conn.Conn().Close(context.Background())
			conn.Release()
		}()

		send := func(event model.SnapshotEvent) bool {
			select {
			case events <- event:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !send(model.SnapshotEvent{Snapshot: initial}) {
			return
		}

		for {
			notification, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() == nil {
					send(model.SnapshotEvent{Err: fmt.Errorf("listener connection failed: %w", err)})
				}
				return
			}
			if notification.Payload != collection {
				continue
			}

			snapshot, err := r.FetchOnce(ctx, collection)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				if !send(model.SnapshotEvent{Err: err}) {
					return
				}
				continue
			}
			if !send(model.SnapshotEvent{Snapshot: snapshot}) {
				return
			}
		}
	}()

	return events, nil
}
