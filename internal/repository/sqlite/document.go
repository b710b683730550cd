package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dtroode/themekeeper/internal/codec"
	"github.com/dtroode/themekeeper/internal/model"
)

var _ model.DocumentStore = (*DocumentRepository)(nil)

// DocumentRepository stores documents as CBOR blobs and notifies
// in-process subscribers after every committed change.
type DocumentRepository struct {
	db      *sql.DB
	changes *hub
}

func NewDocumentRepository(db *DB) *DocumentRepository {
	return &DocumentRepository{db: db.SqlDB, changes: db.changes}
}

func (r *DocumentRepository) FetchOnce(ctx context.Context, collection string) (model.Snapshot, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("begin snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	snapshot := model.Snapshot{Collection: collection, Documents: []model.Document{}}

	err = tx.QueryRowContext(ctx,
		`SELECT revision FROM collections WHERE name = ?`, collection,
	).Scan(&snapshot.Revision)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return model.Snapshot{}, fmt.Errorf("query collection revision: %w", err)
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT key, fields FROM documents WHERE collection = ? ORDER BY key`, collection)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key  string
			blob []byte
		)
		if err := rows.Scan(&key, &blob); err != nil {
			return model.Snapshot{}, fmt.Errorf("scan document: %w", err)
		}
		fields, err := codec.UnmarshalFields(blob)
		if err != nil {
			return model.Snapshot{}, fmt.Errorf("decode document %s/%s: %w", collection, key, err)
		}
		snapshot.Documents = append(snapshot.Documents, model.Document{Key: key, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return model.Snapshot{}, fmt.Errorf("iterate documents: %w", err)
	}

	return snapshot, nil
}

func (r *DocumentRepository) Get(ctx context.Context, path string) (model.Document, error) {
	collection, key, err := model.SplitPath(path)
	if err != nil {
		return model.Document{}, err
	}

	var blob []byte
	err = r.db.QueryRowContext(ctx,
		`SELECT fields FROM documents WHERE collection = ? AND key = ?`, collection, key,
	).Scan(&blob)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Document{}, model.ErrNotFound
		}
		return model.Document{}, fmt.Errorf("query document: %w", err)
	}

	fields, err := codec.UnmarshalFields(blob)
	if err != nil {
		return model.Document{}, fmt.Errorf("decode document %s: %w", path, err)
	}
	return model.Document{Key: key, Fields: fields}, nil
}

func (r *DocumentRepository) Write(ctx context.Context, path string, fields map[string]any) error {
	collection, key, err := model.SplitPath(path)
	if err != nil {
		return err
	}

	blob, err := codec.MarshalFields(fields)
	if err != nil {
		return err
	}

	err = r.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO documents (collection, key, fields, updated_at)
			 VALUES (?, ?, ?, CURRENT_TIMESTAMP)
			 ON CONFLICT (collection, key) DO UPDATE
			 SET fields = excluded.fields, updated_at = CURRENT_TIMESTAMP`,
			collection, key, blob)
		if err != nil {
			return fmt.Errorf("upsert document: %w", err)
		}
		return bumpRevision(ctx, tx, collection)
	})
	if err != nil {
		return err
	}

	r.changes.publish(collection)
	return nil
}

// Delete removes the document at path. Deleting a missing document is not
// an error and does not change the revision.
func (r *DocumentRepository) Delete(ctx context.Context, path string) error {
	collection, key, err := model.SplitPath(path)
	if err != nil {
		return err
	}

	changed := false
	err = r.inTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`DELETE FROM documents WHERE collection = ? AND key = ?`, collection, key)
		if err != nil {
			return fmt.Errorf("delete document: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected: %w", err)
		}
		if n == 0 {
			return nil
		}
		changed = true
		return bumpRevision(ctx, tx, collection)
	})
	if err != nil {
		return err
	}

	if changed {
		r.changes.publish(collection)
	}
	return nil
}

// Subscribe sends the current snapshot and a fresh one after every change
// committed through this database handle.
func (r *DocumentRepository) Subscribe(ctx context.Context, collection string) (<-chan model.SnapshotEvent, error) {
	signals, unsubscribe := r.changes.subscribe(collection)

	initial, err := r.FetchOnce(ctx, collection)
	if err != nil {
		unsubscribe()
		return nil, err
	}

	events := make(chan model.SnapshotEvent, 1)

	go func() {
		defer close(events)
		defer unsubscribe()

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
			select {
			case <-ctx.Done():
				return
			case <-signals:
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

func (r *DocumentRepository) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func bumpRevision(ctx context.Context, tx *sql.Tx, collection string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO collections (name, revision) VALUES (?, 1)
		 ON CONFLICT (name) DO UPDATE SET revision = revision + 1`, collection)
	if err != nil {
		return fmt.Errorf("bump collection revision: %w", err)
	}
	return nil
}
