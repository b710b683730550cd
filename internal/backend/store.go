// Package backend assembles the document store handed to the managers.
package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/dtroode/themekeeper/internal/codec"
	"github.com/dtroode/themekeeper/internal/model"
)

var _ model.DocumentStore = (*Store)(nil)

// Store routes blob collections to object storage and every other
// collection to the document store. Blob collections can be read, written
// and deleted by path but not listed or subscribed to.
type Store struct {
	documents model.DocumentStore
	blobs     model.Storage
	blobbed   map[string]bool
}

// New creates a store. When blobs is nil every collection goes to
// documents.
func New(documents model.DocumentStore, blobs model.Storage, blobCollections ...string) *Store {
	s := &Store{
		documents: documents,
		blobs:     blobs,
		blobbed:   make(map[string]bool, len(blobCollections)),
	}
	if blobs != nil {
		for _, c := range blobCollections {
			s.blobbed[c] = true
		}
	}
	return s
}

func (s *Store) Subscribe(ctx context.Context, collection string) (<-chan model.SnapshotEvent, error) {
	if s.blobbed[collection] {
		return nil, fmt.Errorf("subscribe to %s: %w", collection, model.ErrUnsupported)
	}
	return s.documents.Subscribe(ctx, collection)
}

func (s *Store) FetchOnce(ctx context.Context, collection string) (model.Snapshot, error) {
	if s.blobbed[collection] {
		return model.Snapshot{}, fmt.Errorf("fetch %s: %w", collection, model.ErrUnsupported)
	}
	return s.documents.FetchOnce(ctx, collection)
}

func (s *Store) Get(ctx context.Context, path string) (model.Document, error) {
	collection, key, err := model.SplitPath(path)
	if err != nil {
		return model.Document{}, err
	}
	if !s.blobbed[collection] {
		return s.documents.Get(ctx, path)
	}

	rc, err := s.blobs.Download(ctx, path)
	if err != nil {
		return model.Document{}, err
	}
	defer rc.Close()

	blob, err := io.ReadAll(rc)
	if err != nil {
		return model.Document{}, fmt.Errorf("failed to read blob %s: %w", path, err)
	}
	fields, err := codec.UnmarshalBlob(blob)
	if err != nil {
		return model.Document{}, fmt.Errorf("failed to decode blob %s: %w", path, err)
	}
	return model.Document{Key: key, Fields: fields}, nil
}

func (s *Store) Write(ctx context.Context, path string, fields map[string]any) error {
	collection, _, err := model.SplitPath(path)
	if err != nil {
		return err
	}
	if !s.blobbed[collection] {
		return s.documents.Write(ctx, path, fields)
	}

	blob, err := codec.MarshalBlob(fields)
	if err != nil {
		return err
	}
	return s.blobs.Upload(ctx, path, bytes.NewReader(blob))
}

func (s *Store) Delete(ctx context.Context, path string) error {
	collection, _, err := model.SplitPath(path)
	if err != nil {
		return err
	}
	if !s.blobbed[collection] {
		return s.documents.Delete(ctx, path)
	}
	return s.blobs.Delete(ctx, path)
}
