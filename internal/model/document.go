package model

import (
	"context"
	"fmt"
	"strings"
)

// Collection names used by the admin managers.
const (
	CollectionThemes = "themes"
	CollectionTests  = "tests"
	CollectionUsers  = "users"
)

// Document is a single keyed child of a collection.
type Document struct {
	Key    string
	Fields map[string]any
}

// Snapshot is a complete point-in-time copy of a collection, ordered by key.
type Snapshot struct {
	Collection string
	Revision   int64
	Documents  []Document
}

// SnapshotEvent is delivered by a subscription: either a snapshot or a failure.
type SnapshotEvent struct {
	Snapshot Snapshot
	Err      error
}

// DocumentStore is the realtime document store collaborator.
type DocumentStore interface {
	// Subscribe emits the current snapshot of the collection and a new one
	// after every change, until ctx is cancelled. The channel is closed
	// when the subscription ends.
	Subscribe(ctx context.Context, collection string) (<-chan SnapshotEvent, error)
	FetchOnce(ctx context.Context, collection string) (Snapshot, error)
	// Get returns a single document, or ErrNotFound.
	Get(ctx context.Context, path string) (Document, error)
	Write(ctx context.Context, path string, fields map[string]any) error
	Delete(ctx context.Context, path string) error
}

// JoinPath builds a "collection/key" document path.
func JoinPath(collection, key string) string {
	return collection + "/" + key
}

// SplitPath splits a "collection/key" document path.
func SplitPath(path string) (collection string, key string, err error) {
	collection, key, ok := strings.Cut(path, "/")
	if !ok || collection == "" || key == "" || strings.Contains(key, "/") {
		return "", "", fmt.Errorf("%w: malformed document path %q", ErrInvalidPath, path)
	}
	return collection, key, nil
}

// StringField returns the string value stored under name, or nil when the
// field is absent or not a string.
func StringField(fields map[string]any, name string) *string {
	v, ok := fields[name]
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}
