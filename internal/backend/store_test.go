package backend

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/themekeeper/internal/codec"
	"github.com/dtroode/themekeeper/internal/mocks"
	"github.com/dtroode/themekeeper/internal/model"
)

func TestStore_RoutesDocuments(t *testing.T) {
	ctx := context.Background()
	documents := mocks.NewDocumentStore(t)
	blobs := mocks.NewStorage(t)
	s := New(documents, blobs, model.CollectionTests)

	events := make(chan model.SnapshotEvent)
	documents.On("Subscribe", mock.Anything, "themes").Return((<-chan model.SnapshotEvent)(events), nil).Once()
	documents.On("FetchOnce", mock.Anything, "users").Return(model.Snapshot{Collection: "users"}, nil).Once()
	documents.On("Get", mock.Anything, "users/u1").Return(model.Document{Key: "u1"}, nil).Once()
	documents.On("Write", mock.Anything, "themes/t1", map[string]any{"title": "Algebra"}).Return(nil).Once()
	documents.On("Delete", mock.Anything, "themes/t1").Return(nil).Once()

	ch, err := s.Subscribe(ctx, "themes")
	require.NoError(t, err)
	assert.NotNil(t, ch)

	snapshot, err := s.FetchOnce(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, "users", snapshot.Collection)

	doc, err := s.Get(ctx, "users/u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", doc.Key)

	require.NoError(t, s.Write(ctx, "themes/t1", map[string]any{"title": "Algebra"}))
	require.NoError(t, s.Delete(ctx, "themes/t1"))
}

func TestStore_RoutesBlobs(t *testing.T) {
	ctx := context.Background()
	documents := mocks.NewDocumentStore(t)
	blobs := mocks.NewStorage(t)
	s := New(documents, blobs, model.CollectionTests)

	fields := map[string]any{"q1": "2+2?", "a1": "4"}
	var uploaded []byte

	blobs.On("Upload", mock.Anything, "tests/t1", mock.Anything).
		Run(func(args mock.Arguments) {
			uploaded, _ = io.ReadAll(args.Get(2).(io.Reader))
		}).
		Return(nil).Once()

	require.NoError(t, s.Write(ctx, "tests/t1", fields))

	decoded, err := codec.UnmarshalBlob(uploaded)
	require.NoError(t, err)
	assert.Equal(t, fields, decoded)

	blobs.On("Download", mock.Anything, "tests/t1").
		Return(io.NopCloser(bytes.NewReader(uploaded)), nil).Once()

	doc, err := s.Get(ctx, "tests/t1")
	require.NoError(t, err)
	assert.Equal(t, "t1", doc.Key)
	assert.Equal(t, fields, doc.Fields)

	blobs.On("Delete", mock.Anything, "tests/t1").Return(nil).Once()
	require.NoError(t, s.Delete(ctx, "tests/t1"))

	_, err = s.Subscribe(ctx, model.CollectionTests)
	assert.ErrorIs(t, err, model.ErrUnsupported)
	_, err = s.FetchOnce(ctx, model.CollectionTests)
	assert.ErrorIs(t, err, model.ErrUnsupported)
}

func TestStore_BlobErrors(t *testing.T) {
	ctx := context.Background()
	documents := mocks.NewDocumentStore(t)
	blobs := mocks.NewStorage(t)
	s := New(documents, blobs, model.CollectionTests)

	blobs.On("Download", mock.Anything, "tests/missing").Return(nil, model.ErrNotFound).Once()
	_, err := s.Get(ctx, "tests/missing")
	assert.ErrorIs(t, err, model.ErrNotFound)

	blobs.On("Download", mock.Anything, "tests/bad").
		Return(io.NopCloser(bytes.NewReader([]byte("garbage"))), nil).Once()
	_, err = s.Get(ctx, "tests/bad")
	assert.ErrorIs(t, err, codec.ErrCorrupt)

	failure := errors.New("bucket gone")
	blobs.On("Delete", mock.Anything, "tests/t1").Return(failure).Once()
	assert.ErrorIs(t, s.Delete(ctx, "tests/t1"), failure)
}

func TestStore_WithoutBlobs(t *testing.T) {
	ctx := context.Background()
	documents := mocks.NewDocumentStore(t)
	s := New(documents, nil, model.CollectionTests)

	documents.On("Delete", mock.Anything, "tests/t1").Return(nil).Once()
	require.NoError(t, s.Delete(ctx, "tests/t1"))
}

func TestStore_InvalidPath(t *testing.T) {
	s := New(mocks.NewDocumentStore(t), mocks.NewStorage(t), model.CollectionTests)

	_, err := s.Get(context.Background(), "tests")
	assert.ErrorIs(t, err, model.ErrInvalidPath)
	assert.ErrorIs(t, s.Write(context.Background(), "", nil), model.ErrInvalidPath)
	assert.ErrorIs(t, s.Delete(context.Background(), "tests/"), model.ErrInvalidPath)
}
