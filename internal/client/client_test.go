package client

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/metadata"

	"github.com/dtroode/themekeeper/internal/config"
)

func TestTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	store, err := NewTokenStore(path)
	require.NoError(t, err)
	assert.Equal(t, path, store.Path())

	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	require.NoError(t, store.Save("abc.def"))
	token, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestTokenStore_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("\n"), 0o600))

	store, err := NewTokenStore(path)
	require.NoError(t, err)
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestWithToken(t *testing.T) {
	ctx := WithToken(context.Background(), "abc")
	md, ok := metadata.FromOutgoingContext(ctx)
	require.True(t, ok)
	assert.Equal(t, []string{"Bearer abc"}, md.Get("authorization"))
}

func TestDial(t *testing.T) {
	conn, err := Dial(config.Client{Address: "localhost:50051"})
	require.NoError(t, err)
	require.NotNil(t, conn.Client)
	assert.NoError(t, conn.Close())

	conn, err = Dial(config.Client{Address: "localhost:50051", TLS: true})
	require.NoError(t, err)
	assert.NoError(t, conn.Close())

	_, err = Dial(config.Client{Address: "localhost:50051", TLS: true, CAFile: filepath.Join(t.TempDir(), "absent.pem")})
	assert.ErrorContains(t, err, "failed to load CA file")
}
