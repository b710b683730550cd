//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	"github.com/dtroode/themekeeper/internal/identity"
	"github.com/dtroode/themekeeper/internal/model"
	repo "github.com/dtroode/themekeeper/internal/repository/postgres"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "themekeeper_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/themekeeper_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func connect(t *testing.T) *repo.Connection {
	t.Helper()
	conn, err := repo.NewConnection(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func nextSnapshot(t *testing.T, events <-chan model.SnapshotEvent) model.Snapshot {
	t.Helper()
	select {
	case ev, ok := <-events:
		require.True(t, ok, "subscription closed")
		require.NoError(t, ev.Err)
		return ev.Snapshot
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return model.Snapshot{}
	}
}

func TestDocumentRepository(t *testing.T) {
	ctx := context.Background()
	docs := repo.NewDocumentRepository(connect(t))

	require.NoError(t, docs.Write(ctx, "themes/b", map[string]any{"title": "Calculus"}))
	require.NoError(t, docs.Write(ctx, "themes/a", map[string]any{"title": "Algebra", "theory": "groups"}))

	snapshot, err := docs.FetchOnce(ctx, "themes")
	require.NoError(t, err)
	require.Len(t, snapshot.Documents, 2)
	require.Equal(t, "a", snapshot.Documents[0].Key)
	require.Equal(t, "groups", snapshot.Documents[0].Fields["theory"])
	require.Equal(t, int64(2), snapshot.Revision)

	doc, err := docs.Get(ctx, "themes/b")
	require.NoError(t, err)
	require.Equal(t, "Calculus", doc.Fields["title"])

	_, err = docs.Get(ctx, "themes/missing")
	require.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, docs.Delete(ctx, "themes/b"))
	require.NoError(t, docs.Delete(ctx, "themes/b"))

	snapshot, err = docs.FetchOnce(ctx, "themes")
	require.NoError(t, err)
	require.Len(t, snapshot.Documents, 1)
	require.Equal(t, int64(3), snapshot.Revision)
}

func TestDocumentRepository_Subscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	docs := repo.NewDocumentRepository(connect(t))

	events, err := docs.Subscribe(ctx, "subjects")
	require.NoError(t, err)

	initial := nextSnapshot(t, events)
	require.Empty(t, initial.Documents)

	require.NoError(t, docs.Write(ctx, "other/x", map[string]any{"title": "ignored"}))
	require.NoError(t, docs.Write(ctx, "subjects/s1", map[string]any{"title": "Algebra"}))

	updated := nextSnapshot(t, events)
	require.Len(t, updated.Documents, 1)
	require.Greater(t, updated.Revision, initial.Revision)

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-events:
			return !ok
		default:
			return false
		}
	}, 10*time.Second, 50*time.Millisecond)
}

func TestIdentityRepository(t *testing.T) {
	ctx := context.Background()
	identities := repo.NewIdentityRepository(connect(t), identity.NewPasswords(bcrypt.MinCost))

	id, err := identities.CreateIdentity(ctx, "Ann@Example.com", "secret1")
	require.NoError(t, err)

	_, err = identities.CreateIdentity(ctx, "ann@example.com", "secret2")
	require.ErrorIs(t, err, model.ErrAlreadyExists)

	got, err := identities.Authenticate(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, id, got)

	_, err = identities.Authenticate(ctx, "ann@example.com", "wrong")
	require.ErrorIs(t, err, model.ErrInvalidCredential)

	_, err = identities.Authenticate(ctx, "nobody@example.com", "secret1")
	require.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, identities.UpdateDisplayName(ctx, id, "Ann Lee"))
	require.NoError(t, identities.DeleteIdentity(ctx, id))
	require.ErrorIs(t, identities.DeleteIdentity(ctx, id), model.ErrNotFound)
}
