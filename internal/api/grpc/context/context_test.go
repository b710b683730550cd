package context

import (
	stdctx "context"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/metadata"

	"github.com/dtroode/themekeeper/internal/model"
)

func TestManager_SetAndGetPrincipal(t *testing.T) {
	m := NewManager()
	want := model.Principal{UID: "u1", Role: model.AdminRole}
	ctx := m.SetPrincipalToContext(stdctx.Background(), want)

	got, ok := m.GetPrincipalFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, want, got)
}

func TestManager_GetPrincipal_NotFound(t *testing.T) {
	m := NewManager()
	_, ok := m.GetPrincipalFromContext(stdctx.Background())
	assert.False(t, ok)

	ctx := metadata.NewIncomingContext(stdctx.Background(), metadata.Pairs("x-trace-id", "t"))
	_, ok = m.GetPrincipalFromContext(ctx)
	assert.False(t, ok)
}

func TestManager_SetPrincipal_OverwritesClientValues(t *testing.T) {
	m := NewManager()
	baseMD := metadata.New(map[string]string{
		"x-trace-id":     "t",
		"principal_uid":  "forged",
		"principal_role": model.AdminRole,
	})
	ctxWithMD := metadata.NewIncomingContext(stdctx.Background(), baseMD)

	ctx := m.SetPrincipalToContext(ctxWithMD, model.Principal{UID: "u1", Role: model.AdminRole})
	got, ok := m.GetPrincipalFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "u1", got.UID)

	md, _ := metadata.FromIncomingContext(ctx)
	assert.Equal(t, []string{"t"}, md.Get("x-trace-id"))
	assert.Equal(t, []string{"forged"}, baseMD.Get("principal_uid"))
}
