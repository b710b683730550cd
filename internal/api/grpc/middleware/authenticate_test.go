package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dtroode/themekeeper/internal/mocks"
	"github.com/dtroode/themekeeper/internal/model"
	"github.com/dtroode/themekeeper/internal/service"
	"github.com/dtroode/themekeeper/internal/testutil"
)

func TestAuthenticate_AuthFunc(t *testing.T) {
	t.Parallel()

	admin := model.Principal{UID: "u1", Role: model.AdminRole}

	tests := []struct {
		name         string
		mdAuthHeader string
		parsed       model.Principal
		parseErr     error
		wantGRPCCode codes.Code
		wantErr      bool
		expectParse  bool
		expectSetCtx bool
	}{
		{
			name:         "missing authorization header",
			wantGRPCCode: codes.Unauthenticated,
			wantErr:      true,
		},
		{
			name:         "wrong scheme",
			mdAuthHeader: "Basic abc",
			wantGRPCCode: codes.Unauthenticated,
			wantErr:      true,
		},
		{
			name:         "invalid token",
			mdAuthHeader: "Bearer invalid",
			parseErr:     errors.New("signature is invalid"),
			wantGRPCCode: codes.Unauthenticated,
			wantErr:      true,
			expectParse:  true,
		},
		{
			name:         "non admin token",
			mdAuthHeader: "Bearer token",
			parsed:       model.Principal{UID: "u2", Role: model.DefaultRole},
			wantGRPCCode: codes.PermissionDenied,
			wantErr:      true,
			expectParse:  true,
		},
		{
			name:         "valid token",
			mdAuthHeader: "Bearer token",
			parsed:       admin,
			wantGRPCCode: codes.OK,
			expectParse:  true,
			expectSetCtx: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			lg := testutil.MakeNoopLogger()
			cm := mocks.NewContextManager(t)
			tokens := mocks.NewTokenManager(t)

			if tt.expectParse {
				tokens.On("ParseAccessToken", mock.AnythingOfType("string")).Return(tt.parsed, tt.parseErr)
			}
			if tt.expectSetCtx {
				cm.On("SetPrincipalToContext", mock.Anything, admin).Return(context.Background())
			}

			m := NewAuthenticate(service.NewAuth(nil, nil, tokens, lg), cm, lg)

			ctx := context.Background()
			if tt.mdAuthHeader != "" {
				ctx = metadata.NewIncomingContext(ctx, metadata.Pairs("authorization", tt.mdAuthHeader))
			}

			newCtx, err := m.AuthFunc(ctx)

			if tt.wantErr {
				assert.Error(t, err)
				st, ok := status.FromError(err)
				assert.True(t, ok)
				assert.Equal(t, tt.wantGRPCCode, st.Code())
				assert.Nil(t, newCtx)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, newCtx)
			}
		})
	}
}
