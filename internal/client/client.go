// Package client connects adminctl to the admin API.
package client

import (
	"context"
	"crypto/tls"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/dtroode/themekeeper/internal/api/grpc/adminapi"
	"github.com/dtroode/themekeeper/internal/config"
)

// Conn is an admin API client together with its connection.
type Conn struct {
	*adminapi.Client
	conn *grpc.ClientConn
}

// Dial creates a client for the configured address. The connection is
// established lazily on the first call.
func Dial(cfg config.Client) (*Conn, error) {
	creds, err := transportCredentials(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := grpc.NewClient(cfg.Address, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to create client for %s: %w", cfg.Address, err)
	}

	return &Conn{Client: adminapi.NewClient(conn), conn: conn}, nil
}

func transportCredentials(cfg config.Client) (credentials.TransportCredentials, error) {
	if !cfg.TLS {
		return insecure.NewCredentials(), nil
	}
	if cfg.CAFile == "" {
		return credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12}), nil
	}
	creds, err := credentials.NewClientTLSFromFile(cfg.CAFile, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load CA file: %w", err)
	}
	return creds, nil
}

func (c *Conn) Close() error {
	return c.conn.Close()
}

// WithToken attaches the access token to outgoing calls made with ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}
