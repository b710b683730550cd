package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Client contains adminctl parameters, read from ADMINCTL_* variables.
type Client struct {
	Address   string        `env:"ADDRESS" envDefault:"localhost:50051"`
	TLS       bool          `env:"TLS" envDefault:"false"`
	CAFile    string        `env:"CA_FILE"`
	TokenFile string        `env:"TOKEN_FILE"`
	Timeout   time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// NewClientConfig loads adminctl configuration from environment variables.
func NewClientConfig() (*Client, error) {
	cfg := Client{}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "ADMINCTL_"}); err != nil {
		return nil, fmt.Errorf("failed to parse client config: %w", err)
	}
	return &cfg, nil
}
