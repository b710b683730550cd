package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/dtroode/themekeeper/internal/model"
)

// DefaultRoles is used when no roles file is configured.
var DefaultRoles = []string{model.DefaultRole, model.AdminRole}

type rolesFile struct {
	Roles []string `yaml:"roles"`
}

// LoadRoles reads the assignable role set from a YAML file of the form
//
//	roles:
//	  - user
//	  - teacher
//	  - admin
//
// An empty path yields DefaultRoles. The default role is always included.
func LoadRoles(path string) ([]string, error) {
	if path == "" {
		return slices.Clone(DefaultRoles), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roles file: %w", err)
	}

	var file rolesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse roles file %s: %w", path, err)
	}

	roles := make([]string, 0, len(file.Roles)+1)
	for _, role := range file.Roles {
		if role == "" {
			return nil, errors.New("roles file contains an empty role")
		}
		if !slices.Contains(roles, role) {
			roles = append(roles, role)
		}
	}
	if !slices.Contains(roles, model.DefaultRole) {
		roles = append([]string{model.DefaultRole}, roles...)
	}

	return roles, nil
}
