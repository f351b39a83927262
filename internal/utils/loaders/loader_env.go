package loaders

import (
	"fmt"
	"os"

	"github.com/authform/authform/internal/config"

	"github.com/traefik/paerser/cli"
	"github.com/traefik/paerser/env"
)

// EnvLoader reads AUTHFORM_ prefixed variables, e.g. AUTHFORM_SERVER_PORT.
type EnvLoader struct {
	// Environ defaults to os.Environ
	Environ func() []string
}

func (e *EnvLoader) Load(_ []string, cmd *cli.Command) (bool, error) {
	environ := os.Environ
	if e.Environ != nil {
		environ = e.Environ
	}

	vars := env.FindPrefixedEnvVars(environ(), config.DefaultNamePrefix, cmd.Configuration)
	if len(vars) == 0 {
		return false, nil
	}

	if err := env.Decode(vars, config.DefaultNamePrefix, cmd.Configuration); err != nil {
		return false, fmt.Errorf("failed to decode configuration from environment variables: %w", err)
	}

	return true, nil
}
