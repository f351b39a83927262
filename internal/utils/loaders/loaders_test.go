package loaders_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/authform/authform/internal/config"
	"github.com/authform/authform/internal/utils/loaders"

	"github.com/traefik/paerser/cli"
	"gotest.tools/v3/assert"
)

func newCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:          "authform",
		Configuration: cfg,
	}
}

func TestEnvLoader(t *testing.T) {
	cfg := &config.Config{}
	loader := &loaders.EnvLoader{
		Environ: func() []string {
			return []string{
				"AUTHFORM_APPURL=http://auth.example.com",
				"AUTHFORM_SERVER_PORT=8080",
				"AUTHFORM_AUTH_LOGINMAXRETRIES=5",
				"AUTHFORM_GOOGLE_CLIENTID=client-id",
				"HOME=/root",
			}
		},
	}

	loaded, err := loader.Load(nil, newCommand(cfg))

	assert.NilError(t, err)
	assert.Assert(t, loaded)
	assert.Equal(t, "http://auth.example.com", cfg.AppURL)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Auth.LoginMaxRetries)
	assert.Equal(t, "client-id", cfg.Google.ClientID)

	// Nothing prefixed
	loader.Environ = func() []string { return []string{"HOME=/root"} }
	loaded, err = loader.Load(nil, newCommand(&config.Config{}))

	assert.NilError(t, err)
	assert.Assert(t, !loaded)
}

func TestFlagLoader(t *testing.T) {
	cfg := &config.Config{}
	loader := &loaders.FlagLoader{}

	loaded, err := loader.Load([]string{"--appurl=http://auth.example.com", "--redis.address=localhost:6379", "--auth.securecookie"}, newCommand(cfg))

	assert.NilError(t, err)
	assert.Assert(t, loaded)
	assert.Equal(t, "http://auth.example.com", cfg.AppURL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.Assert(t, cfg.Auth.SecureCookie)

	loaded, err = loader.Load(nil, newCommand(&config.Config{}))

	assert.NilError(t, err)
	assert.Assert(t, !loaded)

	// Positional arguments only
	loaded, err = loader.Load([]string{"http://localhost:3000"}, newCommand(&config.Config{}))

	assert.NilError(t, err)
	assert.Assert(t, !loaded)
}

func TestFileLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authform.yml")

	err := os.WriteFile(path, []byte("appUrl: http://auth.example.com\nserver:\n  port: 4000\nui:\n  title: My Form\n"), 0600)
	assert.NilError(t, err)

	cfg := &config.Config{}
	loader := &loaders.FileLoader{}

	loaded, err := loader.Load([]string{"--experimental.configfile=" + path}, newCommand(cfg))

	assert.NilError(t, err)
	assert.Assert(t, loaded)
	assert.Equal(t, "http://auth.example.com", cfg.AppURL)
	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, "My Form", cfg.UI.Title)

	loaded, err = loader.Load([]string{"--appurl=http://other"}, newCommand(&config.Config{}))

	assert.NilError(t, err)
	assert.Assert(t, !loaded)
}
