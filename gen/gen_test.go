package main

import (
	"strings"
	"testing"

	"github.com/authform/authform/internal/config"

	"gotest.tools/v3/assert"
)

func TestCollectOptions(t *testing.T) {
	options := collectOptions(config.NewDefaultConfiguration())

	byEnv := map[string]Option{}
	for _, option := range options {
		byEnv[envName(option)] = option
	}

	maxRetries, ok := byEnv["AUTHFORM_AUTH_LOGINMAXRETRIES"]
	assert.Assert(t, ok)
	assert.Equal(t, "--auth.loginMaxRetries", flagName(maxRetries))
	assert.Equal(t, "10", defaultString(maxRetries.Default))

	auditFile, ok := byEnv["AUTHFORM_LOG_STREAMS_AUDIT_FILE"]
	assert.Assert(t, ok)
	assert.Equal(t, "--log.streams.audit.file", flagName(auditFile))

	// Hidden from yaml
	_, ok = byEnv["AUTHFORM_EXPERIMENTAL_CONFIGFILE"]
	assert.Assert(t, !ok)
}

func TestCompileEnv(t *testing.T) {
	env := string(compileEnv(collectOptions(config.NewDefaultConfiguration())))

	assert.Assert(t, strings.HasPrefix(env, "# Authform example configuration"))
	assert.Assert(t, strings.Contains(env, "# The base URL where the app is hosted.\nAUTHFORM_APPURL=\"http://localhost:3000\"\n"))
	assert.Assert(t, strings.Contains(env, "AUTHFORM_SERVER_PORT=3000\n"))
	assert.Assert(t, strings.Contains(env, "AUTHFORM_SERVER_TRUSTEDPROXIES=\n"))
}

func TestCompileMarkdown(t *testing.T) {
	md := string(compileMarkdown(collectOptions(config.NewDefaultConfiguration())))

	assert.Assert(t, strings.Contains(md, "\n## auth\n"))
	assert.Assert(t, strings.Contains(md, "| `AUTHFORM_AUTH_SESSIONEXPIRY` | `--auth.sessionExpiry` | Session expiry time in seconds. | `86400` |"))
	assert.Equal(t, 1, strings.Count(md, "\n## server\n"))
}
