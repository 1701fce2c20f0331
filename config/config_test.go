package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/sla-engine/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_LocalYAML(t *testing.T) {
	cfg, err := config.Load("local.yaml")
	require.NoError(t, err)

	assert.Equal(t, config.EnvLocal, cfg.Env)
	assert.Equal(t, "localhost:8080", cfg.Address)
	assert.Equal(t, 4*time.Second, cfg.HTTPServer.Timeout)
	assert.Equal(t, 732, cfg.StepBudget)
	assert.Equal(t, 60*24*time.Hour, cfg.LeaveLookahead)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.AllowedOrigins)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "env: dev\n")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, config.EnvDev, cfg.Env)
	assert.Equal(t, ":8080", cfg.Address)
	assert.Equal(t, "./data/sla.db", cfg.StoragePath)
	assert.Equal(t, 60*time.Second, cfg.IdleTimeout)
	assert.Equal(t, 732, cfg.StepBudget)
	assert.Empty(t, cfg.AllowedOrigins, "no wildcard unless configured")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "env: dev\nengine:\n  step_budget: 100\n")
	t.Setenv("ENGINE_STEP_BUDGET", "30")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.StepBudget)
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("ENV", "local")
	t.Setenv("HTTP_ADDRESS", ":9999")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.EnvLocal, cfg.Env)
	assert.Equal(t, ":9999", cfg.Address)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown env", "env: staging\n"},
		{"negative budget", "env: dev\nengine:\n  step_budget: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
