package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teilomillet/relay/config"
	"go.uber.org/zap/zapcore"
)

// unsetEnv clears key for the duration of the test.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"-version"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "relay "+Version+"\n", out.String())
}

func TestRun_UnknownFlag(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"-nope"}, &out)
	assert.Error(t, err)
}

func TestRun_MissingAPIKey(t *testing.T) {
	unsetEnv(t, config.EnvAPIKey)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx, []string{"-env-file", filepath.Join(t.TempDir(), "absent.env")}, &bytes.Buffer{})
	assert.ErrorIs(t, err, config.ErrMissingAPIKey)
}

func TestRun_BadConfigFile(t *testing.T) {
	t.Setenv(config.EnvAPIKey, "k")

	err := run(context.Background(), []string{"-config", filepath.Join(t.TempDir(), "missing.yaml")}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv(config.EnvAPIKey, "k")
	cfgPath := writeFile(t, "relay.yaml", "logging:\n  level: info\n  format: json\ngemini:\n  endpoint: not-a-url\n")

	err := run(context.Background(), []string{"-config", cfgPath}, &bytes.Buffer{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, config.ErrMissingAPIKey)
}

func TestRun_ServesUntilCancelled(t *testing.T) {
	unsetEnv(t, config.EnvAPIKey)
	envPath := writeFile(t, "gemini.env", config.EnvAPIKey+"=from-dotenv\n")
	cfgPath := writeFile(t, "relay.yaml", "server:\n  port: 0\nlogging:\n  level: warn\n  format: text\n")

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := run(ctx, []string{"-config", cfgPath, "-env-file", envPath}, &bytes.Buffer{})
	assert.NoError(t, err)
	assert.Equal(t, "from-dotenv", os.Getenv(config.EnvAPIKey))
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LoggingConfig
		level   zapcore.Level
		wantErr bool
	}{
		{name: "json info", cfg: config.LoggingConfig{Level: "info", Format: "json"}, level: zapcore.InfoLevel},
		{name: "text debug", cfg: config.LoggingConfig{Level: "debug", Format: "text"}, level: zapcore.DebugLevel},
		{name: "bad level", cfg: config.LoggingConfig{Level: "loud", Format: "json"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := newLogger(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.level))
			assert.False(t, logger.Core().Enabled(tt.level-1))
		})
	}
}
