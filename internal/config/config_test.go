package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 120*time.Second, cfg.UploadTimeout)
	assert.Equal(t, VariantTutor, cfg.VoiceVariant)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	path := writeConfig(t, `
base_url: https://tutor.example.com/api
request_timeout: 10s
voice_variant: realtime
relay_url: ws://localhost:9000/relay
debug: true
`)
	t.Setenv("KASHAR_BASE_URL", "https://staging.example.com/api")
	t.Setenv("KASHAR_TOKEN", "env-token")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://staging.example.com/api", cfg.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 120*time.Second, cfg.UploadTimeout)
	assert.Equal(t, VariantRealtime, cfg.VoiceVariant)
	assert.Equal(t, "ws://localhost:9000/relay", cfg.RelayURL)
	assert.Equal(t, "env-token", cfg.Token)
	assert.True(t, cfg.Debug)
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "base_url: [unclosed"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad base url", func(c *Config) { c.BaseURL = "localhost:8000" }},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }},
		{"unknown variant", func(c *Config) { c.VoiceVariant = "agora" }},
		{"http relay", func(c *Config) { c.RelayURL = "http://relay" }},
		{"no token file", func(c *Config) { c.TokenFile = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
