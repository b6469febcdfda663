// Package config loads client settings from defaults, ~/.kashar/config.yaml
// and KASHAR_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	VariantTutor    = "tutor"
	VariantRealtime = "realtime"
)

const (
	configDir  = ".kashar"
	configFile = "config.yaml"
)

// Config holds application configuration
type Config struct {
	BaseURL        string        `yaml:"base_url" env:"KASHAR_BASE_URL"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"KASHAR_REQUEST_TIMEOUT"`
	UploadTimeout  time.Duration `yaml:"upload_timeout" env:"KASHAR_UPLOAD_TIMEOUT"`

	// Token overrides the stored login, for scripts and CI.
	Token     string `yaml:"-" env:"KASHAR_TOKEN"`
	TokenFile string `yaml:"token_file" env:"KASHAR_TOKEN_FILE"`

	DBPath   string `yaml:"db_path" env:"KASHAR_DB_PATH"`
	LogDir   string `yaml:"log_dir" env:"KASHAR_LOG_DIR"`
	AudioDir string `yaml:"audio_dir" env:"KASHAR_AUDIO_DIR"`

	// Voice
	VoiceVariant   string `yaml:"voice_variant" env:"KASHAR_VOICE_VARIANT"` // tutor | realtime
	RelayURL       string `yaml:"relay_url" env:"KASHAR_RELAY_URL"`         // ws:// media relay for the live channel
	MicrophoneFile string `yaml:"microphone_file" env:"KASHAR_MICROPHONE_FILE"`

	Debug bool `yaml:"debug" env:"KASHAR_DEBUG"`
}

// Home returns the directory holding config, token, database and logs
func Home() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(dir, configDir)
	}
	return configDir
}

// DefaultPath is the config file read when no path is given
func DefaultPath() string {
	return filepath.Join(Home(), configFile)
}

// Default returns a Config populated with defaults
func Default() *Config {
	home := Home()
	return &Config{
		BaseURL:        "http://localhost:8000/api",
		RequestTimeout: 30 * time.Second,
		UploadTimeout:  120 * time.Second,
		TokenFile:      filepath.Join(home, "token"),
		DBPath:         filepath.Join(home, "kashar.db"),
		LogDir:         filepath.Join(home, "logs"),
		AudioDir:       filepath.Join(home, "audio"),
		VoiceVariant:   VariantTutor,
	}
}

// Load reads the config file at path and applies environment overrides.
// An empty path means DefaultPath, which may be absent.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks that the settings can be used
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base_url must be an http(s) URL, got %q", c.BaseURL)
	}
	if c.RequestTimeout <= 0 || c.UploadTimeout <= 0 {
		return fmt.Errorf("request_timeout and upload_timeout must be positive")
	}
	switch c.VoiceVariant {
	case VariantTutor, VariantRealtime:
	default:
		return fmt.Errorf("voice_variant must be %s or %s, got %q", VariantTutor, VariantRealtime, c.VoiceVariant)
	}
	if c.RelayURL != "" {
		u, err := url.Parse(c.RelayURL)
		if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
			return fmt.Errorf("relay_url must be a ws(s) URL, got %q", c.RelayURL)
		}
	}
	if c.TokenFile == "" || c.DBPath == "" || c.LogDir == "" || c.AudioDir == "" {
		return fmt.Errorf("token_file, db_path, log_dir and audio_dir must be set")
	}
	return nil
}
