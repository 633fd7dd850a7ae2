package appconfig

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int              `mapstructure:"config_version" json:"config_version" yaml:"config_version"`
	BaseURL       string           `mapstructure:"base_url" json:"base_url" yaml:"base_url"`
	StateDir      string           `mapstructure:"state_dir" json:"state_dir" yaml:"state_dir"`
	DownloadDir   string           `mapstructure:"download_dir" json:"download_dir" yaml:"download_dir"`
	Credential    CredentialConfig `mapstructure:"credential" json:"credential" yaml:"credential"`
	HTTP          HTTPConfig       `mapstructure:"http" json:"http" yaml:"http"`
	Feed          FeedConfig       `mapstructure:"feed" json:"feed" yaml:"feed"`
	Toast         ToastConfig      `mapstructure:"toast" json:"toast" yaml:"toast"`

	// Token is a bearer token supplied through the environment. When set the
	// credential is kept in memory and never written to disk.
	Token string `mapstructure:"-" json:"-" yaml:"-"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// CredentialConfig controls where the bearer token is persisted.
type CredentialConfig struct {
	TokenFile    string `mapstructure:"token_file" json:"token_file" yaml:"token_file"`
	KeyStorePath string `mapstructure:"key_store_path" json:"key_store_path" yaml:"key_store_path"`
	Encrypt      bool   `mapstructure:"encrypt" json:"encrypt" yaml:"encrypt"`
}

// HTTPConfig controls the API client.
type HTTPConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds" json:"timeout_seconds" yaml:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent" json:"user_agent" yaml:"user_agent"`
}

// FeedConfig controls the running-jobs feed.
type FeedConfig struct {
	RetryDelayMS int `mapstructure:"retry_delay_ms" json:"retry_delay_ms" yaml:"retry_delay_ms"`
}

// ToastConfig controls notifications.
type ToastConfig struct {
	DurationMS int `mapstructure:"duration_ms" json:"duration_ms" yaml:"duration_ms"`
}

// Timeout returns the request timeout.
func (c HTTPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RetryDelay returns the reconnect delay.
func (c FeedConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMS) * time.Millisecond
}

// Duration returns the default toast lifetime.
func (c ToastConfig) Duration() time.Duration {
	return time.Duration(c.DurationMS) * time.Millisecond
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}
	stateDir := filepath.Join(home, ".dlmgr", "state")
	return Config{
		ConfigVersion: CurrentConfigVersion,
		BaseURL:       "http://localhost:8000",
		StateDir:      stateDir,
		DownloadDir:   filepath.Join(home, "Downloads"),
		Credential: CredentialConfig{
			TokenFile:    filepath.Join(stateDir, "credentials.json"),
			KeyStorePath: filepath.Join(stateDir, "keys.bundle"),
			Encrypt:      true,
		},
		HTTP: HTTPConfig{
			TimeoutSeconds: 30,
		},
		Feed: FeedConfig{
			RetryDelayMS: 5000,
		},
		Toast: ToastConfig{
			DurationMS: 4000,
		},
	}, nil
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".dlmgr", "config.yaml"), nil
}
