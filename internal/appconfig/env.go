package appconfig

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvOverrides are DLMGR_* variables that take precedence over the file.
// Unset variables leave the loaded value alone.
type EnvOverrides struct {
	BaseURL        *string `env:"DLMGR_BASE_URL"`
	Token          string  `env:"DLMGR_TOKEN"`
	StateDir       *string `env:"DLMGR_STATE_DIR"`
	DownloadDir    *string `env:"DLMGR_DOWNLOAD_DIR"`
	Encrypt        *bool   `env:"DLMGR_ENCRYPT_CREDENTIALS"`
	TimeoutSeconds *int    `env:"DLMGR_HTTP_TIMEOUT_SECONDS"`
	UserAgent      *string `env:"DLMGR_USER_AGENT"`
	RetryDelayMS   *int    `env:"DLMGR_FEED_RETRY_DELAY_MS"`
	ToastMS        *int    `env:"DLMGR_TOAST_DURATION_MS"`
}

// LoadDotEnv loads .env files into the process environment. Missing files
// are ignored; variables already set are not replaced.
func LoadDotEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return fmt.Errorf("load .env file: %w", err)
		}
	}
	return nil
}

// ApplyEnv overlays DLMGR_* variables onto cfg.
func ApplyEnv(cfg *Config) error {
	var overrides EnvOverrides
	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	overrides.apply(cfg)
	return nil
}

func (o EnvOverrides) apply(cfg *Config) {
	if o.BaseURL != nil {
		cfg.BaseURL = *o.BaseURL
	}
	if o.Token != "" {
		cfg.Token = o.Token
	}
	if o.StateDir != nil {
		cfg.StateDir = *o.StateDir
	}
	if o.DownloadDir != nil {
		cfg.DownloadDir = *o.DownloadDir
	}
	if o.Encrypt != nil {
		cfg.Credential.Encrypt = *o.Encrypt
	}
	if o.TimeoutSeconds != nil {
		cfg.HTTP.TimeoutSeconds = *o.TimeoutSeconds
	}
	if o.UserAgent != nil {
		cfg.HTTP.UserAgent = *o.UserAgent
	}
	if o.RetryDelayMS != nil {
		cfg.Feed.RetryDelayMS = *o.RetryDelayMS
	}
	if o.ToastMS != nil {
		cfg.Toast.DurationMS = *o.ToastMS
	}
}
