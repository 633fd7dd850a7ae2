package appconfig

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Load reads configuration from the provided path, then applies DLMGR_*
// environment overrides. If path is empty, uses DefaultConfigPath. A missing
// file yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("config_version", cfg.ConfigVersion)
	v.SetDefault("base_url", cfg.BaseURL)
	v.SetDefault("state_dir", cfg.StateDir)
	v.SetDefault("download_dir", cfg.DownloadDir)
	v.SetDefault("credential.token_file", cfg.Credential.TokenFile)
	v.SetDefault("credential.key_store_path", cfg.Credential.KeyStorePath)
	v.SetDefault("credential.encrypt", cfg.Credential.Encrypt)
	v.SetDefault("http.timeout_seconds", cfg.HTTP.TimeoutSeconds)
	v.SetDefault("http.user_agent", cfg.HTTP.UserAgent)
	v.SetDefault("feed.retry_delay_ms", cfg.Feed.RetryDelayMS)
	v.SetDefault("toast.duration_ms", cfg.Toast.DurationMS)

	configLoaded := false
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return Config{}, err
		}
	} else {
		configLoaded = true
	}

	if configLoaded {
		// The default registered above makes IsSet always true.
		if !v.InConfig("config_version") {
			return Config{}, fmt.Errorf("config_version is required; expected %d", CurrentConfigVersion)
		}
		if v.GetInt("config_version") != CurrentConfigVersion {
			return Config{}, fmt.Errorf("unsupported config_version %d; expected %d", v.GetInt("config_version"), CurrentConfigVersion)
		}
		// A state_dir override moves the credential files along unless they
		// are set explicitly.
		if v.InConfig("state_dir") {
			stateDir := v.GetString("state_dir")
			if !v.InConfig("credential.token_file") {
				v.Set("credential.token_file", filepath.Join(stateDir, "credentials.json"))
			}
			if !v.InConfig("credential.key_store_path") {
				v.Set("credential.key_store_path", filepath.Join(stateDir, "keys.bundle"))
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if err := ApplyEnv(&cfg); err != nil {
		return Config{}, err
	}
	expandConfigEnv(&cfg)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that cannot be corrected silently.
func Validate(cfg Config) error {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	parsed, err := url.Parse(baseURL)
	if baseURL == "" || err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("base_url must include an http or https scheme and host (e.g. https://downloads.example.com)")
	}
	if parsed.RawQuery != "" || parsed.Fragment != "" {
		return fmt.Errorf("base_url must not include query or fragment")
	}
	if cfg.HTTP.TimeoutSeconds < 0 {
		return fmt.Errorf("http.timeout_seconds must not be negative")
	}
	if cfg.Feed.RetryDelayMS < 0 {
		return fmt.Errorf("feed.retry_delay_ms must not be negative")
	}
	if cfg.Toast.DurationMS < 0 {
		return fmt.Errorf("toast.duration_ms must not be negative")
	}
	if cfg.Credential.Encrypt && strings.TrimSpace(cfg.Credential.KeyStorePath) == "" {
		return fmt.Errorf("credential.key_store_path is required when credential.encrypt is true")
	}
	return nil
}

func expandConfigEnv(cfg *Config) {
	if cfg == nil {
		return
	}
	cfg.StateDir = expandEnv(cfg.StateDir)
	cfg.DownloadDir = expandEnv(cfg.DownloadDir)
	cfg.Credential.TokenFile = expandEnv(cfg.Credential.TokenFile)
	cfg.Credential.KeyStorePath = expandEnv(cfg.Credential.KeyStorePath)
}

func expandEnv(value string) string {
	if value == "" {
		return value
	}
	return os.Expand(value, func(key string) string {
		if key == "" {
			return ""
		}
		if val, ok := lookupEnv(key); ok {
			return val
		}
		return "$" + key
	})
}

func lookupEnv(key string) (string, bool) {
	if val, ok := os.LookupEnv(key); ok {
		return val, true
	}
	switch key {
	case "UID":
		return fmt.Sprintf("%d", os.Getuid()), true
	case "GID":
		return fmt.Sprintf("%d", os.Getgid()), true
	}
	return "", false
}

// WriteDefault writes the default config to the target path.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
