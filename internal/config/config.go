package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	// api
	APIBaseURL            string `toml:"api_base_url"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
	// cache
	StalenessWindowMinutes int  `toml:"staleness_window_minutes"`
	CacheSizeMegabytes     int  `toml:"cache_size_megabytes"`
	EvictionGraceSeconds   int  `toml:"eviction_grace_seconds"`
	EvictionEnabled        bool `toml:"eviction_enabled"`
	// prefs
	PrefsPath string `toml:"prefs_path"`
	// coach
	CoachRequestsPerMinute int `toml:"coach_requests_per_minute"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	// sentry
	SentryEnabled bool   `toml:"sentry_enabled"`
	SentryDSN     string `toml:"sentry_dsn"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

// Load reads the TOML config file and returns the section for the given env,
// with defaults applied for everything left unset.
func Load(env, path string) (*Config, error) {
	var tomlConfig Toml
	if _, err := toml.DecodeFile(path, &tomlConfig); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}

	cfg, err := tomlConfig.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config section for env %s is empty", env)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.RequestTimeoutSeconds <= 0 {
		c.RequestTimeoutSeconds = 30
	}
	if c.StalenessWindowMinutes <= 0 {
		c.StalenessWindowMinutes = 5
	}
	if c.CacheSizeMegabytes <= 0 {
		c.CacheSizeMegabytes = 10
	}
	if c.EvictionGraceSeconds <= 0 {
		c.EvictionGraceSeconds = 60
	}
	if c.CoachRequestsPerMinute <= 0 {
		c.CoachRequestsPerMinute = 10
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.PrefsPath == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			c.PrefsPath = filepath.Join(home, ".setlog")
		} else {
			c.PrefsPath = ".setlog"
		}
	}
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func (c *Config) StalenessWindow() time.Duration {
	return time.Duration(c.StalenessWindowMinutes) * time.Minute
}

func (c *Config) EvictionGrace() time.Duration {
	return time.Duration(c.EvictionGraceSeconds) * time.Second
}
