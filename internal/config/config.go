// Package config loads console settings: defaults, then config.yaml in the
// config directory, then a .env file, then ERPC_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Ruturaj2003/r-L-Tech/internal/session"
)

const (
	AppName    = "erp-console"
	EnvPrefix  = "ERPC"
	configName = "config"
	configType = "yaml"

	KeyBaseURL        = "api.base_url"
	KeyTimeout        = "api.timeout"
	KeyToken          = "auth.token"
	KeyScopeID        = "session.scope_id"
	KeyUserID         = "session.user_id"
	KeyPageSize       = "ui.page_size"
	KeySearchDebounce = "ui.search_debounce"
	KeyTheme          = "ui.theme"
	KeyLogLevel       = "log.level"
	KeyLogFile        = "log.file"
)

type Config struct {
	Dir string

	BaseURL string
	Timeout time.Duration
	Session session.Session

	PageSize       int
	SearchDebounce time.Duration
	Theme          string

	LogLevel string
	LogFile  string
}

// DefaultDir is <user config dir>/erp-console.
func DefaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, AppName)
}

// New returns a viper instance with defaults, config file paths and
// environment binding set up. Callers may bind flags before Load.
func New(dir string) *viper.Viper {
	if dir == "" {
		dir = DefaultDir()
	}
	v := viper.New()
	v.SetDefault(KeyBaseURL, "http://localhost:8080")
	v.SetDefault(KeyTimeout, "15s")
	v.SetDefault(KeyToken, "")
	v.SetDefault(KeyScopeID, 1)
	v.SetDefault(KeyUserID, 1)
	v.SetDefault(KeyPageSize, 10)
	v.SetDefault(KeySearchDebounce, "300ms")
	v.SetDefault(KeyTheme, "auto")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFile, filepath.Join(dir, AppName+".log"))
	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(dir)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.Set("dir", dir)
	return v
}

// Load reads the config file and .env files into v and decodes the result.
// Missing files are not errors.
func Load(v *viper.Viper, envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		Dir:     v.GetString("dir"),
		BaseURL: strings.TrimSpace(v.GetString(KeyBaseURL)),
		Timeout: v.GetDuration(KeyTimeout),
		Session: session.Session{
			ScopeID: v.GetInt(KeyScopeID),
			UserID:  v.GetInt(KeyUserID),
			Token:   strings.TrimSpace(v.GetString(KeyToken)),
		},
		PageSize:       v.GetInt(KeyPageSize),
		SearchDebounce: v.GetDuration(KeySearchDebounce),
		Theme:          v.GetString(KeyTheme),
		LogLevel:       v.GetString(KeyLogLevel),
		LogFile:        v.GetString(KeyLogFile),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	if c.PageSize < 1 {
		return fmt.Errorf("ui.page_size must be at least 1, got %d", c.PageSize)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.Timeout)
	}
	if c.SearchDebounce < 0 {
		c.SearchDebounce = 0
	}
	if err := c.Session.Validate(); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	return nil
}
