package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

var (
	ErrUnknownBackend  = errors.New("unknown store backend")
	ErrUnknownIDPolicy = errors.New("unknown id policy")
)

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config holds application configuration.
type Config struct {
	Store StoreConfig
	UI    UIConfig
	Log   LogConfig
	Web   WebConfig
}

// StoreConfig selects how the task collection is held.
type StoreConfig struct {
	Backend  string
	IDPolicy string `mapstructure:"id_policy"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	Title       string
	Placeholder string
	AltScreen   bool `mapstructure:"alt_screen"`
}

// LogConfig holds the log file location used while the TUI owns the terminal.
type LogConfig struct {
	Path string
}

// WebConfig holds the local API listen address.
type WebConfig struct {
	Addr string
}

// Load reads configuration from file and env. Env var overrides use prefix JASKTODO_.
// path, when non-empty, takes precedence over JASKTODO_CONFIG.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("store.backend", BackendMemory)
	v.SetDefault("store.id_policy", "uuid")
	v.SetDefault("ui.title", "Tasks")
	v.SetDefault("ui.placeholder", "Enter task")
	v.SetDefault("ui.alt_screen", true)
	v.SetDefault("log.path", "")
	v.SetDefault("web.addr", "127.0.0.1:8080")

	v.SetConfigType("toml")

	if path == "" {
		path = os.Getenv("JASKTODO_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "jasktodo"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("JASKTODO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// an explicit path must exist; the default location is optional
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate normalizes enum-like fields and rejects unknown values.
func (c *Config) Validate() error {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	switch c.Store.Backend {
	case BackendMemory, BackendSQLite:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Store.Backend)
	}
	c.Store.IDPolicy = strings.ToLower(strings.TrimSpace(c.Store.IDPolicy))
	switch c.Store.IDPolicy {
	case "":
		c.Store.IDPolicy = "uuid"
	case "uuid", "sequence":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownIDPolicy, c.Store.IDPolicy)
	}
	return nil
}
