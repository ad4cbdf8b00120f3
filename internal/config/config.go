// Package config loads the server and CLI settings from flags, environment,
// an optional .env file and an optional paklijst.yaml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/erazemk/paklijst/internal/model"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
	BackendSheet  = "sheet"
)

// EnvPrefix prefixes every environment variable, e.g. PAKLIJST_ADDR.
const EnvPrefix = "PAKLIJST"

// Config holds all settings.
type Config struct {
	Addr          string   `mapstructure:"addr"`
	Backend       string   `mapstructure:"backend"`
	DB            string   `mapstructure:"db"`
	DSN           string   `mapstructure:"dsn"`
	Sheet         string   `mapstructure:"sheet"`
	PresetDir     string   `mapstructure:"preset_dir"`
	DefaultPreset string   `mapstructure:"default_preset"`
	Users         []string `mapstructure:"users"`
	SessionSecret string   `mapstructure:"session_secret"`
	Log           string   `mapstructure:"log"`
}

// DefaultUsers are the users of a fresh install.
var DefaultUsers = []string{"David & Julia", "Koen & Rumeysa"}

// New returns a viper instance with defaults, environment binding and
// config file discovery set up.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("addr", ":8080")
	v.SetDefault("backend", BackendSQLite)
	v.SetDefault("db", "paklijst.sqlite3")
	v.SetDefault("dsn", "")
	v.SetDefault("sheet", "paklijst.xlsx")
	v.SetDefault("preset_dir", ".")
	v.SetDefault("default_preset", "packing_list.csv")
	v.SetDefault("users", DefaultUsers)
	v.SetDefault("session_secret", "")
	v.SetDefault("log", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("paklijst")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	return v
}

// Load reads .env files into the environment, then the config file, and
// decodes and validates the result. Without envFiles an optional ".env" in
// the working directory is used. Values already present in the environment
// win over .env entries.
func Load(v *viper.Viper, envFiles ...string) (*Config, error) {
	err := godotenv.Load(envFiles...)
	if err != nil && (len(envFiles) > 0 || !errors.Is(err, fs.ErrNotExist)) {
		return nil, fmt.Errorf("loading env file: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the backend settings and the user list.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSQLite:
		if c.DB == "" {
			return errors.New("config: db path required for the sqlite backend")
		}
	case BackendMySQL:
		if c.DSN == "" {
			return errors.New("config: dsn required for the mysql backend")
		}
	case BackendSheet:
		if c.Sheet == "" {
			return errors.New("config: sheet path required for the sheet backend")
		}
	default:
		return fmt.Errorf("config: unknown backend %q", c.Backend)
	}

	roster := c.Roster()
	if len(roster) == 0 {
		return errors.New("config: at least one user required")
	}
	var keys []string
	for _, u := range roster {
		if u.Key == "" {
			return fmt.Errorf("config: user name %q has no usable key", u.Name)
		}
		if slices.Contains(keys, u.Key) {
			return fmt.Errorf("config: duplicate user %q", u.Name)
		}
		keys = append(keys, u.Key)
	}
	return nil
}

// Roster builds the user list, skipping blank names.
func (c *Config) Roster() model.Roster {
	var names []string
	for _, n := range c.Users {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return model.NewRoster(names...)
}
