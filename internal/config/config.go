package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. TABLEKIT_STORAGE_DRIVER.
const EnvPrefix = "TABLEKIT"

// Config holds all application configuration
type Config struct {
	Table   TableConfig   `mapstructure:"table"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
}

type TableConfig struct {
	PageSize                     int      `mapstructure:"page_size"`
	Paginated                    bool     `mapstructure:"paginated"`
	DefaultView                  string   `mapstructure:"default_view"`
	EnabledViews                 []string `mapstructure:"enabled_views"`
	UncategorizedLabel           string   `mapstructure:"uncategorized_label"`
	MaxFilterDepth               int      `mapstructure:"max_filter_depth"`
	ClearSelectionOnFilterChange bool     `mapstructure:"clear_selection_on_filter_change"`
}

type StorageConfig struct {
	Driver   string `mapstructure:"driver"`
	Path     string `mapstructure:"path"`
	DSN      string `mapstructure:"dsn"`
	RedisURL string `mapstructure:"redis_url"`
	Key      string `mapstructure:"key"`
}

type LogConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	AddSource bool   `mapstructure:"add_source"`
}

// Storage drivers.
const (
	DriverYAML     = "yaml"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
	DriverFile     = "file"
)

var defaultEnabledViews = []string{"table", "board", "list", "gallery", "feed", "calendar"}

// GetDefaults returns a Config with all default values
func GetDefaults() *Config {
	return &Config{
		Table: TableConfig{
			PageSize:                     50,
			Paginated:                    true,
			DefaultView:                  "table",
			EnabledViews:                 append([]string(nil), defaultEnabledViews...),
			UncategorizedLabel:           "Uncategorized",
			MaxFilterDepth:               3,
			ClearSelectionOnFilterChange: true,
		},
		Storage: StorageConfig{
			Driver: DriverYAML,
			Key:    "tablekit:saved-views",
		},
		Log: LogConfig{
			Level:  "INFO",
			Format: "text",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := GetDefaults()
	v.SetDefault("table.page_size", d.Table.PageSize)
	v.SetDefault("table.paginated", d.Table.Paginated)
	v.SetDefault("table.default_view", d.Table.DefaultView)
	v.SetDefault("table.enabled_views", d.Table.EnabledViews)
	v.SetDefault("table.uncategorized_label", d.Table.UncategorizedLabel)
	v.SetDefault("table.max_filter_depth", d.Table.MaxFilterDepth)
	v.SetDefault("table.clear_selection_on_filter_change", d.Table.ClearSelectionOnFilterChange)
	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.dsn", d.Storage.DSN)
	v.SetDefault("storage.redis_url", d.Storage.RedisURL)
	v.SetDefault("storage.key", d.Storage.Key)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.add_source", d.Log.AddSource)
}

// Load reads configuration. An explicit file must exist; otherwise
// config.yaml is searched in the user config directory, the current
// directory and ./config, and a missing file falls back to defaults.
// TABLEKIT_* environment variables override both.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := GetConfigPath(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config (it's okay if file doesn't exist, we have defaults)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values viper cannot type-check.
func (c *Config) Validate() error {
	if c.Table.PageSize <= 0 {
		return fmt.Errorf("table.page_size must be positive, got %d", c.Table.PageSize)
	}
	if c.Table.MaxFilterDepth < 0 {
		return fmt.Errorf("table.max_filter_depth must not be negative, got %d", c.Table.MaxFilterDepth)
	}
	switch c.Storage.Driver {
	case DriverYAML, DriverSQLite, DriverFile, DriverMemory:
	case DriverPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for the postgres driver")
		}
	case DriverRedis:
		if c.Storage.RedisURL == "" {
			return fmt.Errorf("storage.redis_url is required for the redis driver")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}
	return nil
}

// GetConfigPath returns the user config directory path
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "tablekit"), nil
}

// StoragePath returns the configured storage path, or the default location
// for the driver under the user config directory.
func (s StorageConfig) StoragePath() (string, error) {
	if s.Path != "" {
		return s.Path, nil
	}
	dir, err := GetConfigPath()
	if err != nil {
		return "", fmt.Errorf("resolving storage path: %w", err)
	}
	switch s.Driver {
	case DriverSQLite:
		return filepath.Join(dir, "views.db"), nil
	case DriverFile:
		return filepath.Join(dir, "store"), nil
	default:
		return filepath.Join(dir, "views.yaml"), nil
	}
}
