// Package config implements mealprobe configuration loading and defaults.
//
// Precedence: flags > MEALPROBE_* environment variables > config file >
// built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

// DefaultFileName is the config file looked up in the working directory.
const DefaultFileName = "mealprobe.toml"

// Config is the full mealprobe configuration.
type Config struct {
	Service ServiceConfig `mapstructure:"service" toml:"service"`
	Run     RunConfig     `mapstructure:"run" toml:"run"`
	History HistoryConfig `mapstructure:"history" toml:"history"`
	Random  RandomConfig  `mapstructure:"random" toml:"random"`
}

// ServiceConfig locates the service under test.
type ServiceConfig struct {
	BaseURL     string `mapstructure:"base_url" toml:"base_url"`
	TimeoutSecs int    `mapstructure:"timeout_secs" toml:"timeout_secs"`
}

// RunConfig tunes suite execution.
type RunConfig struct {
	EchoJSON      bool   `mapstructure:"echo_json" toml:"echo_json"`
	WaitReadySecs int    `mapstructure:"wait_ready_secs" toml:"wait_ready_secs"`
	OnFailureHook string `mapstructure:"on_failure_hook" toml:"on_failure_hook"`
}

// HistoryConfig controls the local run-history store.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled" toml:"enabled"`
	DBPath  string `mapstructure:"db_path" toml:"db_path"`
}

// RandomConfig controls the random.org dependency probe.
type RandomConfig struct {
	Enabled bool   `mapstructure:"enabled" toml:"enabled"`
	URL     string `mapstructure:"url" toml:"url"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Service: ServiceConfig{
			BaseURL:     "http://localhost:5000",
			TimeoutSecs: 5,
		},
		Run: RunConfig{
			EchoJSON:      false,
			WaitReadySecs: 0,
			OnFailureHook: "",
		},
		History: HistoryConfig{
			Enabled: true,
			DBPath:  DefaultDBPath(),
		},
		Random: RandomConfig{
			Enabled: false,
			URL:     "",
		},
	}
}

// DefaultDBPath returns ~/.mealprobe/history.db, falling back to a relative
// path when the home directory cannot be determined.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".mealprobe", "history.db")
	}
	return filepath.Join(home, ".mealprobe", "history.db")
}

// Load reads configuration from path. An empty path searches the working
// directory for mealprobe.toml; a missing file yields the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")

	def := DefaultConfig()
	v.SetDefault("service.base_url", def.Service.BaseURL)
	v.SetDefault("service.timeout_secs", def.Service.TimeoutSecs)
	v.SetDefault("run.echo_json", def.Run.EchoJSON)
	v.SetDefault("run.wait_ready_secs", def.Run.WaitReadySecs)
	v.SetDefault("run.on_failure_hook", def.Run.OnFailureHook)
	v.SetDefault("history.enabled", def.History.Enabled)
	v.SetDefault("history.db_path", def.History.DBPath)
	v.SetDefault("random.enabled", def.Random.Enabled)
	v.SetDefault("random.url", def.Random.URL)

	v.SetEnvPrefix("MEALPROBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(strings.TrimSuffix(DefaultFileName, ".toml"))
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would make every run fail in confusing ways.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Service.BaseURL) == "" {
		return fmt.Errorf("service.base_url must not be empty")
	}
	if c.Service.TimeoutSecs <= 0 {
		return fmt.Errorf("service.timeout_secs must be positive, got %d", c.Service.TimeoutSecs)
	}
	if c.Run.WaitReadySecs < 0 {
		return fmt.Errorf("run.wait_ready_secs must not be negative, got %d", c.Run.WaitReadySecs)
	}
	return nil
}

// Write serializes the config to path as TOML, creating parent directories.
func Write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
