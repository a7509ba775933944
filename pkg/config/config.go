package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// BackendConfig points the client at the CCXC backend
type BackendConfig struct {
	Root    string        `yaml:"root" toml:"root" env:"CCXC_BACKEND_ROOT" env-default:"http://localhost:8080" env-description:"Backend root URL, endpoint paths are appended to it"`
	Timeout time.Duration `yaml:"timeout" toml:"timeout" env:"CCXC_REQUEST_TIMEOUT" env-default:"15s" env-description:"Per-request timeout"`
}

// StorageConfig locates the persisted session
type StorageConfig struct {
	DataDir string `yaml:"data_dir" toml:"data_dir" env:"CCXC_DATA_DIR" env-description:"Directory holding storage.json, defaults to ~/.ccxc"`
}

// DeviceConfig feeds the host fingerprint probe
type DeviceConfig struct {
	UserAgent    string `yaml:"user_agent" toml:"user_agent" env:"CCXC_USER_AGENT" env-description:"User agent sent and fingerprinted"`
	ScreenWidth  int    `yaml:"screen_width" toml:"screen_width" env:"CCXC_SCREEN_WIDTH" env-default:"0" env-description:"Reported screen width in pixels"`
	ScreenHeight int    `yaml:"screen_height" toml:"screen_height" env:"CCXC_SCREEN_HEIGHT" env-default:"0" env-description:"Reported screen height in pixels"`
}

type LogConfig struct {
	Level string `yaml:"level" toml:"level" env:"CCXC_LOG_LEVEL" env-default:"info" env-description:"debug, info, warn or error"`
}

// Config is the client configuration
type Config struct {
	Backend BackendConfig `yaml:"backend" toml:"backend"`
	Storage StorageConfig `yaml:"storage" toml:"storage"`
	Device  DeviceConfig  `yaml:"device" toml:"device"`
	Log     LogConfig     `yaml:"log" toml:"log"`
}

var logLevels = []string{"debug", "info", "warn", "error"}

// Load reads the configuration from the environment
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read environment: %w", err)
	}
	return finish(cfg)
}

// LoadFile reads a yaml, toml, edn or env file; environment variables
// override the file
func LoadFile(path string) (Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(ExpandHome(path), &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return finish(cfg)
}

func finish(cfg Config) (Config, error) {
	cfg.Backend.Root = strings.TrimRight(cfg.Backend.Root, "/")
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = DefaultDataDir()
	}
	cfg.Storage.DataDir = ExpandHome(cfg.Storage.DataDir)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the backend URL, the timeout, the screen size and the
// log level
func (c Config) Validate() error {
	return Validate(func() ValidationErrors {
		return CollectErrors(
			RequireHTTPURL("CCXC_BACKEND_ROOT", c.Backend.Root),
			RequirePositiveDuration("CCXC_REQUEST_TIMEOUT", c.Backend.Timeout),
			RequireNonNegative("CCXC_SCREEN_WIDTH", c.Device.ScreenWidth),
			RequireNonNegative("CCXC_SCREEN_HEIGHT", c.Device.ScreenHeight),
			RequireOneOf("CCXC_LOG_LEVEL", c.Log.Level, logLevels),
		)
	})
}

// SlogLevel returns the configured level, info when unrecognised
func (c LogConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Usage describes every environment variable
func Usage() string {
	var cfg Config
	text, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return ""
	}
	return text
}
