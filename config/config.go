package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const appDirName = "timetracker"

// Config is the application configuration. Values come from DefaultConfig,
// then the TOML file, then the environment (TRACKER_*).
type Config struct {
	DataFile               string        `toml:"data_file" env:"TRACKER_DATA_FILE" validate:"required"`
	LogLevel               string        `toml:"log_level" env:"TRACKER_LOG_LEVEL" validate:"oneof=debug info warn error silent"`
	LogFile                string        `toml:"log_file" env:"TRACKER_LOG_FILE"`
	AllowMultipleInstances bool          `toml:"allow_multiple_instances" env:"TRACKER_ALLOW_MULTIPLE_INSTANCES"`
	Web                    WebConfig     `toml:"web" envPrefix:"TRACKER_WEB_"`
	Metrics                MetricsConfig `toml:"metrics" envPrefix:"TRACKER_METRICS_"`
	Export                 ExportConfig  `toml:"export" envPrefix:"TRACKER_EXPORT_"`

	logFile *os.File
	logger  *logrus.Logger
}

type WebConfig struct {
	Addr        string `toml:"addr" env:"ADDR" validate:"hostname_port"`
	OpenBrowser bool   `toml:"open_browser" env:"OPEN_BROWSER"`
}

type MetricsConfig struct {
	Enabled bool   `toml:"enabled" env:"ENABLED"`
	Path    string `toml:"path" env:"PATH" validate:"required,startswith=/"`
}

type ExportConfig struct {
	SQLiteDriver string `toml:"sqlite_driver" env:"SQLITE_DRIVER" validate:"oneof=sqlite sqlite3"`
}

// AppDir is the per-user directory holding the data and config files.
func AppDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, appDirName)
}

// DefaultConfigPath returns <user config dir>/timetracker/config.toml.
func DefaultConfigPath() string {
	return filepath.Join(AppDir(), "config.toml")
}

func DefaultConfig() *Config {
	return &Config{
		DataFile: filepath.Join(AppDir(), "employees.csv"),
		LogLevel: "info",
		Web: WebConfig{
			Addr:        "127.0.0.1:8080",
			OpenBrowser: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Export: ExportConfig{
			SQLiteDriver: "sqlite",
		},
	}
}

// LoadEnv loads the env files that exist and returns how many it found.
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// Load builds the configuration. An empty path means DefaultConfigPath; a
// missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	c := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, c); err != nil {
			return nil, errors.Wrapf(err, "parse config file %s", path)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "stat config file")
	}

	if _, err := LoadEnv([]string{".env", ".env.local"}); err != nil {
		return nil, errors.Wrap(err, "load .env")
	}
	if err := env.Parse(c); err != nil {
		return nil, errors.Wrap(err, "parse environment")
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))

	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := c.initLogger(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (c *Config) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

func (c *Config) initLogger() error {
	logger := logrus.New()
	logger.SetLevel(c.LogrusLogLevel())
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if c.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(c.LogFile), 0o755); err != nil {
			return errors.Wrap(err, "create log directory")
		}
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return errors.Wrap(err, "open log file")
		}
		c.logFile = f
		logger.SetOutput(io.MultiWriter(os.Stderr, f))
	}
	c.logger = logger
	return nil
}

// Logger is never nil; configs not built by Load log to stderr.
func (c *Config) Logger() *logrus.Logger {
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.SetLevel(c.LogrusLogLevel())
	}
	return c.logger
}

// Close releases the log file, if any.
func (c *Config) Close() error {
	if c.logFile == nil {
		return nil
	}
	err := c.logFile.Close()
	c.logFile = nil
	return err
}
