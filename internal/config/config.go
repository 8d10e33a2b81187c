package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"odometer/internal/logger"
	"odometer/internal/odometer"

	"github.com/joho/godotenv"
)

const (
	EnvLogLevel     = "ODOMETER_LOG_LEVEL"
	EnvJSONLogs     = "ODOMETER_JSON_LOGS"
	EnvLogFile      = "ODOMETER_LOG_FILE"
	EnvLogFormat    = "ODOMETER_LOG_FORMAT"
	EnvUpInterval   = "ODOMETER_UP_INTERVAL"
	EnvDownInterval = "ODOMETER_DOWN_INTERVAL"
	EnvStart        = "ODOMETER_START"
)

// DefaultEnvFile is read at startup when present
const DefaultEnvFile = ".env"

// Log backends
const (
	LogFormatZerolog = "zerolog"
	LogFormatSlog    = "slog"
)

// Config holds everything the odometer reads at startup
type Config struct {
	LogLevel string
	JSONLogs bool
	// LogFormat selects the backend, zerolog or slog
	LogFormat string
	// LogFile receives logs when set. The terminal front end only logs
	// when a file is given.
	LogFile string

	// Pause between ticks of a run-up and a run-down
	UpInterval   time.Duration
	DownInterval time.Duration

	// Start is the value shown when the odometer opens
	Start int
}

func Default() Config {
	return Config{
		LogLevel:     "info",
		JSONLogs:     false,
		LogFormat:    LogFormatZerolog,
		UpInterval:   750 * time.Microsecond,
		DownInterval: 500 * time.Microsecond,
	}
}

// FromEnv overlays the process environment on the defaults. Keys missing
// from the environment are looked up in envFile, which may be absent.
func FromEnv(envFile string) (Config, error) {
	fileValues := map[string]string{}
	if envFile != "" {
		values, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			fileValues = values
		case errors.Is(err, fs.ErrNotExist):
		default:
			return Default(), fmt.Errorf("read env file %s: %w", envFile, err)
		}
	}

	return Load(func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return fileValues[key]
	})
}

// Load overlays values looked up through getenv on the defaults
func Load(getenv func(string) string) (Config, error) {
	cfg := Default()

	if v := getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := getenv(EnvJSONLogs); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s: %w", EnvJSONLogs, err)
		}
		cfg.JSONLogs = b
	}
	if v := getenv(EnvLogFile); v != "" {
		cfg.LogFile = v
	}
	if v := getenv(EnvLogFormat); v != "" {
		cfg.LogFormat = v
	}
	if v := getenv(EnvUpInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s: %w", EnvUpInterval, err)
		}
		cfg.UpInterval = d
	}
	if v := getenv(EnvDownInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s: %w", EnvDownInterval, err)
		}
		cfg.DownInterval = d
	}

	if v := getenv(EnvStart); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s: %w", EnvStart, err)
		}
		cfg.Start = n
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat != LogFormatZerolog && c.LogFormat != LogFormatSlog {
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	if c.UpInterval < 0 {
		return fmt.Errorf("up interval must not be negative, got %s", c.UpInterval)
	}
	if c.DownInterval < 0 {
		return fmt.Errorf("down interval must not be negative, got %s", c.DownInterval)
	}
	if c.Start < 0 || c.Start >= odometer.Modulus {
		return fmt.Errorf("start must be between 0 and %d, got %d", odometer.Modulus-1, c.Start)
	}
	return nil
}

// Level returns the parsed log level, falling back to info
func (c Config) Level() logger.LogLevel {
	level, err := logger.ParseLevel(c.LogLevel)
	if err != nil {
		return logger.InfoLevel
	}
	return level
}
