// Package config provides configuration handling for the capture and
// wardriving pipelines.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/irctrakz/ghostcap/pkg/core"
	"github.com/irctrakz/ghostcap/pkg/logging"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "GHOSTCAP_"

// Config represents the complete configuration.
type Config struct {
	// Capture contains the pcap session configuration.
	Capture core.CaptureConfig `json:"capture" yaml:"capture"`

	// Wardriving contains the CSV session configuration.
	Wardriving core.WardrivingConfig `json:"wardriving" yaml:"wardriving"`

	// Serial contains the fallback transport configuration.
	Serial core.SerialConfig `json:"serial" yaml:"serial"`

	// Logging contains the logging configuration.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Metrics contains the sink metrics reporter configuration.
	Metrics core.MetricsConfig `json:"metrics" yaml:"metrics"`
}

// LoggingConfig contains configuration for logging.
type LoggingConfig struct {
	// Level is the logging level (debug, info, warn, error).
	Level string `json:"level" yaml:"level"`

	// File is the log file path.
	File string `json:"file" yaml:"file"`

	// MaxSize is the maximum size of the log file in megabytes.
	MaxSize int `json:"maxSize" yaml:"maxSize"`

	// MaxBackups is the maximum number of old log files to retain.
	MaxBackups int `json:"maxBackups" yaml:"maxBackups"`

	// MaxAge is the maximum number of days to retain old log files.
	MaxAge int `json:"maxAge" yaml:"maxAge"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Capture: core.CaptureConfig{
			Dir:        "/mnt/ghostesp/pcaps",
			BaseName:   "capture",
			BufferSize: 4096,
		},
		Wardriving: core.WardrivingConfig{
			Dir:        "/mnt/ghostesp/gps",
			BaseName:   "gps_data",
			BufferSize: 4096,
			WarnEvery:  20,
			InfoEvery:  2,
		},
		Serial: core.SerialConfig{
			Baud:       115200,
			Stdout:     false,
			MaxClients: 1,
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       "",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     7,
		},
		Metrics: core.MetricsConfig{
			Interval: "",
			Format:   "text",
		},
	}
}

// LoadFromFile loads configuration from a file.
func LoadFromFile(path string, config *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Determine file format based on extension
	switch {
	case strings.HasSuffix(path, ".json"):
		if err := json.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse JSON config: %w", err)
		}
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse YAML config: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config file format: %s", path)
	}

	return nil
}

// LoadFromEnv loads configuration from GHOSTCAP_* environment variables.
// Malformed numbers are ignored.
func LoadFromEnv(config *Config) {
	// Capture config
	envString("CAPTURE_DIR", &config.Capture.Dir)
	envString("CAPTURE_BASE_NAME", &config.Capture.BaseName)
	envInt("CAPTURE_BUFFER_SIZE", &config.Capture.BufferSize)

	// Wardriving config
	envString("WARDRIVING_DIR", &config.Wardriving.Dir)
	envString("WARDRIVING_BASE_NAME", &config.Wardriving.BaseName)
	envInt("WARDRIVING_BUFFER_SIZE", &config.Wardriving.BufferSize)
	envInt("WARDRIVING_WARN_EVERY", &config.Wardriving.WarnEvery)
	envInt("WARDRIVING_INFO_EVERY", &config.Wardriving.InfoEvery)
	if val := os.Getenv(EnvPrefix + "WARDRIVING_SEED"); val != "" {
		if seed, err := strconv.ParseInt(val, 10, 64); err == nil {
			config.Wardriving.Seed = seed
		}
	}

	// Serial config
	envString("SERIAL_PORT", &config.Serial.Port)
	envInt("SERIAL_BAUD", &config.Serial.Baud)
	if val := os.Getenv(EnvPrefix + "SERIAL_STDOUT"); val != "" {
		config.Serial.Stdout = val == "true" || val == "1"
	}
	envString("SERIAL_LISTEN", &config.Serial.Listen)
	envInt("SERIAL_MAX_CLIENTS", &config.Serial.MaxClients)

	// Logging config
	envString("LOGGING_LEVEL", &config.Logging.Level)
	envString("LOGGING_FILE", &config.Logging.File)
	envInt("LOGGING_MAX_SIZE", &config.Logging.MaxSize)
	envInt("LOGGING_MAX_BACKUPS", &config.Logging.MaxBackups)
	envInt("LOGGING_MAX_AGE", &config.Logging.MaxAge)

	// Metrics config
	envString("METRICS_INTERVAL", &config.Metrics.Interval)
	envString("METRICS_FORMAT", &config.Metrics.Format)
}

func envString(key string, dst *string) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		*dst = val
	}
}

func envInt(key string, dst *int) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*dst = n
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	// Validate Capture config
	if c.Capture.BaseName == "" {
		return fmt.Errorf("capture base name cannot be empty")
	}
	if strings.ContainsRune(c.Capture.BaseName, '/') {
		return fmt.Errorf("capture base name must not contain '/': %s", c.Capture.BaseName)
	}
	if c.Capture.BufferSize <= 0 {
		return fmt.Errorf("invalid capture buffer size: %d", c.Capture.BufferSize)
	}

	// Validate Wardriving config
	if c.Wardriving.BaseName == "" {
		return fmt.Errorf("wardriving base name cannot be empty")
	}
	if strings.ContainsRune(c.Wardriving.BaseName, '/') {
		return fmt.Errorf("wardriving base name must not contain '/': %s", c.Wardriving.BaseName)
	}
	if c.Wardriving.BufferSize <= 0 {
		return fmt.Errorf("invalid wardriving buffer size: %d", c.Wardriving.BufferSize)
	}
	if c.Wardriving.WarnEvery < 0 || c.Wardriving.InfoEvery < 0 {
		return fmt.Errorf("sampling rates cannot be negative")
	}

	// Validate Serial config
	if c.Serial.Port != "" && c.Serial.Baud <= 0 {
		return fmt.Errorf("invalid serial baud rate: %d", c.Serial.Baud)
	}
	if c.Serial.Listen != "" {
		if _, _, err := net.SplitHostPort(c.Serial.Listen); err != nil {
			return fmt.Errorf("invalid serial listen address: %w", err)
		}
	}
	if c.Serial.MaxClients < 0 {
		return fmt.Errorf("invalid serial max clients: %d", c.Serial.MaxClients)
	}

	// Validate Logging config
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// Valid levels
	default:
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}

	// Validate Metrics config
	if c.Metrics.Interval != "" {
		d, err := time.ParseDuration(c.Metrics.Interval)
		if err != nil {
			return fmt.Errorf("invalid metrics interval: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("metrics interval must be positive: %s", c.Metrics.Interval)
		}
	}
	switch c.Metrics.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid metrics format: %s", c.Metrics.Format)
	}

	return nil
}

// MetricsInterval returns the reporter interval, zero when disabled.
func (c *Config) MetricsInterval() time.Duration {
	d, err := time.ParseDuration(c.Metrics.Interval)
	if err != nil {
		return 0
	}
	return d
}

// ApplyLogging applies the logging configuration.
func (c *Config) ApplyLogging() error {
	logging.SetLevel(logging.ParseLevel(c.Logging.Level))

	// Enable file logging if configured
	if c.Logging.File != "" {
		dir, filename := filepath.Split(c.Logging.File)
		if dir == "" {
			dir = "."
		}
		err := logging.EnableFileLogging(
			dir,
			filename,
			c.Logging.MaxSize,
			c.Logging.MaxBackups,
			c.Logging.MaxAge,
		)
		if err != nil {
			return fmt.Errorf("failed to enable file logging: %w", err)
		}
	}

	return nil
}

// SaveToFile saves the configuration to a file.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	// Determine file format based on extension
	switch {
	case strings.HasSuffix(path, ".json"):
		data, err = json.MarshalIndent(c, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config to JSON: %w", err)
		}
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		data, err = yaml.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to marshal config to YAML: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config file format: %s", path)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
