package zonemerge

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "zonemerge.yaml"

// Config contains all configuration options for the zonemerge engine
type Config struct {
	// LogLevel controls the verbosity of logging (debug, info, warn, error, off)
	LogLevel string `yaml:"log_level"`
	// MaxTemplateSize is the largest template file or request body accepted, in bytes. 0 means no limit.
	MaxTemplateSize int64 `yaml:"max_template_size"`
	// Workers is the number of merges a batch runs in parallel.
	Workers int `yaml:"workers"`
	// ListenAddr is the address the HTTP API binds to.
	ListenAddr string `yaml:"listen_addr"`
	// StrictMode rejects unknown fields in merge input data
	StrictMode bool `yaml:"strict_mode"`
}

var (
	globalConfig      *Config
	globalConfigMutex sync.RWMutex
	configOnce        sync.Once
)

func init() {
	// Initialize global config from environment on first use
	configOnce.Do(func() {
		globalConfig = ConfigFromEnvironment()
	})
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		LogLevel:        "info",
		MaxTemplateSize: 10 << 20,
		Workers:         4,
		ListenAddr:      ":8080",
		StrictMode:      false,
	}
}

// ConfigFromEnvironment creates a configuration from environment variables
func ConfigFromEnvironment() *Config {
	config := DefaultConfig()
	applyEnvironment(config)
	return config
}

// applyEnvironment overlays ZONEMERGE_* variables onto config.
// Only non-empty, parseable values override the current setting.
func applyEnvironment(config *Config) {
	// ZONEMERGE_LOG_LEVEL
	if val := os.Getenv("ZONEMERGE_LOG_LEVEL"); val != "" {
		config.LogLevel = val
	}

	// ZONEMERGE_MAX_TEMPLATE_SIZE
	if val := os.Getenv("ZONEMERGE_MAX_TEMPLATE_SIZE"); val != "" {
		if size, err := strconv.ParseInt(val, 10, 64); err == nil {
			config.MaxTemplateSize = size
		}
	}

	// ZONEMERGE_WORKERS
	if val := os.Getenv("ZONEMERGE_WORKERS"); val != "" {
		if workers, err := strconv.Atoi(val); err == nil {
			config.Workers = workers
		}
	}

	// ZONEMERGE_LISTEN_ADDR
	if val := os.Getenv("ZONEMERGE_LISTEN_ADDR"); val != "" {
		config.ListenAddr = val
	}

	// ZONEMERGE_STRICT_MODE
	if val := os.Getenv("ZONEMERGE_STRICT_MODE"); val != "" {
		config.StrictMode = parseBool(val)
	}
}

// LoadConfigFile returns a Config built from defaults, then the YAML file at
// path, then the environment. A missing file is not an error.
func LoadConfigFile(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("config yaml: read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("config yaml: parse %s: %w", path, err)
		}
	}

	applyEnvironment(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}
	return config, nil
}

// NewConfigWithDefaults creates a new configuration with defaults applied to unset fields
func NewConfigWithDefaults(overrides *Config) *Config {
	defaults := DefaultConfig()

	if overrides == nil {
		return defaults
	}

	// Create a copy of the overrides
	config := *overrides

	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}

	if config.Workers == 0 {
		config.Workers = defaults.Workers
	}

	if config.ListenAddr == "" {
		config.ListenAddr = defaults.ListenAddr
	}

	return &config
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.MaxTemplateSize < 0 {
		return errors.New("max template size cannot be negative")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"off":   true,
	}

	if !validLogLevels[c.LogLevel] {
		return errors.New("invalid log level: " + c.LogLevel)
	}

	if c.Workers <= 0 {
		return errors.New("workers must be positive")
	}

	return nil
}

// GetGlobalConfig returns the global configuration
func GetGlobalConfig() *Config {
	globalConfigMutex.RLock()
	defer globalConfigMutex.RUnlock()

	if globalConfig == nil {
		return DefaultConfig()
	}

	// Return a copy to prevent modification
	configCopy := *globalConfig
	return &configCopy
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config *Config) {
	globalConfigMutex.Lock()
	globalConfig = config
	globalConfigMutex.Unlock()

	// Update logger based on new config (outside the lock to avoid deadlock)
	UpdateLoggerFromConfig()
}

// parseBool parses a boolean value from a string
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
