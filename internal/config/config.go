package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend names
const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

// Config holds user preferences
type Config struct {
	Backend   string `yaml:"backend" json:"backend"`       // local or remote
	ServerURL string `yaml:"server_url" json:"server_url"` // Base URL of dayboard-server
	DBPath    string `yaml:"db_path" json:"db_path"`       // SQLite file for the local backend

	Locale        string `yaml:"locale" json:"locale"`                 // Weekday names: en or ko
	DebounceMS    int    `yaml:"debounce_ms" json:"debounce_ms"`       // Autosave delay
	PreviewLimit  int    `yaml:"preview_limit" json:"preview_limit"`   // Entries in upcoming panels
	ConfirmDelete bool   `yaml:"confirm_delete" json:"confirm_delete"` // Require confirmation for delete

	// Logging configuration
	LogLevel   string `yaml:"log_level" json:"log_level"`     // Log level: DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file" json:"log_file"`       // Path to log file
	LogConsole bool   `yaml:"log_console" json:"log_console"` // Enable console logging
}

// Dir returns the dayboard home directory, ~/.dayboard unless DAYBOARD_HOME is set
func Dir() (string, error) {
	if dir := os.Getenv("DAYBOARD_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".dayboard"), nil
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	dir, _ := Dir()
	logPath, dbPath := "", ""
	if dir != "" {
		logPath = filepath.Join(dir, "logs", "dayboard.log")
		dbPath = filepath.Join(dir, "dayboard.db")
	}

	return &Config{
		Backend:       BackendLocal,
		DBPath:        dbPath,
		Locale:        "en",
		DebounceMS:    500,
		PreviewLimit:  3,
		ConfirmDelete: true,
		LogLevel:      "INFO",
		LogFile:       logPath,
	}
}

// applyEnv overrides settings from DAYBOARD_* variables
func (c *Config) applyEnv() {
	c.Backend = getEnv("DAYBOARD_BACKEND", c.Backend)
	c.ServerURL = getEnv("DAYBOARD_SERVER_URL", c.ServerURL)
	c.DBPath = getEnv("DAYBOARD_DB_PATH", c.DBPath)
	c.Locale = getEnv("DAYBOARD_LOCALE", c.Locale)
	c.DebounceMS = getEnvInt("DAYBOARD_DEBOUNCE_MS", c.DebounceMS)
	c.PreviewLimit = getEnvInt("DAYBOARD_PREVIEW_LIMIT", c.PreviewLimit)
	c.LogLevel = getEnv("DAYBOARD_LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnv("DAYBOARD_LOG_FILE", c.LogFile)
	if v := os.Getenv("DAYBOARD_LOG_CONSOLE"); v != "" {
		c.LogConsole = v == "true"
	}
}

// Debounce returns the autosave delay
func (c *Config) Debounce() time.Duration {
	if c.DebounceMS <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// Validate checks the settings that cannot be defaulted
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendLocal:
		if c.DBPath == "" {
			return fmt.Errorf("db_path is required for the local backend")
		}
	case BackendRemote:
		if c.ServerURL == "" {
			return fmt.Errorf("server_url is required for the remote backend")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// Path returns the config file location
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load loads config from ~/.dayboard/config.yaml and the environment
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads config from path. A missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// Save saves config to ~/.dayboard/config.yaml
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes config to path
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
