package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the Moescape scraper
type Config struct {
	// API endpoint settings
	API APIConfig `yaml:"api" json:"api"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Retry behavior for transient fetch failures
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Scan settings
	Scan ScanConfig `yaml:"scan" json:"scan"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// APIConfig holds Moescape API settings
type APIConfig struct {
	BaseURL   string        `yaml:"base_url" json:"base_url"`
	SiteURL   string        `yaml:"site_url" json:"site_url"`
	UserAgent string        `yaml:"user_agent" json:"user_agent"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
}

// RateLimitConfig holds adaptive rate controller configuration
type RateLimitConfig struct {
	InitialRate float64       `yaml:"initial_rate" json:"initial_rate"`
	MaxRate     float64       `yaml:"max_rate" json:"max_rate"`
	AdaptFactor float64       `yaml:"adapt_factor" json:"adapt_factor"`
	MaxJitter   time.Duration `yaml:"max_jitter" json:"max_jitter"`
}

// RetryConfig holds retry/backoff configuration for fetches
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay" json:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay" json:"max_delay"`
}

// ScanConfig holds pagination and comment fetch settings
type ScanConfig struct {
	PostBatchSize int `yaml:"post_batch_size" json:"post_batch_size"`
	CommentLimit  int `yaml:"comment_limit" json:"comment_limit"`
	MaxPosts      int `yaml:"max_posts" json:"max_posts"`
}

// OutputConfig holds export settings
type OutputConfig struct {
	File     string `yaml:"file" json:"file"`
	Timezone string `yaml:"timezone" json:"timezone"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "https://api.moescape.ai",
			SiteURL:   "https://moescape.ai",
			UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
			Timeout:   30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			InitialRate: 1.0,
			MaxRate:     2.0,
			AdaptFactor: 1.1,
			MaxJitter:   100 * time.Millisecond,
		},
		Retry: RetryConfig{
			MaxAttempts: 5,
			BaseDelay:   2 * time.Second,
			MaxDelay:    60 * time.Second,
		},
		Scan: ScanConfig{
			PostBatchSize: 500,
			CommentLimit:  500,
			MaxPosts:      2000,
		},
		Output: OutputConfig{
			File:     "moescape_comments.csv",
			Timezone: "Europe/Helsinki",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if baseURL := os.Getenv("MOESCRAPE_BASE_URL"); baseURL != "" {
		c.API.BaseURL = baseURL
	}
	if userAgent := os.Getenv("MOESCRAPE_USER_AGENT"); userAgent != "" {
		c.API.UserAgent = userAgent
	}

	if rate := os.Getenv("MOESCRAPE_MAX_RATE"); rate != "" {
		var val float64
		fmt.Sscanf(rate, "%f", &val)
		if val > 0 {
			c.RateLimit.MaxRate = val
		}
	}

	if attempts := os.Getenv("MOESCRAPE_MAX_ATTEMPTS"); attempts != "" {
		var val int
		fmt.Sscanf(attempts, "%d", &val)
		if val > 0 {
			c.Retry.MaxAttempts = val
		}
	}

	if outFile := os.Getenv("MOESCRAPE_OUTPUT_FILE"); outFile != "" {
		c.Output.File = outFile
	}

	if logLevel := os.Getenv("MOESCRAPE_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	// Check in order of precedence
	locations := []string{
		".moescrape.yaml",
		".moescrape.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "moescrape", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "moescrape", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".moescrape.yaml"),
		filepath.Join(os.Getenv("HOME"), ".moescrape.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("API base URL is required"))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, errors.New("API timeout must be positive"))
	}

	if c.RateLimit.InitialRate <= 0 {
		errs = append(errs, errors.New("initial rate must be positive"))
	}
	if c.RateLimit.MaxRate <= 0 {
		errs = append(errs, errors.New("max rate must be positive"))
	}
	if c.RateLimit.InitialRate > c.RateLimit.MaxRate {
		errs = append(errs, errors.New("initial rate cannot exceed max rate"))
	}
	if c.RateLimit.AdaptFactor <= 1.0 {
		errs = append(errs, errors.New("adapt factor must be greater than 1"))
	}

	if c.Retry.MaxAttempts <= 0 {
		errs = append(errs, errors.New("max attempts must be positive"))
	}
	if c.Retry.BaseDelay <= 0 {
		errs = append(errs, errors.New("base delay must be positive"))
	}
	if c.Retry.MaxDelay < c.Retry.BaseDelay {
		errs = append(errs, errors.New("max delay cannot be less than base delay"))
	}

	if c.Scan.PostBatchSize <= 0 || c.Scan.PostBatchSize > 500 {
		errs = append(errs, errors.New("post batch size must be between 1 and 500"))
	}
	if c.Scan.CommentLimit <= 0 || c.Scan.CommentLimit > 500 {
		errs = append(errs, errors.New("comment limit must be between 1 and 500"))
	}
	if c.Scan.MaxPosts <= 0 || c.Scan.MaxPosts > 2000 {
		errs = append(errs, errors.New("max posts must be between 1 and 2000"))
	}

	if c.Output.File == "" {
		errs = append(errs, errors.New("output file is required"))
	}
	if c.Output.Timezone == "" {
		errs = append(errs, errors.New("output timezone is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if rate, ok := flags["max-rate"].(float64); ok && rate > 0 {
		c.RateLimit.MaxRate = rate
	}
	if attempts, ok := flags["max-attempts"].(int); ok && attempts > 0 {
		c.Retry.MaxAttempts = attempts
	}
	if outFile, ok := flags["output"].(string); ok && outFile != "" {
		c.Output.File = outFile
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".moescrape.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
