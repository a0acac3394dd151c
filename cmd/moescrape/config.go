package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"moescrape/pkg/config"
	"moescrape/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage Moescrape configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (MOESCRAPE_*)
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as 'moescrape.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the current configuration including values from all sources:
  - Command line flags
  - Environment variables
  - Configuration file
  - Default values`,
	Run: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Value types and ranges
  - Path accessibility`,
	Run: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

// exampleConfig is the template written by 'moescrape config init'.
// Durations use Go syntax (30s, 100ms) so the file round-trips
// through the YAML loader.
const exampleConfig = `# Moescrape Configuration File
#
# This file contains all available configuration options.
# You can also use environment variables prefixed with MOESCRAPE_
# For example: MOESCRAPE_MAX_RATE, MOESCRAPE_OUTPUT_FILE

# API endpoints
api:
  # Base URL of the Moescape API
  base_url: "https://api.moescape.ai"

  # Base URL of the public site (used for post links in the output)
  site_url: "https://moescape.ai"

  # User agent string (optional)
  # Leave empty to use default
  user_agent: ""

  # Request timeout
  timeout: 30s

# Rate limiting configuration
rate_limit:
  # Requests per second at the start of a run
  initial_rate: 1.0

  # Hard ceiling on requests per second
  # Range: up to 2.0
  max_rate: 2.0

  # How aggressively the rate adapts after each response
  adapt_factor: 1.1

  # Upper bound of the random jitter added to each wait
  max_jitter: 100ms

# Retry configuration
retry:
  # Maximum fetch attempts per request
  # Range: 1-10
  max_attempts: 5

  # Initial backoff duration
  base_delay: 2s

  # Maximum backoff duration
  max_delay: 60s

# Scan configuration
scan:
  # Posts fetched per pagination page
  post_batch_size: 500

  # Comments fetched per post
  comment_limit: 500

  # Hard cap on posts per run
  max_posts: 2000

# Output configuration
output:
  # Output CSV file
  file: "moescape_comments.csv"

  # IANA timezone used for comment timestamps
  timezone: "Europe/Helsinki"

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Log file path (optional)
  # Leave empty to log to stderr only
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = "moescrape.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Adjust the configuration to taste")
	fmt.Println("2. Run 'moescrape config validate' to check the configuration")
	fmt.Println("3. Start scanning with 'moescrape scan <user-id>'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (MOESCRAPE_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (not specified)")
	}
	fmt.Println("4. Default values")
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	if configFile == "" {
		possiblePaths := []string{
			"moescrape.yaml",
			"moescrape.yml",
			".moescrape.yaml",
			".moescrape.yml",
			filepath.Join(os.Getenv("HOME"), ".moescrape.yaml"),
			filepath.Join(os.Getenv("HOME"), ".config", "moescrape", "config.yaml"),
		}

		for _, path := range possiblePaths {
			if _, err := os.Stat(path); err == nil {
				configFile = path
				break
			}
		}

		if configFile == "" {
			ui.PrintError("No configuration file found", "Specify a file with --config flag")
			os.Exit(1)
		}
	}

	ui.PrintInfo("Validating configuration", configFile)

	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		os.Exit(1)
	}

	var errors []string

	if cfg.Output.File != "" {
		dir := filepath.Dir(cfg.Output.File)
		if dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				errors = append(errors, fmt.Sprintf("Cannot create output directory: %v", err))
			}
		}
	}

	if cfg.Logging.File != "" {
		dir := filepath.Dir(cfg.Logging.File)
		if err := os.MkdirAll(dir, 0755); err != nil {
			errors = append(errors, fmt.Sprintf("Cannot create log directory: %v", err))
		}
	}

	if len(errors) > 0 {
		ui.PrintError("Configuration has errors:", "")
		for _, err := range errors {
			fmt.Printf("  - %s\n", err)
		}
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  API base URL: %s\n", cfg.API.BaseURL)
	fmt.Printf("  Max rate: %.2f requests/second\n", cfg.RateLimit.MaxRate)
	fmt.Printf("  Max attempts: %d\n", cfg.Retry.MaxAttempts)
	fmt.Printf("  Output file: %s\n", cfg.Output.File)
	fmt.Printf("  Timezone: %s\n", cfg.Output.Timezone)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
}
