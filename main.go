package main

import (
	"flag"
	"os"
	"strconv"
	"strings"

	"moescrape/pkg/config"
	"moescrape/pkg/export"
	"moescrape/pkg/logger"
	"moescrape/pkg/moescape"
	"moescrape/pkg/scraper"
	"moescrape/pkg/ui"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	numPosts   = flag.Int("posts", 50, "Number of posts to scan")
	scanOrder  = flag.String("order", "newest", "Post processing order (newest, oldest)")
	outputFile = flag.String("output", "", "Output CSV file")
	maxRate    = flag.Float64("max-rate", 0, "Maximum requests per second")
)

func main() {
	flag.Parse()

	// Show ASCII logo
	ui.PrintLogo()

	// Get user ID from args
	args := flag.Args()
	if len(args) != 1 {
		ui.PrintError("Usage: moescrape [flags] <moescape_user_id>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	userID := strings.TrimSpace(args[0])
	ui.PrintInfo("Target User", userID)

	// Build command line flags map
	flags := make(map[string]interface{})
	if *outputFile != "" {
		flags["output"] = *outputFile
	}
	if *maxRate > 0 {
		flags["max-rate"] = *maxRate
	}

	// Load configuration
	cfg, err := config.Load(*configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	// Initialize logger
	logger.Initialize(&cfg.Logging)
	logger.WithField("user_id", userID).Info("Starting comment scan")

	ui.PrintHighlight("[INITIATING COMMENT SCAN]")

	s, err := scraper.New(cfg)
	if err != nil {
		ui.PrintError("Failed to initialize scraper", err.Error())
		os.Exit(1)
	}

	progress := ui.NewScanProgress()
	s.SetPostDone(func(_ moescape.Post, rows []scraper.CommentRow) {
		progress.AddRows(len(rows))
	})
	s.SetProgress(func(fraction float64) {
		progress.Update(fraction)
		progress.Print()
	})

	result, err := s.Scan(scraper.ScanRequest{
		UserID:   userID,
		NumPosts: *numPosts,
		Order:    scraper.Order(*scanOrder),
	})
	progress.Finish()
	if err != nil {
		logger.WithError(err).WithField("user_id", userID).Error("Scan failed")
		ui.PrintError("SCAN FAILED", err.Error())
		os.Exit(1)
	}

	for _, warning := range result.Warnings {
		ui.PrintWarning(warning)
	}

	if result.Status != "" {
		ui.PrintWarning(result.Status)
		return
	}

	if err := export.WriteCSVFile(cfg.Output.File, result.Rows); err != nil {
		logger.WithError(err).Error("CSV export failed")
		ui.PrintError("EXPORT FAILED", err.Error())
		os.Exit(1)
	}

	logger.WithField("rows", len(result.Rows)).Info("Scan completed successfully")
	ui.PrintSuccess("[SCAN COMPLETED SUCCESSFULLY]")
	ui.PrintInfo("Rows extracted", strconv.Itoa(len(result.Rows)))
	ui.PrintInfo("Output file", cfg.Output.File)
}
