package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"moescrape/pkg/config"
	"moescrape/pkg/export"
	"moescrape/pkg/logger"
	"moescrape/pkg/moescape"
	"moescrape/pkg/scraper"
	"moescrape/pkg/ui"
	"moescrape/pkg/ui/tui"
)

var (
	// Scan command flags
	numPosts   int
	scanOrder  string
	outputFile string
	maxRate    float64
	maxRetries int
	useTUI     bool
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <user-id>",
	Short: "Collect the comments on a Moescape user's posts",
	Long: `Collect the comments left on a Moescape user's posts and write them
to a CSV file.

Posts are paginated lazily, so only as many pages as the --posts cap
requires are fetched. Replies are flattened under their parent comment
with a "↳ " prefix, and timestamps are rendered in Helsinki time.`,
	Example: `  # Scan the 50 newest posts with default settings
  moescrape scan 12345 --posts 50

  # Oldest posts first, custom output file
  moescrape scan 12345 --posts 100 --order oldest --output comments.csv

  # Watch the scan in the interactive terminal UI
  moescrape scan 12345 --posts 50 --tui

  # Slow down for a cautious run
  moescrape scan 12345 --posts 50 --max-rate 0.5`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runScan(cmd, args)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().IntVarP(&numPosts, "posts", "n", 50, "number of posts to scan (1-2000)")
	scanCmd.Flags().StringVar(&scanOrder, "order", "newest", "post processing order (newest, oldest)")
	scanCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output CSV file (default: moescape_comments.csv)")
	scanCmd.Flags().Float64Var(&maxRate, "max-rate", 0, "maximum requests per second")
	scanCmd.Flags().IntVar(&maxRetries, "max-retries", 0, "maximum fetch attempts per request")
	scanCmd.Flags().BoolVar(&useTUI, "tui", false, "use interactive terminal UI with real-time progress")
}

func runScan(cmd *cobra.Command, args []string) {
	userID := strings.TrimSpace(args[0])

	if !useTUI {
		ui.PrintInfo("Target User", userID)
	}

	// Build flags map from command line
	flags := make(map[string]interface{})
	if outputFile != "" {
		flags["output"] = outputFile
	}
	if maxRate > 0 {
		flags["max-rate"] = maxRate
	}
	if maxRetries > 0 {
		flags["max-attempts"] = maxRetries
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	// Load configuration
	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	// Initialize logger
	logger.Initialize(&cfg.Logging)
	logger.WithField("version", version).Info("Moescrape starting")

	req := scraper.ScanRequest{
		UserID:   userID,
		NumPosts: numPosts,
		Order:    scraper.Order(scanOrder),
	}

	if useTUI {
		runScanTUI(cfg, req)
		return
	}

	runScanPlain(cfg, req)
}

// runScanPlain runs the scan with an in-place progress line
func runScanPlain(cfg *config.Config, req scraper.ScanRequest) {
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

	result, err := s.Scan(req)
	progress.Finish()
	if err != nil {
		logger.WithError(err).WithField("user_id", req.UserID).Error("Scan failed")
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

	logger.WithFields(map[string]interface{}{
		"user_id": req.UserID,
		"posts":   len(result.Posts),
		"rows":    len(result.Rows),
	}).Info("Scan completed successfully")

	ui.PrintSuccess("[SCAN COMPLETED SUCCESSFULLY]")
	ui.PrintInfo("Rows extracted", strconv.Itoa(len(result.Rows)))
	ui.PrintInfo("Output file", cfg.Output.File)
}

// runScanTUI runs the scan inside the interactive terminal UI
func runScanTUI(cfg *config.Config, req scraper.ScanRequest) {
	terminal := tui.New(req.UserID, cfg.RateLimit.MaxRate)

	scanDone := make(chan error)
	go func() {
		s, err := scraper.New(cfg)
		if err != nil {
			terminal.ScanFailed(err)
			scanDone <- err
			return
		}

		terminal.ScanStarted(req.NumPosts)
		s.SetPostDone(func(_ moescape.Post, rows []scraper.CommentRow) {
			terminal.PostDone(rows)
			terminal.UpdateRate(s.Rate())
		})

		result, err := s.Scan(req)
		if err != nil {
			terminal.ScanFailed(err)
			scanDone <- err
			return
		}

		for _, warning := range result.Warnings {
			terminal.LogWarning("%s", warning)
		}

		if result.Status != "" {
			terminal.LogWarning("%s", result.Status)
		}

		if err := export.WriteCSVFile(cfg.Output.File, result.Rows); err != nil {
			terminal.ScanFailed(err)
			scanDone <- err
			return
		}

		terminal.LogSuccess("wrote %d rows to %s", len(result.Rows), cfg.Output.File)
		terminal.ScanComplete(result.Rows)
		scanDone <- nil
	}()

	tuiDone := make(chan error)
	go func() {
		tuiDone <- terminal.Start()
	}()

	// The scan side failing terminates the UI; the user quitting the
	// UI abandons the scan.
	select {
	case err := <-scanDone:
		if err != nil {
			<-tuiDone
			logger.WithError(err).WithField("user_id", req.UserID).Error("Scan failed")
			os.Exit(1)
		}
		// Leave the TUI open so the results can be reviewed
		if err := <-tuiDone; err != nil {
			logger.WithError(err).Error("TUI failed")
			os.Exit(1)
		}
	case err := <-tuiDone:
		if err != nil {
			logger.WithError(err).Error("TUI failed")
			os.Exit(1)
		}
	}

	logger.WithField("user_id", req.UserID).Info("Scan completed")
}
