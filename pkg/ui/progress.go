package ui

import (
	"fmt"
	"strings"
	"time"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
	barWidth      = 20
)

// ScanProgress tracks and renders the state of a running scan
type ScanProgress struct {
	RowsExtracted int
	fraction      float64
	startTime     time.Time
}

// NewScanProgress creates a progress tracker starting now
func NewScanProgress() *ScanProgress {
	return &ScanProgress{startTime: time.Now()}
}

// Update records the completed fraction of the run, clamped to [0,1]
func (sp *ScanProgress) Update(fraction float64) {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	sp.fraction = fraction
}

// AddRows records newly extracted comment rows
func (sp *ScanProgress) AddRows(n int) {
	sp.RowsExtracted += n
}

// Bar returns the rendered progress bar, e.g. "[████░░...] 20%"
func (sp *ScanProgress) Bar() string {
	filled := int(sp.fraction * barWidth)
	bar := strings.Repeat(ProgressBar, filled) +
		strings.Repeat(ProgressEmpty, barWidth-filled)
	return fmt.Sprintf("[%s] %3.0f%%", bar, sp.fraction*100)
}

// Elapsed returns the time since tracking started
func (sp *ScanProgress) Elapsed() time.Duration {
	return time.Since(sp.startTime)
}

// Print renders the current progress on the same terminal line
func (sp *ScanProgress) Print() {
	if Quiet {
		return
	}
	fmt.Printf("\r%s %s | rows: %d",
		Magenta("[SCANNING]"),
		sp.Bar(),
		sp.RowsExtracted)
}

// Finish moves past the in-place progress line
func (sp *ScanProgress) Finish() {
	if Quiet {
		return
	}
	fmt.Println()
}
