package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"moescrape/pkg/scraper"
)

// TUI represents the terminal user interface
type TUI struct {
	program *tea.Program
	model   *Model
}

// New creates a new TUI instance for scanning one user's posts
func New(userID string, maxRate float64) *TUI {
	model := NewModel(userID, maxRate)
	program := tea.NewProgram(&model, tea.WithAltScreen())

	return &TUI{
		program: program,
		model:   &model,
	}
}

// Start starts the TUI and blocks until the user quits
func (t *TUI) Start() error {
	go func() {
		// Send initial tick to start the spinner
		time.Sleep(100 * time.Millisecond)
		t.program.Send(TickMsg(time.Now()))
	}()

	_, err := t.program.Run()
	return err
}

// Stop stops the TUI gracefully
func (t *TUI) Stop() {
	t.program.Quit()
}

// Send sends a message to the TUI
func (t *TUI) Send(msg tea.Msg) {
	if t.program != nil {
		t.program.Send(msg)
	}
}

// ScanStarted notifies the TUI of the number of posts to process
func (t *TUI) ScanStarted(totalPosts int) {
	t.Send(ScanStartMsg{TotalPosts: totalPosts})
}

// PostDone notifies the TUI that one post finished, with its rows
func (t *TUI) PostDone(rows []scraper.CommentRow) {
	t.Send(PostDoneMsg{Rows: rows})
}

// UpdateRate updates the request rate readout
func (t *TUI) UpdateRate(rate float64) {
	t.Send(RateUpdateMsg{Rate: rate})
}

// ScanComplete moves the TUI into the review phase
func (t *TUI) ScanComplete(rows []scraper.CommentRow) {
	t.Send(ScanCompleteMsg{Rows: rows})
}

// ScanFailed moves the TUI into the failed phase
func (t *TUI) ScanFailed(err error) {
	t.Send(ScanFailedMsg{Err: err})
}

// Log sends a log message to the TUI
func (t *TUI) Log(level, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	t.Send(LogMsg{Level: level, Message: message})
}

// LogInfo logs an info message
func (t *TUI) LogInfo(format string, args ...interface{}) {
	t.Log("INFO", format, args...)
}

// LogSuccess logs a success message
func (t *TUI) LogSuccess(format string, args ...interface{}) {
	t.Log("SUCCESS", format, args...)
}

// LogWarning logs a warning message
func (t *TUI) LogWarning(format string, args ...interface{}) {
	t.Log("WARN", format, args...)
}

// LogError logs an error message
func (t *TUI) LogError(format string, args ...interface{}) {
	t.Log("ERROR", format, args...)
}
