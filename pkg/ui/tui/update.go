package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"moescrape/pkg/scraper"
)

// Message types for the TUI

// ScanStartMsg is sent when the post count is known
type ScanStartMsg struct {
	TotalPosts int
}

// PostDoneMsg is sent after each post has been processed
type PostDoneMsg struct {
	Rows []scraper.CommentRow
}

// RateUpdateMsg is sent to update the request rate readout
type RateUpdateMsg struct {
	Rate float64
}

// ScanCompleteMsg is sent when the whole scan finished
type ScanCompleteMsg struct {
	Rows []scraper.CommentRow
}

// ScanFailedMsg is sent when the scan aborted with an error
type ScanFailedMsg struct {
	Err error
}

// LogMsg is sent to add a log message
type LogMsg struct {
	Level   string
	Message string
}

// TickMsg is sent periodically to update the UI
type TickMsg time.Time

// Update handles all messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.phase == PhaseReview {
			m.results = buildResultsTable(m.rows, m.width)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TickMsg:
		return m, tea.Batch(
			tickCmd(),
			m.spinner.Tick,
		)

	case ScanStartMsg:
		m.SetTotals(msg.TotalPosts)
		m.AddLogMessage("INFO", "scan started")
		return m, nil

	case PostDoneMsg:
		m.AdvancePost()
		m.AppendRows(msg.Rows)
		return m, nil

	case RateUpdateMsg:
		m.SetRate(msg.Rate)
		return m, nil

	case ScanCompleteMsg:
		m.Complete(msg.Rows)
		m.AddLogMessage("SUCCESS", "scan complete")
		return m, nil

	case ScanFailedMsg:
		m.Fail(msg.Err)
		m.AddLogMessage("ERROR", msg.Err.Error())
		return m, nil

	case LogMsg:
		m.AddLogMessage(msg.Level, msg.Message)
		return m, nil
	}

	return m, nil
}

// handleKeyPress handles keyboard input
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		return m, tea.Quit

	case "?":
		m.showHelp = !m.showHelp
		return m, nil

	case "ctrl+l":
		m.mu.Lock()
		m.logMessages = []LogMessage{}
		m.mu.Unlock()
		return m, nil
	}

	// Arrow keys and paging go to the results table while reviewing
	if m.phase == PhaseReview {
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		return m, cmd
	}

	return m, nil
}

// tickCmd returns a command that sends a tick message
func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
