package tui

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"moescrape/pkg/scraper"
)

// Phase represents the stage the scan UI is in
type Phase int

const (
	// PhaseScanning shows live scan progress
	PhaseScanning Phase = iota
	// PhaseReview shows the extracted rows in a browsable table
	PhaseReview
	// PhaseFailed shows the terminal error
	PhaseFailed
)

// Model represents the TUI model
type Model struct {
	// UI components
	spinner  spinner.Model
	progress progress.Model
	results  table.Model

	// Scan state
	phase      Phase
	userID     string
	postsTotal int
	postsDone  int
	rows       []scraper.CommentRow
	scanErr    error

	// Rate controller readout
	currentRate float64
	maxRate     float64

	// Stats
	sessionStartTime time.Time

	// UI state
	width          int
	height         int
	showHelp       bool
	logMessages    []LogMessage
	maxLogMessages int

	// Mutex for thread safety
	mu sync.RWMutex
}

// LogMessage represents a log entry
type LogMessage struct {
	Time    time.Time
	Level   string
	Message string
	Color   lipgloss.Color
}

// NewModel creates a new TUI model for scanning one user's posts
func NewModel(userID string, maxRate float64) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(neonCyan)

	p := progress.New(progress.WithDefaultGradient())
	p.Width = 40

	return Model{
		spinner:          s,
		progress:         p,
		phase:            PhaseScanning,
		userID:           userID,
		maxRate:          maxRate,
		sessionStartTime: time.Now(),
		logMessages:      []LogMessage{},
		maxLogMessages:   50,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// SetTotals records the number of posts the scan will cover
func (m *Model) SetTotals(total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.postsTotal = total
}

// AdvancePost records one more processed post
func (m *Model) AdvancePost() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.postsDone++
}

// AppendRows adds freshly extracted rows
func (m *Model) AppendRows(rows []scraper.CommentRow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, rows...)
}

// SetRate records the rate controller's current request rate
func (m *Model) SetRate(rate float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentRate = rate
}

// Complete moves the UI into the review phase with the final rows
func (m *Model) Complete(rows []scraper.CommentRow) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rows = rows
	m.phase = PhaseReview
	m.results = buildResultsTable(rows, m.width)
}

// Fail moves the UI into the failed phase
func (m *Model) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.scanErr = err
	m.phase = PhaseFailed
}

// AddLogMessage adds a log message
func (m *Model) AddLogMessage(level, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	color := dimWhite
	switch level {
	case "ERROR":
		color = lipgloss.Color("#FF0000")
	case "WARN":
		color = neonOrange
	case "SUCCESS":
		color = neonGreen
	case "INFO":
		color = neonCyan
	}

	m.logMessages = append(m.logMessages, LogMessage{
		Time:    time.Now(),
		Level:   level,
		Message: message,
		Color:   color,
	})

	if len(m.logMessages) > m.maxLogMessages {
		m.logMessages = m.logMessages[len(m.logMessages)-m.maxLogMessages:]
	}
}

// Fraction returns the completed fraction of the scan
func (m *Model) Fraction() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.postsTotal == 0 {
		return 0
	}
	return float64(m.postsDone) / float64(m.postsTotal)
}

// buildResultsTable builds the review table from the extracted rows
func buildResultsTable(rows []scraper.CommentRow, width int) table.Model {
	if width == 0 {
		width = 120
	}
	nameWidth := 16
	dateWidth := 24
	likesWidth := 6
	titleWidth := 20
	commentWidth := width - nameWidth - dateWidth - likesWidth - titleWidth - 12
	if commentWidth < 20 {
		commentWidth = 20
	}

	columns := []table.Column{
		{Title: "Name", Width: nameWidth},
		{Title: "Comment", Width: commentWidth},
		{Title: "Date", Width: dateWidth},
		{Title: "Likes", Width: likesWidth},
		{Title: "Post", Width: titleWidth},
	}

	tableRows := make([]table.Row, 0, len(rows))
	for _, row := range rows {
		tableRows = append(tableRows, table.Row{
			row.Name,
			row.Comment,
			row.Date,
			fmt.Sprintf("%d", row.Likes),
			row.PostTitle,
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(tableRows),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	styles := table.DefaultStyles()
	styles.Header = tableHeaderStyle
	styles.Selected = tableSelectedStyle
	t.SetStyles(styles)

	return t
}
