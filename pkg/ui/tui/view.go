package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// View renders the entire TUI
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	var sections []string

	sections = append(sections, m.renderLogo())

	switch m.phase {
	case PhaseReview:
		sections = append(sections, m.renderReview())
	case PhaseFailed:
		sections = append(sections, m.renderFailure())
	default:
		sections = append(sections, m.renderScanning())
	}

	if m.showHelp {
		sections = append(sections, m.renderHelp())
	} else {
		sections = append(sections, helpStyle.Render("Press ? for help"))
	}

	return baseStyle.Width(m.width).Height(m.height).Render(
		lipgloss.JoinVertical(lipgloss.Left, sections...),
	)
}

// renderLogo renders the application banner
func (m Model) renderLogo() string {
	logo := `
╔═══════════════════════════════════════════════════════════╗
║ ███╗   ███╗ ██████╗ ███████╗███████╗ ██████╗██████╗        ║
║ ████╗ ████║██╔═══██╗██╔════╝██╔════╝██╔════╝██╔══██╗       ║
║ ██╔████╔██║██║   ██║█████╗  ███████╗██║     ██████╔╝       ║
║ ██║╚██╔╝██║██║   ██║██╔══╝  ╚════██║██║     ██╔══██╗       ║
║ ██║ ╚═╝ ██║╚██████╔╝███████╗███████║╚██████╗██║  ██║       ║
║ ╚═╝     ╚═╝ ╚═════╝ ╚══════╝╚══════╝ ╚═════╝╚═╝  ╚═╝       ║
║            MOESCAPE COMMENT EXTRACTION UTILITY             ║
╚═══════════════════════════════════════════════════════════╝`

	return logoStyle.Width(m.width).Render(logo)
}

// renderScanning renders the live scan view: stats, progress, logs
func (m Model) renderScanning() string {
	left := lipgloss.JoinVertical(lipgloss.Left,
		m.renderStatsPanel((m.width-4)/2),
		m.renderProgressPanel((m.width-4)/2),
	)
	right := m.renderLogsPanel((m.width - 4) / 2)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
}

// renderStatsPanel renders the statistics panel
func (m Model) renderStatsPanel(width int) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	title := titleStyle.Render(" SCAN STATS ")

	elapsed := time.Since(m.sessionStartTime)
	rateStyle := GetRateStyle(m.currentRate, m.maxRate)

	stats := []string{
		fmt.Sprintf("%s %s", statsLabelStyle.Render("User:"), statsValueStyle.Render(m.userID)),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Elapsed:"), statsValueStyle.Render(formatDuration(elapsed))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Posts:"), statsValueStyle.Render(fmt.Sprintf("%d/%d", m.postsDone, m.postsTotal))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Rows:"), statsValueStyle.Render(fmt.Sprintf("%d", len(m.rows)))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Rate:"), rateStyle.Render(fmt.Sprintf("%.2f req/s", m.currentRate))),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, stats...)

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

// renderProgressPanel renders the scan progress bar
func (m Model) renderProgressPanel(width int) string {
	title := titleStyle.Render(" PROGRESS ")

	bar := m.progress.ViewAs(m.Fraction())
	line := fmt.Sprintf("%s %s", m.spinner.View(), bar)

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, line),
	)
}

// renderLogsPanel renders the logs panel
func (m Model) renderLogsPanel(width int) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	title := titleStyle.Render(" LOGS ")

	start := len(m.logMessages) - 10
	if start < 0 {
		start = 0
	}

	var logs []string
	for i := start; i < len(m.logMessages); i++ {
		log := m.logMessages[i]
		timestamp := logTimestampStyle.Render(log.Time.Format("15:04:05"))
		level := lipgloss.NewStyle().Foreground(log.Color).Bold(true).Render(fmt.Sprintf("[%-7s]", log.Level))
		message := logMessageStyle.Render(log.Message)

		maxMsgLen := width - 25
		if len(message) > maxMsgLen {
			message = message[:maxMsgLen-3] + "..."
		}

		logs = append(logs, fmt.Sprintf("%s %s %s", timestamp, level, message))
	}

	content := strings.Join(logs, "\n")
	if content == "" {
		content = lipgloss.NewStyle().Foreground(dimWhite).Render("No logs yet...")
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

// renderReview renders the results table after the scan finished
func (m Model) renderReview() string {
	title := titleStyle.Render(" EXTRACTED COMMENTS ")

	summary := successStyle.Render(fmt.Sprintf("✓ %d rows from %d posts", len(m.rows), m.postsTotal))

	return panelStyle.Width(m.width - 2).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, summary, m.results.View()),
	)
}

// renderFailure renders the terminal error
func (m Model) renderFailure() string {
	title := titleStyle.Render(" SCAN FAILED ")

	msg := "unknown error"
	if m.scanErr != nil {
		msg = m.scanErr.Error()
	}

	return panelStyle.Width(m.width - 2).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, errorStyle.Render(msg)),
	)
}

// renderHelp renders the help panel
func (m Model) renderHelp() string {
	help := `
  Navigation:
    q/Q      - Quit the application
    ↑/↓      - Scroll results (after scan)
    ?        - Toggle this help
    ctrl+l   - Clear logs

  Status Indicators:
    ` + successStyle.Render("Green") + `    - Healthy / full speed
    ` + warningStyle.Render("Orange") + `   - Backing off / warning
    ` + errorStyle.Render("Red") + `      - Error
`

	return panelStyle.Width(m.width).Render(help)
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < 0 {
		return "00:00"
	}

	h := int(d.Hours())
	mins := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, mins, s)
	}
	return fmt.Sprintf("%02d:%02d", mins, s)
}
