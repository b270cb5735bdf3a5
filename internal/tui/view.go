package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"netmonsim/internal/analysis"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFF7DB")).
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Margin(0, 1)

	alertStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87")).Bold(true)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	scoreStyles = map[string]lipgloss.Style{
		"good": lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")),
		"fair": lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B")),
		"poor": lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87")),
	}
)

const helpText = "space start/stop • g generate • c clear • w browse • e open mail • l click link • f filter • +/- speed • x pcap • r report • q quit"

func (m MonitorModel) View() string {
	state := "IDLE"
	if m.monitor.Running() {
		state = "CAPTURING"
	}
	title := titleStyle.Render(fmt.Sprintf("Network Monitor - %s [%s] every %s",
		m.monitor.LocalAddress(), state, m.monitor.Interval()))

	score := m.summary.SecurityScore
	statsBox := infoStyle.Render(fmt.Sprintf("Packets: %d\nSuspicious: %d\nRate: %.2f PPS\nSecurity Score: %s",
		m.summary.Total, m.summary.Suspicious, m.pps,
		scoreStyles[analysis.ScoreRating(score)].Render(fmt.Sprintf("%d%%", score))))

	protoBox := infoStyle.Render("Protocols:\n" + countLines(m.summary.Protocols, 5))
	sourcesBox := infoStyle.Render("Top Sources:\n" + countLines(m.summary.TopSources, 3))

	var alertStrs []string
	for _, a := range m.alerts {
		alertStrs = append(alertStrs, fmt.Sprintf("%s %s", a.Timestamp.Format("15:04:05"), alertStyle.Render(a.Message)))
	}
	if len(alertStrs) == 0 {
		alertStrs = append(alertStrs, "No alerts.")
	}
	alertBox := infoStyle.Render("Alerts:\n" + strings.Join(alertStrs, "\n"))

	packetsBox := infoStyle.Render(fmt.Sprintf("Packets (filter: %s)\n%s", m.filter(), m.table.View()))

	row1 := lipgloss.JoinHorizontal(lipgloss.Top, statsBox, protoBox, sourcesBox)
	body := lipgloss.JoinVertical(lipgloss.Left, title, row1, packetsBox, alertBox)

	return body + "\n" + m.status + "\n" + helpStyle.Render(helpText)
}

func countLines(counts []analysis.Count, limit int) string {
	if len(counts) == 0 {
		return "Waiting for data..."
	}
	if len(counts) > limit {
		counts = counts[:limit]
	}
	lines := make([]string, len(counts))
	for i, c := range counts {
		lines[i] = fmt.Sprintf("%s: %d", c.Name, c.Count)
	}
	return strings.Join(lines, "\n")
}
