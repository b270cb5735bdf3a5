// Package tui is the terminal network monitor.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"netmonsim/internal/analysis"
	"netmonsim/internal/capture"
	"netmonsim/internal/models"
)

const (
	refreshInterval = 250 * time.Millisecond
	alertLines      = 5
	tableHeight     = 15
)

// TickMsg triggers a refresh from the monitor.
type TickMsg time.Time

// filterModes is the cycle of the f key.
var filterModes = []analysis.Filter{
	analysis.DefaultFilter(),
	{ShowSuspicious: true},
	{ShowNormal: true},
}

// MonitorModel shows the live packet list of a monitor and drives its
// controls and the simulated user actions.
type MonitorModel struct {
	monitor *capture.Monitor
	stats   *analysis.TrafficStats
	table   table.Model

	pages     []models.Page
	emails    []models.Email
	pageIdx   int
	emailIdx  int
	lastEmail *models.Email

	filterIdx int
	exportDir string

	packets []models.Packet
	summary analysis.Summary
	alerts  []analysis.Alert
	pps     float64
	status  string
	width   int
}

// NewMonitorModel creates the UI for monitor. stats must be a sink of the
// monitor. pages and emails are the targets of the navigate and open keys.
func NewMonitorModel(monitor *capture.Monitor, stats *analysis.TrafficStats, pages []models.Page, emails []models.Email, exportDir string) MonitorModel {
	columns := []table.Column{
		{Title: "No.", Width: 6},
		{Title: "Time", Width: 8},
		{Title: "Source", Width: 22},
		{Title: "Destination", Width: 22},
		{Title: "Protocol", Width: 8},
		{Title: "Info", Width: 52},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(tableHeight),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	if exportDir == "" {
		exportDir = "."
	}
	return MonitorModel{
		monitor:   monitor,
		stats:     stats,
		table:     t,
		pages:     pages,
		emails:    emails,
		exportDir: exportDir,
		status:    "Press space to start capturing.",
	}
}

func (m MonitorModel) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m MonitorModel) filter() analysis.Filter {
	return filterModes[m.filterIdx]
}
