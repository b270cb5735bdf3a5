package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netmonsim/internal/analysis"
	"netmonsim/internal/capture"
	"netmonsim/internal/catalog"
	"netmonsim/internal/logging"
	"netmonsim/internal/models"
	"netmonsim/internal/sched"
	"netmonsim/internal/synth"
)

var (
	pages = []models.Page{
		{URL: "https://phish.test", SecurityLevel: models.ClassDangerous, Security: models.PageSecurity{IsHTTPS: true}},
		{URL: "https://news.test", SecurityLevel: models.ClassSecure, Security: models.PageSecurity{IsHTTPS: true}},
	}
	emails = []models.Email{{Sender: "alerts@bank.test", Subject: "Verify now", Suspicious: true}}
)

func newTestModel(t *testing.T) (MonitorModel, *capture.Monitor, *sched.Virtual) {
	t.Helper()
	clock := sched.NewVirtual(time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC))
	syn := synth.New(catalog.Build(pages, emails, nil), synth.DefaultConfig(), synth.WithClock(clock.Now))
	stats := analysis.NewTrafficStats(nil, clock.Now)
	monitor := capture.NewMonitor(syn, clock, stats, capture.DefaultConfig(), logging.Nop())
	return NewMonitorModel(monitor, stats, pages, emails, t.TempDir()), monitor, clock
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m MonitorModel, keys ...string) MonitorModel {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(MonitorModel)
	}
	return m
}

func TestToggleAndGenerate(t *testing.T) {
	m, monitor, clock := newTestModel(t)

	m = press(t, m, " ")
	assert.True(t, monitor.Running())
	assert.Equal(t, "Capturing...", m.status)

	clock.Advance(capture.DefaultInterval)
	m = press(t, m, "g")
	assert.Len(t, m.packets, 2)
	assert.Len(t, m.table.Rows(), 2)

	m = press(t, m, " ", "c")
	assert.False(t, monitor.Running())
	assert.Empty(t, m.packets)
}

func TestBrowseAndMail(t *testing.T) {
	m, monitor, clock := newTestModel(t)

	m = press(t, m, "w")
	assert.Contains(t, m.status, "https://phish.test")
	m = press(t, m, "e")
	assert.Contains(t, m.status, "alerts@bank.test")
	m = press(t, m, "l")
	assert.Contains(t, m.status, "clicked link to https://news.test")

	clock.Advance(5 * time.Second)
	next, _ := m.Update(TickMsg(time.Now()))
	m = next.(MonitorModel)

	assert.Equal(t, len(monitor.Packets()), len(m.packets))
	assert.NotZero(t, m.summary.Suspicious)
	assert.NotEmpty(t, m.alerts)
}

func TestClickLinkNeedsEmail(t *testing.T) {
	m, monitor, _ := newTestModel(t)
	m = press(t, m, "l")
	assert.Equal(t, "Open an email first.", m.status)
	assert.Empty(t, monitor.Packets())
}

func TestFilterCycle(t *testing.T) {
	m, _, clock := newTestModel(t)
	m = press(t, m, "w", "w")
	clock.Advance(2 * time.Second)

	m = press(t, m, "f")
	assert.Equal(t, "Filter: suspicious only", m.status)
	for _, row := range m.table.Rows() {
		assert.True(t, strings.HasPrefix(row[0], "!"))
	}

	m = press(t, m, "f")
	for _, row := range m.table.Rows() {
		assert.False(t, strings.HasPrefix(row[0], "!"))
	}

	m = press(t, m, "f")
	assert.Equal(t, len(m.packets), len(m.table.Rows()))
}

func TestIntervalKeysClamp(t *testing.T) {
	m, monitor, _ := newTestModel(t)
	m = press(t, m, "-", "-", "-", "-", "-")
	assert.Equal(t, maxInterval, monitor.Interval())
	press(t, m, "+", "+", "+", "+", "+", "+", "+", "+")
	assert.Equal(t, minInterval, monitor.Interval())
}

func TestExports(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = press(t, m, "g", "g", "x")
	assert.Contains(t, m.status, "Exported 2 frames")

	m = press(t, m, "r")
	require.Contains(t, m.status, "Report written to ")
	_, err := os.Stat(strings.TrimPrefix(m.status, "Report written to "))
	assert.NoError(t, err)

	files, err := filepath.Glob(filepath.Join(m.exportDir, "*"))
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestViewAndQuit(t *testing.T) {
	m, monitor, _ := newTestModel(t)
	m = press(t, m, " ", "g")

	view := m.View()
	assert.Contains(t, view, "CAPTURING")
	assert.Contains(t, view, "192.168.1.100")
	assert.Contains(t, view, "Security Score")

	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.False(t, monitor.Running())
}
