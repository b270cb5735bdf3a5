package tui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"netmonsim/internal/analysis"
	"netmonsim/internal/reporting"
)

const (
	minInterval = 250 * time.Millisecond
	maxInterval = 10 * time.Second
)

func (m MonitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.monitor.StopCapture()
			return m, tea.Quit
		case " ":
			if m.monitor.Toggle() {
				m.status = "Capturing..."
			} else {
				m.status = "Capture stopped."
			}
		case "g":
			pkt := m.monitor.GeneratePacket()
			m.status = fmt.Sprintf("Generated packet %d.", pkt.Seq)
		case "c":
			m.monitor.ClearPackets()
			m.status = "Packets cleared."
		case "w":
			m.navigate()
		case "e":
			m.openEmail()
		case "l":
			m.clickLink()
		case "f":
			m.filterIdx = (m.filterIdx + 1) % len(filterModes)
			m.status = "Filter: " + m.filter().String()
		case "+", "=":
			m.setInterval(m.monitor.Interval() / 2)
		case "-":
			m.setInterval(m.monitor.Interval() * 2)
		case "x":
			m.exportPCAP()
		case "r":
			m.writeReport()
		default:
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}
		m.refresh()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case TickMsg:
		m.refresh()
		m.pps = m.stats.GetRate()
		return m, tickCmd()
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// refresh pulls the packet list and statistics from the monitor.
func (m *MonitorModel) refresh() {
	m.packets = m.monitor.Packets()
	m.summary = analysis.Summarize(m.packets, 3)
	m.alerts = m.stats.GetAlerts(alertLines)

	visible := m.filter().Apply(m.packets)
	rows := make([]table.Row, len(visible))
	for i, p := range visible {
		no := strconv.FormatUint(p.Seq, 10)
		if p.Suspicious {
			no = "!" + no
		}
		rows[i] = table.Row{no, p.Timestamp, p.Source, p.Destination, p.Protocol, p.Info}
	}
	follow := m.table.Cursor() >= len(m.table.Rows())-1
	m.table.SetRows(rows)
	if follow {
		m.table.GotoBottom()
	}
}

func (m *MonitorModel) navigate() {
	if len(m.pages) == 0 {
		m.status = "No pages configured."
		return
	}
	page := m.pages[m.pageIdx]
	m.pageIdx = (m.pageIdx + 1) % len(m.pages)
	n := m.monitor.Navigate(page.URL)
	m.status = fmt.Sprintf("Browser: %s (%d packets)", page.URL, n)
}

func (m *MonitorModel) openEmail() {
	if len(m.emails) == 0 {
		m.status = "No emails configured."
		return
	}
	email := m.emails[m.emailIdx]
	m.emailIdx = (m.emailIdx + 1) % len(m.emails)
	m.lastEmail = &email
	n := m.monitor.OpenEmail(email.Sender)
	m.status = fmt.Sprintf("Mail: opened %q from %s (%d packets)", email.Subject, email.Sender, n)
}

// clickLink follows a link from the last opened email to the page the
// browser would open next.
func (m *MonitorModel) clickLink() {
	if m.lastEmail == nil || len(m.pages) == 0 {
		m.status = "Open an email first."
		return
	}
	page := m.pages[m.pageIdx]
	n := m.monitor.EmailLinkClicked(page.URL, m.lastEmail.Suspicious)
	m.status = fmt.Sprintf("Mail: clicked link to %s (%d packets)", page.URL, n)
}

func (m *MonitorModel) setInterval(d time.Duration) {
	d = min(max(d, minInterval), maxInterval)
	m.monitor.SetInterval(d)
	m.status = fmt.Sprintf("Interval: %s", d)
}

func (m *MonitorModel) exportPCAP() {
	filename, n, err := reporting.ExportPCAP(m.exportDir, m.monitor.Packets())
	if err != nil {
		m.status = "Export failed: " + err.Error()
		return
	}
	m.status = fmt.Sprintf("Exported %d frames to %s", n, filename)
}

func (m *MonitorModel) writeReport() {
	packets := m.monitor.Packets()
	filename, err := reporting.GenerateSessionReport(m.exportDir, reporting.Session{
		Packets: packets,
		Summary: analysis.Summarize(packets, 10),
		Alerts:  m.stats.GetAlerts(0),
		Domains: m.stats.GetDomainLog(),
	}, "html")
	if err != nil {
		m.status = "Report failed: " + err.Error()
		return
	}
	m.status = "Report written to " + filename
}
