package reporting

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"netmonsim/internal/analysis"
	"netmonsim/internal/models"
)

// Session is everything a session report shows.
type Session struct {
	Generated time.Time
	Packets   []models.Packet
	Summary   analysis.Summary
	Alerts    []analysis.Alert
	Domains   []analysis.DomainEntry
}

// GenerateSessionReport writes a report of the session's activity into dir and
// returns the file path. Currently supports "html" format.
func GenerateSessionReport(dir string, session Session, format string) (string, error) {
	if format != "html" {
		return "", fmt.Errorf("unsupported format: %s", format)
	}
	if session.Generated.IsZero() {
		session.Generated = time.Now()
	}

	timestamp := session.Generated.Format("20060102_150405")
	filename := filepath.Join(dir, fmt.Sprintf("report_%s.html", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString(renderHTML(session, timestamp)); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return filename, nil
}

func renderHTML(session Session, timestamp string) string {
	var b strings.Builder
	sum := session.Summary
	esc := html.EscapeString

	fmt.Fprintf(&b, `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Network Monitor Session Report - %s</title>
    <style>
        body { font-family: sans-serif; margin: 20px; color: #333; }
        h1, h2 { color: #2c3e50; }
        table { width: 100%%; border-collapse: collapse; margin-bottom: 20px; }
        th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
        th { background-color: #f2f2f2; }
        tr:nth-child(even) { background-color: #f9f9f9; }
        .summary { background: #eef; padding: 15px; border-radius: 5px; margin-bottom: 20px; }
        .alert, .suspicious { color: #d9534f; font-weight: bold; }
        .score-good { color: #2e7d32; } .score-fair { color: #f9a825; } .score-poor { color: #c62828; }
    </style>
</head>
<body>
    <h1>Network Monitor Session Report</h1>
    <div class="summary">
        <p><strong>Date:</strong> %s</p>
        <p><strong>Total Packets:</strong> %d</p>
        <p><strong>Suspicious Activity:</strong> %d</p>
        <p><strong>Security Score:</strong> <span class="score-%s">%d%%</span></p>
    </div>
`, timestamp, session.Generated.Format(time.RFC1123), sum.Total, sum.Suspicious,
		analysis.ScoreRating(sum.SecurityScore), sum.SecurityScore)

	b.WriteString(countTable("Protocol Distribution", "Protocol", sum.Protocols))
	b.WriteString(countTable("Top Sources", "Source", sum.TopSources))
	b.WriteString(countTable("Top Destinations", "Destination", sum.TopDestinations))

	b.WriteString(`    <h2>Security Alerts</h2>
    <table>
        <thead>
            <tr><th>Time</th><th>Type</th><th>Source</th><th>Message</th></tr>
        </thead>
        <tbody>
`)
	if len(session.Alerts) == 0 {
		b.WriteString("            <tr><td colspan=\"4\">No alerts triggered during this session.</td></tr>\n")
	}
	for _, alert := range session.Alerts {
		fmt.Fprintf(&b, "            <tr><td>%s</td><td class=\"alert\">%s</td><td>%s</td><td>%s</td></tr>\n",
			alert.Timestamp.Format("15:04:05"), esc(string(alert.Type)), esc(alert.Source), esc(alert.Message))
	}
	b.WriteString("        </tbody>\n    </table>\n")

	b.WriteString(`    <h2>Domain History</h2>
    <table>
        <thead>
            <tr><th>Time First Seen</th><th>Hostname</th><th>Source</th></tr>
        </thead>
        <tbody>
`)
	domains := uniqueDomains(session.Domains)
	if len(domains) == 0 {
		b.WriteString("            <tr><td colspan=\"3\">No domains captured.</td></tr>\n")
	}
	for _, d := range domains {
		fmt.Fprintf(&b, "            <tr><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			d.Timestamp.Format("15:04:05"), esc(d.Hostname), esc(d.Source))
	}
	b.WriteString("        </tbody>\n    </table>\n")

	b.WriteString(`    <h2>Captured Packets</h2>
    <table>
        <thead>
            <tr><th>Time</th><th>Source</th><th>Destination</th><th>Protocol</th><th>Info</th></tr>
        </thead>
        <tbody>
`)
	if len(session.Packets) == 0 {
		b.WriteString("            <tr><td colspan=\"5\">No packets captured.</td></tr>\n")
	}
	for _, p := range session.Packets {
		class := ""
		if p.Suspicious {
			class = ` class="suspicious"`
		}
		fmt.Fprintf(&b, "            <tr%s><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			class, esc(p.Timestamp), esc(p.Source), esc(p.Destination), esc(p.Protocol), esc(p.Info))
	}
	b.WriteString("        </tbody>\n    </table>\n</body>\n</html>\n")
	return b.String()
}

func countTable(title, label string, counts []analysis.Count) string {
	var b strings.Builder
	fmt.Fprintf(&b, `    <h2>%s</h2>
    <table>
        <thead>
            <tr><th>%s</th><th>Packets</th></tr>
        </thead>
        <tbody>
`, title, label)
	for _, c := range counts {
		fmt.Fprintf(&b, "            <tr><td>%s</td><td>%d</td></tr>\n", html.EscapeString(c.Name), c.Count)
	}
	b.WriteString("        </tbody>\n    </table>\n")
	return b.String()
}

// uniqueDomains keeps the first sighting of each host.
func uniqueDomains(entries []analysis.DomainEntry) []analysis.DomainEntry {
	seen := make(map[string]bool, len(entries))
	out := make([]analysis.DomainEntry, 0, len(entries))
	for _, e := range entries {
		if seen[e.Hostname] {
			continue
		}
		seen[e.Hostname] = true
		out = append(out, e)
	}
	return out
}
