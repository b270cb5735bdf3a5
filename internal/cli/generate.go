package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"netmonsim/internal/analysis"
	"netmonsim/internal/models"
)

var (
	generateSim    simulation
	generateFormat string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Print a simulated capture without the terminal UI",
	Long: `Run the traffic generator offline on a simulated clock and print every
emitted packet. Page visits, opened emails and clicked links are replayed in
order, two seconds apart.

  netmonsim generate -n 50
  netmonsim generate --navigate https://phishing-bank.com --format json`,
	RunE: generateCommand,
}

func init() {
	generateSim.addFlags(generateCmd)
	generateCmd.Flags().StringVar(&generateFormat, "format", "auto", "Output format: auto, table or json")
	rootCmd.AddCommand(generateCmd)
}

func generateCommand(cmd *cobra.Command, args []string) error {
	if err := generateSim.validate(); err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	packets, _ := generateSim.run(cfg, time.Now().Truncate(time.Second))
	out := cmd.OutOrStdout()

	switch generateFormat {
	case "json":
		return writeJSONLines(out, packets)
	case "table":
		return writeTable(out, packets, false)
	case "auto":
		return writeTable(out, packets, isTerminal(out))
	default:
		return fmt.Errorf("unsupported format: %s", generateFormat)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func writeJSONLines(w io.Writer, packets []models.Packet) error {
	enc := json.NewEncoder(w)
	for _, p := range packets {
		if err := enc.Encode(p); err != nil {
			return err
		}
	}
	return nil
}

var (
	headerStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	suspiciousStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	alertStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
)

func writeTable(w io.Writer, packets []models.Packet, styled bool) error {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, " No.\tTime\tSource\tDestination\tProtocol\tInfo")
	for _, p := range packets {
		mark := " "
		if p.Suspicious {
			mark = "!"
		}
		fmt.Fprintf(tw, "%s%d\t%s\t%s\t%s\t%s\t%s\n", mark, p.Seq, p.Timestamp, p.Source, p.Destination, p.Protocol, p.Info)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	// Style after alignment; escape codes would skew tabwriter's widths.
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	for i, line := range lines {
		if styled {
			switch {
			case i == 0:
				line = headerStyle.Render(line)
			case packets[i-1].Alert:
				line = alertStyle.Render(line)
			case packets[i-1].Suspicious:
				line = suspiciousStyle.Render(line)
			}
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	summary := analysis.Summarize(packets, 0)
	_, err := fmt.Fprintf(w, "\n%d packets, %d suspicious, %d alerts, security score %d%% (%s)\n",
		summary.Total, summary.Suspicious, summary.Alerts, summary.SecurityScore, analysis.ScoreRating(summary.SecurityScore))
	return err
}
