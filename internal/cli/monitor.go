package cli

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"netmonsim/internal/logging"
	"netmonsim/internal/tui"
)

var monitorStart bool

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Open the terminal network monitor",
	Long: `Open the interactive packet list.

  space  start/stop capture    g  generate one packet    c  clear
  w      visit next page       e  open next email        l  click email link
  f      cycle filter          +/-  faster/slower        x  export pcap
  r      HTML report           q  quit

Logs go to log.file from the config; without one the monitor logs nothing.`,
	RunE: monitorCommand,
}

func init() {
	monitorCmd.Flags().BoolVar(&monitorStart, "start", false, "Start capturing immediately")
	rootCmd.AddCommand(monitorCmd)
}

func monitorCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// The alternate screen owns the terminal; logs go to a file or nowhere.
	var out zapcore.WriteSyncer = zapcore.AddSync(io.Discard)
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		out = zapcore.AddSync(f)
	}
	logging.InitLogger(cfg.Log.Level, cfg.Log.Format, out)

	a := newApp(cfg, nil)
	defer a.monitor.StopCapture()
	if monitorStart {
		a.monitor.StartCapture()
	}

	model := tui.NewMonitorModel(a.monitor, a.stats, cfg.Scenario.Pages, cfg.Scenario.Emails, cfg.Export.Dir)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
