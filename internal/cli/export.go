package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"netmonsim/internal/analysis"
	"netmonsim/internal/reporting"
)

var (
	exportSim simulation
	exportDir string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a simulated capture to a pcap file",
	Long: `Run the traffic generator offline and save the emitted packets as a pcap
file that Wireshark or tcpdump can open.

  netmonsim export -d 30s --navigate https://securebank.com --dir ./out`,
	RunE: exportCommand,
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write an HTML session report for a simulated capture",
	Long: `Run the traffic generator offline and write an HTML report with the
statistics panel, detected anomalies and the domains contacted.

  netmonsim report -n 40 --open support@paypal-security.net`,
	RunE: reportCommand,
}

func init() {
	for _, cmd := range []*cobra.Command{exportCmd, reportCmd} {
		exportSim.addFlags(cmd)
		cmd.Flags().StringVar(&exportDir, "dir", "", "Output directory (default: export.dir from config)")
		rootCmd.AddCommand(cmd)
	}
}

func outputDir(cmdDir, cfgDir string) string {
	if cmdDir != "" {
		return cmdDir
	}
	return cfgDir
}

func exportCommand(cmd *cobra.Command, args []string) error {
	if err := exportSim.validate(); err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	packets, _ := exportSim.run(cfg, time.Now().Truncate(time.Second))
	filename, n, err := reporting.ExportPCAP(outputDir(exportDir, cfg.Export.Dir), packets)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d frames to %s\n", n, filename)
	return nil
}

func reportCommand(cmd *cobra.Command, args []string) error {
	if err := exportSim.validate(); err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	start := time.Now().Truncate(time.Second)
	packets, a := exportSim.run(cfg, start)
	session := reporting.Session{
		Generated: start.Add(exportSim.duration),
		Packets:   packets,
		Summary:   analysis.Summarize(packets, 5),
		Alerts:    a.stats.GetAlerts(0),
		Domains:   a.stats.GetDomainLog(),
	}
	filename, err := reporting.GenerateSessionReport(outputDir(exportDir, cfg.Export.Dir), session, "html")
	if err != nil {
		return fmt.Errorf("report failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", filename)
	return nil
}
