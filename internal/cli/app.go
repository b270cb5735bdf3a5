package cli

import (
	"netmonsim/internal/analysis"
	"netmonsim/internal/capture"
	"netmonsim/internal/config"
	"netmonsim/internal/logging"
	"netmonsim/internal/sched"
	"netmonsim/internal/synth"
)

// app is one monitor with its statistics, wired from the config.
type app struct {
	cfg     *config.Config
	monitor *capture.Monitor
	stats   *analysis.TrafficStats
}

func newApp(cfg *config.Config, scheduler sched.Scheduler, sinks ...capture.Sink) *app {
	if scheduler == nil {
		scheduler = sched.Real{}
	}
	syn := synth.New(cfg.Catalog(), cfg.SynthConfig(), synth.WithClock(scheduler.Now))
	stats := analysis.NewTrafficStats(analysis.NewAnomalyDetector(cfg.DetectorConfig()), scheduler.Now)

	all := append(capture.MultiSink{stats}, sinks...)
	monitor := capture.NewMonitor(syn, scheduler, all, cfg.MonitorConfig(), logging.GetLogger())

	logging.GetLogger().Debug("Monitor ready",
		"sources", syn.Catalog().Len(), "interval", cfg.Capture.Interval.String(), "seed", cfg.Traffic.Seed)
	return &app{cfg: cfg, monitor: monitor, stats: stats}
}
