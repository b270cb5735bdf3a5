package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"netmonsim/internal/capture"
	"netmonsim/internal/logging"
	"netmonsim/internal/pubsub"
	"netmonsim/internal/server"
)

var (
	serveAddr    string
	serveRedis   string
	serveChannel string
	serveStart   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Stream the simulated capture over websockets",
	Long: `Run the monitor headless and serve it to remote viewers:

  GET  /ws            live event stream, accepts JSON commands
  GET  /api/packets   current packet list (protocol, source, destination,
                      suspicious and normal filters)
  GET  /api/stats     statistics panel and detected anomalies
  POST /api/command   start, stop, toggle, generate, clear, interval,
                      navigate, open-email, link-click
  GET  /metrics       Prometheus metrics

With --redis every stream event is also published on a Redis channel.

  netmonsim serve --addr :8080 --start`,
	RunE: serveCommand,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: server.addr from config)")
	serveCmd.Flags().StringVar(&serveRedis, "redis", "", "Redis URL to publish events to, e.g. redis://localhost:6379/0")
	serveCmd.Flags().StringVar(&serveChannel, "channel", "", "Redis channel (default: server.redis_channel from config)")
	serveCmd.Flags().BoolVar(&serveStart, "start", false, "Start capturing immediately")
	rootCmd.AddCommand(serveCmd)
}

func serveCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr = serveAddr
	}
	if cmd.Flags().Changed("redis") {
		cfg.Server.RedisURL = serveRedis
	}
	if cmd.Flags().Changed("channel") {
		cfg.Server.RedisChannel = serveChannel
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.GetLogger()
	registry := prometheus.NewRegistry()
	hub := server.NewHub(logger)
	sinks := []capture.Sink{hub, server.NewMetrics(registry)}

	if cfg.Server.RedisURL != "" {
		client, err := pubsub.Connect(ctx, cfg.Server.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer client.Close()

		publisher := pubsub.NewPublisher(client, cfg.Server.RedisChannel, logger)
		publisher.Start()
		defer publisher.Stop()
		sinks = append(sinks, publisher)
	}

	a := newApp(cfg, nil, sinks...)
	defer a.monitor.StopCapture()
	if serveStart {
		a.monitor.StartCapture()
	}

	srv := server.New(server.Config{
		Addr:         cfg.Server.Addr,
		CommandRate:  cfg.Server.CommandRate,
		CommandBurst: cfg.Server.CommandBurst,
	}, a.monitor, hub, a.stats, registry, logger)

	return srv.Run(ctx)
}
