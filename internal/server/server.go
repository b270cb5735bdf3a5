// Package server streams the simulated capture to remote viewers over
// websockets and exposes it over a small HTTP API with Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"netmonsim/internal/analysis"
	"netmonsim/internal/capture"
	"netmonsim/internal/logging"
	"netmonsim/internal/models"
)

const (
	shutdownTimeout = 5 * time.Second
	topN            = 5
)

// Config holds the listener settings.
type Config struct {
	Addr         string
	CommandRate  float64 // commands per second per client, 0 disables limiting
	CommandBurst int
}

// Server serves one monitor.
type Server struct {
	cfg      Config
	monitor  *capture.Monitor
	stats    *analysis.TrafficStats
	hub      *Hub
	registry *prometheus.Registry
	logger   logging.Logger
	upgrader websocket.Upgrader
}

// New creates a server. hub, stats and the metrics registered on registry
// must already be sinks of monitor. stats and registry may be nil.
func New(cfg Config, monitor *capture.Monitor, hub *Hub, stats *analysis.TrafficStats, registry *prometheus.Registry, logger logging.Logger) *Server {
	if cfg.CommandBurst <= 0 {
		cfg.CommandBurst = 1
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	s := &Server{
		cfg:      cfg,
		monitor:  monitor,
		stats:    stats,
		hub:      hub,
		registry: registry,
		logger:   logging.OrDefault(logger).With("component", "server"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// viewers are local training tools
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	s.registerGauges()
	return s
}

func (s *Server) registerGauges() {
	s.registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "netmonsim",
			Name:      "queue_length",
			Help:      "Packets currently in the capture queue.",
		}, func() float64 { return float64(len(s.monitor.Packets())) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "netmonsim",
			Name:      "capture_running",
			Help:      "1 while the capture session is running.",
		}, func() float64 {
			if s.monitor.Running() {
				return 1
			}
			return 0
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "netmonsim",
			Name:      "websocket_clients",
			Help:      "Connected websocket viewers.",
		}, func() float64 { return float64(s.hub.Len()) }),
	)
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWebsocket)
	mux.HandleFunc("GET /api/packets", s.handlePackets)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("POST /api/command", s.handleCommand)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.hub.CloseAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	limit := rate.Inf
	if s.cfg.CommandRate > 0 {
		limit = rate.Limit(s.cfg.CommandRate)
	}
	c := &client{
		conn:    conn,
		send:    make(chan models.Event, sendBuffer),
		limiter: rate.NewLimiter(limit, s.cfg.CommandBurst),
		remote:  r.RemoteAddr,
	}

	// Register before taking the snapshot; packets already in it are skipped
	// by the write pump.
	s.hub.add(c)
	snapshot := s.monitor.Packets()
	if n := len(snapshot); n > 0 {
		c.snapshotSeq = snapshot[n-1].Seq
	}
	s.logger.Info("Viewer connected", "remote", c.remote, "clients", s.hub.Len())

	go s.writePump(c, snapshot)
	go s.readPump(c)
}

func (s *Server) handlePackets(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorEvent(err))
		return
	}
	writeJSON(w, http.StatusOK, filter.Apply(s.monitor.Packets()))
}

func filterFromQuery(r *http.Request) (analysis.Filter, error) {
	q := r.URL.Query()
	f := analysis.DefaultFilter()
	f.Protocol = q.Get("protocol")
	f.Source = q.Get("source")
	f.Destination = q.Get("destination")

	for name, dst := range map[string]*bool{"suspicious": &f.ShowSuspicious, "normal": &f.ShowNormal} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, fmt.Errorf("invalid %s value %q", name, v)
		}
		*dst = b
	}
	return f, nil
}

type statsResponse struct {
	Summary analysis.Summary       `json:"summary"`
	Session map[string]interface{} `json:"session"`
	Alerts  []analysis.Alert       `json:"alerts"`
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	resp := statsResponse{
		Summary: analysis.Summarize(s.monitor.Packets(), topN),
		Session: s.monitor.Stats(),
		Alerts:  []analysis.Alert{},
	}
	if s.stats != nil {
		resp.Alerts = s.stats.GetAlerts(0)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var cmd Command
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageSize)).Decode(&cmd); err != nil {
		writeJSON(w, http.StatusBadRequest, errorEvent(err))
		return
	}
	reply, err := Execute(s.monitor, cmd)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorEvent(err))
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
