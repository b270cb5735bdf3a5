package analysis

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"netmonsim/internal/models"
)

// AnomalyType represents the type of anomaly detected.
type AnomalyType string

const (
	AnomalySuspiciousHost AnomalyType = "SUSPICIOUS_HOST"
	AnomalyPlaintextCreds AnomalyType = "PLAINTEXT_CREDENTIALS"
	AnomalyBurst          AnomalyType = "TRAFFIC_BURST"
)

// Config holds configuration for the anomaly detector.
type Config struct {
	HostCooldown    time.Duration // Cooldown between alerts for the same suspicious host
	RateThreshold   int           // Packets per RateWindow per remote host
	RateWindow      time.Duration
	CleanupInterval time.Duration // Interval for memory cleanup
	DataRetention   time.Duration // How long to keep tracking data
	MaxAlerts       int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		HostCooldown:    10 * time.Second,
		RateThreshold:   8,
		RateWindow:      2 * time.Second,
		CleanupInterval: 1 * time.Minute,
		DataRetention:   5 * time.Minute,
		MaxAlerts:       20,
	}
}

// Alert represents a detected security anomaly.
type Alert struct {
	Type      AnomalyType `json:"type"`
	Source    string      `json:"source"`
	Message   string      `json:"message"`
	Timestamp time.Time   `json:"timestamp"`
}

// AnomalyDetector watches the synthetic stream for the patterns a trainee is
// expected to notice. It is a capture sink; time comes from the packets.
type AnomalyDetector struct {
	mu sync.Mutex

	config Config

	// key: rule + remote host -> last alert time
	lastAlert map[string]time.Time

	hostPacketCount map[string]int
	hostWindow      map[string]time.Time

	alerts []Alert

	lastCleanup time.Time
}

// NewAnomalyDetector creates a new anomaly detection engine.
func NewAnomalyDetector(cfg Config) *AnomalyDetector {
	def := DefaultConfig()
	if cfg.MaxAlerts <= 0 {
		cfg.MaxAlerts = def.MaxAlerts
	}
	if cfg.RateWindow <= 0 {
		cfg.RateWindow = def.RateWindow
	}
	return &AnomalyDetector{
		config:          cfg,
		lastAlert:       make(map[string]time.Time),
		hostPacketCount: make(map[string]int),
		hostWindow:      make(map[string]time.Time),
		alerts:          make([]Alert, 0),
	}
}

// OnPacket analyzes a packet for anomalies.
func (ad *AnomalyDetector) OnPacket(pkt models.Packet) {
	if pkt.Alert {
		return
	}

	ad.mu.Lock()
	defer ad.mu.Unlock()

	now := pkt.CapturedAt
	if now.IsZero() {
		now = time.Now()
	}
	if ad.lastCleanup.IsZero() {
		ad.lastCleanup = now
	}
	if now.Sub(ad.lastCleanup) > ad.config.CleanupInterval {
		ad.cleanup(now)
		ad.lastCleanup = now
	}

	remote := remoteHost(pkt)
	ad.detectSuspiciousHost(pkt, remote, now)
	ad.detectPlaintextCredentials(pkt, remote, now)
	ad.detectBurst(remote, now)
}

// OnClear forgets tracking data and alert history.
func (ad *AnomalyDetector) OnClear() {
	ad.mu.Lock()
	defer ad.mu.Unlock()

	clear(ad.lastAlert)
	clear(ad.hostPacketCount)
	clear(ad.hostWindow)
	ad.alerts = ad.alerts[:0]
}

func remoteHost(pkt models.Packet) string {
	if pkt.Response {
		return pkt.Source
	}
	return pkt.Destination
}

// cleanup removes old entries to prevent memory leaks.
func (ad *AnomalyDetector) cleanup(now time.Time) {
	for key, last := range ad.lastAlert {
		if now.Sub(last) > ad.config.DataRetention {
			delete(ad.lastAlert, key)
		}
	}
	for host, windowStart := range ad.hostWindow {
		if now.Sub(windowStart) > ad.config.DataRetention {
			delete(ad.hostWindow, host)
			delete(ad.hostPacketCount, host)
		}
	}
}

// throttled reports whether key alerted within the cooldown, and records an
// alert at now otherwise.
func (ad *AnomalyDetector) throttled(key string, now time.Time) bool {
	if last, ok := ad.lastAlert[key]; ok && now.Sub(last) <= ad.config.HostCooldown {
		return true
	}
	ad.lastAlert[key] = now
	return false
}

func (ad *AnomalyDetector) detectSuspiciousHost(pkt models.Packet, remote string, now time.Time) {
	if !pkt.Suspicious || ad.throttled(string(AnomalySuspiciousHost)+"|"+remote, now) {
		return
	}
	ad.addAlert(Alert{
		Type:      AnomalySuspiciousHost,
		Source:    remote,
		Message:   fmt.Sprintf("%s traffic with flagged host %s", pkt.Protocol, remote),
		Timestamp: now,
	})
}

func (ad *AnomalyDetector) detectPlaintextCredentials(pkt models.Packet, remote string, now time.Time) {
	if !strings.EqualFold(pkt.Protocol, "HTTP") || pkt.Response || !strings.HasPrefix(pkt.Info, "POST ") {
		return
	}
	if ad.throttled(string(AnomalyPlaintextCreds)+"|"+remote, now) {
		return
	}
	ad.addAlert(Alert{
		Type:      AnomalyPlaintextCreds,
		Source:    remote,
		Message:   fmt.Sprintf("Form data posted over plaintext HTTP to %s", remote),
		Timestamp: now,
	})
}

// detectBurst checks for a high packet rate towards one host.
func (ad *AnomalyDetector) detectBurst(remote string, now time.Time) {
	if ad.config.RateThreshold <= 0 || remote == "" {
		return
	}

	start, exists := ad.hostWindow[remote]
	if !exists || now.Sub(start) > ad.config.RateWindow {
		ad.hostWindow[remote] = now
		ad.hostPacketCount[remote] = 0
	}
	ad.hostPacketCount[remote]++

	if n := ad.hostPacketCount[remote]; n > ad.config.RateThreshold {
		ad.addAlert(Alert{
			Type:      AnomalyBurst,
			Source:    remote,
			Message:   fmt.Sprintf("High packet rate with %s: %d packets in %s", remote, n, ad.config.RateWindow),
			Timestamp: now,
		})
		// Reset to avoid spam
		ad.hostPacketCount[remote] = 0
		ad.hostWindow[remote] = now
	}
}

// addAlert adds an alert to the history (circular buffer).
func (ad *AnomalyDetector) addAlert(alert Alert) {
	ad.alerts = append(ad.alerts, alert)
	if len(ad.alerts) > ad.config.MaxAlerts {
		ad.alerts = ad.alerts[len(ad.alerts)-ad.config.MaxAlerts:]
	}
}

// GetRecentAlerts returns up to limit of the most recent alerts, newest last.
func (ad *AnomalyDetector) GetRecentAlerts(limit int) []Alert {
	ad.mu.Lock()
	defer ad.mu.Unlock()

	if len(ad.alerts) == 0 {
		return []Alert{}
	}

	start := 0
	if limit > 0 && len(ad.alerts) > limit {
		start = len(ad.alerts) - limit
	}
	result := make([]Alert, len(ad.alerts)-start)
	copy(result, ad.alerts[start:])
	return result
}
