package capture

import (
	"time"

	"netmonsim/internal/catalog"
	"netmonsim/internal/logging"
	"netmonsim/internal/models"
	"netmonsim/internal/sched"
	"netmonsim/internal/synth"
)

// Config collects the monitor settings.
type Config struct {
	Interval      time.Duration
	QueueCapacity int
	Burst         BurstConfig
}

// DefaultConfig returns the default monitor settings.
func DefaultConfig() Config {
	return Config{
		Interval:      DefaultInterval,
		QueueCapacity: DefaultQueueCapacity,
		Burst:         DefaultBurstConfig(),
	}
}

// Monitor is the surface the monitor UI drives: capture lifecycle, on-demand
// generation, the packet list and action bursts.
type Monitor struct {
	session *Session
	bursts  *BurstEmitter
	synth   *synth.Synthesizer
}

// NewMonitor wires a session and a burst emitter around syn. sink may be nil.
func NewMonitor(syn *synth.Synthesizer, scheduler sched.Scheduler, sink Sink, cfg Config, logger logging.Logger) *Monitor {
	if scheduler == nil {
		scheduler = sched.Real{}
	}
	session := NewSession(syn, scheduler, sink, cfg.Interval, cfg.QueueCapacity, logger)
	return &Monitor{
		session: session,
		bursts:  NewBurstEmitter(session, syn.Catalog(), scheduler, cfg.Burst),
		synth:   syn,
	}
}

func (m *Monitor) StartCapture() { m.session.Start() }
func (m *Monitor) StopCapture() { m.session.Stop() }
func (m *Monitor) Toggle() bool { return m.session.Toggle() }
func (m *Monitor) Running() bool { return m.session.Running() }
func (m *Monitor) ClearPackets() { m.session.Clear() }

// GeneratePacket produces and enqueues one packet on demand.
func (m *Monitor) GeneratePacket() models.Packet { return m.session.Generate() }

// Packets returns the current queue, oldest first.
func (m *Monitor) Packets() []models.Packet { return m.session.Packets() }

// SetInterval changes the capture interval.
func (m *Monitor) SetInterval(d time.Duration) { m.session.SetInterval(d) }

// Interval returns the capture interval.
func (m *Monitor) Interval() time.Duration { return m.session.Interval() }

// GenerateWebsiteTraffic bursts the traffic of loading a page, one packet
// per pattern of its source.
func (m *Monitor) GenerateWebsiteTraffic(rawURL string) int { return m.bursts.Website(rawURL) }

// GenerateEmailTraffic bursts the traffic of fetching a message, one packet
// per pattern of its mail server.
func (m *Monitor) GenerateEmailTraffic(sender string) int { return m.bursts.Email(sender) }

// Navigate reports a page visit: DNS lookup, page burst and a correlator
// alert. It returns the burst size.
func (m *Monitor) Navigate(rawURL string) int { return m.bursts.Navigate(rawURL) }

// OpenEmail reports an opened email: mail burst and a correlator alert.
func (m *Monitor) OpenEmail(sender string) int { return m.bursts.OpenEmail(sender) }

// EmailLinkClicked reports a link followed from an email: DNS lookup, page
// burst and a correlator alert.
func (m *Monitor) EmailLinkClicked(rawURL string, suspicious bool) int {
	return m.bursts.LinkClicked(rawURL, suspicious)
}

// Catalog returns the traffic source catalog.
func (m *Monitor) Catalog() *catalog.Catalog { return m.synth.Catalog() }

// LocalAddress returns the synthetic client address.
func (m *Monitor) LocalAddress() string { return m.synth.Config().LocalAddress }

// Stats returns session counters.
func (m *Monitor) Stats() map[string]interface{} { return m.session.Stats() }
