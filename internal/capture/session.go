// Package capture drives the simulated packet capture: the periodic capture
// session, action-triggered bursts and the bounded packet queue they share.
package capture

import (
	"sync"
	"time"

	"netmonsim/internal/logging"
	"netmonsim/internal/models"
	"netmonsim/internal/sched"
	"netmonsim/internal/synth"
)

// DefaultInterval is the time between packets of a running capture.
const DefaultInterval = 1500 * time.Millisecond

// Session owns the packet queue and the capture timer. It moves between Idle
// and Capturing; every state change and every emission holds mu, so the
// periodic loop and delayed bursts never interleave inside an emission.
type Session struct {
	mu       sync.Mutex
	running  bool
	timer    sched.Timer
	gen      uint64 // invalidates ticks scheduled before the last start/stop
	interval time.Duration

	queue  *Queue
	synth  *synth.Synthesizer
	sched  sched.Scheduler
	sink   Sink
	logger logging.Logger

	emitted uint64
	evicted uint64
}

// NewSession creates an idle session.
func NewSession(syn *synth.Synthesizer, scheduler sched.Scheduler, sink Sink, interval time.Duration, capacity int, logger logging.Logger) *Session {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if sink == nil {
		sink = nopSink{}
	}
	return &Session{
		interval: interval,
		queue:    NewQueue(capacity),
		synth:    syn,
		sched:    scheduler,
		sink:     sink,
		logger:   logging.OrDefault(logger).With("component", "capture"),
	}
}

// Start begins periodic generation. It is a no-op while capturing.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.gen++
	s.scheduleLocked(s.gen)
	s.logger.Info("Capture started", "interval", s.interval.String())
}

// Stop cancels periodic generation. It is a no-op while idle.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.logger.Info("Capture stopped", "emitted", s.emitted)
}

// Toggle flips the capture state and returns the new one.
func (s *Session) Toggle() bool {
	if s.Running() {
		s.Stop()
		return false
	}
	s.Start()
	return true
}

// Running reports whether the session is capturing.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Interval returns the time between periodic packets.
func (s *Session) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// SetInterval changes the generation interval, restarting the loop when
// capturing. Non-positive values are ignored.
func (s *Session) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.interval = d
	if !s.running {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	s.scheduleLocked(s.gen)
}

func (s *Session) scheduleLocked(gen uint64) {
	s.timer = s.sched.AfterFunc(s.interval, func() { s.tick(gen) })
}

func (s *Session) tick(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || gen != s.gen {
		return
	}
	s.emitLocked(s.synth.Synthesize())
	s.scheduleLocked(gen)
}

// Generate synthesizes and enqueues exactly one packet.
func (s *Session) Generate() models.Packet {
	s.mu.Lock()
	defer s.mu.Unlock()

	pkt := s.synth.Synthesize()
	s.emitLocked(pkt)
	return pkt
}

// emitPattern enqueues the packet for one fixed pattern of src.
func (s *Session) emitPattern(src models.TrafficSource, p models.Pattern) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.emitLocked(s.synth.FromPattern(src, p))
}

// emitLookup enqueues a system DNS packet carrying info.
func (s *Session) emitLookup(info string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.emitLocked(s.synth.Lookup(info))
}

// emitAlert enqueues a correlator alert packet and returns it.
func (s *Session) emitAlert(info string, suspicious bool) models.Packet {
	s.mu.Lock()
	defer s.mu.Unlock()

	pkt := s.synth.Alert(info, suspicious)
	s.emitLocked(pkt)
	return pkt
}

func (s *Session) emitLocked(pkt models.Packet) {
	if n := s.queue.Push(pkt); n > 0 {
		s.evicted += uint64(n)
	}
	s.emitted++
	s.sink.OnPacket(pkt)
	s.logger.Debug("Packet emitted", "seq", pkt.Seq, "protocol", pkt.Protocol, "destination", pkt.Destination)
}

// Packets returns the queue, oldest first.
func (s *Session) Packets() []models.Packet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Snapshot()
}

// Clear empties the queue and tells the sink to reset. The capture state is
// left unchanged.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queue.Clear()
	s.sink.OnClear()
}

// remove drops a packet from the queue, notifying sinks that care.
func (s *Session) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.queue.Remove(id) {
		if r, ok := s.sink.(Remover); ok {
			r.OnRemove(id)
		}
	}
}

// Stats returns emission counters.
func (s *Session) Stats() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	return map[string]interface{}{
		"running":   s.running,
		"emitted":   s.emitted,
		"evicted":   s.evicted,
		"queue_len": s.queue.Len(),
		"queue_cap": s.queue.Capacity(),
	}
}
