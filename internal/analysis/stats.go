package analysis

import (
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"netmonsim/internal/models"
)

// Count is a label with its number of packets.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Summary is the statistics panel for a set of packets.
type Summary struct {
	Total           int     `json:"total"`
	Suspicious      int     `json:"suspicious"`
	Alerts          int     `json:"alerts"`
	Protocols       []Count `json:"protocols"`
	TopSources      []Count `json:"topSources"`
	TopDestinations []Count `json:"topDestinations"`
	SecurityScore   int     `json:"securityScore"`
}

// Summarize computes statistics over a packet snapshot. Sorted lists are
// ordered by count, then name. Top lists hold at most topN entries.
func Summarize(packets []models.Packet, topN int) Summary {
	s := Summary{Total: len(packets)}
	protocols := map[string]int{}
	sources := map[string]int{}
	destinations := map[string]int{}

	for _, p := range packets {
		if p.Suspicious {
			s.Suspicious++
		}
		if p.Alert {
			s.Alerts++
		}
		proto := p.Protocol
		if proto == "" {
			proto = "Unknown"
		}
		protocols[proto]++
		sources[p.Source]++
		destinations[p.Destination]++
	}

	s.Protocols = sortedCounts(protocols, 0)
	s.TopSources = sortedCounts(sources, topN)
	s.TopDestinations = sortedCounts(destinations, topN)
	s.SecurityScore = SecurityScore(s.Suspicious, s.Total)
	return s
}

// SecurityScore is 100 minus the suspicious percentage, rounded, never below 0.
// An empty capture scores 100.
func SecurityScore(suspicious, total int) int {
	if total <= 0 {
		return 100
	}
	ratio := float64(suspicious) / float64(total)
	return int(math.Max(0, math.Round(100-ratio*100)))
}

// ScoreRating buckets a security score the way the statistics panel colors it.
func ScoreRating(score int) string {
	switch {
	case score > 70:
		return "good"
	case score > 40:
		return "fair"
	default:
		return "poor"
	}
}

func sortedCounts(m map[string]int, limit int) []Count {
	out := make([]Count, 0, len(m))
	for name, n := range m {
		out = append(out, Count{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Name < out[j].Name
		}
		return out[i].Count > out[j].Count
	})
	if limit > 0 && len(out) > limit {
		return out[:limit]
	}
	return out
}

// DomainEntry represents a host name seen in the traffic.
type DomainEntry struct {
	Hostname  string
	Timestamp time.Time
	Source    string // "DNS", "SNI" or "HTTP"
}

// TrafficStats accumulates statistics over every emitted packet since the
// last clear, including packets the queue has since evicted. It is a
// capture sink.
type TrafficStats struct {
	mu             sync.Mutex
	totalPackets   int64
	suspicious     int64
	windowPackets  int64
	lastTick       time.Time
	protocolCounts map[string]int64

	domainLog       []DomainEntry
	maxDomainLog    int
	anomalyDetector *AnomalyDetector
	now             func() time.Time
}

// NewTrafficStats creates a new TrafficStats instance. now may be nil.
func NewTrafficStats(detector *AnomalyDetector, now func() time.Time) *TrafficStats {
	if now == nil {
		now = time.Now
	}
	if detector == nil {
		detector = NewAnomalyDetector(DefaultConfig())
	}
	return &TrafficStats{
		lastTick:        now(),
		protocolCounts:  make(map[string]int64),
		domainLog:       make([]DomainEntry, 0),
		maxDomainLog:    50,
		anomalyDetector: detector,
		now:             now,
	}
}

// OnPacket updates stats with a new packet.
func (s *TrafficStats) OnPacket(pkt models.Packet) {
	s.mu.Lock()
	s.totalPackets++
	s.windowPackets++
	if pkt.Suspicious {
		s.suspicious++
	}

	proto := pkt.Protocol
	if proto == "" {
		proto = "Unknown"
	}
	s.protocolCounts[proto]++

	if entry, ok := domainEntry(pkt); ok {
		s.domainLog = append(s.domainLog, entry)
		if len(s.domainLog) > s.maxDomainLog {
			s.domainLog = s.domainLog[len(s.domainLog)-s.maxDomainLog:]
		}
	}
	s.mu.Unlock()

	// detector has its own mutex
	s.anomalyDetector.OnPacket(pkt)
}

// OnClear resets the counters and the detector.
func (s *TrafficStats) OnClear() {
	s.mu.Lock()
	s.totalPackets = 0
	s.suspicious = 0
	s.windowPackets = 0
	s.lastTick = s.now()
	s.protocolCounts = make(map[string]int64)
	s.domainLog = s.domainLog[:0]
	s.mu.Unlock()

	s.anomalyDetector.OnClear()
}

// domainEntry extracts the host name a packet reveals: DNS query names and the
// host of outbound web requests.
func domainEntry(pkt models.Packet) (DomainEntry, bool) {
	if pkt.Alert {
		return DomainEntry{}, false
	}
	ts := pkt.CapturedAt
	switch strings.ToUpper(pkt.Protocol) {
	case "DNS":
		const prefix = "Standard query "
		if !strings.HasPrefix(pkt.Info, prefix) {
			return DomainEntry{}, false
		}
		fields := strings.Fields(strings.TrimPrefix(pkt.Info, prefix))
		if len(fields) < 2 {
			return DomainEntry{}, false
		}
		return DomainEntry{Hostname: fields[1], Timestamp: ts, Source: "DNS"}, true
	case "HTTPS", "HTTP":
		if pkt.Response {
			return DomainEntry{}, false
		}
		source := "HTTP"
		if strings.EqualFold(pkt.Protocol, "HTTPS") {
			source = "SNI"
		}
		return DomainEntry{Hostname: pkt.Destination, Timestamp: ts, Source: source}, true
	}
	return DomainEntry{}, false
}

// GetRate returns the packet rate (pps) since the last call.
func (s *TrafficStats) GetRate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	duration := now.Sub(s.lastTick).Seconds()
	if duration <= 0 {
		return 0
	}
	pps := float64(s.windowPackets) / duration

	s.windowPackets = 0
	s.lastTick = now
	return pps
}

// Totals returns the packet and suspicious packet counts since the last clear.
func (s *TrafficStats) Totals() (total, suspicious int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalPackets, s.suspicious
}

// GetProtocolStats returns the protocol distribution, most frequent first.
func (s *TrafficStats) GetProtocolStats() []Count {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := make(map[string]int, len(s.protocolCounts))
	for proto, n := range s.protocolCounts {
		m[proto] = int(n)
	}
	return sortedCounts(m, 0)
}

// GetDomainLog returns the recent domain log entries.
func (s *TrafficStats) GetDomainLog() []DomainEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]DomainEntry, len(s.domainLog))
	copy(result, s.domainLog)
	return result
}

// GetAlerts returns recent anomaly alerts.
func (s *TrafficStats) GetAlerts(limit int) []Alert {
	return s.anomalyDetector.GetRecentAlerts(limit)
}
