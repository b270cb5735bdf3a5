// Package synth assembles synthetic packets from the traffic source catalog.
package synth

import (
	"math/rand/v2"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"netmonsim/internal/catalog"
	"netmonsim/internal/models"
	"netmonsim/internal/sampler"
)

// TimeLayout is the wall-clock format of Packet.Timestamp.
const TimeLayout = "15:04:05"

// Config holds the traffic mix constants.
type Config struct {
	LocalAddress        string  // synthetic client address
	WebsiteShare        float64 // probability mass of the website group
	EmailShare          float64
	SystemShare         float64
	ResponseProbability float64 // chance of framing a packet as inbound
	Seed                uint64  // 0 seeds from the clock
}

// DefaultConfig returns the default traffic mix.
func DefaultConfig() Config {
	return Config{
		LocalAddress:        "192.168.1.100",
		WebsiteShare:        0.50,
		EmailShare:          0.25,
		SystemShare:         0.25,
		ResponseProbability: 0.30,
	}
}

// Synthesizer draws packets from a catalog. It is not safe for concurrent use.
type Synthesizer struct {
	catalog *catalog.Catalog
	cfg     Config
	rng     sampler.Source
	now     func() time.Time
	seq     atomic.Uint64
}

// Option customizes a Synthesizer.
type Option func(*Synthesizer)

// WithRand replaces the random source.
func WithRand(src sampler.Source) Option {
	return func(s *Synthesizer) { s.rng = src }
}

// WithClock replaces the wall clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Synthesizer) { s.now = now }
}

// New creates a Synthesizer over cat.
func New(cat *catalog.Catalog, cfg Config, opts ...Option) *Synthesizer {
	if cfg.LocalAddress == "" {
		cfg.LocalAddress = DefaultConfig().LocalAddress
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	s := &Synthesizer{
		catalog: cat,
		cfg:     cfg,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the synthesizer's configuration.
func (s *Synthesizer) Config() Config { return s.cfg }

// Catalog returns the catalog packets are drawn from.
func (s *Synthesizer) Catalog() *catalog.Catalog { return s.catalog }

// Synthesize draws a group, a source and a pattern and assembles a packet.
func (s *Synthesizer) Synthesize() models.Packet {
	group := s.pickGroup()
	src := sampler.Pick(s.rng, s.catalog.Sources(group), func(t models.TrafficSource) int {
		return t.TotalWeight()
	})
	pattern := sampler.Pick(s.rng, src.Patterns, func(p models.Pattern) int { return p.Weight })

	pkt := s.FromPattern(src, pattern)
	if s.rng.Float64() < s.cfg.ResponseProbability {
		pkt = asResponse(pkt)
	}
	return pkt
}

// pickGroup draws a group by the configured shares, skipping empty groups.
func (s *Synthesizer) pickGroup() models.Group {
	groups := s.catalog.NonEmptyGroups()
	if len(groups) == 0 {
		return models.GroupSystem
	}

	shares := map[models.Group]float64{
		models.GroupWebsite: s.cfg.WebsiteShare,
		models.GroupEmail:   s.cfg.EmailShare,
		models.GroupSystem:  s.cfg.SystemShare,
	}
	return sampler.Pick(s.rng, groups, func(g models.Group) float64 { return shares[g] })
}

// FromPattern builds the outbound packet for one pattern of src.
func (s *Synthesizer) FromPattern(src models.TrafficSource, p models.Pattern) models.Packet {
	now := s.now()
	seq := s.seq.Add(1)

	return models.Packet{
		ID:          uuid.NewString(),
		Seq:         seq,
		Timestamp:   now.Format(TimeLayout),
		CapturedAt:  now,
		Source:      s.cfg.LocalAddress,
		Destination: src.Identity,
		Protocol:    p.Protocol,
		Info:        RenderInfo(p.Info, src),
		Suspicious:  src.Suspicious,
		Group:       src.Group,
		Address:     src.Address,
	}
}

// Lookup builds an outbound DNS packet to the first system resolver, with info
// as its text. The resolver is the first system source with a DNS pattern.
func (s *Synthesizer) Lookup(info string) models.Packet {
	system := s.catalog.Sources(models.GroupSystem)
	var resolver models.TrafficSource
	if len(system) > 0 {
		resolver = system[0]
	}
	for _, src := range system {
		if hasProtocol(src, "DNS") {
			resolver = src
			break
		}
	}

	pkt := s.FromPattern(resolver, models.Pattern{Protocol: "DNS"})
	pkt.Info = info
	return pkt
}

func hasProtocol(src models.TrafficSource, protocol string) bool {
	for _, p := range src.Patterns {
		if strings.EqualFold(p.Protocol, protocol) {
			return true
		}
	}
	return false
}

// Alert builds an informational correlator packet.
func (s *Synthesizer) Alert(info string, suspicious bool) models.Packet {
	now := s.now()
	return models.Packet{
		ID:          "alert-" + uuid.NewString(),
		Seq:         s.seq.Add(1),
		Timestamp:   now.Format(TimeLayout),
		CapturedAt:  now,
		Source:      "SYSTEM",
		Destination: "ALERT",
		Protocol:    "INFO",
		Info:        info,
		Suspicious:  suspicious,
		Group:       models.GroupAlert,
		Alert:       true,
	}
}

// RenderInfo expands the {host} and {addr} placeholders of an info template.
func RenderInfo(template string, src models.TrafficSource) string {
	if !strings.Contains(template, "{") {
		return template
	}
	return strings.NewReplacer("{host}", src.Identity, "{addr}", src.Address).Replace(template)
}

// asResponse swaps the endpoints and reframes web requests as responses.
func asResponse(pkt models.Packet) models.Packet {
	pkt.Source, pkt.Destination = pkt.Destination, pkt.Source
	pkt.Response = true

	if pkt.Protocol == "HTTP" || pkt.Protocol == "HTTPS" {
		for _, verb := range []string{"GET ", "POST "} {
			if strings.HasPrefix(pkt.Info, verb) {
				pkt.Info = "Response to " + pkt.Info
				break
			}
		}
	}
	return pkt
}
