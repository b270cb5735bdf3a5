package synth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netmonsim/internal/catalog"
	"netmonsim/internal/models"
)

// scripted replays fixed draws, repeating the last one.
type scripted struct {
	values []float64
	i      int
}

func (s *scripted) Float64() float64 {
	v := s.values[len(s.values)-1]
	if s.i < len(s.values) {
		v = s.values[s.i]
	}
	s.i++
	return v
}

func scenarioCatalog() *catalog.Catalog {
	return catalog.Build([]models.Page{
		{URL: "https://phish.test", SecurityLevel: models.ClassDangerous, Security: models.PageSecurity{IsHTTPS: true}},
		{URL: "https://news.test", SecurityLevel: models.ClassSecure, Security: models.PageSecurity{IsHTTPS: true}},
	}, []models.Email{{Sender: "alerts@bank.test", Suspicious: true}}, nil)
}

func fixedClock() time.Time {
	return time.Date(2026, 10, 18, 9, 30, 5, 0, time.UTC)
}

func TestSuspiciousFollowsSource(t *testing.T) {
	s := New(scenarioCatalog(), Config{
		LocalAddress: "192.168.1.100", WebsiteShare: 0.5, EmailShare: 0.25, SystemShare: 0.25,
		ResponseProbability: 0.3, Seed: 42,
	})

	seen := map[string]int{}
	for i := 0; i < 1000; i++ {
		pkt := s.Synthesize()
		remote := pkt.Remote("192.168.1.100")
		seen[remote]++
		switch remote {
		case "phish.test":
			require.True(t, pkt.Suspicious, "packet %+v", pkt)
		case "news.test":
			require.False(t, pkt.Suspicious, "packet %+v", pkt)
		}
	}
	assert.NotZero(t, seen["phish.test"])
	assert.NotZero(t, seen["news.test"])
}

func TestGroupMix(t *testing.T) {
	s := New(scenarioCatalog(), DefaultConfig())

	counts := map[models.Group]int{}
	const draws = 8000
	for i := 0; i < draws; i++ {
		counts[s.Synthesize().Group]++
	}
	assert.InDelta(t, 0.50, float64(counts[models.GroupWebsite])/draws, 0.05)
	assert.InDelta(t, 0.25, float64(counts[models.GroupEmail])/draws, 0.05)
	assert.InDelta(t, 0.25, float64(counts[models.GroupSystem])/draws, 0.05)
}

func TestEmptyGroupsAreNeverSelected(t *testing.T) {
	s := New(catalog.Build(nil, nil, nil), DefaultConfig())
	for i := 0; i < 200; i++ {
		assert.Equal(t, models.GroupSystem, s.Synthesize().Group)
	}
}

func TestOutboundPacket(t *testing.T) {
	cat := catalog.New([]models.TrafficSource{{
		Identity: "news.test",
		Patterns: []models.Pattern{{Protocol: "HTTPS", Info: "GET /index.html from {host} at {addr}", Weight: 1}},
	}}, nil, nil)

	// group draw, source draw, pattern draw, swap draw
	rng := &scripted{values: []float64{0.1, 0.5, 0.5, 0.99}}
	s := New(cat, Config{LocalAddress: "10.0.0.5", WebsiteShare: 1, ResponseProbability: 0.3},
		WithRand(rng), WithClock(fixedClock))

	pkt := s.Synthesize()
	assert.Equal(t, "10.0.0.5", pkt.Source)
	assert.Equal(t, "news.test", pkt.Destination)
	assert.Equal(t, "HTTPS", pkt.Protocol)
	assert.Equal(t, "GET /index.html from news.test at "+catalog.AddressFor("news.test"), pkt.Info)
	assert.Equal(t, "09:30:05", pkt.Timestamp)
	assert.False(t, pkt.Response)
	assert.NotEmpty(t, pkt.ID)
	assert.Equal(t, uint64(1), pkt.Seq)
}

func TestResponseSwap(t *testing.T) {
	cat := catalog.New([]models.TrafficSource{{
		Identity: "news.test",
		Patterns: []models.Pattern{{Protocol: "HTTP", Info: "POST /comments", Weight: 1}},
	}}, nil, nil)

	rng := &scripted{values: []float64{0.1, 0.5, 0.5, 0.1}}
	s := New(cat, Config{LocalAddress: "10.0.0.5", WebsiteShare: 1, ResponseProbability: 0.3},
		WithRand(rng), WithClock(fixedClock))

	pkt := s.Synthesize()
	assert.Equal(t, "news.test", pkt.Source)
	assert.Equal(t, "10.0.0.5", pkt.Destination)
	assert.Equal(t, "Response to POST /comments", pkt.Info)
	assert.True(t, pkt.Response)
}

func TestResponseSwapLeavesOtherProtocols(t *testing.T) {
	pkt := asResponse(models.Packet{Source: "a", Destination: "b", Protocol: "DNS", Info: "GET odd"})
	assert.Equal(t, "GET odd", pkt.Info)
	assert.Equal(t, "b", pkt.Source)
}

func TestIDsAreUnique(t *testing.T) {
	s := New(scenarioCatalog(), DefaultConfig())
	ids := map[string]bool{}
	var last uint64
	for i := 0; i < 500; i++ {
		pkt := s.Synthesize()
		require.False(t, ids[pkt.ID])
		require.Greater(t, pkt.Seq, last)
		ids[pkt.ID] = true
		last = pkt.Seq
	}
}

func TestAlertPacket(t *testing.T) {
	s := New(scenarioCatalog(), DefaultConfig(), WithClock(fixedClock))
	pkt := s.Alert("Website Visit: User navigated to https://phish.test", true)
	assert.True(t, pkt.Alert)
	assert.Equal(t, "SYSTEM", pkt.Source)
	assert.Equal(t, "ALERT", pkt.Destination)
	assert.Equal(t, "INFO", pkt.Protocol)
	assert.Equal(t, models.GroupAlert, pkt.Group)
}

func TestLookupUsesFirstResolver(t *testing.T) {
	s := New(catalog.New(nil, nil, []models.TrafficSource{
		{Identity: "192.168.1.1", Patterns: []models.Pattern{{Protocol: "TCP", Info: "ACK", Weight: 1}}},
		{Identity: "dns.corp.test", Address: "10.0.0.53", Patterns: []models.Pattern{{Protocol: "DNS", Info: "Standard query A {host}", Weight: 1}}},
	}), DefaultConfig(), WithClock(fixedClock))

	pkt := s.Lookup("DNS resolution for https://phish.test")
	assert.Equal(t, "dns.corp.test", pkt.Destination)
	assert.Equal(t, "10.0.0.53", pkt.Address)
	assert.Equal(t, DefaultConfig().LocalAddress, pkt.Source)
	assert.Equal(t, "DNS", pkt.Protocol)
	assert.Equal(t, "DNS resolution for https://phish.test", pkt.Info)
	assert.Equal(t, models.GroupSystem, pkt.Group)
	assert.False(t, pkt.Alert)
}
