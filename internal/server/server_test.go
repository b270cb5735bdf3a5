package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netmonsim/internal/analysis"
	"netmonsim/internal/capture"
	"netmonsim/internal/catalog"
	"netmonsim/internal/logging"
	"netmonsim/internal/models"
	"netmonsim/internal/sched"
	"netmonsim/internal/synth"
)

type fixture struct {
	monitor *capture.Monitor
	clock   *sched.Virtual
	hub     *Hub
	http    *httptest.Server
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()

	cat := catalog.Build([]models.Page{
		{URL: "https://phish.test", SecurityLevel: models.ClassDangerous, Security: models.PageSecurity{IsHTTPS: true}},
		{URL: "https://news.test", SecurityLevel: models.ClassSecure, Security: models.PageSecurity{IsHTTPS: true}},
	}, []models.Email{{Sender: "alerts@bank.test", Suspicious: true}}, nil)

	clock := sched.NewVirtual(time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC))
	syn := synth.New(cat, synth.DefaultConfig(), synth.WithClock(clock.Now))

	reg := prometheus.NewRegistry()
	hub := NewHub(logging.Nop())
	stats := analysis.NewTrafficStats(nil, clock.Now)
	sink := capture.MultiSink{hub, stats, NewMetrics(reg)}
	monitor := capture.NewMonitor(syn, clock, sink, capture.DefaultConfig(), logging.Nop())

	srv := New(cfg, monitor, hub, stats, reg, logging.Nop())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		hub.CloseAll()
		ts.Close()
	})
	return &fixture{monitor: monitor, clock: clock, hub: hub, http: ts}
}

func (f *fixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.http.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) models.Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var ev models.Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

// readUntil reads events until one of type want arrives, returning everything read.
func readUntil(t *testing.T, conn *websocket.Conn, want models.EventType) []models.Event {
	t.Helper()
	var events []models.Event
	for i := 0; i < 20; i++ {
		ev := readEvent(t, conn)
		events = append(events, ev)
		if ev.Type == want {
			return events
		}
	}
	t.Fatalf("no %s event", want)
	return nil
}

func TestWebsocketSnapshotAndStream(t *testing.T) {
	f := newFixture(t, Config{})
	f.monitor.GeneratePacket()
	f.monitor.GeneratePacket()

	conn := f.dial(t)
	snap := readEvent(t, conn)
	require.Equal(t, models.EventSnapshot, snap.Type)
	require.Len(t, snap.Packets, 2)

	require.NoError(t, conn.WriteJSON(Command{Action: "generate"}))
	events := readUntil(t, conn, models.EventStatus)
	require.Len(t, events, 2)
	assert.Equal(t, models.EventPacket, events[0].Type)
	assert.Equal(t, uint64(3), events[0].Packet.Seq)
	assert.Equal(t, "generated packet 3", events[1].Message)
}

func TestWebsocketCommands(t *testing.T) {
	f := newFixture(t, Config{})
	conn := f.dial(t)
	readEvent(t, conn)

	require.NoError(t, conn.WriteJSON(Command{Action: "start"}))
	status := readEvent(t, conn)
	require.NotNil(t, status.Running)
	assert.True(t, *status.Running)
	assert.True(t, f.monitor.Running())

	require.NoError(t, conn.WriteJSON(Command{Action: "navigate", URL: "https://news.test/"}))
	status = readEvent(t, conn)
	assert.Contains(t, status.Message, "scheduled")

	require.NoError(t, conn.WriteJSON(Command{Action: "dance"}))
	ev := readEvent(t, conn)
	assert.Equal(t, models.EventError, ev.Type)
	assert.Equal(t, `unknown action "dance"`, ev.Message)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	assert.Equal(t, models.EventError, readEvent(t, conn).Type)

	require.NoError(t, conn.WriteJSON(Command{Action: "clear"}))
	events := readUntil(t, conn, models.EventStatus)
	assert.Equal(t, models.EventClear, events[0].Type)
}

func TestWebsocketBurstAndAlertExpiry(t *testing.T) {
	f := newFixture(t, Config{})
	conn := f.dial(t)
	readEvent(t, conn)

	n := f.monitor.Navigate("https://phish.test")
	f.clock.Advance(15 * time.Second)

	var packets, alerts int
	var removed string
	for removed == "" {
		ev := readEvent(t, conn)
		switch ev.Type {
		case models.EventPacket:
			packets++
			if ev.Packet.Alert {
				alerts++
			}
		case models.EventRemove:
			removed = ev.ID
		}
	}
	assert.Equal(t, n+2, packets)
	assert.Equal(t, 1, alerts)
	assert.True(t, strings.HasPrefix(removed, "alert-"))
}

func TestWebsocketRateLimit(t *testing.T) {
	f := newFixture(t, Config{CommandRate: 0.001, CommandBurst: 1})
	conn := f.dial(t)
	readEvent(t, conn)

	require.NoError(t, conn.WriteJSON(Command{Action: "stop"}))
	assert.Equal(t, models.EventStatus, readEvent(t, conn).Type)

	require.NoError(t, conn.WriteJSON(Command{Action: "stop"}))
	ev := readEvent(t, conn)
	assert.Equal(t, models.EventError, ev.Type)
	assert.Equal(t, errRateLimited.Error(), ev.Message)
}

func TestPacketsEndpointFilters(t *testing.T) {
	f := newFixture(t, Config{})
	f.monitor.GenerateWebsiteTraffic("https://phish.test")
	f.monitor.GenerateWebsiteTraffic("https://news.test")
	f.clock.Advance(time.Second)

	var all, suspicious []models.Packet
	getJSON(t, f.http.URL+"/api/packets", &all)
	getJSON(t, f.http.URL+"/api/packets?normal=false", &suspicious)

	assert.Equal(t, len(f.monitor.Packets()), len(all))
	require.NotEmpty(t, suspicious)
	assert.Less(t, len(suspicious), len(all))
	for _, p := range suspicious {
		assert.True(t, p.Suspicious)
	}

	resp, err := http.Get(f.http.URL + "/api/packets?suspicious=maybe")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStatsEndpoint(t *testing.T) {
	f := newFixture(t, Config{})
	for i := 0; i < 10; i++ {
		f.monitor.GeneratePacket()
	}

	var stats statsResponse
	getJSON(t, f.http.URL+"/api/stats", &stats)
	assert.Equal(t, 10, stats.Summary.Total)
	assert.LessOrEqual(t, len(stats.Summary.TopSources), topN)
	assert.EqualValues(t, 10, stats.Session["emitted"])
}

func TestCommandEndpoint(t *testing.T) {
	f := newFixture(t, Config{})

	resp, err := http.Post(f.http.URL+"/api/command", "application/json", bytes.NewBufferString(`{"action":"interval","intervalMs":250}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 250*time.Millisecond, f.monitor.Interval())

	resp2, err := http.Post(f.http.URL+"/api/command", "application/json", bytes.NewBufferString(`{"action":"interval"}`))
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, Config{})
	f.monitor.GeneratePacket()
	f.monitor.ClearPackets()

	resp, err := http.Get(f.http.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, "netmonsim_packets_total")
	assert.Contains(t, text, "netmonsim_queue_clears_total 1")
	assert.Contains(t, text, "netmonsim_queue_length 0")
	assert.Contains(t, text, "netmonsim_capture_running 0")
}

func getJSON(t *testing.T, url string, v interface{}) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}
