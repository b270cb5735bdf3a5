package server

import (
	"sync"
	"sync/atomic"

	"netmonsim/internal/logging"
	"netmonsim/internal/models"
)

const sendBuffer = 256

// Hub is a capture sink that fans stream events out to websocket clients.
// A client that cannot keep up is disconnected.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	logger  logging.Logger

	slow atomic.Uint64
}

// NewHub creates an empty hub.
func NewHub(logger logging.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		logger:  logging.OrDefault(logger).With("component", "hub"),
	}
}

func (h *Hub) OnPacket(pkt models.Packet) { h.broadcast(models.PacketEvent(pkt)) }
func (h *Hub) OnClear()                   { h.broadcast(models.Event{Type: models.EventClear}) }
func (h *Hub) OnRemove(id string)         { h.broadcast(models.Event{Type: models.EventRemove, ID: id}) }

func (h *Hub) broadcast(ev models.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- ev:
		default:
			h.slow.Add(1)
			h.dropLocked(c)
			h.logger.Warn("Dropping slow client", "remote", c.remote)
		}
	}
}

// send delivers ev to one client. It reports false if the client is gone or
// its buffer is full.
func (h *Hub) send(c *client, ev models.Event) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return false
	}
	select {
	case c.send <- ev:
		return true
	default:
		return false
	}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(c)
}

func (h *Hub) dropLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// CloseAll disconnects every client.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.dropLocked(c)
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
