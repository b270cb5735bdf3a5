package server

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"netmonsim/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var errRateLimited = errors.New("rate limit exceeded")

// client is one websocket viewer. Every send on send happens under the hub
// lock; the hub closes it on disconnect.
type client struct {
	conn    *websocket.Conn
	send    chan models.Event
	limiter *rate.Limiter
	remote  string

	// packets up to this sequence number were in the snapshot
	snapshotSeq uint64
}

func (s *Server) readPump(c *client) {
	defer func() {
		s.hub.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("Websocket read failed", "remote", c.remote, "error", err)
			}
			return
		}
		s.hub.send(c, s.handleMessage(c, message))
	}
}

func (s *Server) handleMessage(c *client, message []byte) models.Event {
	if !c.limiter.Allow() {
		return errorEvent(errRateLimited)
	}

	var cmd Command
	if err := json.Unmarshal(message, &cmd); err != nil {
		return errorEvent(err)
	}
	reply, err := Execute(s.monitor, cmd)
	if err != nil {
		return errorEvent(err)
	}
	s.logger.Debug("Command executed", "remote", c.remote, "action", cmd.Action)
	return reply
}

func (s *Server) writePump(c *client, snapshot []models.Packet) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(models.Event{Type: models.EventSnapshot, Packets: snapshot}); err != nil {
		return
	}

	for {
		select {
		case ev, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if ev.Type == models.EventPacket && ev.Packet.Seq <= c.snapshotSeq {
				continue
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
