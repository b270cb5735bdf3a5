package server

import (
	"fmt"
	"time"

	"netmonsim/internal/capture"
	"netmonsim/internal/models"
)

// Command is a control message from a remote viewer.
type Command struct {
	Action     string `json:"action"`
	URL        string `json:"url,omitempty"`
	Sender     string `json:"sender,omitempty"`
	Suspicious bool   `json:"suspicious,omitempty"`
	IntervalMS int    `json:"intervalMs,omitempty"`
}

// Execute applies cmd to the monitor and returns the status reply.
func Execute(m *capture.Monitor, cmd Command) (models.Event, error) {
	var msg string
	switch cmd.Action {
	case "start":
		m.StartCapture()
		msg = "capture started"
	case "stop":
		m.StopCapture()
		msg = "capture stopped"
	case "toggle":
		m.Toggle()
		msg = "capture toggled"
	case "generate":
		pkt := m.GeneratePacket()
		msg = fmt.Sprintf("generated packet %d", pkt.Seq)
	case "clear":
		m.ClearPackets()
		msg = "packets cleared"
	case "navigate":
		msg = fmt.Sprintf("scheduled %d packets", m.Navigate(cmd.URL))
	case "open-email":
		msg = fmt.Sprintf("scheduled %d packets", m.OpenEmail(cmd.Sender))
	case "link-click":
		msg = fmt.Sprintf("scheduled %d packets", m.EmailLinkClicked(cmd.URL, cmd.Suspicious))
	case "interval":
		if cmd.IntervalMS <= 0 {
			return models.Event{}, fmt.Errorf("interval must be positive, got %dms", cmd.IntervalMS)
		}
		m.SetInterval(time.Duration(cmd.IntervalMS) * time.Millisecond)
		msg = fmt.Sprintf("interval set to %s", m.Interval())
	default:
		return models.Event{}, fmt.Errorf("unknown action %q", cmd.Action)
	}
	return statusEvent(m, msg), nil
}

func statusEvent(m *capture.Monitor, msg string) models.Event {
	running := m.Running()
	return models.Event{Type: models.EventStatus, Running: &running, Message: msg}
}

func errorEvent(err error) models.Event {
	return models.Event{Type: models.EventError, Message: err.Error()}
}
