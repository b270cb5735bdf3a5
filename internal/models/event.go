package models

// EventType labels a message on the packet stream.
type EventType string

const (
	EventSnapshot EventType = "snapshot"
	EventPacket   EventType = "packet"
	EventClear    EventType = "clear"
	EventRemove   EventType = "remove"
	EventStatus   EventType = "status"
	EventError    EventType = "error"
)

// Event is one message of the packet stream sent to remote viewers.
type Event struct {
	Type    EventType `json:"type"`
	Packet  *Packet   `json:"packet,omitempty"`
	Packets []Packet  `json:"packets,omitempty"`
	ID      string    `json:"id,omitempty"`
	Running *bool     `json:"running,omitempty"`
	Message string    `json:"message,omitempty"`
}

// PacketEvent wraps pkt in a packet event.
func PacketEvent(pkt Packet) Event {
	return Event{Type: EventPacket, Packet: &pkt}
}
