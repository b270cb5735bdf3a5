package models

import "time"

// Group identifies which traffic source group a packet was drawn from.
type Group string

const (
	GroupWebsite Group = "website"
	GroupEmail   Group = "email"
	GroupSystem  Group = "system"
	GroupAlert   Group = "alert"
)

// Packet is one synthesized traffic record shown by the monitor.
type Packet struct {
	ID         string    `json:"id"`
	Seq        uint64    `json:"seq"`
	Timestamp  string    `json:"timestamp"` // HH:MM:SS wall clock
	CapturedAt time.Time `json:"capturedAt"`

	Source      string `json:"source"`
	Destination string `json:"destination"`
	Protocol    string `json:"protocol"`
	Info        string `json:"info"`
	Suspicious  bool   `json:"suspicious"`

	Group    Group  `json:"group"`
	Address  string `json:"address,omitempty"` // pseudo-IP of the remote end
	Response bool   `json:"response,omitempty"`
	Alert    bool   `json:"alert,omitempty"`
}

// Remote returns the non-local end of the packet.
func (p Packet) Remote(local string) string {
	if p.Source == local {
		return p.Destination
	}
	return p.Source
}
