package analysis

import (
	"strings"

	"netmonsim/internal/models"
)

// Filter selects packets for display. Text fields match case-insensitive
// substrings; empty fields match everything.
type Filter struct {
	Protocol       string `json:"protocol,omitempty"`
	Source         string `json:"source,omitempty"`
	Destination    string `json:"destination,omitempty"`
	ShowSuspicious bool   `json:"showSuspicious"`
	ShowNormal     bool   `json:"showNormal"`
}

// DefaultFilter shows every packet.
func DefaultFilter() Filter {
	return Filter{ShowSuspicious: true, ShowNormal: true}
}

// Match reports whether pkt passes the filter.
func (f Filter) Match(pkt models.Packet) bool {
	if !contains(pkt.Protocol, f.Protocol) || !contains(pkt.Source, f.Source) || !contains(pkt.Destination, f.Destination) {
		return false
	}
	if pkt.Suspicious {
		return f.ShowSuspicious
	}
	return f.ShowNormal
}

// Apply returns the packets that pass the filter, keeping their order.
func (f Filter) Apply(packets []models.Packet) []models.Packet {
	out := make([]models.Packet, 0, len(packets))
	for _, p := range packets {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// Active reports whether the filter hides anything.
func (f Filter) Active() bool {
	return f != DefaultFilter()
}

// String describes the filter for status lines.
func (f Filter) String() string {
	if !f.Active() {
		return "all"
	}
	var parts []string
	if f.Protocol != "" {
		parts = append(parts, "proto="+f.Protocol)
	}
	if f.Source != "" {
		parts = append(parts, "src="+f.Source)
	}
	if f.Destination != "" {
		parts = append(parts, "dst="+f.Destination)
	}
	switch {
	case !f.ShowSuspicious && !f.ShowNormal:
		parts = append(parts, "none")
	case !f.ShowSuspicious:
		parts = append(parts, "normal only")
	case !f.ShowNormal:
		parts = append(parts, "suspicious only")
	}
	return strings.Join(parts, " ")
}

func contains(field, needle string) bool {
	return needle == "" || strings.Contains(strings.ToLower(field), strings.ToLower(needle))
}
