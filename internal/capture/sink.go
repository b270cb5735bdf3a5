//go:generate mockgen -package=mocks -destination=../mocks/mock_sink.go netmonsim/internal/capture Sink

package capture

import "netmonsim/internal/models"

// Sink receives every packet the monitor emits, in emission order. Sinks are
// called with the monitor locked: they must not block and must not call back
// into the monitor.
type Sink interface {
	OnPacket(pkt models.Packet)
	OnClear()
}

// Remover is implemented by sinks that want to hear about expired alert packets.
type Remover interface {
	OnRemove(id string)
}

// PacketFunc adapts a function to a Sink that ignores clears.
type PacketFunc func(models.Packet)

func (f PacketFunc) OnPacket(pkt models.Packet) { f(pkt) }
func (f PacketFunc) OnClear()                   {}

// MultiSink fans out to several sinks in order.
type MultiSink []Sink

func (m MultiSink) OnPacket(pkt models.Packet) {
	for _, s := range m {
		s.OnPacket(pkt)
	}
}

func (m MultiSink) OnClear() {
	for _, s := range m {
		s.OnClear()
	}
}

func (m MultiSink) OnRemove(id string) {
	for _, s := range m {
		if r, ok := s.(Remover); ok {
			r.OnRemove(id)
		}
	}
}

type nopSink struct{}

func (nopSink) OnPacket(models.Packet) {}
func (nopSink) OnClear()               {}
