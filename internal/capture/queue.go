package capture

import "netmonsim/internal/models"

// DefaultQueueCapacity is the number of packets the monitor keeps.
const DefaultQueueCapacity = 100

// Queue is a bounded FIFO of packets in capture order. The oldest packet is
// evicted once the capacity is exceeded.
type Queue struct {
	items    []models.Packet
	capacity int
}

// NewQueue creates a queue holding at most capacity packets.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &Queue{
		items:    make([]models.Packet, 0, capacity+1),
		capacity: capacity,
	}
}

// Push appends pkt and returns how many packets were evicted.
func (q *Queue) Push(pkt models.Packet) int {
	q.items = append(q.items, pkt)

	over := len(q.items) - q.capacity
	if over <= 0 {
		return 0
	}
	n := copy(q.items, q.items[over:])
	clear(q.items[n:])
	q.items = q.items[:n]
	return over
}

// Snapshot returns a copy of the queue, oldest first.
func (q *Queue) Snapshot() []models.Packet {
	out := make([]models.Packet, len(q.items))
	copy(out, q.items)
	return out
}

// Remove deletes the packet with the given id.
func (q *Queue) Remove(id string) bool {
	for i, p := range q.items {
		if p.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the queue.
func (q *Queue) Clear() {
	clear(q.items)
	q.items = q.items[:0]
}

func (q *Queue) Len() int      { return len(q.items) }
func (q *Queue) Capacity() int { return q.capacity }
