// Package pubsub fans the packet stream out to Redis subscribers.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"netmonsim/internal/logging"
	"netmonsim/internal/models"
)

const (
	queueSize      = 1000
	publishTimeout = 2 * time.Second
)

// Client is the part of a Redis client the publisher uses.
type Client interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// Publisher is a capture sink that publishes stream events as JSON on a
// Redis channel. Events are queued and published from a background goroutine;
// when the queue is full they are dropped.
type Publisher struct {
	client  Client
	channel string
	logger  logging.Logger

	queue   chan models.Event
	done    chan struct{}
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex

	published atomic.Uint64
	dropped   atomic.Uint64
	failed    atomic.Uint64
}

// NewPublisher creates a publisher for channel.
func NewPublisher(client Client, channel string, logger logging.Logger) *Publisher {
	return &Publisher{
		client:  client,
		channel: channel,
		logger:  logging.OrDefault(logger).With("component", "pubsub", "channel", channel),
		queue:   make(chan models.Event, queueSize),
	}
}

// Start begins the background publish loop. A stopped publisher can be
// started again.
func (p *Publisher) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return
	}
	p.running = true
	p.done = make(chan struct{})
	p.wg.Add(1)
	go p.publishLoop(p.done)
	p.logger.Info("Publisher started")
}

// Stop publishes what is still queued and shuts the loop down.
func (p *Publisher) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	done := p.done
	p.mu.Unlock()

	close(done)
	p.wg.Wait()
	p.logger.Info("Publisher stopped",
		"published", p.published.Load(), "dropped", p.dropped.Load(), "failed", p.failed.Load())
}

func (p *Publisher) OnPacket(pkt models.Packet) { p.enqueue(models.PacketEvent(pkt)) }
func (p *Publisher) OnClear()                   { p.enqueue(models.Event{Type: models.EventClear}) }
func (p *Publisher) OnRemove(id string)         { p.enqueue(models.Event{Type: models.EventRemove, ID: id}) }

func (p *Publisher) enqueue(ev models.Event) {
	select {
	case p.queue <- ev:
	default:
		if n := p.dropped.Add(1); n%100 == 1 {
			p.logger.Warn("Publish queue full, dropping events", "dropped", n)
		}
	}
}

// Stats returns publisher statistics.
func (p *Publisher) Stats() map[string]interface{} {
	return map[string]interface{}{
		"published": p.published.Load(),
		"dropped":   p.dropped.Load(),
		"failed":    p.failed.Load(),
		"queue_len": len(p.queue),
		"queue_cap": cap(p.queue),
	}
}

func (p *Publisher) publishLoop(done <-chan struct{}) {
	defer p.wg.Done()

	for {
		select {
		case ev := <-p.queue:
			p.publish(ev)
		case <-done:
			for {
				select {
				case ev := <-p.queue:
					p.publish(ev)
				default:
					return
				}
			}
		}
	}
}

func (p *Publisher) publish(ev models.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		p.failed.Add(1)
		p.logger.Error("Failed to encode event", "type", ev.Type, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		p.failed.Add(1)
		p.logger.Warn("Failed to publish event", "type", ev.Type, "error", err)
		return
	}
	p.published.Add(1)
}
