package events

import (
	"context"
	"sync"

	"github.com/MinhaulMahmud/PersonalBlog/bindings"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Hub fans post events out to the dashboard streams of this instance.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]chan bindings.PostEvent
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subs:   make(map[string]chan bindings.PostEvent),
		logger: logger,
	}
}

// Subscribe registers a listener. The returned cancel func must be called
// once; it closes the channel.
func (h *Hub) Subscribe() (<-chan bindings.PostEvent, func()) {
	id := uuid.NewString()
	ch := make(chan bindings.PostEvent, 32)

	h.mu.Lock()
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
}

func (h *Hub) Broadcast(ev bindings.PostEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			h.logger.Warn("dashboard subscriber is slow, dropping event",
				zap.String("subscriber", id), zap.String("post_id", ev.PostId))
		}
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// LocalPublisher hands events straight to the hub. Used when Kafka is not configured.
type LocalPublisher struct {
	hub *Hub
}

func NewLocalPublisher(hub *Hub) *LocalPublisher {
	return &LocalPublisher{hub: hub}
}

func (p *LocalPublisher) Publish(_ context.Context, ev bindings.PostEvent) error {
	p.hub.Broadcast(ev)
	return nil
}

func (p *LocalPublisher) Close() {}
