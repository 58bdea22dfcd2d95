package live

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/sssohn/pointsd/internal/metrics"
)

// Event is one committed change pushed by the store.
type Event struct {
	Table string          `json:"table"`
	Op    string          `json:"op"`
	Row   json.RawMessage `json:"row"`
}

// Hub fans events out to topic subscribers. Events for one topic arrive at a
// subscriber in publish order; there is no ordering across topics. A consumer
// that stops draining gets events dropped rather than blocking the producer.
type Hub struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string]map[uint64]chan Event
	log    *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{subs: make(map[string]map[uint64]chan Event), log: log}
}

// Subscribe registers for one topic. The returned cancel releases the
// subscription and must be called when the consuming view goes inactive; it
// is safe to call twice.
func (h *Hub) Subscribe(topic string, buf int) (<-chan Event, func()) {
	if buf <= 0 {
		buf = 16
	}
	ch := make(chan Event, buf)

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[uint64]chan Event)
	}
	h.subs[topic][id] = ch
	h.mu.Unlock()
	metrics.LiveSubscribers.Inc()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if m := h.subs[topic]; m != nil {
				delete(m, id)
				if len(m) == 0 {
					delete(h.subs, topic)
				}
			}
			h.mu.Unlock()
			close(ch)
			metrics.LiveSubscribers.Dec()
		})
	}
	return ch, cancel
}

func (h *Hub) Publish(topic string, e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs[topic] {
		select {
		case ch <- e:
		default:
			h.log.Warn("dropping live event for slow subscriber", zap.String("topic", topic))
		}
	}
}

// SubscriberCount is used by tests and the ops endpoints.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[topic])
}
