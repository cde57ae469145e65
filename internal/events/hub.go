package events

import (
	"sync"

	"github.com/Kilat-Pet-Delivery/service-navigation/internal/domain/navigation"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/metrics"
	"go.uber.org/zap"
)

const subscriberBuffer = 16

// Hub fans navigation state out to in-process stream subscribers. Slow
// subscribers miss snapshots rather than blocking the publisher.
type Hub struct {
	mu     sync.RWMutex
	subs   map[chan navigation.NavigationState]struct{}
	logger *zap.Logger
}

// NewHub creates an empty Hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subs:   make(map[chan navigation.NavigationState]struct{}),
		logger: logger,
	}
}

// Subscribe returns a channel of snapshots and a function that closes it.
func (h *Hub) Subscribe() (<-chan navigation.NavigationState, func()) {
	ch := make(chan navigation.NavigationState, subscriberBuffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	metrics.StateSubscribers.Inc()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			close(ch)
			h.mu.Unlock()
			metrics.StateSubscribers.Dec()
		})
	}
}

// Broadcast delivers state to every subscriber that has room for it.
func (h *Hub) Broadcast(state navigation.NavigationState) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- state:
		default:
			h.logger.Warn("dropping state for slow stream subscriber",
				zap.String("session_id", state.SessionID.String()),
			)
		}
	}
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
