package events

import (
	"context"
	"sync"

	"github.com/Lukas5x5/Woelfleder-Kunden/internal/appstate"
	"go.uber.org/zap"
)

const defaultBuffer = 16

// Hub fans gate-saved notifications out to the open event streams of an owner.
// Delivery never blocks the saving request: a subscriber whose buffer is full
// misses the event.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[chan appstate.GateSavedEvent]struct{}
	buffer int
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subs:   make(map[string]map[chan appstate.GateSavedEvent]struct{}),
		buffer: defaultBuffer,
		logger: logger,
	}
}

// Subscribe opens a stream for ownerID. The returned cancel func closes the channel.
func (h *Hub) Subscribe(ownerID string) (<-chan appstate.GateSavedEvent, func()) {
	ch := make(chan appstate.GateSavedEvent, h.buffer)

	h.mu.Lock()
	if h.subs[ownerID] == nil {
		h.subs[ownerID] = make(map[chan appstate.GateSavedEvent]struct{})
	}
	h.subs[ownerID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[ownerID], ch)
			if len(h.subs[ownerID]) == 0 {
				delete(h.subs, ownerID)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
}

// GateSaved implements appstate.Notifier.
func (h *Hub) GateSaved(_ context.Context, event appstate.GateSavedEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs[event.OwnerID] {
		select {
		case ch <- event:
		default:
			h.logger.Debug("event stream full, dropping gate saved event",
				zap.String("owner_id", event.OwnerID),
				zap.String("gate_id", event.GateID),
			)
		}
	}
}

// Subscribers returns the number of open streams of an owner.
func (h *Hub) Subscribers(ownerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[ownerID])
}
