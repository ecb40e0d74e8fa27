package pipeline

import (
	"context"
	"sync"
)

// HistorySink defines the interface for persisting run events.
// This is a subset of history.Store to avoid circular dependencies.
type HistorySink interface {
	AppendEvent(ctx context.Context, runID, eventType string, payload []byte) error
}

// Handler processes an Event; return error to signal failure.
type Handler func(Event) error

// Bus is a simple synchronous pub/sub event bus.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]Handler
	history     HistorySink // optional sink for persistence
}

func NewBus() *Bus { return &Bus{subscribers: map[string][]Handler{}} }

// NewBusWithHistory creates a bus that persists events to the sink.
func NewBusWithHistory(sink HistorySink) *Bus {
	return &Bus{
		subscribers: map[string][]Handler{},
		history:     sink,
	}
}

// Subscribe registers a handler for a given event name.
func (b *Bus) Subscribe(event string, h Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	b.subscribers[event] = append(b.subscribers[event], h)
	b.mu.Unlock()
}

// Publish delivers an event to all handlers synchronously.
// If a history sink is configured, the event is persisted before delivery.
func (b *Bus) Publish(e Event) error {
	if b.history != nil {
		runID := "unknown"
		if re, ok := e.(interface{ GetRunID() string }); ok {
			runID = re.GetRunID()
		}
		// Persistence failures must not fail the run.
		_ = b.history.AppendEvent(context.Background(), runID, e.Name(), nil)
	}

	b.mu.RLock()
	hs := append([]Handler(nil), b.subscribers[e.Name()]...)
	b.mu.RUnlock()
	for _, h := range hs {
		if err := h(e); err != nil {
			return err
		}
	}
	return nil
}
