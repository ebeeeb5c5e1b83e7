package obsws

import (
	"encoding/json"
	"sync"
)

// EventHandler receives the eventData of one event.
type EventHandler func(data json.RawMessage)

// HandlerID identifies one registration made with On. Functions are not
// comparable in Go, so Off takes the ID instead of the handler.
type HandlerID uint64

type handlerEntry struct {
	id      HandlerID
	handler EventHandler
}

// handlerRegistry holds event handlers per event type, in registration order.
type handlerRegistry struct {
	mu      sync.RWMutex
	nextID  HandlerID
	byEvent map[string][]handlerEntry
}

func newHandlerRegistry() *handlerRegistry {
	return &handlerRegistry{
		byEvent: make(map[string][]handlerEntry),
	}
}

func (r *handlerRegistry) add(eventType string, handler EventHandler) HandlerID {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.byEvent[eventType] = append(r.byEvent[eventType], handlerEntry{id: r.nextID, handler: handler})
	return r.nextID
}

func (r *handlerRegistry) remove(eventType string, id HandlerID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.byEvent[eventType]
	for i, entry := range entries {
		if entry.id == id {
			// Copy instead of appending in place: lookup may still hold the old slice.
			next := make([]handlerEntry, 0, len(entries)-1)
			next = append(next, entries[:i]...)
			next = append(next, entries[i+1:]...)
			if len(next) == 0 {
				delete(r.byEvent, eventType)
			} else {
				r.byEvent[eventType] = next
			}
			return true
		}
	}
	return false
}

// lookup returns the handlers for eventType. The returned slice must not be
// modified.
func (r *handlerRegistry) lookup(eventType string) []handlerEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byEvent[eventType]
}

func (r *handlerRegistry) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byEvent = make(map[string][]handlerEntry)
}
