package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Vasu1712/scenyx-remote/internal/models"
)

// Client is one viewer connected to the state stream.
type Client struct {
	ID   string
	Send chan []byte
	Conn *websocket.Conn // nil in tests
}

// Hub fans session snapshots out to every connected viewer. New viewers get
// the latest snapshot as soon as they register.
type Hub struct {
	Clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan []byte
	mu         sync.RWMutex
	last       []byte
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan []byte),
		done:       make(chan struct{}),
	}
}

// Run serves the hub until ctx ends, then closes every client's Send.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.Clients {
				close(client.Send)
				delete(h.Clients, client)
			}
			h.mu.Unlock()
			return
		case client := <-h.Register:
			h.mu.Lock()
			h.Clients[client] = true
			if h.last != nil {
				select {
				case client.Send <- h.last:
				default:
				}
			}
			h.mu.Unlock()
			log.Debug().Str("viewer", client.ID).Msg("viewer registered")
		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			log.Debug().Str("viewer", client.ID).Msg("viewer unregistered")
		case data := <-h.Broadcast:
			h.mu.Lock()
			h.last = data
			for client := range h.Clients {
				select {
				case client.Send <- data:
				default:
					// Too slow to keep up; drop it.
					close(client.Send)
					delete(h.Clients, client)
					log.Warn().Str("viewer", client.ID).Msg("dropping slow viewer")
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish encodes snap and broadcasts it. It returns immediately once the
// hub has stopped.
func (h *Hub) Publish(snap models.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		log.Error().Err(err).Msg("encoding snapshot for viewers")
		return
	}
	select {
	case h.Broadcast <- data:
	case <-h.done:
	}
}

// Join registers c, or reports false once the hub has stopped.
func (h *Hub) Join(c *Client) bool {
	select {
	case h.Register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Leave unregisters c. It is a no-op once the hub has stopped.
func (h *Hub) Leave(c *Client) {
	select {
	case h.Unregister <- c:
	case <-h.done:
	}
}

// Count returns the number of connected viewers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.Clients)
}
