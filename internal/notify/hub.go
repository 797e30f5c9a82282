// Package notify is the in-process delivery side of notification fan-out.
// The hub tracks connected SSE clients keyed by user and pushes events to
// every connection a recipient has open. Delivery is best effort: sends
// never block the caller, and full client buffers drop events.
package notify

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type NotificationEvent struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Message  string    `json:"message"`
	Category string    `json:"category"`
}

type Client struct {
	ID     string
	UserID uuid.UUID
	Send   chan []byte
}

type userMessage struct {
	UserIDs []uuid.UUID
	Event   Event
}

type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	publish    chan *userMessage
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		publish:    make(chan *userMessage, 256),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()

		case msg := <-h.publish:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Event)
			targets := make(map[uuid.UUID]bool, len(msg.UserIDs))
			for _, id := range msg.UserIDs {
				targets[id] = true
			}
			for _, client := range h.clients {
				if targets[client.UserID] {
					select {
					case client.Send <- data:
					default:
						// Client buffer full, skip
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Publish queues an event for every connection belonging to the given
// users. It never blocks; if the hub's queue is full the event is dropped.
func (h *Hub) Publish(userIDs []uuid.UUID, event Event) {
	select {
	case h.publish <- &userMessage{UserIDs: userIDs, Event: event}:
	default:
	}
}

// ConnectedUsers reports the distinct users with at least one open client.
func (h *Hub) ConnectedUsers() []uuid.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[uuid.UUID]bool)
	var users []uuid.UUID
	for _, client := range h.clients {
		if !seen[client.UserID] {
			seen[client.UserID] = true
			users = append(users, client.UserID)
		}
	}
	return users
}
