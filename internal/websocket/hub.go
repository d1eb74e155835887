// Package websocket implements the hub that pushes generation-job progress
// and manifest-change events to connected admin UI clients.
package websocket

import (
	"encoding/json"
	"log"
	"net/http"
)

// Hub maintains the set of active clients and fans broadcast messages out
// to them.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Inbound messages to deliver to every client. Exported so tests can
	// observe broadcasts without running the hub loop.
	Broadcast chan []byte

	register   chan *Client
	unregister chan *Client
}

// NewHub creates a hub ready to be started with Run.
func NewHub() *Hub {
	return &Hub{
		Broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// Run processes register, unregister, and broadcast events until the
// process exits. It must run in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case message := <-h.Broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer; drop it rather than stall the hub.
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// BroadcastJSON marshals v and queues it for delivery to every connected
// client. The send is non-blocking: when the buffer is full the update is
// dropped, because progress events are advisory and pollers remain the
// authoritative status source.
func (h *Hub) BroadcastJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("websocket: failed to marshal broadcast payload: %v", err)
		return
	}
	select {
	case h.Broadcast <- data:
	default:
	}
}

// ServeWs upgrades an HTTP request to a websocket connection and registers
// the resulting client with the hub.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket: upgrade failed: %v", err)
		return
	}
	client := &Client{hub: h, conn: conn, send: make(chan []byte, 256)}
	h.register <- client

	go client.writePump()
	go client.readPump()
}
