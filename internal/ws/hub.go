// Package ws fans stored transactions out to connected dashboard
// clients over WebSocket.
package ws

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/grmartinica/Finanza-Zap/internal/domain"
)

// defaultWriteWait bounds each client write. A client that cannot take
// a frame within it is dropped, it must not stall the Run loop.
const defaultWriteWait = 10 * time.Second

// Hub tracks connected clients and broadcasts messages to all of them.
// The clients map is owned by the Run goroutine; the exported methods
// only communicate with it through channels.
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn

	done      chan struct{}
	closeOnce sync.Once
	count     atomic.Int64

	writeWait time.Duration

	log zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		writeWait:  defaultWriteWait,
		log:        log.With().Str("component", "ws").Logger(),
	}
}

// Run processes register, unregister and broadcast requests until Close
// is called. All writes to client connections happen on this goroutine.
func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.clients[conn] = true
			h.count.Store(int64(len(h.clients)))
			h.log.Debug().Int("clients", len(h.clients)).Msg("Client connected")

		case conn := <-h.unregister:
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.count.Store(int64(len(h.clients)))
			h.log.Debug().Int("clients", len(h.clients)).Msg("Client disconnected")

		case message := <-h.broadcast:
			for conn := range h.clients {
				conn.SetWriteDeadline(time.Now().Add(h.writeWait))
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					delete(h.clients, conn)
					conn.Close()
				}
			}
			h.count.Store(int64(len(h.clients)))

		case <-h.done:
			for conn := range h.clients {
				conn.Close()
			}
			h.clients = make(map[*websocket.Conn]bool)
			h.count.Store(0)
			return
		}
	}
}

// Register adds a client connection to the hub.
func (h *Hub) Register(conn *websocket.Conn) {
	select {
	case h.register <- conn:
	case <-h.done:
		conn.Close()
	}
}

// Unregister removes a client connection and closes it.
func (h *Hub) Unregister(conn *websocket.Conn) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// BroadcastTransaction pushes a newly stored transaction to every
// connected client. The send never blocks; if the hub cannot keep up
// the update is dropped, clients resync from the snapshot on reconnect.
func (h *Hub) BroadcastTransaction(tx *domain.Transaction) {
	payload := map[string]interface{}{
		"type":        "transaction_created",
		"transaction": tx,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to marshal transaction update")
		return
	}

	select {
	case h.broadcast <- data:
	case <-h.done:
	default:
		h.log.Warn().Msg("Broadcast buffer full, dropping update")
	}
}

// ClientCount reports how many clients are currently connected.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// Close shuts the hub down and disconnects all clients. It is safe to
// call more than once.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}
