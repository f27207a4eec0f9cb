package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/grmartinica/Finanza-Zap/internal/api/middleware"
	"github.com/grmartinica/Finanza-Zap/internal/domain"
	"github.com/grmartinica/Finanza-Zap/internal/logger"
	"github.com/grmartinica/Finanza-Zap/internal/store"
	"github.com/grmartinica/Finanza-Zap/internal/ws"
)

// snapshotWriteWait bounds the snapshot write so a client that stops
// reading right after the upgrade cannot hold the handler goroutine.
const snapshotWriteWait = 10 * time.Second

// WSHandler upgrades dashboard connections and feeds them live
// transaction updates through the hub.
type WSHandler struct {
	hub      *ws.Hub
	store    store.TransactionStore
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewWSHandler creates a new websocket handler.
func NewWSHandler(hub *ws.Hub, st store.TransactionStore, log zerolog.Logger) *WSHandler {
	return &WSHandler{
		hub:   hub,
		store: st,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The dashboard is served from a different origin than the API
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

// Feed handles GET /api/ws
func (h *WSHandler) Feed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	transactions, err := h.store.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load websocket snapshot")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load transactions")
		return
	}
	if transactions == nil {
		transactions = []*domain.Transaction{}
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	// The snapshot goes out before the hub knows the connection, so no
	// broadcast can interleave with this write.
	snapshot, err := json.Marshal(map[string]interface{}{
		"type":         "snapshot",
		"transactions": transactions,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal websocket snapshot")
		conn.Close()
		return
	}
	conn.SetWriteDeadline(time.Now().Add(snapshotWriteWait))
	if err := conn.WriteMessage(websocket.TextMessage, snapshot); err != nil {
		conn.Close()
		return
	}

	h.hub.Register(conn)

	// Drain incoming frames until the client goes away. The feed is
	// one-directional, client messages are discarded.
	go func() {
		defer h.hub.Unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
