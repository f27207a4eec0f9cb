// Package api wires the HTTP surface of the service together.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/grmartinica/Finanza-Zap/internal/api/handlers"
	"github.com/grmartinica/Finanza-Zap/internal/api/middleware"
)

// Deps are the handlers the router exposes.
type Deps struct {
	Webhook      *handlers.WebhookHandler
	Simulate     *handlers.SimulateHandler
	Transactions *handlers.TransactionsHandler
	Status       *handlers.StatusHandler
	WS           *handlers.WSHandler
	Log          zerolog.Logger
}

// NewRouter builds the service router with the shared middleware chain.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Log))
	r.Use(middleware.RequestID(deps.Log))
	r.Use(middleware.Logger)
	r.Use(middleware.CORS)
	r.Use(middleware.Auth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)

		r.Post("/webhook/whatsapp", deps.Webhook.Receive)
		r.Post("/simulate", deps.Simulate.Simulate)

		r.Get("/transactions", deps.Transactions.List)
		r.Get("/summary", deps.Transactions.Summary)

		r.Get("/status", deps.Status.Status)
		r.Get("/ws", deps.WS.Feed)
	})

	return r
}
