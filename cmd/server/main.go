package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grmartinica/Finanza-Zap/internal/api"
	"github.com/grmartinica/Finanza-Zap/internal/api/handlers"
	"github.com/grmartinica/Finanza-Zap/internal/config"
	"github.com/grmartinica/Finanza-Zap/internal/logger"
	"github.com/grmartinica/Finanza-Zap/internal/pipeline"
	"github.com/grmartinica/Finanza-Zap/internal/status"
	"github.com/grmartinica/Finanza-Zap/internal/store"
	"github.com/grmartinica/Finanza-Zap/internal/store/memory"
	"github.com/grmartinica/Finanza-Zap/internal/store/postgres"
	"github.com/grmartinica/Finanza-Zap/internal/waha"
	"github.com/grmartinica/Finanza-Zap/internal/ws"
)

func main() {
	cfg, envErr := config.Load()

	// Parse command-line flags
	port := flag.String("port", cfg.Port, "HTTP server port (overrides PORT env)")
	flag.Parse()
	cfg.Port = *port

	// Initialize logger
	log := logger.New()
	if envErr != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	ctx := context.Background()

	// Initialize the transaction store. Without a database the service
	// still runs, it just forgets everything on restart.
	var st store.TransactionStore
	if cfg.HasSupabase() {
		pgStore, err := postgres.New(ctx, cfg.SupabaseDBURL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Supabase")
		}
		log.Info().Msg("Connected to Supabase")
		st = pgStore
	} else {
		log.Warn().Msg("SUPABASE_DB_URL not set - using in-memory store, data is lost on restart")
		st = memory.New()
	}
	defer st.Close()

	// Initialize the Gemini extractor
	var extractor pipeline.Extractor
	var gemini *pipeline.GeminiExtractor
	if cfg.HasGemini() {
		var err error
		gemini, err = pipeline.NewGeminiExtractor(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Gemini extractor")
		}
		extractor = gemini
		log.Info().Str("model", cfg.GeminiModel).Msg("Gemini extractor ready")
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set - extraction disabled, incoming messages will be ignored")
	}

	// Initialize the WhatsApp notifier
	var notifier pipeline.Notifier
	var wahaClient *waha.Client
	if cfg.HasWAHA() {
		wahaClient = waha.NewClient(cfg.WAHAURL, cfg.WAHAAPIKey, cfg.WAHASession)
		notifier = waha.NewNotifier(wahaClient, log)
	} else {
		log.Warn().Msg("WAHA_URL not set - WhatsApp confirmations disabled")
	}

	p := pipeline.New(extractor, st, notifier, log)

	// Feed stored transactions to connected dashboard clients
	hub := ws.NewHub(log)
	go hub.Run()
	defer hub.Close()

	cancelFeed := st.Subscribe(hub.BroadcastTransaction)
	defer cancelFeed()

	// Dependency probes for /api/status
	probes := []status.Probe{
		{Name: "supabase", Configured: cfg.HasSupabase(), Ping: st.Ping},
	}
	geminiProbe := status.Probe{Name: "gemini", Configured: cfg.HasGemini()}
	if gemini != nil {
		geminiProbe.Ping = gemini.Ping
	}
	wahaProbe := status.Probe{Name: "waha", Configured: cfg.HasWAHA()}
	if wahaClient != nil {
		wahaProbe.Ping = wahaClient.Ping
	}
	probes = append(probes, geminiProbe, wahaProbe)

	// Create router
	router := api.NewRouter(api.Deps{
		Webhook:      handlers.NewWebhookHandler(p, log),
		Simulate:     handlers.NewSimulateHandler(p, log),
		Transactions: handlers.NewTransactionsHandler(st, log),
		Status:       handlers.NewStatusHandler(probes, log),
		WS:           handlers.NewWSHandler(hub, st, log),
		Log:          log,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
