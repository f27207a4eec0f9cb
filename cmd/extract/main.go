package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/grmartinica/Finanza-Zap/internal/config"
	"github.com/grmartinica/Finanza-Zap/internal/logger"
	"github.com/grmartinica/Finanza-Zap/internal/pipeline"
)

// extract runs one message through the Gemini extractor and prints the
// result, without touching the database. Useful for tuning the prompt.
func main() {
	// Initialize structured logger
	log := logger.New()

	// Parse CLI flags
	text := flag.String("text", "", "Message text to extract (reads stdin when empty)")
	flag.Parse()

	cfg, envErr := config.Load()
	if envErr != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}
	if !cfg.HasGemini() {
		log.Fatal().Msg("Error: GEMINI_API_KEY is required")
	}

	message := strings.TrimSpace(*text)
	if message == "" {
		message = strings.TrimSpace(strings.Join(flag.Args(), " "))
	}
	if message == "" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to read stdin")
		}
		message = strings.TrimSpace(string(raw))
	}
	if message == "" {
		log.Fatal().Msg("Error: no message text given (use -text, arguments or stdin)")
	}

	// Create context with timeout so CLI doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	extractor, err := pipeline.NewGeminiExtractor(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini extractor")
	}

	log.Info().Str("model", cfg.GeminiModel).Msg("Extracting")

	res, err := extractor.Extract(ctx, message)
	if err != nil {
		log.Fatal().Err(err).Msg("Extraction failed")
	}

	out, err := json.MarshalIndent(map[string]interface{}{
		"outcome":     res.Outcome,
		"transaction": res.Candidate,
	}, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to marshal result")
	}

	fmt.Println(string(out))
}
