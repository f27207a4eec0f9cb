// Package config loads runtime configuration from the environment.
package config

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/grmartinica/Finanza-Zap/internal/pipeline"
)

// Config holds everything the server needs to start. Integrations are
// optional: an empty value means the matching feature runs degraded
// (in-memory storage, no extraction, no confirmations) rather than
// failing at boot.
type Config struct {
	Port string

	SupabaseDBURL string

	GeminiAPIKey string
	GeminiModel  string

	WAHAURL     string
	WAHAAPIKey  string
	WAHASession string
}

// Load reads the configuration from the environment, after seeding it
// from a .env file when one exists next to the binary. The returned
// error reports only the .env outcome: callers log it and continue,
// production deployments run on real environment variables without the
// file.
func Load() (Config, error) {
	envErr := godotenv.Load()

	return Config{
		Port:          envOr("PORT", "8080"),
		SupabaseDBURL: os.Getenv("SUPABASE_DB_URL"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   envOr("GEMINI_MODEL", pipeline.DefaultModelName),
		WAHAURL:       os.Getenv("WAHA_URL"),
		WAHAAPIKey:    os.Getenv("WAHA_API_KEY"),
		WAHASession:   envOr("WAHA_SESSION", "default"),
	}, envErr
}

func (c Config) HasSupabase() bool { return c.SupabaseDBURL != "" }

func (c Config) HasGemini() bool { return c.GeminiAPIKey != "" }

func (c Config) HasWAHA() bool { return c.WAHAURL != "" }

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
