package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"

	"github.com/grmartinica/Finanza-Zap/internal/domain"
)

// Outcome says what extraction concluded about a message.
type Outcome string

const (
	// OutcomeMatched means the message described a transaction and a
	// candidate was produced.
	OutcomeMatched Outcome = "matched"
	// OutcomeNotFinancial means the model answered and found no
	// transaction in the message.
	OutcomeNotFinancial Outcome = "not_financial"
	// OutcomeUnavailable means no usable answer was produced: transport
	// failure, empty or malformed response, or no extractor configured.
	OutcomeUnavailable Outcome = "unavailable"
)

// Result is the outcome of one extraction attempt. Candidate is set
// only when Outcome is OutcomeMatched.
type Result struct {
	Outcome   Outcome
	Candidate *domain.Candidate
}

// GeminiExtractor extracts transactions with a Gemini structured-output
// call. It is safe for concurrent use.
type GeminiExtractor struct {
	client *genai.Client
	model  string
}

// NewGeminiExtractor creates the extractor against the Gemini API.
// model names the model to call, e.g. "gemini-2.5-flash".
func NewGeminiExtractor(ctx context.Context, apiKey, model string) (*GeminiExtractor, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("extractor: create genai client: %w", err)
	}
	return &GeminiExtractor{client: client, model: model}, nil
}

// Extract classifies text and pulls out the transaction it describes.
// The returned error is populated only alongside OutcomeUnavailable.
// No timeout is applied here; the caller's ctx bounds the call.
func (e *GeminiExtractor) Extract(ctx context.Context, text string) (Result, error) {
	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: text}}},
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
		ResponseMIMEType:  "application/json",
		ResponseSchema:    responseSchema(),
	}

	resp, err := e.client.Models.GenerateContent(ctx, e.model, contents, cfg)
	if err != nil {
		return Result{Outcome: OutcomeUnavailable}, fmt.Errorf("extractor: generate content: %w", err)
	}

	raw := resp.Text()
	if raw == "" {
		return Result{Outcome: OutcomeUnavailable}, fmt.Errorf("extractor: empty response from model")
	}

	return decodeExtraction(raw)
}

// Ping makes the cheapest possible model call to verify the API key and
// model name are usable.
func (e *GeminiExtractor) Ping(ctx context.Context) error {
	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: "ping"}}},
	}
	if _, err := e.client.Models.CountTokens(ctx, e.model, contents, nil); err != nil {
		return fmt.Errorf("extractor: count tokens: %w", err)
	}
	return nil
}

// modelResponse mirrors the response schema.
type modelResponse struct {
	Transaction *modelTransaction `json:"transaction"`
}

type modelTransaction struct {
	Amount      json.Number `json:"amount"`
	Type        string      `json:"type"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
}

// decodeExtraction turns raw model text into a Result. A response that
// cannot be decoded into the contract counts as unavailable, not as
// "no transaction": a malformed answer says nothing about the message.
func decodeExtraction(raw string) (Result, error) {
	clean := cleanModelJSON(raw)

	dec := json.NewDecoder(strings.NewReader(clean))
	dec.UseNumber()

	var mr modelResponse
	if err := dec.Decode(&mr); err != nil {
		return Result{Outcome: OutcomeUnavailable}, fmt.Errorf("extractor: unmarshal response: %w\nraw response: %s", err, raw)
	}

	if mr.Transaction == nil {
		return Result{Outcome: OutcomeNotFinancial}, nil
	}

	mt := mr.Transaction
	amount, err := decimal.NewFromString(mt.Amount.String())
	if err != nil {
		return Result{Outcome: OutcomeUnavailable}, fmt.Errorf("extractor: invalid amount %q: %w", mt.Amount, err)
	}

	cand := &domain.Candidate{
		Amount:      amount,
		Type:        domain.Type(mt.Type),
		Category:    strings.TrimSpace(mt.Category),
		Description: strings.TrimSpace(mt.Description),
	}
	if err := cand.Validate(); err != nil {
		return Result{Outcome: OutcomeUnavailable}, fmt.Errorf("extractor: model output rejected: %w", err)
	}

	return Result{Outcome: OutcomeMatched, Candidate: cand}, nil
}

// cleanModelJSON strips Markdown fences and surrounding prose if the
// model ignored the response-format instructions.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			// Single-line weirdness; just return as-is.
			return s
		}
		s = strings.TrimSpace(s)
	}

	// Remove trailing ``` if present.
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// Extra safety: if there's still junk around the JSON object,
	// keep only from the first '{' to the last '}'.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
