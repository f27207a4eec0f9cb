package pipeline

import (
	"context"

	"github.com/grmartinica/Finanza-Zap/internal/domain"
)

// Extractor turns free-form message text into a transaction candidate.
// This interface enables substituting the Gemini-backed implementation
// with fakes in tests.
type Extractor interface {
	// Extract returns an error only together with OutcomeUnavailable.
	Extract(ctx context.Context, text string) (Result, error)
}

// Notifier delivers the confirmation for a stored transaction back to
// the chat it came from. Confirmation is best-effort: the pipeline logs
// and swallows Notify errors, they never undo a stored transaction.
type Notifier interface {
	Notify(ctx context.Context, chatID string, tx *domain.Transaction) error
}
