package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/grmartinica/Finanza-Zap/internal/domain"
	"github.com/grmartinica/Finanza-Zap/internal/store"
	"github.com/grmartinica/Finanza-Zap/internal/waha"
)

// SourceSimulator marks transactions created through the dashboard
// simulator instead of a WhatsApp chat.
const SourceSimulator = "simulator"

// Pipeline wires extraction, persistence and confirmation together.
// Every dependency is injected. extractor may be nil when no extraction
// backend is configured; the pipeline then reports every message as
// unavailable instead of crashing.
type Pipeline struct {
	extractor Extractor
	store     store.TransactionStore
	notifier  Notifier
	log       zerolog.Logger
}

// New creates a pipeline over the given collaborators.
func New(extractor Extractor, st store.TransactionStore, notifier Notifier, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		store:     st,
		notifier:  notifier,
		log:       log,
	}
}

// ProcessText runs extraction on text and stores the result when a
// transaction is matched. Everything happens synchronously within the
// caller's request. The returned error is non-nil only when the store
// rejected a matched transaction; all extraction outcomes are reported
// through Result instead.
func (p *Pipeline) ProcessText(ctx context.Context, text, source string) (*domain.Transaction, Result, error) {
	if p.extractor == nil {
		p.log.Warn().Str("source", source).Msg("No extractor configured, message dropped")
		return nil, Result{Outcome: OutcomeUnavailable}, nil
	}

	res, err := p.extractor.Extract(ctx, text)
	if err != nil {
		p.log.Error().Err(err).Str("source", source).Msg("Extraction unavailable")
		return nil, res, nil
	}

	if res.Outcome != OutcomeMatched {
		p.log.Info().Str("source", source).Str("outcome", string(res.Outcome)).Msg("No transaction in message")
		return nil, res, nil
	}

	cand := *res.Candidate
	cand.RawText = text
	cand.Source = source

	tx, err := p.store.Insert(ctx, cand)
	if err != nil {
		p.log.Error().Err(err).Str("source", source).Msg("Failed to store transaction")
		return nil, res, fmt.Errorf("process text: %w", err)
	}

	p.log.Info().
		Str("id", tx.ID).
		Str("type", string(tx.Type)).
		Str("category", tx.Category).
		Str("amount", tx.Amount.String()).
		Str("source", source).
		Msg("Transaction stored")

	return tx, res, nil
}

// HandleEvent processes one webhook event end to end: normalize,
// extract, store, then confirm back to the sender. The returned error
// is non-nil only when a matched transaction could not be stored.
func (p *Pipeline) HandleEvent(ctx context.Context, ev waha.Event) (*domain.Transaction, error) {
	msg := Normalize(ev)

	switch msg.Kind {
	case KindVoice:
		p.log.Info().Str("from", msg.Sender).Msg("Voice message received, transcription is not supported, skipping")
		return nil, nil
	case KindUnknown:
		p.log.Debug().Str("event", ev.Event).Str("payload_type", ev.Payload.Type).Msg("Ignoring webhook event")
		return nil, nil
	}

	tx, _, err := p.ProcessText(ctx, msg.Text, msg.Sender)
	if err != nil || tx == nil {
		return nil, err
	}

	if p.notifier != nil {
		if err := p.notifier.Notify(ctx, msg.Sender, tx); err != nil {
			p.log.Warn().Err(err).Str("chat_id", msg.Sender).Msg("Failed to send confirmation")
		}
	}

	return tx, nil
}
