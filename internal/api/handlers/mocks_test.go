package handlers_test

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/grmartinica/Finanza-Zap/internal/domain"
	"github.com/grmartinica/Finanza-Zap/internal/pipeline"
	"github.com/grmartinica/Finanza-Zap/internal/store"
	"github.com/grmartinica/Finanza-Zap/internal/store/memory"
)

// StubExtractor is a mock implementation of pipeline.Extractor that
// always returns the configured result.
type StubExtractor struct {
	Result pipeline.Result
	Err    error
	Calls  int
}

func (s *StubExtractor) Extract(ctx context.Context, text string) (pipeline.Result, error) {
	s.Calls++
	return s.Result, s.Err
}

// MockStore is a mock implementation of store.TransactionStore with
// overridable behavior.
type MockStore struct {
	InsertFunc func(ctx context.Context, c domain.Candidate) (*domain.Transaction, error)
	ListFunc   func(ctx context.Context) ([]*domain.Transaction, error)
}

func (m *MockStore) Insert(ctx context.Context, c domain.Candidate) (*domain.Transaction, error) {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, c)
	}
	return &domain.Transaction{ID: "tx-1"}, nil
}

func (m *MockStore) List(ctx context.Context) ([]*domain.Transaction, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockStore) Subscribe(fn func(*domain.Transaction)) (cancel func()) { return func() {} }

func (m *MockStore) Ping(ctx context.Context) error { return nil }

func (m *MockStore) Close() error { return nil }

func matched(amount string) pipeline.Result {
	return pipeline.Result{
		Outcome: pipeline.OutcomeMatched,
		Candidate: &domain.Candidate{
			Amount:      decimal.RequireFromString(amount),
			Type:        domain.TypeExpense,
			Category:    "Transporte",
			Description: "Corrida de Uber",
		},
	}
}

// newTestPipeline builds a pipeline backed by an in-memory store.
func newTestPipeline(ext pipeline.Extractor, st store.TransactionStore) (*pipeline.Pipeline, store.TransactionStore) {
	if st == nil {
		st = memory.New()
	}
	return pipeline.New(ext, st, nil, zerolog.Nop()), st
}
