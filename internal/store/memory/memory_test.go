package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/grmartinica/Finanza-Zap/internal/domain"
)

func candidate(amount float64, typ domain.Type, category string) domain.Candidate {
	return domain.Candidate{
		Amount:      decimal.NewFromFloat(amount),
		Type:        typ,
		Category:    category,
		Description: "test transaction",
	}
}

func TestInsertAssignsIdentity(t *testing.T) {
	s := New()
	defer s.Close()

	tx, err := s.Insert(context.Background(), candidate(45, domain.TypeExpense, "Transporte"))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if tx.ID == "" {
		t.Error("Expected assigned ID, got empty string")
	}
	if tx.CreatedAt.IsZero() {
		t.Error("Expected assigned CreatedAt, got zero time")
	}
	if !tx.Amount.Equal(decimal.NewFromInt(45)) {
		t.Errorf("Amount = %s, want 45", tx.Amount)
	}
}

func TestInsertRejectsInvalidCandidate(t *testing.T) {
	s := New()
	defer s.Close()

	_, err := s.Insert(context.Background(), candidate(-5, domain.TypeExpense, "Transporte"))
	if err == nil {
		t.Fatal("Expected error for negative amount, got nil")
	}

	txs, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(txs) != 0 {
		t.Errorf("Expected no stored transactions, got %d", len(txs))
	}
}

func TestListMostRecentFirst(t *testing.T) {
	s := New()
	defer s.Close()
	ctx := context.Background()

	first, err := s.Insert(ctx, candidate(10, domain.TypeExpense, "Mercado"))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	second, err := s.Insert(ctx, candidate(20, domain.TypeIncome, "Salário"))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	txs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("Expected 2 transactions, got %d", len(txs))
	}
	if txs[0].ID != second.ID || txs[1].ID != first.ID {
		t.Errorf("Expected most recent first, got order [%s, %s]", txs[0].ID, txs[1].ID)
	}
	if txs[0].CreatedAt.Before(txs[1].CreatedAt) {
		t.Error("Expected descending created_at order")
	}
}

func TestListReturnsCopies(t *testing.T) {
	s := New()
	defer s.Close()
	ctx := context.Background()

	if _, err := s.Insert(ctx, candidate(10, domain.TypeExpense, "Mercado")); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	txs, _ := s.List(ctx)
	txs[0].Category = "mutated"

	again, _ := s.List(ctx)
	if again[0].Category != "Mercado" {
		t.Errorf("Stored record mutated through List result, category = %q", again[0].Category)
	}
}

func TestConcurrentInserts(t *testing.T) {
	s := New()
	defer s.Close()
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Insert(ctx, candidate(1, domain.TypeExpense, "Teste")); err != nil {
				t.Errorf("Insert failed: %v", err)
			}
		}()
	}
	wg.Wait()

	txs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(txs) != n {
		t.Fatalf("Expected %d transactions, got %d", n, len(txs))
	}

	seen := make(map[string]bool, n)
	for _, tx := range txs {
		if seen[tx.ID] {
			t.Fatalf("Duplicate transaction ID %s", tx.ID)
		}
		seen[tx.ID] = true
	}

	// Concurrent inserts must still come back most recent first.
	for i := 1; i < len(txs); i++ {
		if txs[i-1].CreatedAt.Before(txs[i].CreatedAt) {
			t.Fatalf("List order disagrees with created_at at %d: %v before %v", i, txs[i-1].CreatedAt, txs[i].CreatedAt)
		}
	}
}

func TestSubscribeDeliversEachInsert(t *testing.T) {
	s := New()
	defer s.Close()
	ctx := context.Background()

	got := make(chan *domain.Transaction, 4)
	cancel := s.Subscribe(func(tx *domain.Transaction) {
		got <- tx
	})
	defer cancel()

	inserted, err := s.Insert(ctx, candidate(45, domain.TypeExpense, "Transporte"))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	select {
	case tx := <-got:
		if tx.ID != inserted.ID {
			t.Errorf("Delivered ID = %s, want %s", tx.ID, inserted.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for subscription delivery")
	}

	// No second delivery for a single insert.
	select {
	case tx := <-got:
		t.Errorf("Unexpected extra delivery: %v", tx.ID)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribeCancelStopsDelivery(t *testing.T) {
	s := New()
	defer s.Close()
	ctx := context.Background()

	got := make(chan *domain.Transaction, 4)
	cancel := s.Subscribe(func(tx *domain.Transaction) {
		got <- tx
	})

	cancel()
	cancel() // safe to call twice

	if _, err := s.Insert(ctx, candidate(10, domain.TypeIncome, "Salário")); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	select {
	case tx := <-got:
		t.Errorf("Delivery after cancel: %v", tx.ID)
	case <-time.After(100 * time.Millisecond):
	}
}
