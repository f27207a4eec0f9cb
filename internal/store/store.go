package store

import (
	"context"
	"fmt"

	"github.com/grmartinica/Finanza-Zap/internal/domain"
)

// TransactionStore is the persistence boundary for transactions.
type TransactionStore interface {
	// Insert assigns id and created_at, persists the candidate and
	// returns the full record. Persistence failures come back as a
	// *StorageError; the caller must not assume the record was saved.
	Insert(ctx context.Context, c domain.Candidate) (*domain.Transaction, error)

	// List returns every stored transaction, most recent first, unbounded.
	List(ctx context.Context) ([]*domain.Transaction, error)

	// Subscribe registers fn to run once for each transaction committed
	// after the call. Delivery is asynchronous relative to Insert and
	// best-effort: events can be lost across reconnects. The returned
	// cancel func stops delivery and is safe to call more than once.
	Subscribe(fn func(*domain.Transaction)) (cancel func())

	// Ping verifies the backing storage answers.
	Ping(ctx context.Context) error

	Close() error
}

// StorageError wraps a failure reported by the persistence backend.
// Handlers use it to tell storage failures apart from validation and
// extraction outcomes.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
