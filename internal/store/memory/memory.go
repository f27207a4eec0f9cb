package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/grmartinica/Finanza-Zap/internal/domain"
	"github.com/grmartinica/Finanza-Zap/internal/store"
)

// Store is an in-memory implementation of store.TransactionStore.
// It keeps transactions in memory and is safe for concurrent use.
// Data is lost on restart; the store exists so the simulator and the
// dashboard stay usable when no database is configured.
type Store struct {
	mu  sync.RWMutex
	txs []*domain.Transaction

	subMu sync.Mutex
	subs  map[int]*subscriber
	next  int

	wg sync.WaitGroup
}

type subscriber struct {
	ch   chan *domain.Transaction
	done chan struct{}
}

// New creates an empty in-memory transaction store.
func New() *Store {
	return &Store{
		subs: make(map[int]*subscriber),
	}
}

// Insert implements store.TransactionStore.
func (s *Store) Insert(ctx context.Context, c domain.Candidate) (*domain.Transaction, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("insert: %w", err)
	}

	tx := &domain.Transaction{
		ID:          uuid.NewString(),
		Amount:      c.Amount,
		Type:        c.Type,
		Category:    c.Category,
		Description: c.Description,
		RawText:     c.RawText,
		Source:      c.Source,
	}

	s.mu.Lock()
	// Stamped under the lock so append order matches timestamp order
	// and List's most-recent-first scan stays consistent.
	tx.CreatedAt = time.Now().UTC()
	s.txs = append(s.txs, tx)
	s.mu.Unlock()

	s.publish(tx)

	cp := *tx
	return &cp, nil
}

// publish hands the transaction to every subscriber without blocking
// the insert path. A saturated subscriber drops events.
func (s *Store) publish(tx *domain.Transaction) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, sub := range s.subs {
		select {
		case sub.ch <- tx:
		default:
		}
	}
}

// List implements store.TransactionStore. Results are copies in
// most-recent-first order.
func (s *Store) List(ctx context.Context) ([]*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Transaction, 0, len(s.txs))
	for i := len(s.txs) - 1; i >= 0; i-- {
		cp := *s.txs[i]
		out = append(out, &cp)
	}
	return out, nil
}

// Subscribe implements store.TransactionStore. Each subscriber gets its
// own dispatch goroutine so a slow callback never stalls inserts or
// other subscribers.
func (s *Store) Subscribe(fn func(*domain.Transaction)) (cancel func()) {
	sub := &subscriber{
		ch:   make(chan *domain.Transaction, 64),
		done: make(chan struct{}),
	}

	s.subMu.Lock()
	id := s.next
	s.next++
	s.subs[id] = sub
	s.subMu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case tx := <-sub.ch:
				fn(tx)
			case <-sub.done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(sub.done)
		})
	}
}

// Ping implements store.TransactionStore. Memory is always reachable.
func (s *Store) Ping(ctx context.Context) error { return nil }

// Close stops all subscriber goroutines and waits for them to exit.
func (s *Store) Close() error {
	s.subMu.Lock()
	for id, sub := range s.subs {
		delete(s.subs, id)
		close(sub.done)
	}
	s.subMu.Unlock()

	s.wg.Wait()
	return nil
}

// Ensure Store implements the TransactionStore interface.
var _ store.TransactionStore = (*Store)(nil)
