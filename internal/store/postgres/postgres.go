package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/grmartinica/Finanza-Zap/internal/domain"
	"github.com/grmartinica/Finanza-Zap/internal/store"
)

// notifyChannel is the Postgres NOTIFY channel inserts are announced on.
const notifyChannel = "finanza_transactions"

// notifyPayloadLimit is the Postgres cap on NOTIFY payloads (8000
// bytes). An insert must never fail because its announcement would not
// fit, the live feed is best-effort.
const notifyPayloadLimit = 8000

// notifyPayload renders tx for pg_notify. The raw message text is left
// out: it is unbounded and the dashboard feed has no use for it. The
// second return is false when the payload would still not fit.
func notifyPayload(tx *domain.Transaction) (string, bool) {
	slim := *tx
	slim.RawText = ""
	payload, err := json.Marshal(&slim)
	if err != nil || len(payload) >= notifyPayloadLimit {
		return "", false
	}
	return string(payload), true
}

// schemaSQL bootstraps the transactions table so a fresh Supabase
// project works without running the migration tool first. The CHECK
// constraints mirror domain.Candidate.Validate.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS transactions (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	amount NUMERIC(14,2) NOT NULL CHECK (amount > 0),
	type TEXT NOT NULL CHECK (type IN ('income', 'expense')),
	category TEXT NOT NULL,
	description TEXT NOT NULL,
	raw_text TEXT NOT NULL DEFAULT '',
	source_identifier TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_transactions_created_at ON transactions(created_at);
`

// Store is a Supabase-backed implementation of store.TransactionStore.
// Supabase speaks plain Postgres, so everything here is written against
// pgx and works with any Postgres the connection string points at.
// Insert and NOTIFY share one transaction, and a dedicated listener
// connection turns notifications into subscriber callbacks, which gives
// Subscribe its best-effort live-feed semantics for free.
type Store struct {
	pool *pgxpool.Pool
	log  zerolog.Logger

	subMu sync.Mutex
	subs  map[int]func(*domain.Transaction)
	next  int

	stopListen context.CancelFunc
	listenDone chan struct{}
}

// New connects, ensures the schema exists and starts the notification
// listener.
func New(ctx context.Context, dsn string, log zerolog.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ensure schema: %w", err)
	}

	listenCtx, cancel := context.WithCancel(context.Background())
	s := &Store{
		pool:       pool,
		log:        log,
		subs:       make(map[int]func(*domain.Transaction)),
		stopListen: cancel,
		listenDone: make(chan struct{}),
	}
	go s.listen(listenCtx)

	return s, nil
}

// Insert implements store.TransactionStore. The row and its NOTIFY are
// committed together, so subscribers only ever see committed inserts.
// An oversized announcement is dropped instead of failing the insert.
func (s *Store) Insert(ctx context.Context, c domain.Candidate) (*domain.Transaction, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("insert: %w", err)
	}

	tx := &domain.Transaction{
		Amount:      c.Amount,
		Type:        c.Type,
		Category:    c.Category,
		Description: c.Description,
		RawText:     c.RawText,
		Source:      c.Source,
	}

	err := pgx.BeginFunc(ctx, s.pool, func(dbtx pgx.Tx) error {
		row := dbtx.QueryRow(ctx, `
			INSERT INTO transactions (amount, type, category, description, raw_text, source_identifier)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at`,
			c.Amount, string(c.Type), c.Category, c.Description, c.RawText, c.Source,
		)
		if err := row.Scan(&tx.ID, &tx.CreatedAt); err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}

		payload, ok := notifyPayload(tx)
		if !ok {
			s.log.Warn().Str("transaction_id", tx.ID).Msg("Skipping transaction announcement, payload exceeds the NOTIFY limit")
			return nil
		}
		if _, err := dbtx.Exec(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, payload); err != nil {
			return fmt.Errorf("notify: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, &store.StorageError{Op: "insert", Err: err}
	}

	return tx, nil
}

// List implements store.TransactionStore.
func (s *Store) List(ctx context.Context) ([]*domain.Transaction, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, created_at, amount, type, category, description, raw_text, source_identifier
		FROM transactions
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, &store.StorageError{Op: "list", Err: err}
	}
	defer rows.Close()

	var out []*domain.Transaction
	for rows.Next() {
		tx := &domain.Transaction{}
		if err := rows.Scan(&tx.ID, &tx.CreatedAt, &tx.Amount, &tx.Type, &tx.Category, &tx.Description, &tx.RawText, &tx.Source); err != nil {
			return nil, &store.StorageError{Op: "list", Err: err}
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, &store.StorageError{Op: "list", Err: err}
	}
	return out, nil
}

// Subscribe implements store.TransactionStore. Callbacks run on the
// listener goroutine; events published while the listener is
// reconnecting are lost, which is within the subscribe contract.
func (s *Store) Subscribe(fn func(*domain.Transaction)) (cancel func()) {
	s.subMu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

// Ping implements store.TransactionStore.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: ping: %w", err)
	}
	return nil
}

// Close stops the listener and releases the pool.
func (s *Store) Close() error {
	s.stopListen()
	<-s.listenDone
	s.pool.Close()
	return nil
}

// listen keeps one LISTEN connection alive for the lifetime of the
// store, reconnecting with a short delay after failures.
func (s *Store) listen(ctx context.Context) {
	defer close(s.listenDone)

	for {
		if err := s.listenOnce(ctx); err != nil && ctx.Err() == nil {
			s.log.Warn().Err(err).Msg("Transaction listener disconnected, reconnecting")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(3 * time.Second):
		}
	}
}

func (s *Store) listenOnce(ctx context.Context) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listener connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		return fmt.Errorf("listen %s: %w", notifyChannel, err)
	}

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}

		var tx domain.Transaction
		if err := json.Unmarshal([]byte(n.Payload), &tx); err != nil {
			s.log.Warn().Err(err).Msg("Discarding malformed transaction notification")
			continue
		}
		s.dispatch(&tx)
	}
}

func (s *Store) dispatch(tx *domain.Transaction) {
	s.subMu.Lock()
	fns := make([]func(*domain.Transaction), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(tx)
	}
}

// Ensure Store implements the TransactionStore interface.
var _ store.TransactionStore = (*Store)(nil)
