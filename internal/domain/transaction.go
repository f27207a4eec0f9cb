package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Type classifies the direction of a transaction.
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// Valid reports whether t is one of the known transaction types.
func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Transaction is one stored financial record. The store assigns ID and
// CreatedAt on insert; after that the record is append-only and nothing
// in the system updates or deletes it.
type Transaction struct {
	ID          string          `json:"id"`
	CreatedAt   time.Time       `json:"created_at"`
	Amount      decimal.Decimal `json:"amount"` // always positive, direction is carried by Type
	Type        Type            `json:"type"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	RawText     string          `json:"raw_text,omitempty"`          // original message text, kept for audit
	Source      string          `json:"source_identifier,omitempty"` // chat id or "simulator"
}

// Candidate is an extraction result that has not been persisted yet.
type Candidate struct {
	Amount      decimal.Decimal
	Type        Type
	Category    string
	Description string
	RawText     string
	Source      string
}

// Validate checks the invariants every stored transaction must satisfy.
func (c Candidate) Validate() error {
	if !c.Amount.IsPositive() {
		return fmt.Errorf("amount must be positive, got %s", c.Amount)
	}
	if !c.Type.Valid() {
		return fmt.Errorf("unknown transaction type %q", c.Type)
	}
	if strings.TrimSpace(c.Category) == "" {
		return fmt.Errorf("category is required")
	}
	if strings.TrimSpace(c.Description) == "" {
		return fmt.Errorf("description is required")
	}
	return nil
}
