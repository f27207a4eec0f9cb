package handlers

import (
	"net/http"
	"sort"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/grmartinica/Finanza-Zap/internal/api/middleware"
	"github.com/grmartinica/Finanza-Zap/internal/domain"
	"github.com/grmartinica/Finanza-Zap/internal/logger"
	"github.com/grmartinica/Finanza-Zap/internal/store"
)

// TransactionsHandler serves the stored transactions to the dashboard.
type TransactionsHandler struct {
	store store.TransactionStore
	log   zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(st store.TransactionStore, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{
		store: st,
		log:   log,
	}
}

// List handles GET /api/transactions
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	transactions, err := h.store.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}

	// Return array directly for frontend compatibility
	if transactions == nil {
		transactions = []*domain.Transaction{}
	}
	middleware.WriteJSON(w, http.StatusOK, transactions)
}

type categorySummary struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

type summaryResponse struct {
	TotalIncome  decimal.Decimal   `json:"total_income"`
	TotalExpense decimal.Decimal   `json:"total_expense"`
	Balance      decimal.Decimal   `json:"balance"`
	Count        int               `json:"count"`
	Categories   []categorySummary `json:"categories"`
}

// Summary handles GET /api/summary
func (h *TransactionsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	transactions, err := h.store.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to summarize transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to summarize transactions")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, buildSummary(transactions))
}

func buildSummary(transactions []*domain.Transaction) summaryResponse {
	summary := summaryResponse{Categories: []categorySummary{}}

	totals := make(map[string]*categorySummary)
	for _, tx := range transactions {
		switch tx.Type {
		case domain.TypeIncome:
			summary.TotalIncome = summary.TotalIncome.Add(tx.Amount)
		case domain.TypeExpense:
			summary.TotalExpense = summary.TotalExpense.Add(tx.Amount)
		}
		summary.Count++

		cs, ok := totals[tx.Category]
		if !ok {
			cs = &categorySummary{Category: tx.Category}
			totals[tx.Category] = cs
		}
		cs.Total = cs.Total.Add(tx.Amount)
		cs.Count++
	}

	summary.Balance = summary.TotalIncome.Sub(summary.TotalExpense)

	for _, cs := range totals {
		summary.Categories = append(summary.Categories, *cs)
	}
	sort.Slice(summary.Categories, func(i, j int) bool {
		a, b := summary.Categories[i], summary.Categories[j]
		if !a.Total.Equal(b.Total) {
			return a.Total.GreaterThan(b.Total)
		}
		return a.Category < b.Category
	})

	return summary
}
