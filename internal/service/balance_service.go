package service

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/giftpot/giftpot/internal/calculator"
	"github.com/giftpot/giftpot/internal/models"
)

// BalanceService exposes the settlement engine over HTTP. It holds no state:
// callers send the expense set with every request and get the freshly computed
// result back, so there is never a stale balance to invalidate.
type BalanceService struct{}

// NewBalanceService creates a new BalanceService.
func NewBalanceService() *BalanceService {
	return &BalanceService{}
}

// SettlementRequest is the input to every settlement endpoint.
type SettlementRequest struct {
	Expenses []models.Expense `json:"expenses"`
}

// TransferResponse is one suggested payment.
type TransferResponse struct {
	FromPersonID string          `json:"from_person_id"`
	ToPersonID   string          `json:"to_person_id"`
	Amount       decimal.Decimal `json:"amount"`
}

// PersonBalanceResponse is one person's aggregated position.
type PersonBalanceResponse struct {
	PersonID   string          `json:"person_id"`
	TotalPaid  decimal.Decimal `json:"total_paid"`
	TotalOwed  decimal.Decimal `json:"total_owed"`
	NetBalance decimal.Decimal `json:"net_balance"`
}

// SettlementResponse is the full settlement view of an expense set.
type SettlementResponse struct {
	Transfers []TransferResponse      `json:"transfers"`
	Balances  []PersonBalanceResponse `json:"balances"`
	Total     decimal.Decimal         `json:"total"`

	// Warnings lists expenses that fail creation-time validation. The engine
	// still computes over them; flagging is the caller's concern.
	Warnings []string `json:"warnings,omitempty"`
}

// PersonSettlementResponse is the privacy-scoped view for a single person.
type PersonSettlementResponse struct {
	PersonID   string             `json:"person_id"`
	Transfers  []TransferResponse `json:"transfers"`
	NetBalance decimal.Decimal    `json:"net_balance"`
}

// ComputeSettlements handles POST /v1/settlements.
func (s *BalanceService) ComputeSettlements(w http.ResponseWriter, r *http.Request) {
	var req SettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	warnings := prepareExpenses(req.Expenses)
	expenses := toEngine(req.Expenses)

	transfers := calculator.ComputeBalances(expenses)
	balances := calculator.NetBalances(expenses)

	resp := SettlementResponse{
		Transfers: toTransferResponses(transfers),
		Balances:  toBalanceResponses(balances),
		Total:     calculator.TotalExpenses(expenses),
		Warnings:  warnings,
	}

	slog.Debug("Computed settlements",
		"expenses", len(req.Expenses),
		"transfers", len(resp.Transfers),
		"people", len(resp.Balances),
		"warnings", len(warnings),
	)
	writeJSON(w, http.StatusOK, resp)
}

// SettlementsForPerson handles POST /v1/settlements/{personID}.
// It restricts the computation to expenses the person is part of, so the
// response never reveals who owes whom among third parties.
func (s *BalanceService) SettlementsForPerson(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "personID")

	var req SettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	prepareExpenses(req.Expenses)
	expenses := toEngine(req.Expenses)

	resp := PersonSettlementResponse{
		PersonID:   personID,
		Transfers:  toTransferResponses(calculator.BalancesForPerson(personID, expenses)),
		NetBalance: calculator.NetBalanceFor(personID, expenses),
	}

	slog.Debug("Computed person settlements",
		"person_id", personID,
		"expenses", len(req.Expenses),
		"transfers", len(resp.Transfers),
	)
	writeJSON(w, http.StatusOK, resp)
}

// prepareExpenses assigns IDs to expenses that arrive without one and runs
// creation-time validation, returning one warning per malformed expense.
func prepareExpenses(expenses []models.Expense) []string {
	var warnings []string
	for i := range expenses {
		e := &expenses[i]
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		if err := e.Validate(); err != nil {
			warnings = append(warnings, fmt.Sprintf("expense %s: %v", e.ID, err))
		}
	}
	return warnings
}

func toEngine(expenses []models.Expense) []calculator.ExpenseForBalance {
	out := make([]calculator.ExpenseForBalance, len(expenses))
	for i, e := range expenses {
		participants := make([]calculator.ParticipantShare, len(e.Participants))
		for j, p := range e.Participants {
			participants[j] = calculator.ParticipantShare{PersonID: p.PersonID, Share: p.Share}
		}
		payers := make([]calculator.PayerContribution, len(e.Payers))
		for j, p := range e.Payers {
			payers[j] = calculator.PayerContribution{PersonID: p.PersonID, Paid: p.Amount}
		}
		out[i] = calculator.ExpenseForBalance{
			ID:           e.ID,
			Total:        e.Total,
			Participants: participants,
			Payers:       payers,
		}
	}
	return out
}

func toTransferResponses(transfers []calculator.Transfer) []TransferResponse {
	out := make([]TransferResponse, len(transfers))
	for i, t := range transfers {
		out[i] = TransferResponse{
			FromPersonID: t.From,
			ToPersonID:   t.To,
			Amount:       t.Amount,
		}
	}
	return out
}

func toBalanceResponses(balances []calculator.PersonBalance) []PersonBalanceResponse {
	out := make([]PersonBalanceResponse, len(balances))
	for i, b := range balances {
		out[i] = PersonBalanceResponse{
			PersonID:   b.PersonID,
			TotalPaid:  b.TotalPaid.Round(2),
			TotalOwed:  b.TotalOwed.Round(2),
			NetBalance: b.Net.Round(2),
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
