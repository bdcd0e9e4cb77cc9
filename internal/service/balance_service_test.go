package service

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giftpot/giftpot/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func share(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func newTestRouter() chi.Router {
	svc := NewBalanceService()
	router := chi.NewRouter()
	router.Post("/v1/settlements", svc.ComputeSettlements)
	router.Post("/v1/settlements/{personID}", svc.SettlementsForPerson)
	return router
}

func postJSON(t *testing.T, router chi.Router, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestComputeSettlements_EqualSplit(t *testing.T) {
	router := newTestRouter()

	w := postJSON(t, router, "/v1/settlements", SettlementRequest{
		Expenses: []models.Expense{
			{
				Description: "Birthday dinner",
				Total:       dec("60"),
				Participants: []models.ParticipantShare{
					{PersonID: "alice"},
					{PersonID: "bob"},
					{PersonID: "carol"},
				},
				Payers: []models.PayerContribution{
					{PersonID: "alice", Amount: dec("60")},
				},
			},
		},
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp SettlementResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

	require.Len(t, resp.Transfers, 2)
	assert.Equal(t, "bob", resp.Transfers[0].FromPersonID)
	assert.Equal(t, "alice", resp.Transfers[0].ToPersonID)
	assert.True(t, resp.Transfers[0].Amount.Equal(dec("20")), "amount = %s", resp.Transfers[0].Amount)
	assert.Equal(t, "carol", resp.Transfers[1].FromPersonID)
	assert.Equal(t, "alice", resp.Transfers[1].ToPersonID)

	require.Len(t, resp.Balances, 3)
	assert.Equal(t, "alice", resp.Balances[0].PersonID)
	assert.True(t, resp.Balances[0].NetBalance.Equal(dec("40")), "net = %s", resp.Balances[0].NetBalance)
	assert.True(t, resp.Total.Equal(dec("60")), "total = %s", resp.Total)
	assert.Empty(t, resp.Warnings)
}

func TestComputeSettlements_UnbalancedExpenseWarnsButComputes(t *testing.T) {
	router := newTestRouter()

	// Payers only cover 40 of 60; that's a caller mistake worth flagging, but
	// the engine still computes the resulting (skewed) balances.
	w := postJSON(t, router, "/v1/settlements", SettlementRequest{
		Expenses: []models.Expense{
			{
				Total: dec("60"),
				Participants: []models.ParticipantShare{
					{PersonID: "alice"},
					{PersonID: "bob"},
				},
				Payers: []models.PayerContribution{
					{PersonID: "alice", Amount: dec("40")},
				},
			},
		},
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp SettlementResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "payer amounts must sum")

	// alice: paid 40, owes 30 -> +10; bob owes 30 -> -30.
	require.Len(t, resp.Transfers, 1)
	assert.Equal(t, "bob", resp.Transfers[0].FromPersonID)
	assert.True(t, resp.Transfers[0].Amount.Equal(dec("10")), "amount = %s", resp.Transfers[0].Amount)
}

func TestComputeSettlements_EmptyExpenseList(t *testing.T) {
	router := newTestRouter()

	w := postJSON(t, router, "/v1/settlements", SettlementRequest{})

	require.Equal(t, http.StatusOK, w.Code)

	var resp SettlementResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Empty(t, resp.Transfers)
	assert.Empty(t, resp.Balances)
	assert.True(t, resp.Total.IsZero())
}

func TestComputeSettlements_InvalidBody(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/v1/settlements", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestSettlementsForPerson_ScopedToOwnExpenses(t *testing.T) {
	router := newTestRouter()

	w := postJSON(t, router, "/v1/settlements/xavier", SettlementRequest{
		Expenses: []models.Expense{
			{
				Description: "Gift wrap",
				Total:       dec("30"),
				Participants: []models.ParticipantShare{
					{PersonID: "xavier"},
					{PersonID: "alice"},
				},
				Payers: []models.PayerContribution{
					{PersonID: "alice", Amount: dec("30")},
				},
			},
			{
				Description: "Unrelated groceries",
				Total:       dec("40"),
				Participants: []models.ParticipantShare{
					{PersonID: "bob"},
					{PersonID: "carol"},
				},
				Payers: []models.PayerContribution{
					{PersonID: "bob", Amount: dec("40")},
				},
			},
		},
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp PersonSettlementResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

	assert.Equal(t, "xavier", resp.PersonID)
	require.Len(t, resp.Transfers, 1)
	assert.Equal(t, "xavier", resp.Transfers[0].FromPersonID)
	assert.Equal(t, "alice", resp.Transfers[0].ToPersonID)
	assert.True(t, resp.Transfers[0].Amount.Equal(dec("15")), "amount = %s", resp.Transfers[0].Amount)
	assert.True(t, resp.NetBalance.Equal(dec("-15")), "net = %s", resp.NetBalance)
}

func TestComputeSettlements_CustomShareWithExplicitPayerMix(t *testing.T) {
	router := newTestRouter()

	w := postJSON(t, router, "/v1/settlements", SettlementRequest{
		Expenses: []models.Expense{
			{
				Total: dec("100"),
				Participants: []models.ParticipantShare{
					{PersonID: "alice", Share: share("40")},
					{PersonID: "bob"},
					{PersonID: "carol"},
				},
				Payers: []models.PayerContribution{
					{PersonID: "alice", Amount: dec("100")},
				},
			},
		},
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp SettlementResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

	require.Len(t, resp.Transfers, 2)
	for _, transfer := range resp.Transfers {
		assert.Equal(t, "alice", transfer.ToPersonID)
		assert.True(t, transfer.Amount.Equal(dec("30")), "amount = %s", transfer.Amount)
	}
}
