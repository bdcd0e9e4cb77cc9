package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// validationTolerance mirrors the settlement engine's 0.01 epsilon: payer sums
// are allowed to miss the total by less than a cent.
var validationTolerance = decimal.New(1, -2)

var (
	ErrInvalidTotal    = errors.New("total must be positive")
	ErrNoParticipants  = errors.New("at least one participant is required")
	ErrNegativePayment = errors.New("payer amounts cannot be negative")
	ErrPayerSum        = errors.New("payer amounts must sum to the expense total")
	ErrSharesExceed    = errors.New("explicit shares exceed the expense total")
)

// ParticipantShare assigns part of an expense's cost to a person.
// A nil Share means the person takes an equal split of whatever the explicit
// shares leave over.
type ParticipantShare struct {
	PersonID string           `json:"person_id"`
	Share    *decimal.Decimal `json:"share_amount"`
}

// PayerContribution records money a person actually advanced for an expense.
type PayerContribution struct {
	PersonID string          `json:"person_id"`
	Amount   decimal.Decimal `json:"amount_paid"`
}

// Expense is money spent, possibly split among several participants and paid
// by several payers.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string `json:"id,omitempty"`

	// Description is the human-readable label (e.g. "Birthday dinner").
	Description string `json:"description,omitempty"`

	// GiftID optionally tags the expense with the gift it was made for.
	// Organizational only; balance math ignores it.
	GiftID string `json:"gift_id,omitempty"`

	// Total is the full cost of the expense.
	Total decimal.Decimal `json:"total"`

	// Payers is who advanced money, and how much each.
	Payers []PayerContribution `json:"payers"`

	// Participants is who bears the cost, with explicit or equal-split shares.
	Participants []ParticipantShare `json:"participants"`

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64 `json:"created_at,omitempty"`
}

// Validate reports whether the expense is well formed. This is creation-time
// input checking for the API layer; the balance calculator deliberately skips
// it and computes whatever it is given.
func (e *Expense) Validate() error {
	if !e.Total.IsPositive() {
		return ErrInvalidTotal
	}
	if len(e.Participants) == 0 {
		return ErrNoParticipants
	}

	paid := decimal.Zero
	for _, p := range e.Payers {
		if p.Amount.IsNegative() {
			return fmt.Errorf("%w: %s paid %s", ErrNegativePayment, p.PersonID, p.Amount)
		}
		paid = paid.Add(p.Amount)
	}
	if paid.Sub(e.Total).Abs().GreaterThanOrEqual(validationTolerance) {
		return fmt.Errorf("%w: paid %s, total %s", ErrPayerSum, paid, e.Total)
	}

	explicit := decimal.Zero
	for _, p := range e.Participants {
		if p.Share != nil {
			explicit = explicit.Add(*p.Share)
		}
	}
	if explicit.GreaterThan(e.Total) {
		return fmt.Errorf("%w: shares %s, total %s", ErrSharesExceed, explicit, e.Total)
	}

	return nil
}
