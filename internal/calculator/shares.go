package calculator

import "github.com/shopspring/decimal"

// ParticipantShare is one person's stake in an expense.
// A nil Share means "split the remainder equally with the other implicit participants".
type ParticipantShare struct {
	PersonID string
	Share    *decimal.Decimal
}

// PayerContribution records money a person actually advanced toward an expense.
type PayerContribution struct {
	PersonID string
	Paid     decimal.Decimal
}

// ExpenseForBalance carries the minimal expense information needed for balance
// calculations. The service layer converts from the full models.Expense.
type ExpenseForBalance struct {
	ID           string
	Total        decimal.Decimal
	Participants []ParticipantShare
	Payers       []PayerContribution
}

// ResolveShares computes the final owed amount for every participant of one expense.
//
// Explicit shares are taken as-is. Whatever remains of the total after subtracting
// the explicit shares is split equally among the participants without an explicit
// share. Two quirks are intentional and match the app's historical behavior:
//   - If explicit shares overcommit the total, implicit shares go negative.
//   - If every participant has an explicit share, a non-zero remainder is
//     silently unattributed.
func ResolveShares(total decimal.Decimal, participants []ParticipantShare) map[string]decimal.Decimal {
	shares := make(map[string]decimal.Decimal, len(participants))
	if len(participants) == 0 {
		return shares
	}

	explicitTotal := decimal.Zero
	nImplicit := 0
	for _, p := range participants {
		if p.Share != nil {
			shares[p.PersonID] = *p.Share
			explicitTotal = explicitTotal.Add(*p.Share)
		} else {
			nImplicit++
		}
	}

	if nImplicit > 0 {
		remainder := total.Sub(explicitTotal)
		equalSplit := remainder.Div(decimal.NewFromInt(int64(nImplicit)))
		for _, p := range participants {
			if p.Share == nil {
				shares[p.PersonID] = equalSplit
			}
		}
	}

	return shares
}
