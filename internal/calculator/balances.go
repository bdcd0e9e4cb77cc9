package calculator

import (
	"sort"

	"github.com/shopspring/decimal"
)

// epsilon is the settlement tolerance: balances within ±0.01 count as settled.
var epsilon = decimal.New(1, -2)

// PersonBalance is one person's position aggregated across all expenses.
type PersonBalance struct {
	PersonID  string
	TotalPaid decimal.Decimal // sum of amounts this person advanced
	TotalOwed decimal.Decimal // sum of this person's resolved shares
	Net       decimal.Decimal // TotalPaid - TotalOwed; positive = is owed money
}

// Transfer suggests a payment from one net debtor to one net creditor.
type Transfer struct {
	From   string
	To     string
	Amount decimal.Decimal
}

// NetBalances folds all expenses into one signed balance per person.
// People appear in the result in the order they are first encountered, so the
// same input always yields the same output. An expense with no participants is
// skipped entirely; its payers are not credited either.
func NetBalances(expenses []ExpenseForBalance) []PersonBalance {
	balances := make(map[string]*PersonBalance)
	var order []string
	touch := func(personID string) *PersonBalance {
		b, ok := balances[personID]
		if !ok {
			b = &PersonBalance{PersonID: personID}
			balances[personID] = b
			order = append(order, personID)
		}
		return b
	}

	for _, expense := range expenses {
		if len(expense.Participants) == 0 {
			continue
		}

		shares := ResolveShares(expense.Total, expense.Participants)
		for _, p := range expense.Participants {
			share, ok := shares[p.PersonID]
			if !ok {
				// Duplicate listing; the share was already charged.
				continue
			}
			delete(shares, p.PersonID)
			b := touch(p.PersonID)
			b.TotalOwed = b.TotalOwed.Add(share)
		}

		for _, payer := range expense.Payers {
			b := touch(payer.PersonID)
			b.TotalPaid = b.TotalPaid.Add(payer.Paid)
		}
	}

	result := make([]PersonBalance, 0, len(order))
	for _, personID := range order {
		b := balances[personID]
		b.Net = b.TotalPaid.Sub(b.TotalOwed)
		result = append(result, *b)
	}
	return result
}

// ComputeBalances turns an expense list into a small list of point-to-point
// transfers that settle every net balance to within epsilon.
//
// Largest-first greedy matching: sort creditors and debtors by amount
// descending, then repeatedly settle min(creditor, debtor) between the two
// cursors. Greedy keeps the transaction count small but is not guaranteed to
// be the global minimum.
func ComputeBalances(expenses []ExpenseForBalance) []Transfer {
	return settle(NetBalances(expenses))
}

type party struct {
	personID string
	amount   decimal.Decimal
}

func settle(balances []PersonBalance) []Transfer {
	var creditors, debtors []party
	for _, b := range balances {
		switch {
		case b.Net.GreaterThan(epsilon):
			creditors = append(creditors, party{b.PersonID, b.Net.Round(2)})
		case b.Net.LessThan(epsilon.Neg()):
			debtors = append(debtors, party{b.PersonID, b.Net.Abs().Round(2)})
		}
	}

	// Stable sort so ties keep first-seen order and runs stay reproducible.
	sort.SliceStable(creditors, func(i, j int) bool {
		return creditors[i].amount.GreaterThan(creditors[j].amount)
	})
	sort.SliceStable(debtors, func(i, j int) bool {
		return debtors[i].amount.GreaterThan(debtors[j].amount)
	})

	var transfers []Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor, creditor := &debtors[i], &creditors[j]

		amount := decimal.Min(debtor.amount, creditor.amount)
		transfers = append(transfers, Transfer{
			From:   debtor.personID,
			To:     creditor.personID,
			Amount: amount,
		})

		debtor.amount = debtor.amount.Sub(amount)
		creditor.amount = creditor.amount.Sub(amount)

		if debtor.amount.LessThan(epsilon) {
			i++
		}
		if creditor.amount.LessThan(epsilon) {
			j++
		}
	}
	return transfers
}

// NetBalanceFor returns one person's net position, derived from the full
// transfer list: what they receive minus what they pay, rounded to cents.
func NetBalanceFor(personID string, expenses []ExpenseForBalance) decimal.Decimal {
	net := decimal.Zero
	for _, t := range ComputeBalances(expenses) {
		switch personID {
		case t.From:
			net = net.Sub(t.Amount)
		case t.To:
			net = net.Add(t.Amount)
		}
	}
	return net.Round(2)
}

// BalancesForPerson returns the transfers visible to one person.
//
// The input is first restricted to expenses the person is actually part of,
// then settled, then filtered to transfers naming them. Settling the full set
// and filtering afterwards would leak debt relationships between third parties
// the person never transacted with.
func BalancesForPerson(personID string, expenses []ExpenseForBalance) []Transfer {
	var involved []ExpenseForBalance
	for _, expense := range expenses {
		if involvesPerson(expense, personID) {
			involved = append(involved, expense)
		}
	}

	var transfers []Transfer
	for _, t := range ComputeBalances(involved) {
		if t.From == personID || t.To == personID {
			transfers = append(transfers, t)
		}
	}
	return transfers
}

func involvesPerson(expense ExpenseForBalance, personID string) bool {
	for _, p := range expense.Payers {
		if p.PersonID == personID {
			return true
		}
	}
	for _, p := range expense.Participants {
		if p.PersonID == personID {
			return true
		}
	}
	return false
}

// TotalExpenses sums expense totals, for display.
func TotalExpenses(expenses []ExpenseForBalance) decimal.Decimal {
	sum := decimal.Zero
	for _, expense := range expenses {
		sum = sum.Add(expense.Total)
	}
	return sum
}
