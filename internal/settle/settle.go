// Package settle computes and executes bill settlements.
//
// Given a bill's splits it reduces each member to a signed net position
// (paid minus owed), then greedily matches the largest debtor against the
// largest creditor to produce an ordered transfer plan. Planning is pure:
// the same splits always yield the same plan, so it can be previewed any
// number of times without touching stored state. Execution applies the
// plan against live balances, one atomic transfer at a time.
package settle

import (
	"sort"

	"github.com/goldenleaf/goldpay/internal/models"
	"github.com/goldenleaf/goldpay/internal/money"
)

// Net is one member's net position on a bill.
// Amount > 0: the member is owed money (creditor).
// Amount < 0: the member owes money (debtor).
type Net struct {
	UserID string
	Email  string
	Amount money.Paise
}

// Transfer is one leg of a settlement plan: From pays To.
type Transfer struct {
	FromUserID string
	FromEmail  string
	ToUserID   string
	ToEmail    string
	Amount     money.Paise
}

// NetPositions reduces a bill's splits to one net position per member,
// preserving split order. A member may appear in several splits; their
// nets accumulate. Members whose net is exactly zero are dropped — they
// are already settled.
func NetPositions(splits []models.Split) []Net {
	index := make(map[string]int, len(splits))
	var nets []Net
	for _, s := range splits {
		if i, ok := index[s.UserID]; ok {
			nets[i].Amount += s.Net()
			continue
		}
		index[s.UserID] = len(nets)
		nets = append(nets, Net{UserID: s.UserID, Email: s.Email, Amount: s.Net()})
	}

	out := nets[:0]
	for _, n := range nets {
		if n.Amount != 0 {
			out = append(out, n)
		}
	}
	return out
}

// Plan converts net positions into an ordered list of transfers that
// zeroes every position. Greedy largest-to-largest matching: both sides
// are stable-sorted descending by amount and walked with two pointers,
// transferring min(debt, credit) at each step. The transfer count is not
// guaranteed globally minimal; determinism is what matters, and the total
// amount moved is the same regardless of pairing.
//
// Nets sum to zero by construction (owed and paid both sum to the bill
// total), so both lists exhaust together.
func Plan(nets []Net) []Transfer {
	var debtors, creditors []Net
	for _, n := range nets {
		switch {
		case n.Amount < 0:
			debtors = append(debtors, Net{UserID: n.UserID, Email: n.Email, Amount: -n.Amount})
		case n.Amount > 0:
			creditors = append(creditors, n)
		}
	}

	// Stable keeps equal amounts in input order, which pins down the plan
	// for testing.
	sortByAmountDesc(debtors)
	sortByAmountDesc(creditors)

	var transfers []Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		d, c := &debtors[i], &creditors[j]

		amount := d.Amount
		if c.Amount < amount {
			amount = c.Amount
		}
		if amount > 0 {
			transfers = append(transfers, Transfer{
				FromUserID: d.UserID,
				FromEmail:  d.Email,
				ToUserID:   c.UserID,
				ToEmail:    c.Email,
				Amount:     amount,
			})
			d.Amount -= amount
			c.Amount -= amount
		}

		if d.Amount <= 0 {
			i++
		}
		if c.Amount <= 0 {
			j++
		}
	}

	return transfers
}

func sortByAmountDesc(nets []Net) {
	sort.SliceStable(nets, func(a, b int) bool {
		return nets[a].Amount > nets[b].Amount
	})
}
