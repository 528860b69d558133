// Package cashback evaluates the cashback rules applied to direct
// payments. Evaluation is a pure function of the amount and the payment
// note; the credit goes to the payer's cashback wallet, never the
// spendable balance.
package cashback

import (
	"regexp"

	"github.com/goldenleaf/goldpay/internal/money"
)

// Rule identifies which cashback rule applied to a payment.
type Rule string

const (
	// RuleBase is the default 1% rate.
	RuleBase Rule = "BASE_1"
	// RuleFood is the 2% category boost for food spends.
	RuleFood Rule = "FOOD_2"
)

const (
	// minAmount is the smallest payment that earns cashback.
	minAmount = money.Paise(100_00) // Rs 100
	// perTxnCap caps the cashback on a single payment.
	perTxnCap = money.Paise(200_00) // Rs 200
)

var foodPattern = regexp.MustCompile(`(?i)food|dining|swiggy|zomato`)

// Evaluate returns the cashback for a payment and the rule that produced
// it. Below the minimum spend it returns (0, "").
//
// The computed percentage is rounded to the nearest whole rupee first and
// capped at the per-transaction limit second; the order matters at the
// boundary.
func Evaluate(amount money.Paise, note string) (money.Paise, Rule) {
	if amount < minAmount {
		return 0, ""
	}

	rule, pct := RuleBase, int64(1)
	if foodPattern.MatchString(note) {
		rule, pct = RuleFood, 2
	}

	cb := (amount * money.Paise(pct) / 100).RoundToRupee()
	if cb > perTxnCap {
		cb = perTxnCap
	}
	return cb, rule
}
