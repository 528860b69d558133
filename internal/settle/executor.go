package settle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/goldenleaf/goldpay/internal/money"
)

// ErrInsufficientFunds is returned by a Ledger when the sender's live
// balance cannot cover the transfer.
var ErrInsufficientFunds = errors.New("insufficient balance")

// Ledger applies a single transfer as one atomic unit: guarded sender
// debit, receiver credit, and the transaction record all commit together
// or not at all. Implementations read the sender's balance fresh inside
// the same unit — earlier transfers in a batch may have changed it.
type Ledger interface {
	Transfer(ctx context.Context, fromID, toID string, amount money.Paise, note string) error
}

// Result reports how a settlement batch went.
type Result struct {
	Completed int
	Skipped   int
}

// Executor realizes settlement plans against a ledger.
type Executor struct {
	ledger Ledger
}

// NewExecutor creates an executor backed by the given ledger.
func NewExecutor(ledger Ledger) *Executor {
	return &Executor{ledger: ledger}
}

// Execute applies the plan in order. A transfer the sender cannot cover is
// skipped — logged, counted, and the batch continues; this partial-failure
// policy is deliberate and nothing is retried. Any other ledger error is
// fatal: the ledger is potentially inconsistent and the error is returned
// immediately with the counts so far.
func (e *Executor) Execute(ctx context.Context, plan []Transfer, note string) (Result, error) {
	var res Result
	for _, t := range plan {
		err := e.ledger.Transfer(ctx, t.FromUserID, t.ToUserID, t.Amount, note)
		if errors.Is(err, ErrInsufficientFunds) {
			slog.Warn("skipping settlement transfer",
				"from", t.FromEmail,
				"to", t.ToEmail,
				"amount", t.Amount.String(),
			)
			res.Skipped++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("settlement transfer %s -> %s failed: %w", t.FromEmail, t.ToEmail, err)
		}
		res.Completed++
	}
	return res, nil
}
