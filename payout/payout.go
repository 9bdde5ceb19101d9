// Package payout splits a fixed incentive budget across the recipients of a
// reward ledger in proportion to what each one earned.
package payout

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"

	"lina-genesis/ledger"
	"lina-genesis/wire"
)

var (
	// ErrBudgetExceeded is returned when the ledger holds more than the
	// budget being distributed.
	ErrBudgetExceeded = errors.New("ledger total exceeds budget")

	// ErrEmptyLedger is returned when there is nothing to weigh shares by.
	ErrEmptyLedger = errors.New("ledger is empty")
)

// Payout is the capacity issued to one recipient.
type Payout struct {
	Key      wire.RecipientKey
	Capacity uint64
	// Remainder marks the catch-all entry carrying truncation leftovers.
	Remainder bool
}

// Distribute computes budget * capacity / total for every ledger entry in
// ascending key order.  Whatever integer truncation leaves over is appended
// as a final entry for remainder, so the payouts always sum to budget.
func Distribute(l *ledger.Ledger, budget uint64, remainder wire.RecipientKey) ([]Payout, error) {
	total, err := l.Total()
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, ErrEmptyLedger
	}
	if total > budget {
		return nil, fmt.Errorf("%w: total %d, budget %d", ErrBudgetExceeded, total, budget)
	}

	var (
		b       = uint256.NewInt(budget)
		t       = uint256.NewInt(total)
		share   = new(uint256.Int)
		issued  uint64
		entries = l.Entries()
		payouts = make([]Payout, 0, len(entries)+1)
	)
	for _, e := range entries {
		// budget and capacity are both below 2^64, the product fits easily.
		share.MulDivOverflow(b, uint256.NewInt(e.Capacity), t)
		payouts = append(payouts, Payout{Key: e.Key, Capacity: share.Uint64()})
		issued += share.Uint64()
	}

	if leftover := budget - issued; leftover > 0 {
		payouts = append(payouts, Payout{Key: remainder, Capacity: leftover, Remainder: true})
	}

	logrus.WithFields(logrus.Fields{
		"recipients": len(entries),
		"total":      total,
		"budget":     budget,
		"remainder":  budget - issued,
	}).Info("Distributed incentive budget")

	return payouts, nil
}

// Sum adds up payout capacities.
func Sum(payouts []Payout) (uint64, error) {
	var sum uint64
	for _, p := range payouts {
		var err error
		if sum, err = ledger.CheckedAdd(sum, p.Capacity); err != nil {
			return 0, err
		}
	}
	return sum, nil
}
