package ledger

import (
	"errors"
	"fmt"
	"math/bits"
	"sort"

	"lina-genesis/wire"
)

// ErrOverflow is returned when capacity arithmetic leaves the uint64 range.
var ErrOverflow = errors.New("capacity overflow")

// CheckedAdd returns a+b or ErrOverflow.
func CheckedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, fmt.Errorf("%w: %d + %d", ErrOverflow, a, b)
	}
	return sum, nil
}

// CheckedMul returns a*b or ErrOverflow.
func CheckedMul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, fmt.Errorf("%w: %d * %d", ErrOverflow, a, b)
	}
	return lo, nil
}

// Ledger maps recipients to the capacity owed to them, in shannons.
//
// A Ledger is built in stages by a single goroutine: static records are
// reduced into it first, then chain rewards are accumulated, then it is
// read once to compute payouts.
type Ledger struct {
	entries map[wire.RecipientKey]uint64
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{entries: make(map[wire.RecipientKey]uint64)}
}

// Add credits capacity to key.  On overflow the entry is left unchanged.
func (l *Ledger) Add(key wire.RecipientKey, capacity uint64) error {
	sum, err := CheckedAdd(l.entries[key], capacity)
	if err != nil {
		return fmt.Errorf("recipient %s: %w", key, err)
	}
	l.entries[key] = sum
	return nil
}

// Get returns the capacity held for key.
func (l *Ledger) Get(key wire.RecipientKey) (uint64, bool) {
	c, ok := l.entries[key]
	return c, ok
}

// Len returns the number of recipients.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Keys returns the recipients in ascending byte order.
func (l *Ledger) Keys() []wire.RecipientKey {
	keys := make([]wire.RecipientKey, 0, len(l.entries))
	for k := range l.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Compare(keys[j]) < 0
	})
	return keys
}

// Total sums all entries.
func (l *Ledger) Total() (uint64, error) {
	var total uint64
	for _, k := range l.Keys() {
		var err error
		if total, err = CheckedAdd(total, l.entries[k]); err != nil {
			return 0, fmt.Errorf("ledger total: %w", err)
		}
	}
	return total, nil
}

// Filter removes every entry whose capacity does not exceed floor and
// returns the number of entries removed.
func (l *Ledger) Filter(floor uint64) int {
	removed := 0
	for k, c := range l.entries {
		if c <= floor {
			delete(l.entries, k)
			removed++
		}
	}
	return removed
}

// Entry is a single recipient and capacity pair.
type Entry struct {
	Key      wire.RecipientKey
	Capacity uint64
}

// Entries returns all entries in ascending key order.
func (l *Ledger) Entries() []Entry {
	keys := l.Keys()
	out := make([]Entry, len(keys))
	for i, k := range keys {
		out[i] = Entry{Key: k, Capacity: l.entries[k]}
	}
	return out
}
