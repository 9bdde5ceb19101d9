// Package timelock converts calendar lock dates of allocation records into
// absolute epoch "since" values.
package timelock

import (
	"errors"
	"fmt"
	"time"

	"lina-genesis/chaincfg"
	"lina-genesis/wire"
)

// SinceEpochFlag marks a since value as an absolute epoch with fraction.
const SinceEpochFlag uint64 = 0x2000_0000_0000_0000

const dateLayout = "2006-01-02"

// ErrBeforeOutset is returned for lock dates earlier than the outset.
var ErrBeforeOutset = errors.New("lock date before outset")

// ParseDate parses a YYYY-MM-DD date at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse lock date %q: %w", s, err)
	}
	return t, nil
}

// Outset anchors lock dates to epochs: the chain is assumed to be at
// EpochOffset when Start passes, and to advance one epoch of EpochLength
// blocks every EpochDuration after that.
type Outset struct {
	Start         time.Time
	EpochOffset   uint64
	EpochDuration time.Duration
	EpochLength   uint64
}

// NewOutset builds an Outset from network parameters.
func NewOutset(params *chaincfg.Params) Outset {
	return Outset{
		Start:         params.Outset,
		EpochOffset:   params.OutsetEpochOffset,
		EpochDuration: params.LockEpochDuration,
		EpochLength:   params.LockEpochLength,
	}
}

// Since returns the whole seconds elapsed between the outset and date.
func (o Outset) Since(date time.Time) (uint64, error) {
	if date.Before(o.Start) {
		return 0, fmt.Errorf("%w: %s is before %s", ErrBeforeOutset,
			date.UTC().Format(time.RFC3339), o.Start.UTC().Format(time.RFC3339))
	}
	return uint64(date.Sub(o.Start) / time.Second), nil
}

// SinceEpoch returns the since value locking a cell until date, counted in
// epochs from a genesis that is cut at epoch target of the current chain.
// Dates that fall before the cut lock until epoch 0.
func (o Outset) SinceEpoch(date time.Time, target uint64) (uint64, error) {
	since, err := o.Since(date)
	if err != nil {
		return 0, err
	}
	duration := uint64(o.EpochDuration / time.Second)
	offset := since/duration + o.EpochOffset

	var epoch, index uint64
	if target <= offset {
		epoch = offset - target
		index = since % duration * o.EpochLength / duration
	}
	value := wire.NewEpochNumberWithFraction(epoch, index, o.EpochLength)
	return value.Full() | SinceEpochFlag, nil
}
