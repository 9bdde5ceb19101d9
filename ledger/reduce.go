package ledger

import (
	"github.com/sirupsen/logrus"

	"lina-genesis/wire"
)

// Record is one row of static allocation data after address decoding.
type Record struct {
	Key      wire.RecipientKey
	Capacity uint64
}

// Reduce merges records into l, summing capacity per recipient.  A record
// whose addition would overflow is dropped with a warning and the rest are
// still processed.  It returns the number of dropped records.
func Reduce(l *Ledger, records []Record) int {
	dropped := 0
	for _, r := range records {
		if err := l.Add(r.Key, r.Capacity); err != nil {
			logrus.WithFields(logrus.Fields{
				"recipient": r.Key.String(),
				"capacity":  r.Capacity,
			}).Warnf("Record capacity reduce overflow: %v", err)
			dropped++
		}
	}
	return dropped
}

// NewFromRecords reduces records into a fresh ledger.
func NewFromRecords(records []Record) (*Ledger, int) {
	l := New()
	dropped := Reduce(l, records)
	return l, dropped
}
