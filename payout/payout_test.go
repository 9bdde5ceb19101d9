package payout

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lina-genesis/ledger"
	"lina-genesis/wire"
)

var (
	keyA     = wire.RecipientKey{0xaa}
	keyB     = wire.RecipientKey{0xbb}
	catchAll = wire.RecipientKey{0xff}
)

func TestDistributeEvenSplit(t *testing.T) {
	l, _ := ledger.NewFromRecords([]ledger.Record{{Key: keyA, Capacity: 1000}, {Key: keyB, Capacity: 2000}})

	payouts, err := Distribute(l, 3600, catchAll)
	require.NoError(t, err)
	assert.Equal(t, []Payout{
		{Key: keyA, Capacity: 1200},
		{Key: keyB, Capacity: 2400},
	}, payouts)
}

func TestDistributeMergedRecords(t *testing.T) {
	l, _ := ledger.NewFromRecords([]ledger.Record{{Key: keyA, Capacity: 1000}, {Key: keyB, Capacity: 1000}, {Key: keyB, Capacity: 1000}})

	// The merged ledger holds 3000, more than a budget of 100.
	_, err := Distribute(l, 100, catchAll)
	assert.ErrorIs(t, err, ErrBudgetExceeded)

	payouts, err := Distribute(l, 3000, catchAll)
	require.NoError(t, err)
	assert.Equal(t, []Payout{
		{Key: keyA, Capacity: 1000},
		{Key: keyB, Capacity: 2000},
	}, payouts)
}

func TestDistributeRemainder(t *testing.T) {
	l, _ := ledger.NewFromRecords([]ledger.Record{
		{Key: keyA, Capacity: 1000},
		{Key: keyB, Capacity: 1000},
		{Key: wire.RecipientKey{0xcc}, Capacity: 1000},
	})

	payouts, err := Distribute(l, 3001, catchAll)
	require.NoError(t, err)
	require.Len(t, payouts, 4)
	for _, p := range payouts[:3] {
		assert.Equal(t, uint64(1000), p.Capacity)
		assert.False(t, p.Remainder)
	}
	assert.Equal(t, Payout{Key: catchAll, Capacity: 1, Remainder: true}, payouts[3])
}

func TestDistributeBudgetExceeded(t *testing.T) {
	l, _ := ledger.NewFromRecords([]ledger.Record{{Key: keyA, Capacity: 600}, {Key: keyB, Capacity: 401}})

	_, err := Distribute(l, 1000, catchAll)
	assert.ErrorIs(t, err, ErrBudgetExceeded)

	_, err = Distribute(l, 1001, catchAll)
	assert.NoError(t, err)
}

func TestDistributeEmpty(t *testing.T) {
	_, err := Distribute(ledger.New(), 1000, catchAll)
	assert.ErrorIs(t, err, ErrEmptyLedger)
}

func TestDistributeSumsToBudget(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	const budget = 168_000_000 * 100_000_000

	for round := 0; round < 50; round++ {
		l := ledger.New()
		n := 1 + r.Intn(300)
		for i := 0; i < n; i++ {
			var k wire.RecipientKey
			r.Read(k[:])
			require.NoError(t, l.Add(k, uint64(r.Int63n(1<<44))))
		}
		total, err := l.Total()
		require.NoError(t, err)
		require.LessOrEqual(t, total, uint64(budget))

		payouts, err := Distribute(l, budget, catchAll)
		require.NoError(t, err)

		sum, err := Sum(payouts)
		require.NoError(t, err)
		assert.Equal(t, uint64(budget), sum)

		for i := 1; i < l.Len(); i++ {
			assert.Negative(t, payouts[i-1].Key.Compare(payouts[i].Key))
		}
	}
}
