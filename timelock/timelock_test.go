package timelock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lina-genesis/chaincfg"
	"lina-genesis/wire"
)

func TestParseDate(t *testing.T) {
	dt, err := ParseDate("2020-01-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), dt)

	_, err = ParseDate("2020/01/01")
	assert.Error(t, err)
	_, err = ParseDate("2020-02-30")
	assert.Error(t, err)
}

func TestSince(t *testing.T) {
	outset := NewOutset(&chaincfg.MainNetParams)

	since, err := outset.Since(time.Date(2019, 11, 16, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, uint64(4*60*60), since)

	since, err = outset.Since(outset.Start)
	require.NoError(t, err)
	assert.Zero(t, since)

	_, err = outset.Since(time.Date(2019, 11, 16, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrBeforeOutset)
}

func TestSinceEpoch(t *testing.T) {
	outset := NewOutset(&chaincfg.MainNetParams)

	tests := []struct {
		name   string
		date   time.Time
		target uint64
		epoch  uint64
		index  uint64
	}{
		// 2020-01-01 is 45 days and 18 hours after the outset: 274 full
		// epochs and a half.
		{"Midway", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), 100, 274 + 89 - 100, 900},
		{"Outset", outset.Start, 89, 0, 0},
		{"BeforeCut", outset.Start.Add(4 * time.Hour), 1000, 0, 0},
		{"Boundary", outset.Start.Add(8 * time.Hour), 0, 91, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := outset.SinceEpoch(tt.date, tt.target)
			require.NoError(t, err)
			assert.Equal(t, SinceEpochFlag, value&SinceEpochFlag)

			e := wire.EpochNumberWithFraction(value &^ SinceEpochFlag)
			assert.Equal(t, tt.epoch, e.Number())
			assert.Equal(t, tt.index, e.Index())
			assert.Equal(t, uint64(1800), e.Length())
		})
	}
}
