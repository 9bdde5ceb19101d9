package genesis

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"

	"lina-genesis/chaincfg"
	"lina-genesis/consensus"
	"lina-genesis/explorer"
	"lina-genesis/wire"
)

var (
	ErrNoSamples      = errors.New("no difficulty samples")
	ErrZeroDifficulty = errors.New("derived difficulty is zero")
)

// Parameters are the chain-derived fields of the genesis block.
type Parameters struct {
	// Timestamp of the reference block in seconds.
	Timestamp uint64

	// TimestampMillis keeps the full header precision for the document.
	TimestampMillis uint64
	CompactTarget   uint32

	// Message is the reference block hash.
	Message         string
	EpochLength     uint64
	ReferenceNumber uint64
}

// AverageDifficulty decodes every sample's compact target and returns the
// floor of the mean difficulty.
func AverageDifficulty(samples []wire.Epoch) (*uint256.Int, error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}

	// sum(d/n) + sum(d%n)/n equals floor(sum(d)/n) and never exceeds
	// the largest sample.
	var (
		n         = uint256.NewInt(uint64(len(samples)))
		quotients = new(uint256.Int)
		remainder = new(uint256.Int)
		q, r      = new(uint256.Int), new(uint256.Int)
	)
	for _, e := range samples {
		d, err := sampleDifficulty(e)
		if err != nil {
			return nil, err
		}
		q.DivMod(d, n, r)
		quotients.Add(quotients, q)
		remainder.Add(remainder, r)
	}
	return quotients.Add(quotients, remainder.Div(remainder, n)), nil
}

func sampleDifficulty(e wire.Epoch) (*uint256.Int, error) {
	compact := uint64(e.CompactTarget)
	if compact > 0xffffffff {
		return nil, fmt.Errorf("epoch %d: compact target %#x out of range", uint64(e.Number), compact)
	}
	d, overflow := consensus.CompactToDifficulty(uint32(compact))
	if overflow {
		return nil, fmt.Errorf("epoch %d: compact target %#x overflows", uint64(e.Number), compact)
	}
	return d, nil
}

// Derive computes the genesis parameters from a finished scan.  The launch
// difficulty is the sampled average scaled by the configured margin and by
// the share of the incentive budget the retained rewards represent:
//
//	avg * marginNum/marginDen * retained/budget
//
// The product saturates at 2^256-1.
func Derive(result *explorer.ScanResult, retained, budget uint64, params *chaincfg.Params) (Parameters, error) {
	if result.Reference == nil {
		return Parameters{}, fmt.Errorf("%w: no reference block", explorer.ErrMissingChainData)
	}
	if budget == 0 || params.DifficultyMarginDen == 0 {
		return Parameters{}, errors.New("zero incentive budget or margin denominator")
	}

	avg, err := AverageDifficulty(result.Samples)
	if err != nil {
		return Parameters{}, err
	}

	num := new(uint256.Int).Mul(uint256.NewInt(params.DifficultyMarginNum), uint256.NewInt(retained))
	den := new(uint256.Int).Mul(uint256.NewInt(params.DifficultyMarginDen), uint256.NewInt(budget))
	difficulty, overflow := new(uint256.Int).MulDivOverflow(avg, num, den)
	if overflow {
		difficulty.SetAllOne()
	}
	if difficulty.IsZero() {
		return Parameters{}, fmt.Errorf("%w: retained %d of budget %d", ErrZeroDifficulty, retained, budget)
	}

	header := &result.Reference.Header
	p := Parameters{
		Timestamp:       header.UnixSeconds(),
		TimestampMillis: uint64(header.Timestamp),
		CompactTarget:   consensus.DifficultyToCompact(difficulty),
		Message:         header.Hash.String(),
		EpochLength:     uint64(result.Samples[len(result.Samples)-1].Length),
		ReferenceNumber: uint64(header.Number),
	}

	logrus.WithFields(logrus.Fields{
		"average":        avg.Dec(),
		"difficulty":     difficulty.Dec(),
		"saturated":      overflow,
		"compact_target": fmt.Sprintf("%#x", p.CompactTarget),
		"epoch_length":   p.EpochLength,
		"reference":      p.ReferenceNumber,
	}).Info("Derived genesis parameters")

	return p, nil
}
