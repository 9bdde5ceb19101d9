package explorer

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"lina-genesis/chaincfg"
	"lina-genesis/ledger"
	"lina-genesis/wire"
)

const progressInterval = 10_000

// ScanResult is what a scan learns from the chain besides the rewards it
// adds to the ledger.
type ScanResult struct {
	// Reference is the last block of the target epoch.  Its timestamp and
	// hash seed the genesis block.
	Reference *wire.Block

	// Samples are the epochs whose difficulty is averaged, oldest first.
	Samples []wire.Epoch

	// Attributed is the number of blocks whose miner was credited.
	Attributed uint64

	// ChainRewards is the primary reward credited from the chain.
	ChainRewards uint64

	// Dropped is the number of ledger entries removed by the reward floor.
	Dropped int
}

// Scanner credits the miners of every block up to the end of a target epoch
// with the primary reward their blocks earned.
//
// A block's reward is only issued by the cellbase of the block AttributionLag
// heights later, so the scanner keeps the last AttributionLag+1 blocks in a
// window and credits the reward issued at height h to the miner named in the
// cellbase witness of the oldest window entry, block h-AttributionLag.
type Scanner struct {
	provider Provider
	params   *chaincfg.Params
}

func NewScanner(provider Provider, params *chaincfg.Params) *Scanner {
	return &Scanner{provider: provider, params: params}
}

// Scan credits chain rewards up to the end of epoch target into l, then drops
// every entry at or below the reward floor.  l should already hold the static
// mining records; they are filtered together with the chain rewards.
//
// Any error leaves l partially updated and must abort the run.
func (s *Scanner) Scan(target uint64, l *ledger.Ledger) (*ScanResult, error) {
	endpoint, err := s.endpoint(target)
	if err != nil {
		return nil, err
	}

	log := logrus.WithFields(logrus.Fields{
		"target":   target,
		"endpoint": endpoint,
	})
	log.Info("Scanning chain rewards")

	lag := s.params.AttributionLag
	window := NewBlockWindow()
	for number := uint64(1); number <= lag; number++ {
		block, err := s.block(number)
		if err != nil {
			return nil, err
		}
		window.Push(block)
	}

	result := &ScanResult{}
	last := endpoint + lag
	for h := lag + 1; h <= last; h++ {
		block, err := s.block(h)
		if err != nil {
			return nil, err
		}
		window.Push(block)

		reward, err := s.reward(h)
		if err != nil {
			return nil, err
		}

		miner := window.Oldest()
		witness, err := miner.CellbaseWitness()
		if err != nil {
			return nil, err
		}
		key, err := witness.Recipient()
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", miner.Number(), err)
		}

		primary := uint64(reward.Primary)
		if err := l.Add(key, primary); err != nil {
			return nil, fmt.Errorf("credit block %d: %w", miner.Number(), err)
		}
		if result.ChainRewards, err = ledger.CheckedAdd(result.ChainRewards, primary); err != nil {
			return nil, fmt.Errorf("chain reward total: %w", err)
		}
		result.Attributed++

		if h != last {
			window.Evict()
		}
		if h%progressInterval == 0 {
			log.WithField("height", h).Debug("Scan progress")
		}
	}

	result.Reference = window.Oldest()
	result.Dropped = l.Filter(s.params.RewardFloor)

	if result.Samples, err = s.samples(target); err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"reference":  result.Reference.Header.Hash.String(),
		"attributed": result.Attributed,
		"rewards":    result.ChainRewards,
		"retained":   l.Len(),
		"dropped":    result.Dropped,
	}).Info("Chain rewards scanned")

	return result, nil
}

// endpoint checks the tip and returns the last block number of epoch target.
func (s *Scanner) endpoint(target uint64) (uint64, error) {
	tip, err := s.provider.GetTipHeader()
	if err != nil {
		return 0, fmt.Errorf("get tip header: %w", err)
	}
	if tip == nil {
		return 0, fmt.Errorf("%w: tip header", ErrMissingChainData)
	}

	next := target + 1
	epoch := tip.EpochWithFraction()
	if epoch.Number() < next || (epoch.Number() == next && epoch.Index() < s.params.MinTipEpochIndex) {
		return 0, fmt.Errorf("%w: tip %d is at epoch %s, need epoch %d index %d",
			ErrNotReady, uint64(tip.Number), epoch, next, s.params.MinTipEpochIndex)
	}

	e, err := s.epoch(next)
	if err != nil {
		return 0, err
	}
	if e.StartNumber == 0 {
		return 0, fmt.Errorf("%w: epoch %d starts at block 0", ErrMissingChainData, next)
	}
	return uint64(e.StartNumber) - 1, nil
}

func (s *Scanner) samples(target uint64) ([]wire.Epoch, error) {
	var from uint64
	if n := s.params.DifficultySampleEpochs; target+1 > n {
		from = target + 1 - n
	}
	samples := make([]wire.Epoch, 0, target-from+1)
	for number := from; number <= target; number++ {
		e, err := s.epoch(number)
		if err != nil {
			return nil, err
		}
		samples = append(samples, *e)
	}
	return samples, nil
}

func (s *Scanner) block(number uint64) (*wire.Block, error) {
	block, err := s.provider.GetBlockByNumber(number)
	if err != nil {
		return nil, fmt.Errorf("get block %d: %w", number, err)
	}
	if block == nil {
		return nil, fmt.Errorf("%w: block %d", ErrMissingChainData, number)
	}
	return block, nil
}

func (s *Scanner) reward(number uint64) (*wire.BlockReward, error) {
	hash, err := s.provider.GetBlockHash(number)
	if err != nil {
		return nil, fmt.Errorf("get block hash %d: %w", number, err)
	}
	if hash == nil {
		return nil, fmt.Errorf("%w: block hash %d", ErrMissingChainData, number)
	}
	reward, err := s.provider.GetCellbaseOutputCapacityDetails(*hash)
	if err != nil {
		return nil, fmt.Errorf("get reward of block %d: %w", number, err)
	}
	if reward == nil {
		return nil, fmt.Errorf("%w: reward of block %d %s", ErrMissingChainData, number, hash)
	}
	return reward, nil
}

func (s *Scanner) epoch(number uint64) (*wire.Epoch, error) {
	e, err := s.provider.GetEpochByNumber(number)
	if err != nil {
		return nil, fmt.Errorf("get epoch %d: %w", number, err)
	}
	if e == nil {
		return nil, fmt.Errorf("%w: epoch %d", ErrMissingChainData, number)
	}
	return e, nil
}
