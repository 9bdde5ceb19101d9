package explorer

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"lina-genesis/database"
	"lina-genesis/wire"
)

// CachedProvider serves chain data from a local store and falls back to the
// wrapped provider.  The tip is always fetched upstream.  Number-indexed
// entries are only written once they are at least Confirmations blocks (or
// one epoch) below the last seen tip, so a rerun after ErrNotReady reuses
// everything that can no longer be reorganized away.
//
// The store is bound to the upstream genesis hash before first use and is
// wiped when it was filled from another chain.  A stored block whose hash
// disagrees with the stored hash for its number is ignored.
type CachedProvider struct {
	upstream      Provider
	store         *database.Storage
	confirmations uint64

	bound  bool
	tip    *wire.Header
	hits   uint64
	misses uint64
}

func NewCachedProvider(upstream Provider, store *database.Storage, confirmations uint64) *CachedProvider {
	return &CachedProvider{
		upstream:      upstream,
		store:         store,
		confirmations: confirmations,
	}
}

// Stats returns the number of cache hits and misses so far.
func (p *CachedProvider) Stats() (hits, misses uint64) {
	return p.hits, p.misses
}

// bind checks the store against the upstream genesis hash.
func (p *CachedProvider) bind() error {
	if p.bound {
		return nil
	}
	genesis, err := p.upstream.GetBlockHash(0)
	if err != nil {
		return err
	}
	if genesis == nil {
		return fmt.Errorf("%w: genesis block hash", ErrMissingChainData)
	}

	stored, err := p.store.GenesisHash()
	if err != nil {
		p.warn("genesis", 0, err)
	}
	if stored == nil || *stored != *genesis {
		if stored != nil {
			logrus.WithFields(logrus.Fields{
				"path":    p.store.Path(),
				"stored":  stored.String(),
				"genesis": genesis.String(),
			}).Warn("Chain cache was filled from another chain, resetting")
		}
		if err := p.store.Reset(*genesis); err != nil {
			return fmt.Errorf("reset chain cache: %w", err)
		}
	}
	p.bound = true
	return nil
}

func (p *CachedProvider) GetTipHeader() (*wire.Header, error) {
	if err := p.bind(); err != nil {
		return nil, err
	}
	tip, err := p.upstream.GetTipHeader()
	if err != nil {
		return nil, err
	}
	if tip != nil {
		p.tip = tip
	}
	return tip, nil
}

func (p *CachedProvider) GetBlockByNumber(number uint64) (*wire.Block, error) {
	if err := p.bind(); err != nil {
		return nil, err
	}
	if block, err := p.store.GetBlock(number); err == nil && block != nil {
		if p.consistent(block) {
			p.hits++
			return block, nil
		}
	} else if err != nil {
		p.warn("block", number, err)
	}
	p.misses++

	block, err := p.upstream.GetBlockByNumber(number)
	if err != nil || block == nil {
		return block, err
	}
	if p.confirmed(number) {
		if err := p.store.SaveBlock(block); err != nil {
			p.warn("block", number, err)
		}
	}
	return block, nil
}

func (p *CachedProvider) GetBlockHash(number uint64) (*wire.Hash, error) {
	if err := p.bind(); err != nil {
		return nil, err
	}
	if hash, err := p.store.GetBlockHash(number); err == nil && hash != nil {
		p.hits++
		return hash, nil
	} else if err != nil {
		p.warn("hash", number, err)
	}
	p.misses++

	hash, err := p.upstream.GetBlockHash(number)
	if err != nil || hash == nil {
		return hash, err
	}
	if p.confirmed(number) {
		if err := p.store.SaveBlockHash(number, *hash); err != nil {
			p.warn("hash", number, err)
		}
	}
	return hash, nil
}

// GetCellbaseOutputCapacityDetails caches by block hash, which never changes
// meaning.
func (p *CachedProvider) GetCellbaseOutputCapacityDetails(hash wire.Hash) (*wire.BlockReward, error) {
	if err := p.bind(); err != nil {
		return nil, err
	}
	if reward, err := p.store.GetReward(hash); err == nil && reward != nil {
		p.hits++
		return reward, nil
	} else if err != nil {
		p.warn("reward", hash.String(), err)
	}
	p.misses++

	reward, err := p.upstream.GetCellbaseOutputCapacityDetails(hash)
	if err != nil || reward == nil {
		return reward, err
	}
	if err := p.store.SaveReward(hash, reward); err != nil {
		p.warn("reward", hash.String(), err)
	}
	return reward, nil
}

func (p *CachedProvider) GetEpochByNumber(number uint64) (*wire.Epoch, error) {
	if err := p.bind(); err != nil {
		return nil, err
	}
	if epoch, err := p.store.GetEpoch(number); err == nil && epoch != nil {
		p.hits++
		return epoch, nil
	} else if err != nil {
		p.warn("epoch", number, err)
	}
	p.misses++

	epoch, err := p.upstream.GetEpochByNumber(number)
	if err != nil || epoch == nil {
		return epoch, err
	}
	// Only finished epochs are final.
	if p.tip != nil && number < p.tip.EpochWithFraction().Number() {
		if err := p.store.SaveEpoch(epoch); err != nil {
			p.warn("epoch", number, err)
		}
	}
	return epoch, nil
}

// consistent reports whether block matches the hash stored for its number.
func (p *CachedProvider) consistent(block *wire.Block) bool {
	hash, err := p.store.GetBlockHash(block.Number())
	if err != nil {
		p.warn("hash", block.Number(), err)
		return false
	}
	if hash != nil && *hash != block.Header.Hash {
		p.warn("block", block.Number(), fmt.Errorf("stored block hash %s differs from %s", block.Header.Hash, hash))
		return false
	}
	return true
}

func (p *CachedProvider) confirmed(number uint64) bool {
	return p.tip != nil && number+p.confirmations <= uint64(p.tip.Number)
}

// warn logs a cache failure.  Entry failures are never returned.
func (p *CachedProvider) warn(kind string, key interface{}, err error) {
	logrus.WithFields(logrus.Fields{
		"kind": kind,
		"key":  key,
	}).Warnf("Chain cache: %v", err)
}
