package explorer

import (
	"github.com/ethereum/go-ethereum/common/hexutil"

	"lina-genesis/chaincfg"
	"lina-genesis/wire"
)

const testEpochLength = 20

// memChain is an in-memory Provider.  Block h is mined by minerOf(h), sits
// in epoch h/testEpochLength and its cellbase issues rewardOf(h).
type memChain struct {
	tip     uint64
	blocks  map[uint64]*wire.Block
	hashes  map[uint64]wire.Hash
	rewards map[wire.Hash]*wire.BlockReward
	epochs  map[uint64]*wire.Epoch

	calls map[string]int
}

func minerOf(h uint64) wire.RecipientKey {
	return wire.RecipientKey{0x01, byte(h >> 8), byte(h)}
}

func rewardOf(h uint64) uint64 {
	return 10_000 + h
}

func hashOf(h uint64) wire.Hash {
	return wire.Hash{0xee, byte(h >> 8), byte(h)}
}

func witnessOf(key wire.RecipientKey) hexutil.Bytes {
	w := &wire.CellbaseWitness{
		Lock: wire.Script{
			CodeHash: chaincfg.MainNetParams.SighashCodeHash,
			HashType: wire.HashTypeType,
			Args:     key[:],
		},
		Message: []byte{},
	}
	return w.Serialize()
}

// newMemChain builds blocks 0..tip.
func newMemChain(tip uint64) *memChain {
	c := &memChain{
		tip:     tip,
		blocks:  make(map[uint64]*wire.Block),
		hashes:  make(map[uint64]wire.Hash),
		rewards: make(map[wire.Hash]*wire.BlockReward),
		epochs:  make(map[uint64]*wire.Epoch),
		calls:   make(map[string]int),
	}
	for h := uint64(0); h <= tip; h++ {
		hash := hashOf(h)
		c.blocks[h] = &wire.Block{
			Header: wire.Header{
				Number:        hexutil.Uint64(h),
				CompactTarget: 0x1a08a97e,
				Timestamp:     hexutil.Uint64(1_573_852_190_000 + h*8_000),
				Epoch:         hexutil.Uint64(wire.NewEpochNumberWithFraction(h/testEpochLength, h%testEpochLength, testEpochLength)),
				Hash:          hash,
			},
			Transactions: []wire.Transaction{{
				Witnesses: []hexutil.Bytes{witnessOf(minerOf(h))},
			}},
		}
		c.hashes[h] = hash
		c.rewards[hash] = &wire.BlockReward{
			Primary: hexutil.Uint64(rewardOf(h)),
			Total:   hexutil.Uint64(rewardOf(h) + 7),
		}
	}
	for e := uint64(0); e <= tip/testEpochLength; e++ {
		c.epochs[e] = &wire.Epoch{
			Number:        hexutil.Uint64(e),
			StartNumber:   hexutil.Uint64(e * testEpochLength),
			Length:        testEpochLength,
			CompactTarget: hexutil.Uint64(0x1a08a97e + e),
		}
	}
	return c
}

func (c *memChain) GetTipHeader() (*wire.Header, error) {
	c.calls["tip"]++
	return &c.blocks[c.tip].Header, nil
}

func (c *memChain) GetBlockByNumber(number uint64) (*wire.Block, error) {
	c.calls["block"]++
	return c.blocks[number], nil
}

func (c *memChain) GetBlockHash(number uint64) (*wire.Hash, error) {
	c.calls["hash"]++
	hash, ok := c.hashes[number]
	if !ok {
		return nil, nil
	}
	return &hash, nil
}

func (c *memChain) GetCellbaseOutputCapacityDetails(hash wire.Hash) (*wire.BlockReward, error) {
	c.calls["reward"]++
	return c.rewards[hash], nil
}

func (c *memChain) GetEpochByNumber(number uint64) (*wire.Epoch, error) {
	c.calls["epoch"]++
	return c.epochs[number], nil
}
