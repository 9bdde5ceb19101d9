package wire

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Header is the JSON view of a block header returned by the node.  Numbers
// are hex encoded on the wire.
type Header struct {
	Version       hexutil.Uint64 `json:"version"`
	CompactTarget hexutil.Uint64 `json:"compact_target"`
	// Timestamp is in milliseconds since the Unix epoch.
	Timestamp  hexutil.Uint64 `json:"timestamp"`
	Number     hexutil.Uint64 `json:"number"`
	Epoch      hexutil.Uint64 `json:"epoch"`
	ParentHash Hash           `json:"parent_hash"`
	Hash       Hash           `json:"hash"`
}

// EpochWithFraction returns the packed epoch field of the header.
func (h *Header) EpochWithFraction() EpochNumberWithFraction {
	return EpochNumberWithFraction(h.Epoch)
}

// UnixSeconds returns the header timestamp truncated to whole seconds.
func (h *Header) UnixSeconds() uint64 {
	return uint64(h.Timestamp) / 1000
}

// Transaction is the subset of a transaction view needed to locate the
// cellbase witness.
type Transaction struct {
	Hash      Hash            `json:"hash"`
	Witnesses []hexutil.Bytes `json:"witnesses"`
}

// Block is a block view: a header plus its transactions.  The first
// transaction is always the cellbase.
type Block struct {
	Header       Header        `json:"header"`
	Transactions []Transaction `json:"transactions"`
}

// Number returns the block height.
func (b *Block) Number() uint64 {
	return uint64(b.Header.Number)
}

// CellbaseWitness decodes the first witness of the cellbase transaction.
func (b *Block) CellbaseWitness() (*CellbaseWitness, error) {
	if len(b.Transactions) == 0 {
		return nil, fmt.Errorf("%w: block %d has no cellbase", ErrMalformedWitness, b.Number())
	}
	cellbase := b.Transactions[0]
	if len(cellbase.Witnesses) == 0 {
		return nil, fmt.Errorf("%w: block %d cellbase has no witness", ErrMalformedWitness, b.Number())
	}
	w, err := DecodeCellbaseWitness(cellbase.Witnesses[0])
	if err != nil {
		return nil, fmt.Errorf("block %d: %w", b.Number(), err)
	}
	return w, nil
}

// Epoch is an epoch view: one difficulty sample of the chain.
type Epoch struct {
	Number        hexutil.Uint64 `json:"number"`
	StartNumber   hexutil.Uint64 `json:"start_number"`
	Length        hexutil.Uint64 `json:"length"`
	CompactTarget hexutil.Uint64 `json:"compact_target"`
}

// BlockReward breaks down the capacity issued by a block's cellbase.
type BlockReward struct {
	Total          hexutil.Uint64 `json:"total"`
	Primary        hexutil.Uint64 `json:"primary"`
	Secondary      hexutil.Uint64 `json:"secondary"`
	TxFee          hexutil.Uint64 `json:"tx_fee"`
	ProposalReward hexutil.Uint64 `json:"proposal_reward"`
}
