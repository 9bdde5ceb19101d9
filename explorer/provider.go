package explorer

import (
	"errors"

	"lina-genesis/wire"
)

var (
	// ErrNotReady is returned when the tip has not advanced far enough past
	// the target epoch for every reward of the epoch to be issued.
	ErrNotReady = errors.New("chain not ready")

	// ErrMissingChainData is returned when the node does not have a block,
	// hash, reward or epoch the scan needs.
	ErrMissingChainData = errors.New("missing chain data")
)

// Provider is the read-only view of a node the scanner works against.
// Lookups return nil, nil when the item does not exist.
type Provider interface {
	GetTipHeader() (*wire.Header, error)
	GetBlockByNumber(number uint64) (*wire.Block, error)
	GetBlockHash(number uint64) (*wire.Hash, error)
	GetCellbaseOutputCapacityDetails(hash wire.Hash) (*wire.BlockReward, error)
	GetEpochByNumber(number uint64) (*wire.Epoch, error)
}
