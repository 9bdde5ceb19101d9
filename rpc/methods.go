package rpc

import (
	"github.com/ethereum/go-ethereum/common/hexutil"

	"lina-genesis/explorer"
	"lina-genesis/wire"
)

var _ explorer.Provider = (*Client)(nil)

// GetTipHeader returns the header of the best block.
func (c *Client) GetTipHeader() (*wire.Header, error) {
	var header *wire.Header
	if err := c.call(&header, "get_tip_header"); err != nil {
		return nil, err
	}
	return header, nil
}

// GetBlockByNumber returns nil, nil for unknown heights.
func (c *Client) GetBlockByNumber(number uint64) (*wire.Block, error) {
	var block *wire.Block
	if err := c.call(&block, "get_block_by_number", hexutil.Uint64(number)); err != nil {
		return nil, err
	}
	return block, nil
}

// GetBlockHash returns nil, nil for unknown heights.
func (c *Client) GetBlockHash(number uint64) (*wire.Hash, error) {
	var hash *wire.Hash
	if err := c.call(&hash, "get_block_hash", hexutil.Uint64(number)); err != nil {
		return nil, err
	}
	return hash, nil
}

// GetCellbaseOutputCapacityDetails returns the reward issued by the cellbase
// of the block with the given hash, or nil, nil for unknown blocks.
func (c *Client) GetCellbaseOutputCapacityDetails(hash wire.Hash) (*wire.BlockReward, error) {
	var reward *wire.BlockReward
	if err := c.call(&reward, "get_cellbase_output_capacity_details", hash); err != nil {
		return nil, err
	}
	return reward, nil
}

// GetEpochByNumber returns nil, nil for epochs not reached yet.
func (c *Client) GetEpochByNumber(number uint64) (*wire.Epoch, error) {
	var epoch *wire.Epoch
	if err := c.call(&epoch, "get_epoch_by_number", hexutil.Uint64(number)); err != nil {
		return nil, err
	}
	return epoch, nil
}
