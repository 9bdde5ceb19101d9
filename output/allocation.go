package output

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"lina-genesis/chaincfg"
	"lina-genesis/crypto"
	"lina-genesis/genesis"
	"lina-genesis/input"
	"lina-genesis/ledger"
	"lina-genesis/timelock"
)

// Allocation is an allocation row resolved to the lock it is issued to.
type Allocation struct {
	input.AllocationRow

	// Since is the absolute epoch lock, zero for unlocked rows.
	Since    uint64
	Shannons uint64
	Cell     genesis.IssuedCell

	MainnetAddress string
}

// ResolveAllocations decodes allocation rows.  Locked rows are issued to a
// single-key multisig lock carrying the since value computed for target;
// the rest go to the plain single-key lock.  Rows that fail to resolve are
// skipped with a warning.
func ResolveAllocations(rows []input.AllocationRow, target uint64, params *chaincfg.Params) []Allocation {
	outset := timelock.NewOutset(params)
	out := make([]Allocation, 0, len(rows))
	for _, row := range rows {
		a, err := resolve(row, outset, target, params)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"line":   row.Line,
				"source": row.Source(),
				"lock":   row.Lock,
			}).Warnf("Skipping allocation: %v", err)
			continue
		}
		out = append(out, a)
	}
	return out
}

func resolve(row input.AllocationRow, outset timelock.Outset, target uint64, params *chaincfg.Params) (Allocation, error) {
	key, err := row.Recipient(params)
	if err != nil {
		return Allocation{}, err
	}
	shannons, err := ledger.CheckedMul(row.Capacity, chaincfg.ByteShannons)
	if err != nil {
		return Allocation{}, err
	}

	a := Allocation{AllocationRow: row, Shannons: shannons}
	if !row.Locked() {
		a.Cell = genesis.NewSighashCell(params, key, shannons)
		a.MainnetAddress, err = crypto.EncodeShortAddress(params.AddressPrefix, key)
		return a, err
	}

	date, err := timelock.ParseDate(row.Lock)
	if err != nil {
		return Allocation{}, err
	}
	if a.Since, err = outset.SinceEpoch(date, target); err != nil {
		return Allocation{}, err
	}
	args := crypto.MultisigLockArgs(key, a.Since)
	a.Cell = genesis.NewMultisigCell(params, args, shannons)
	if a.MainnetAddress, err = crypto.EncodeFullAddress(params.AddressPrefix, params.MultisigCodeHash, args); err != nil {
		return Allocation{}, fmt.Errorf("encode lock address: %w", err)
	}
	return a, nil
}

// Cells returns the issued cells of allocations.
func Cells(allocations []Allocation) []genesis.IssuedCell {
	cells := make([]genesis.IssuedCell, len(allocations))
	for i, a := range allocations {
		cells[i] = a.Cell
	}
	return cells
}
