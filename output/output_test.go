package output

import (
	"encoding/binary"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lina-genesis/chaincfg"
	"lina-genesis/crypto"
	"lina-genesis/genesis"
	"lina-genesis/input"
	"lina-genesis/payout"
	"lina-genesis/timelock"
	"lina-genesis/wire"
)

const (
	testnetAddress = "ckt1qyq9xcl8cg8supmzzy0szazepu89832xq2tsjm3el2"
	mainnetAddress = "ckb1qyq9xcl8cg8supmzzy0szazepu89832xq2ts070xnk"
	testArgs       = "0x5363e7c20f0e0762111f0174590f0e53c5460297"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestResolveAllocations(t *testing.T) {
	params := &chaincfg.MainNetParams
	rows := []input.AllocationRow{
		{Row: input.Row{Line: 2, Address: testnetAddress, Capacity: 100}},
		{Row: input.Row{Line: 3, Address: testnetAddress, Capacity: 200}, Lock: "2020-07-01"},
		{Row: input.Row{Line: 4, Address: testnetAddress, Capacity: 300}, Lock: "2019-01-01"},
		{Row: input.Row{Line: 5, Address: "ckb1bogus", Capacity: 400}},
	}

	allocations := ResolveAllocations(rows, 100, params)
	require.Len(t, allocations, 2)

	plain := allocations[0]
	assert.Equal(t, mainnetAddress, plain.MainnetAddress)
	assert.Zero(t, plain.Since)
	assert.Equal(t, 100*chaincfg.ByteShannons, plain.Cell.Capacity)
	assert.Equal(t, params.SighashCodeHash.String(), plain.Cell.CodeHash)
	assert.Equal(t, testArgs, plain.Cell.Args)

	locked := allocations[1]
	date, err := timelock.ParseDate("2020-07-01")
	require.NoError(t, err)
	since, err := timelock.NewOutset(params).SinceEpoch(date, 100)
	require.NoError(t, err)
	assert.Equal(t, since, locked.Since)
	assert.Equal(t, params.MultisigCodeHash.String(), locked.Cell.CodeHash)

	key, err := wire.NewRecipientKeyFromStr(testArgs)
	require.NoError(t, err)
	args := crypto.MultisigLockArgs(key, since)
	assert.Equal(t, since, binary.LittleEndian.Uint64(args[20:]))
	full, err := crypto.EncodeFullAddress(chaincfg.MainnetPrefix, params.MultisigCodeHash, args)
	require.NoError(t, err)
	assert.Equal(t, full, locked.MainnetAddress)

	assert.Len(t, Cells(allocations), 2)
}

func TestResolvePubkeyAllocation(t *testing.T) {
	params := &chaincfg.MainNetParams
	rows := []input.AllocationRow{
		{Row: input.Row{Line: 2, Capacity: 10}, Pubkey: "0x024a501efd328e062c8675f2365970728c859c592beeefd6be8ead3d901330bc01"},
		{Row: input.Row{Line: 3, Capacity: 10}, Pubkey: "0x02"},
	}

	allocations := ResolveAllocations(rows, 100, params)
	require.Len(t, allocations, 1)
	assert.Equal(t, "0x36c329ed630d6ce750712a477543672adab57f4c", allocations[0].Cell.Args)
	assert.Equal(t, params.SighashCodeHash.String(), allocations[0].Cell.CodeHash)
}

func TestWriteSpec(t *testing.T) {
	path := filepath.Join(t.TempDir(), "specs", "mainnet.toml")
	spec := genesis.NewSpec("lina", genesis.Parameters{CompactTarget: 0x1a08a97e, EpochLength: 1743})

	hash, err := WriteSpec(path, spec)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, crypto.Blake2b256(data), hash)

	sum, err := os.ReadFile(path + HashSuffix)
	require.NoError(t, err)
	assert.Equal(t, hash.String(), strings.TrimSpace(string(sum)))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestWriteReports(t *testing.T) {
	params := &chaincfg.MainNetParams
	dir := t.TempDir()

	incentives := filepath.Join(dir, "incentives.csv")
	require.NoError(t, WriteIncentives(incentives, []input.Row{
		{Address: testnetAddress, Capacity: 10},
		{Address: "garbage", Capacity: 20},
	}, params))
	assert.Equal(t, [][]string{
		{"address", "capacity", "mainnet_address"},
		{testnetAddress, "10", mainnetAddress},
	}, readCSV(t, incentives))

	allocations := filepath.Join(dir, "allocations.csv")
	resolved := ResolveAllocations([]input.AllocationRow{
		{Row: input.Row{Address: testnetAddress, Capacity: 5}},
	}, 0, params)
	require.NoError(t, WriteAllocations(allocations, resolved))
	assert.Equal(t, [][]string{
		{"recipient", "capacity", "lock", "mainnet_address"},
		{testnetAddress, "5", "", mainnetAddress},
	}, readCSV(t, allocations))

	payouts := filepath.Join(dir, "payouts.csv")
	key, err := wire.NewRecipientKeyFromStr(testArgs)
	require.NoError(t, err)
	require.NoError(t, WritePayouts(payouts, []payout.Payout{
		{Key: key, Capacity: 99},
		{Key: key, Capacity: 1, Remainder: true},
	}, params))
	assert.Equal(t, [][]string{
		{"mainnet_address", "capacity", "remainder"},
		{mainnetAddress, "99", "false"},
		{mainnetAddress, "1", "true"},
	}, readCSV(t, payouts))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}
