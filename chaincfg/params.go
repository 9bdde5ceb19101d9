package chaincfg

import (
	"time"

	"lina-genesis/wire"
)

// Address prefixes of the known networks.
const (
	MainnetPrefix = "ckb"
	TestnetPrefix = "ckt"
)

// ByteShannons is the number of shannons in one CKByte.
const ByteShannons uint64 = 100_000_000

// Params defines the network and launch configuration the generator works
// against.
type Params struct {
	Name string

	// AddressPrefix is the bech32 human-readable part used when encoding
	// mainnet addresses for output.
	AddressPrefix string

	// AcceptedPrefixes lists the prefixes accepted in input records.
	AcceptedPrefixes []string

	// SighashCodeHash is the type hash of the secp256k1/blake160 lock.
	SighashCodeHash wire.Hash

	// MultisigCodeHash is the type hash of the secp256k1/multisig lock.
	MultisigCodeHash wire.Hash

	// AttributionLag is the number of blocks between a block and the
	// cellbase that pays its miner.
	AttributionLag uint64

	// MinTipEpochIndex is how far into epoch target+1 the tip must be
	// before the target epoch can be scanned.
	MinTipEpochIndex uint64

	// DifficultySampleEpochs is the number of epochs, ending at the target,
	// averaged for the launch difficulty.
	DifficultySampleEpochs uint64

	// DifficultyMarginNum / DifficultyMarginDen scale the averaged
	// difficulty at launch.
	DifficultyMarginNum uint64
	DifficultyMarginDen uint64

	// RewardFloor drops miners whose accumulated reward does not exceed it.
	RewardFloor uint64

	// IncentiveBudget is the total capacity paid out as testnet incentives.
	IncentiveBudget uint64

	// Outset is the testnet launch moment used to convert lock dates into
	// epochs.
	Outset            time.Time
	OutsetEpochOffset uint64
	LockEpochDuration time.Duration
	LockEpochLength   uint64
}

var MainNetParams = Params{
	Name:             "mainnet",
	AddressPrefix:    MainnetPrefix,
	AcceptedPrefixes: []string{MainnetPrefix, TestnetPrefix},
	SighashCodeHash:  mustHash("0x9bd7e06f3ecf4be0f2fcd2188b23f1b9fcc88e5d4b65a8637b17723bbda3cce8"),
	MultisigCodeHash: mustHash("0x5c5069eb0857efc65e1bca0c07df34c31663b3622fd3876c876320fc9634e2a8"),

	AttributionLag:         11,
	MinTipEpochIndex:       11,
	DifficultySampleEpochs: 4,
	DifficultyMarginNum:    3,
	DifficultyMarginDen:    2,

	RewardFloor:     1000,
	IncentiveBudget: 168_000_000 * ByteShannons, // 0.5% of the 33.6B initial issuance

	Outset:            time.Date(2019, 11, 16, 6, 0, 0, 0, time.UTC),
	OutsetEpochOffset: 89,
	LockEpochDuration: 4 * time.Hour,
	LockEpochLength:   1800,
}

// TestNetParams encodes output addresses for the testnet but otherwise
// shares the launch constants.
var TestNetParams = func() Params {
	p := MainNetParams
	p.Name = "testnet"
	p.AddressPrefix = TestnetPrefix
	return p
}()

// ParamsForNetwork returns the parameters for a network name.
func ParamsForNetwork(name string) (*Params, bool) {
	switch name {
	case MainNetParams.Name:
		p := MainNetParams
		return &p, true
	case TestNetParams.Name:
		p := TestNetParams
		return &p, true
	}
	return nil, false
}

func mustHash(s string) wire.Hash {
	h, err := wire.NewHashFromStr(s)
	if err != nil {
		panic(err)
	}
	return h
}
