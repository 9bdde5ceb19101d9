package crypto

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/minio/blake2b-simd"

	"lina-genesis/wire"
)

var ckbHashPersonalization = []byte("ckb-default-hash")

// Multisig script header: reserved, require_first_n, threshold, pubkeys.
const (
	multisigReserved      byte = 0
	multisigRequireFirstN byte = 0
	multisigThreshold     byte = 1
	multisigPubkeys       byte = 1
)

// NewHasher returns a blake2b-256 hasher with the chain's personalization.
func NewHasher() hash.Hash {
	h, err := blake2b.New(&blake2b.Config{
		Size:   wire.HashSize,
		Person: ckbHashPersonalization,
	})
	if err != nil {
		// Only reachable with an invalid static config.
		panic(err)
	}
	return h
}

// Blake2b256 hashes the concatenation of data.
func Blake2b256(data ...[]byte) wire.Hash {
	h := NewHasher()
	for _, d := range data {
		h.Write(d)
	}
	var out wire.Hash
	copy(out[:], h.Sum(nil))
	return out
}

// Blake160 returns the first 20 bytes of Blake2b256.
func Blake160(data []byte) wire.RecipientKey {
	sum := Blake2b256(data)
	var out wire.RecipientKey
	copy(out[:], sum[:wire.RecipientKeySize])
	return out
}

// PubkeyToRecipient validates a hex encoded secp256k1 public key and returns
// the blake160 of its compressed form.
func PubkeyToRecipient(pubkeyHex string) (wire.RecipientKey, error) {
	raw, err := hex.DecodeString(trimHexPrefix(pubkeyHex))
	if err != nil {
		return wire.RecipientKey{}, fmt.Errorf("invalid public key hex: %v", err)
	}
	pubKey, err := btcec.ParsePubKey(raw)
	if err != nil {
		return wire.RecipientKey{}, fmt.Errorf("invalid public key: %v", err)
	}
	return Blake160(pubKey.SerializeCompressed()), nil
}

// MultisigLockArgs builds the args of a single-key multisig lock that
// cannot be spent before since: blake160 of the multisig script followed by
// since in little endian.
func MultisigLockArgs(key wire.RecipientKey, since uint64) []byte {
	script := make([]byte, 0, 4+wire.RecipientKeySize)
	script = append(script, multisigReserved, multisigRequireFirstN, multisigThreshold, multisigPubkeys)
	script = append(script, key[:]...)

	scriptHash := Blake160(script)
	args := make([]byte, wire.RecipientKeySize+8)
	copy(args, scriptHash[:])
	binary.LittleEndian.PutUint64(args[wire.RecipientKeySize:], since)
	return args
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
