package wire

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Error definitions
var (
	ErrMalformedWitness = errors.New("malformed cellbase witness")
	ErrInvalidHex       = errors.New("invalid hex string")
)

// HashSize of array used to store hashes.  See Hash.
const HashSize = 32

// RecipientKeySize is the length of a lock script argument fingerprint.
const RecipientKeySize = 20

// Hash is a 32-byte blake2b digest as used for block, transaction and code
// hashes.  Unlike bitcoin hashes it is displayed in natural byte order.
type Hash [HashSize]byte

// String returns the Hash as a 0x-prefixed hexadecimal string.
func (h Hash) String() string {
	return hexutil.Encode(h[:])
}

// MarshalText implements encoding.TextMarshaler.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(text []byte) error {
	return decodeFixed(h[:], string(text))
}

// NewHashFromStr creates a Hash from a 0x-prefixed (or bare) hex string.
func NewHashFromStr(s string) (Hash, error) {
	var h Hash
	err := decodeFixed(h[:], s)
	return h, err
}

// RecipientKey identifies a payout destination: the 20-byte blake160
// fingerprint carried as the args of a secp256k1 lock script.
type RecipientKey [RecipientKeySize]byte

// String returns the key as a 0x-prefixed hexadecimal string.
func (k RecipientKey) String() string {
	return hexutil.Encode(k[:])
}

// Compare orders keys bytewise.  It returns -1, 0 or +1.
func (k RecipientKey) Compare(other RecipientKey) int {
	return bytes.Compare(k[:], other[:])
}

// MarshalText implements encoding.TextMarshaler.
func (k RecipientKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *RecipientKey) UnmarshalText(text []byte) error {
	return decodeFixed(k[:], string(text))
}

// NewRecipientKey copies a 20-byte slice into a RecipientKey.
func NewRecipientKey(b []byte) (RecipientKey, error) {
	var k RecipientKey
	if len(b) != RecipientKeySize {
		return k, fmt.Errorf("recipient key must be %d bytes, got %d", RecipientKeySize, len(b))
	}
	copy(k[:], b)
	return k, nil
}

// NewRecipientKeyFromStr parses a hex encoded fingerprint.
func NewRecipientKeyFromStr(s string) (RecipientKey, error) {
	var k RecipientKey
	err := decodeFixed(k[:], s)
	return k, err
}

func decodeFixed(dst []byte, s string) error {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s) != len(dst)*2 {
		return fmt.Errorf("%w: want %d bytes, got %d hex chars", ErrInvalidHex, len(dst), len(s))
	}
	if _, err := hex.Decode(dst, []byte(s)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}
	return nil
}
