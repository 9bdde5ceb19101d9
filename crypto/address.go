package crypto

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/btcsuite/btcutil/bech32"

	"lina-genesis/chaincfg"
	"lina-genesis/wire"
)

// ErrInvalidAddress is returned for address text that does not decode to a
// supported secp256k1 lock.
var ErrInvalidAddress = errors.New("invalid address")

// Payload layouts
const (
	// short version for locks with popular code_hash
	shortFormat byte = 0x01

	// full version with the code hash embedded
	fullTypeFormat byte = 0x04

	sighashCodeHashIndex byte = 0x00

	shortPayloadSize  = 2 + wire.RecipientKeySize
	legacyPayloadSize = 5 + wire.RecipientKeySize
)

// legacyMagic prefixes the 25-byte pay-to-public-key-hash layout issued by
// early testnet wallets.
var legacyMagic = []byte("\x01P2PH")

// Address is a decoded secp256k1/blake160 address.
type Address struct {
	Prefix string
	Args   wire.RecipientKey
}

// DecodeAddress decodes bech32 address text.  The human-readable part must
// be one of prefixes.
func DecodeAddress(text string, prefixes []string) (*Address, error) {
	hrp, data, err := bech32.Decode(text)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrInvalidAddress, text, err)
	}
	if !acceptedPrefix(hrp, prefixes) {
		return nil, fmt.Errorf("%w %s hrp: %s", ErrInvalidAddress, text, hrp)
	}
	payload, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrInvalidAddress, text, err)
	}

	var args []byte
	switch len(payload) {
	case shortPayloadSize:
		if payload[0] != shortFormat {
			return nil, fmt.Errorf("%w %s type: %d", ErrInvalidAddress, text, payload[0])
		}
		if payload[1] != sighashCodeHashIndex {
			return nil, fmt.Errorf("%w %s code hash index: %d", ErrInvalidAddress, text, payload[1])
		}
		args = payload[2:]
	case legacyPayloadSize:
		if !bytes.Equal(payload[:len(legacyMagic)], legacyMagic) {
			return nil, fmt.Errorf("%w %s format type: %x", ErrInvalidAddress, text, payload[:len(legacyMagic)])
		}
		args = payload[len(legacyMagic):]
	default:
		return nil, fmt.Errorf("%w %s data length: %d", ErrInvalidAddress, text, len(payload))
	}

	key, err := wire.NewRecipientKey(args)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrInvalidAddress, text, err)
	}
	return &Address{Prefix: hrp, Args: key}, nil
}

// ParseRecipient decodes address text accepted by params into its
// recipient fingerprint.
func ParseRecipient(text string, params *chaincfg.Params) (wire.RecipientKey, error) {
	addr, err := DecodeAddress(text, params.AcceptedPrefixes)
	if err != nil {
		return wire.RecipientKey{}, err
	}
	return addr.Args, nil
}

// EncodeShortAddress encodes a recipient as a short-format address.
func EncodeShortAddress(prefix string, key wire.RecipientKey) (string, error) {
	payload := make([]byte, 0, shortPayloadSize)
	payload = append(payload, shortFormat, sighashCodeHashIndex)
	payload = append(payload, key[:]...)
	return encode(prefix, payload)
}

// EncodeFullAddress encodes a type-hash lock as a full-format address.
func EncodeFullAddress(prefix string, codeHash wire.Hash, args []byte) (string, error) {
	payload := make([]byte, 0, 1+wire.HashSize+len(args))
	payload = append(payload, fullTypeFormat)
	payload = append(payload, codeHash[:]...)
	payload = append(payload, args...)
	return encode(prefix, payload)
}

// String returns the short-format encoding of the address.
func (a *Address) String() string {
	s, err := EncodeShortAddress(a.Prefix, a.Args)
	if err != nil {
		return a.Args.String()
	}
	return s
}

func encode(prefix string, payload []byte) (string, error) {
	data, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(prefix, data)
}

func acceptedPrefix(hrp string, prefixes []string) bool {
	for _, p := range prefixes {
		if hrp == p {
			return true
		}
	}
	return false
}
