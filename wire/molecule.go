package wire

import (
	"encoding/binary"
	"fmt"
)

// Script hash types.
const (
	HashTypeData byte = 0
	HashTypeType byte = 1
)

const numberSize = 4

// Script is a lock or type script.
type Script struct {
	CodeHash Hash
	HashType byte
	Args     []byte
}

// CellbaseWitness is the witness of a cellbase transaction.  Its lock names
// the miner that produced the block and will receive its reward.
type CellbaseWitness struct {
	Lock    Script
	Message []byte
}

// Recipient returns the lock args as a RecipientKey.  Only 20-byte args
// identify a payout destination.
func (w *CellbaseWitness) Recipient() (RecipientKey, error) {
	k, err := NewRecipientKey(w.Lock.Args)
	if err != nil {
		return k, fmt.Errorf("%w: %v", ErrMalformedWitness, err)
	}
	return k, nil
}

// DecodeCellbaseWitness parses a molecule encoded CellbaseWitness table.
func DecodeCellbaseWitness(data []byte) (*CellbaseWitness, error) {
	fields, err := tableFields(data, 2)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedWitness, err)
	}
	lock, err := DecodeScript(fields[0])
	if err != nil {
		return nil, fmt.Errorf("%w: lock: %v", ErrMalformedWitness, err)
	}
	message, err := decodeBytes(fields[1])
	if err != nil {
		return nil, fmt.Errorf("%w: message: %v", ErrMalformedWitness, err)
	}
	return &CellbaseWitness{Lock: *lock, Message: message}, nil
}

// DecodeScript parses a molecule encoded Script table.
func DecodeScript(data []byte) (*Script, error) {
	fields, err := tableFields(data, 3)
	if err != nil {
		return nil, err
	}
	if len(fields[0]) != HashSize {
		return nil, fmt.Errorf("code hash is %d bytes", len(fields[0]))
	}
	if len(fields[1]) != 1 {
		return nil, fmt.Errorf("hash type is %d bytes", len(fields[1]))
	}
	args, err := decodeBytes(fields[2])
	if err != nil {
		return nil, fmt.Errorf("args: %v", err)
	}
	s := &Script{HashType: fields[1][0], Args: args}
	copy(s.CodeHash[:], fields[0])
	return s, nil
}

// Serialize encodes the script as a molecule table.
func (s *Script) Serialize() []byte {
	return encodeTable(s.CodeHash[:], []byte{s.HashType}, encodeBytes(s.Args))
}

// Serialize encodes the witness as a molecule table.
func (w *CellbaseWitness) Serialize() []byte {
	return encodeTable(w.Lock.Serialize(), encodeBytes(w.Message))
}

// tableFields splits a table into exactly n field slices.
func tableFields(data []byte, n int) ([][]byte, error) {
	if len(data) < numberSize {
		return nil, fmt.Errorf("table header truncated: %d bytes", len(data))
	}
	total := int(binary.LittleEndian.Uint32(data))
	if total != len(data) {
		return nil, fmt.Errorf("table size %d does not match data length %d", total, len(data))
	}
	if total == numberSize {
		if n == 0 {
			return nil, nil
		}
		return nil, fmt.Errorf("empty table, want %d fields", n)
	}
	if total < numberSize*2 {
		return nil, fmt.Errorf("table header truncated: %d bytes", total)
	}
	first := int(binary.LittleEndian.Uint32(data[numberSize:]))
	if first%numberSize != 0 || first < numberSize*2 || first > total {
		return nil, fmt.Errorf("invalid first offset %d", first)
	}
	count := first/numberSize - 1
	if count != n {
		return nil, fmt.Errorf("table has %d fields, want %d", count, n)
	}
	offsets := make([]int, count+1)
	for i := 0; i < count; i++ {
		offsets[i] = int(binary.LittleEndian.Uint32(data[numberSize*(i+1):]))
	}
	offsets[count] = total
	fields := make([][]byte, count)
	for i := 0; i < count; i++ {
		if offsets[i] > offsets[i+1] {
			return nil, fmt.Errorf("field %d offsets out of order", i)
		}
		fields[i] = data[offsets[i]:offsets[i+1]]
	}
	return fields, nil
}

func decodeBytes(data []byte) ([]byte, error) {
	if len(data) < numberSize {
		return nil, fmt.Errorf("bytes header truncated: %d bytes", len(data))
	}
	size := int(binary.LittleEndian.Uint32(data))
	if size != len(data)-numberSize {
		return nil, fmt.Errorf("bytes length %d does not match payload %d", size, len(data)-numberSize)
	}
	out := make([]byte, size)
	copy(out, data[numberSize:])
	return out, nil
}

func encodeBytes(b []byte) []byte {
	out := make([]byte, numberSize+len(b))
	binary.LittleEndian.PutUint32(out, uint32(len(b)))
	copy(out[numberSize:], b)
	return out
}

func encodeTable(fields ...[]byte) []byte {
	header := numberSize * (len(fields) + 1)
	total := header
	for _, f := range fields {
		total += len(f)
	}
	out := make([]byte, header, total)
	binary.LittleEndian.PutUint32(out, uint32(total))
	offset := header
	for i, f := range fields {
		binary.LittleEndian.PutUint32(out[numberSize*(i+1):], uint32(offset))
		offset += len(f)
	}
	for _, f := range fields {
		out = append(out, f...)
	}
	return out
}
