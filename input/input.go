// Package input reads the static record files gathered during the public
// testnet.
package input

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"lina-genesis/chaincfg"
	"lina-genesis/crypto"
	"lina-genesis/ledger"
	"lina-genesis/wire"
)

// Row is one address and capacity line.  Capacity is in whole CKBytes, as
// written in the source file.
type Row struct {
	Line     int
	Address  string
	Capacity uint64
}

// AllocationRow is a Row that may carry a lock date (YYYY-MM-DD).  Rows
// read from a public key file leave Address empty and set Pubkey.
type AllocationRow struct {
	Row
	Pubkey string
	Lock   string
}

// Recipient resolves the row's public key or address.
func (r AllocationRow) Recipient(params *chaincfg.Params) (wire.RecipientKey, error) {
	if r.Pubkey != "" {
		return crypto.PubkeyToRecipient(r.Pubkey)
	}
	return crypto.ParseRecipient(r.Address, params)
}

// Source returns the recipient text as written in the input file.
func (r AllocationRow) Source() string {
	if r.Pubkey != "" {
		return r.Pubkey
	}
	return r.Address
}

// Locked reports whether the allocation is time locked.
func (r AllocationRow) Locked() bool {
	return r.Lock != ""
}

// ReadIncentives reads the testnet incentive file: address,capacity.
func ReadIncentives(r io.Reader) ([]Row, error) {
	return readRows(r, "incentives")
}

// ReadMiningCompetition reads the mining competition file: address,capacity.
func ReadMiningCompetition(r io.Reader) ([]Row, error) {
	return readRows(r, "mining competition")
}

// ReadAllocations reads the allocation file: address,capacity[,lock].
func ReadAllocations(r io.Reader) ([]AllocationRow, error) {
	return readAllocations(r, "allocations", false)
}

// ReadPubkeyAllocations reads allocations keyed by a hex encoded secp256k1
// public key: pubkey,capacity[,lock].
func ReadPubkeyAllocations(r io.Reader) ([]AllocationRow, error) {
	return readAllocations(r, "pubkey allocations", true)
}

func readAllocations(r io.Reader, kind string, pubkey bool) ([]AllocationRow, error) {
	var rows []AllocationRow
	err := scan(r, 2, func(line int, fields []string) {
		row, ok := parseRow(kind, line, fields)
		if !ok {
			return
		}
		a := AllocationRow{Row: row}
		if pubkey {
			a.Pubkey, a.Address = row.Address, ""
		}
		if len(fields) > 2 {
			a.Lock = strings.TrimSpace(fields[2])
		}
		rows = append(rows, a)
	})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", kind, err)
	}
	return rows, nil
}

// ReadFile opens path and hands it to read.
func ReadFile[T any](path string, read func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return read(f)
}

// Records decodes the addresses of rows and converts capacities to
// shannons.  Rows with an invalid address or an overflowing capacity are
// skipped with a warning.
func Records(rows []Row, params *chaincfg.Params) []ledger.Record {
	records := make([]ledger.Record, 0, len(rows))
	for _, row := range rows {
		key, capacity, err := Convert(row, params)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"line":    row.Line,
				"address": row.Address,
			}).Warnf("Skipping record: %v", err)
			continue
		}
		records = append(records, ledger.Record{Key: key, Capacity: capacity})
	}
	return records
}

// Convert decodes one row into a recipient and a capacity in shannons.
func Convert(row Row, params *chaincfg.Params) (wire.RecipientKey, uint64, error) {
	key, err := crypto.ParseRecipient(row.Address, params)
	if err != nil {
		return wire.RecipientKey{}, 0, err
	}
	capacity, err := ledger.CheckedMul(row.Capacity, chaincfg.ByteShannons)
	if err != nil {
		return wire.RecipientKey{}, 0, err
	}
	return key, capacity, nil
}

func readRows(r io.Reader, kind string) ([]Row, error) {
	var rows []Row
	err := scan(r, 2, func(line int, fields []string) {
		if row, ok := parseRow(kind, line, fields); ok {
			rows = append(rows, row)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", kind, err)
	}
	return rows, nil
}

// scan walks CSV lines with at least minFields columns, skipping a leading
// "address" or "pubkey" header.
func scan(r io.Reader, minFields int, fn func(line int, fields []string)) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	for first := true; ; first = false {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		line, _ := reader.FieldPos(0)
		if first && isHeader(fields[0]) {
			continue
		}
		if len(fields) < minFields {
			logrus.WithField("line", line).Warn("Skipping incomplete CSV row")
			continue
		}
		fn(line, fields)
	}
}

func parseRow(kind string, line int, fields []string) (Row, bool) {
	capacity, err := strconv.ParseUint(strings.TrimSpace(fields[1]), 10, 64)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"file": kind,
			"line": line,
		}).Warnf("Failed to parse capacity %q: %v", fields[1], err)
		return Row{}, false
	}
	return Row{
		Line:     line,
		Address:  strings.TrimSpace(fields[0]),
		Capacity: capacity,
	}, true
}

func isHeader(field string) bool {
	field = strings.TrimSpace(field)
	return strings.EqualFold(field, "address") || strings.EqualFold(field, "pubkey")
}
