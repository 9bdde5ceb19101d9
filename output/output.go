// Package output writes the generated chain specification and the CSV
// reports that accompany it.
package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"

	"lina-genesis/chaincfg"
	"lina-genesis/crypto"
	"lina-genesis/genesis"
	"lina-genesis/input"
	"lina-genesis/payout"
	"lina-genesis/wire"
)

// HashSuffix is appended to the spec path for its checksum file.
const HashSuffix = ".hash"

// WriteSpec renders spec to path and writes its ckb-hash next to it.
func WriteSpec(path string, spec *genesis.Spec) (wire.Hash, error) {
	var buf bytes.Buffer
	if err := spec.Render(&buf); err != nil {
		return wire.Hash{}, err
	}
	if err := writeFile(path, buf.Bytes()); err != nil {
		return wire.Hash{}, err
	}

	hash := crypto.Blake2b256(buf.Bytes())
	if err := writeFile(path+HashSuffix, []byte(hash.String()+"\n")); err != nil {
		return wire.Hash{}, err
	}

	logrus.WithFields(logrus.Fields{
		"path": path,
		"hash": hash.String(),
	}).Info("Wrote chain spec")
	return hash, nil
}

// WriteIncentives lists incentive rows with their mainnet address.  Rows
// with an invalid address are left out.
func WriteIncentives(path string, rows []input.Row, params *chaincfg.Params) error {
	records := [][]string{{"address", "capacity", "mainnet_address"}}
	for _, row := range rows {
		key, err := crypto.ParseRecipient(row.Address, params)
		if err != nil {
			continue
		}
		mainnet, err := crypto.EncodeShortAddress(params.AddressPrefix, key)
		if err != nil {
			continue
		}
		records = append(records, []string{row.Address, strconv.FormatUint(row.Capacity, 10), mainnet})
	}
	return writeCSV(path, records)
}

// WriteAllocations lists resolved allocations with their mainnet address.
func WriteAllocations(path string, allocations []Allocation) error {
	records := [][]string{{"recipient", "capacity", "lock", "mainnet_address"}}
	for _, a := range allocations {
		records = append(records, []string{
			a.Source(),
			strconv.FormatUint(a.Capacity, 10),
			a.Lock,
			a.MainnetAddress,
		})
	}
	return writeCSV(path, records)
}

// WritePayouts lists the incentive payouts in shannons.
func WritePayouts(path string, payouts []payout.Payout, params *chaincfg.Params) error {
	records := [][]string{{"mainnet_address", "capacity", "remainder"}}
	for _, p := range payouts {
		address, err := crypto.EncodeShortAddress(params.AddressPrefix, p.Key)
		if err != nil {
			return err
		}
		records = append(records, []string{
			address,
			strconv.FormatUint(p.Capacity, 10),
			strconv.FormatBool(p.Remainder),
		})
	}
	return writeCSV(path, records)
}

func writeCSV(path string, records [][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := writeFile(path, buf.Bytes()); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"path": path,
		"rows": len(records) - 1,
	}).Info("Wrote report")
	return nil
}

// writeFile replaces path through a temporary file in the same directory.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
