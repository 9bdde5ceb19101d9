package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"lina-genesis/chaincfg"
	"lina-genesis/config"
	"lina-genesis/crypto"
	"lina-genesis/database"
	"lina-genesis/explorer"
	"lina-genesis/genesis"
	"lina-genesis/input"
	"lina-genesis/ledger"
	"lina-genesis/output"
	"lina-genesis/payout"
	"lina-genesis/rpc"
)

const (
	payoutsReport     = "testnet-incentives.csv"
	incentivesReport  = "incentives.csv"
	allocationsReport = "allocations.csv"
)

// run connects to the node and generates the spec.
func run(ctx context.Context, cfg *config.Config, params *chaincfg.Params) error {
	client, err := rpc.Dial(ctx, rpc.Config{
		URL:     cfg.RPCURL,
		Timeout: cfg.RPCTimeout,
		Retry: rpc.RetryConfig{
			MaxAttempts: cfg.RPCRetries,
			BaseBackoff: rpc.DefaultRetryConfig().BaseBackoff,
			MaxBackoff:  rpc.DefaultRetryConfig().MaxBackoff,
		},
		ProxyAddr: cfg.RPCProxyAddr,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	var provider explorer.Provider = client
	if cfg.CacheEnabled {
		store, err := database.NewStorage(cfg.DataDir)
		if err != nil {
			return err
		}
		defer store.Close()

		cached := explorer.NewCachedProvider(client, store, cfg.Confirmations)
		defer func() {
			logrus.WithFields(cacheFields(cached, store)).Info("Chain cache usage")
		}()
		provider = cached
	}

	_, err = generate(cfg, params, provider)
	return err
}

// cacheFields describes cache usage and the stored entry count per bucket.
func cacheFields(cached *explorer.CachedProvider, store *database.Storage) logrus.Fields {
	hits, misses := cached.Stats()
	fields := logrus.Fields{
		"path":   store.Path(),
		"hits":   hits,
		"misses": misses,
	}
	counts, err := store.Count()
	if err != nil {
		logrus.Warnf("Failed to count chain cache entries: %v", err)
		return fields
	}
	for bucket, n := range counts {
		fields[bucket] = n
	}
	return fields
}

// generate runs the whole computation against provider and writes the
// results.  It returns the path of the written spec.
func generate(cfg *config.Config, params *chaincfg.Params, provider explorer.Provider) (string, error) {
	remainder, err := crypto.ParseRecipient(cfg.RemainderAddress, params)
	if err != nil {
		return "", fmt.Errorf("remainder address: %w", err)
	}

	// Static rewards first, the scan adds chain rewards on top.
	l := ledger.New()
	incentives, err := reduceFile(l, cfg.IncentivesFile, input.ReadIncentives, params)
	if err != nil {
		return "", err
	}
	if _, err := reduceFile(l, cfg.MiningCompetitionFile, input.ReadMiningCompetition, params); err != nil {
		return "", err
	}

	result, err := explorer.NewScanner(provider, params).Scan(cfg.TargetEpoch, l)
	if err != nil {
		return "", err
	}
	retained, err := l.Total()
	if err != nil {
		return "", err
	}

	genesisParams, err := genesis.Derive(result, retained, params.IncentiveBudget, params)
	if err != nil {
		return "", err
	}
	payouts, err := payout.Distribute(l, params.IncentiveBudget, remainder)
	if err != nil {
		return "", err
	}

	spec := genesis.NewSpec(cfg.SpecName, genesisParams)
	spec.TestnetIncentives = genesis.IncentiveCells(params, payouts)

	rows, err := readAllocations(cfg)
	if err != nil {
		return "", err
	}
	var allocations []output.Allocation
	if rows != nil {
		allocations = output.ResolveAllocations(rows, cfg.TargetEpoch, params)
		spec.Allocate = output.Cells(allocations)
	}

	if cfg.FoundationReserveAddress != "" {
		cell, err := reserveCell(cfg, params)
		if err != nil {
			return "", err
		}
		spec.FoundationReserve = &cell
	}

	issued, err := spec.Issued()
	if err != nil {
		return "", err
	}
	logrus.WithFields(logrus.Fields{
		"allocations": len(spec.Allocate),
		"incentives":  len(spec.TestnetIncentives),
		"issued":      issued,
	}).Info("Assembled chain spec")

	specPath := filepath.Join(cfg.OutputDir, cfg.SpecName+".toml")
	if _, err := output.WriteSpec(specPath, spec); err != nil {
		return "", err
	}
	if err := output.WritePayouts(filepath.Join(cfg.OutputDir, payoutsReport), payouts, params); err != nil {
		return "", err
	}
	if incentives != nil {
		if err := output.WriteIncentives(filepath.Join(cfg.OutputDir, incentivesReport), incentives, params); err != nil {
			return "", err
		}
	}
	if allocations != nil {
		if err := output.WriteAllocations(filepath.Join(cfg.OutputDir, allocationsReport), allocations); err != nil {
			return "", err
		}
	}
	return specPath, nil
}

// reduceFile reads a static record file into l.  An empty path is skipped.
func reduceFile(l *ledger.Ledger, path string, read func(io.Reader) ([]input.Row, error), params *chaincfg.Params) ([]input.Row, error) {
	if path == "" {
		return nil, nil
	}
	rows, err := input.ReadFile(path, read)
	if err != nil {
		return nil, err
	}
	records := input.Records(rows, params)
	dropped := ledger.Reduce(l, records)

	logrus.WithFields(logrus.Fields{
		"path":    path,
		"rows":    len(rows),
		"records": len(records),
		"dropped": dropped,
	}).Info("Loaded static records")
	return rows, nil
}

// readAllocations reads the address and the public key allocation files,
// in that order.
func readAllocations(cfg *config.Config) ([]input.AllocationRow, error) {
	var rows []input.AllocationRow
	for _, f := range []struct {
		path string
		read func(io.Reader) ([]input.AllocationRow, error)
	}{
		{cfg.AllocationsFile, input.ReadAllocations},
		{cfg.PubkeyAllocationsFile, input.ReadPubkeyAllocations},
	} {
		if f.path == "" {
			continue
		}
		read, err := input.ReadFile(f.path, f.read)
		if err != nil {
			return nil, err
		}
		rows = append(rows, read...)
	}
	return rows, nil
}

func reserveCell(cfg *config.Config, params *chaincfg.Params) (genesis.IssuedCell, error) {
	key, err := crypto.ParseRecipient(cfg.FoundationReserveAddress, params)
	if err != nil {
		return genesis.IssuedCell{}, fmt.Errorf("foundation reserve address: %w", err)
	}
	shannons, err := ledger.CheckedMul(cfg.FoundationReserveCapacity, chaincfg.ByteShannons)
	if err != nil {
		return genesis.IssuedCell{}, fmt.Errorf("foundation reserve capacity: %w", err)
	}
	return genesis.NewSighashCell(params, key, shannons), nil
}

