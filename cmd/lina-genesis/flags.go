package main

import (
	cli "gopkg.in/urfave/cli.v1"

	"lina-genesis/config"
)

var (
	envFileFlag = cli.StringFlag{
		Name:  "env",
		Usage: "Dotenv file read before the environment",
		Value: ".env",
	}
	networkFlag = cli.StringFlag{
		Name:  "network",
		Usage: "Network whose address prefix is used for output (mainnet|testnet)",
	}
	targetEpochFlag = cli.Uint64Flag{
		Name:  "target-epoch",
		Usage: "Last testnet epoch whose rewards are counted",
	}
	rpcURLFlag = cli.StringFlag{
		Name:  "rpc",
		Usage: "Node JSON-RPC endpoint",
	}
	rpcTimeoutFlag = cli.DurationFlag{
		Name:  "rpc.timeout",
		Usage: "Timeout of a single RPC call",
	}
	rpcRetriesFlag = cli.IntFlag{
		Name:  "rpc.retries",
		Usage: "Attempts per RPC call",
	}
	rpcProxyFlag = cli.StringFlag{
		Name:  "rpc.proxy",
		Usage: "SOCKS5 proxy (host:port) used to reach the node",
	}
	confirmationsFlag = cli.Uint64Flag{
		Name:  "confirmations",
		Usage: "Depth below the tip at which fetched blocks are cached",
	}
	incentivesFlag = cli.StringFlag{
		Name:  "incentives",
		Usage: "Testnet incentives CSV (address,capacity)",
	}
	miningCompetitionFlag = cli.StringFlag{
		Name:  "mining-competition",
		Usage: "Mining competition CSV (address,capacity)",
	}
	allocationsFlag = cli.StringFlag{
		Name:  "allocations",
		Usage: "Allocation CSV (address,capacity,lock)",
	}
	pubkeyAllocationsFlag = cli.StringFlag{
		Name:  "pubkey-allocations",
		Usage: "Allocation CSV keyed by public key (pubkey,capacity,lock)",
	}
	remainderFlag = cli.StringFlag{
		Name:  "remainder",
		Usage: "Address receiving the undistributed incentive remainder",
	}
	reserveAddressFlag = cli.StringFlag{
		Name:  "foundation-reserve",
		Usage: "Address of the foundation reserve cell",
	}
	reserveCapacityFlag = cli.Uint64Flag{
		Name:  "foundation-reserve.capacity",
		Usage: "Foundation reserve capacity in CKBytes",
	}
	outputDirFlag = cli.StringFlag{
		Name:  "output",
		Usage: "Directory the spec and reports are written to",
	}
	specNameFlag = cli.StringFlag{
		Name:  "name",
		Usage: "Chain name used for the spec file and genesis message",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "datadir",
		Usage: "Directory of the chain data cache",
	}
	noCacheFlag = cli.BoolFlag{
		Name:  "no-cache",
		Usage: "Always fetch chain data from the node",
	}
	logLevelFlag = cli.StringFlag{
		Name:  "log.level",
		Usage: "Log level (debug|info|warn|error)",
	}
	logFormatFlag = cli.StringFlag{
		Name:  "log.format",
		Usage: "Log output format (text|json)",
	}
	logFileFlag = cli.StringFlag{
		Name:  "log.file",
		Usage: "Append logs to this file instead of stderr",
	}
)

func appFlags() []cli.Flag {
	return []cli.Flag{
		envFileFlag,
		networkFlag,
		targetEpochFlag,
		rpcURLFlag,
		rpcTimeoutFlag,
		rpcRetriesFlag,
		rpcProxyFlag,
		confirmationsFlag,
		incentivesFlag,
		miningCompetitionFlag,
		allocationsFlag,
		pubkeyAllocationsFlag,
		remainderFlag,
		reserveAddressFlag,
		reserveCapacityFlag,
		outputDirFlag,
		specNameFlag,
		dataDirFlag,
		noCacheFlag,
		logLevelFlag,
		logFormatFlag,
		logFileFlag,
	}
}

// applyFlags overrides cfg with every flag given on the command line.
func applyFlags(c *cli.Context, cfg *config.Config) {
	stringFlags := []struct {
		flag cli.StringFlag
		dst  *string
	}{
		{networkFlag, &cfg.Network},
		{rpcURLFlag, &cfg.RPCURL},
		{rpcProxyFlag, &cfg.RPCProxyAddr},
		{incentivesFlag, &cfg.IncentivesFile},
		{miningCompetitionFlag, &cfg.MiningCompetitionFile},
		{allocationsFlag, &cfg.AllocationsFile},
		{pubkeyAllocationsFlag, &cfg.PubkeyAllocationsFile},
		{remainderFlag, &cfg.RemainderAddress},
		{reserveAddressFlag, &cfg.FoundationReserveAddress},
		{outputDirFlag, &cfg.OutputDir},
		{specNameFlag, &cfg.SpecName},
		{dataDirFlag, &cfg.DataDir},
		{logLevelFlag, &cfg.LogLevel},
		{logFormatFlag, &cfg.LogFormat},
		{logFileFlag, &cfg.LogFile},
	}
	for _, s := range stringFlags {
		if c.IsSet(s.flag.Name) {
			*s.dst = c.String(s.flag.Name)
		}
	}

	if c.IsSet(targetEpochFlag.Name) {
		cfg.TargetEpoch = c.Uint64(targetEpochFlag.Name)
	}
	if c.IsSet(confirmationsFlag.Name) {
		cfg.Confirmations = c.Uint64(confirmationsFlag.Name)
	}
	if c.IsSet(reserveCapacityFlag.Name) {
		cfg.FoundationReserveCapacity = c.Uint64(reserveCapacityFlag.Name)
	}
	if c.IsSet(rpcTimeoutFlag.Name) {
		cfg.RPCTimeout = c.Duration(rpcTimeoutFlag.Name)
	}
	if c.IsSet(rpcRetriesFlag.Name) {
		cfg.RPCRetries = c.Int(rpcRetriesFlag.Name)
	}
	if c.Bool(noCacheFlag.Name) {
		cfg.CacheEnabled = false
	}
}
