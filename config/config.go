package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the genesis generator
type Config struct {
	// Network
	Network string

	// Logging
	LogLevel  string
	LogFile   string
	LogFormat string

	// Node RPC
	RPCURL       string
	RPCTimeout   time.Duration
	RPCRetries   int
	RPCProxyAddr string

	// Scan
	TargetEpoch   uint64
	Confirmations uint64

	// Records
	IncentivesFile        string
	MiningCompetitionFile string
	AllocationsFile       string
	PubkeyAllocationsFile string

	// Payout
	RemainderAddress string

	// FoundationReserve, when set, gets one cell of
	// FoundationReserveCapacity CKBytes.
	FoundationReserveAddress  string
	FoundationReserveCapacity uint64

	// Output
	OutputDir string
	SpecName  string

	// Database
	DataDir      string
	CacheEnabled bool
}

// Load loads configuration from environment variables, after applying the
// optional dotenv file at envFile.  Variables already set in the process
// environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	return &Config{
		Network: getEnv("NETWORK", "mainnet"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFile:   getEnv("LOG_FILE", ""),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		RPCURL:       getEnv("RPC_URL", "http://127.0.0.1:8114"),
		RPCTimeout:   getEnvDuration("RPC_TIMEOUT", 30*time.Second),
		RPCRetries:   getEnvInt("RPC_RETRIES", 5),
		RPCProxyAddr: getEnv("RPC_PROXY_ADDR", ""),

		TargetEpoch:   getEnvUint64("TARGET_EPOCH", 0),
		Confirmations: getEnvUint64("CONFIRMATIONS", 24),

		IncentivesFile:        getEnv("INCENTIVES_FILE", ""),
		MiningCompetitionFile: getEnv("MINING_COMPETITION_FILE", ""),
		AllocationsFile:       getEnv("ALLOCATIONS_FILE", ""),
		PubkeyAllocationsFile: getEnv("PUBKEY_ALLOCATIONS_FILE", ""),

		RemainderAddress: getEnv("REMAINDER_ADDRESS", ""),

		FoundationReserveAddress:  getEnv("FOUNDATION_RESERVE_ADDRESS", ""),
		FoundationReserveCapacity: getEnvUint64("FOUNDATION_RESERVE_CAPACITY", 0),

		OutputDir: getEnv("OUTPUT_DIR", "."),
		SpecName:  getEnv("SPEC_NAME", "lina"),

		DataDir:      getEnv("DATA_DIR", "."),
		CacheEnabled: getEnvBool("CACHE_ENABLED", true),
	}, nil
}

// Validate checks the settings a run cannot start without.
func (c *Config) Validate() error {
	if c.TargetEpoch == 0 {
		return errors.New("target epoch is required")
	}
	if c.RemainderAddress == "" {
		return errors.New("remainder address is required")
	}
	if c.FoundationReserveCapacity > 0 && c.FoundationReserveAddress == "" {
		return errors.New("foundation reserve capacity set without an address")
	}
	if c.SpecName == "" || strings.ContainsAny(c.SpecName, `/\`) {
		return fmt.Errorf("invalid spec name %q", c.SpecName)
	}
	if c.RPCRetries < 1 {
		return fmt.Errorf("rpc retries must be positive, got %d", c.RPCRetries)
	}
	return nil
}

// getEnv gets an environment variable or returns default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as int or returns default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvUint64 gets an environment variable as uint64 or returns default
func getEnvUint64(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if uintValue, err := strconv.ParseUint(value, 10, 64); err == nil {
			return uintValue
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as bool or returns default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration gets an environment variable as duration or returns default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
