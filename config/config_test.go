package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "mainnet", cfg.Network)
	assert.Equal(t, "http://127.0.0.1:8114", cfg.RPCURL)
	assert.Equal(t, 30*time.Second, cfg.RPCTimeout)
	assert.Equal(t, 5, cfg.RPCRetries)
	assert.Equal(t, uint64(24), cfg.Confirmations)
	assert.True(t, cfg.CacheEnabled)
	assert.Equal(t, "lina", cfg.SpecName)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TARGET_EPOCH", "89")
	t.Setenv("RPC_TIMEOUT", "5s")
	t.Setenv("RPC_RETRIES", "not-a-number")
	t.Setenv("CACHE_ENABLED", "false")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, uint64(89), cfg.TargetEpoch)
	assert.Equal(t, 5*time.Second, cfg.RPCTimeout)
	assert.Equal(t, 5, cfg.RPCRetries)
	assert.False(t, cfg.CacheEnabled)
}

func TestLoadDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("OUTPUT_DIR=/srv/genesis\nCONFIRMATIONS=3\n"), 0600))

	// Process environment wins over the file.
	t.Setenv("CONFIRMATIONS", "7")
	// Loaded variables stay in the environment; t.Setenv restores it.
	t.Setenv("OUTPUT_DIR", "")
	require.NoError(t, os.Unsetenv("OUTPUT_DIR"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), cfg.Confirmations)
	assert.Equal(t, "/srv/genesis", cfg.OutputDir)

	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{"Valid", func(c *Config) {}, false},
		{"NoTarget", func(c *Config) { c.TargetEpoch = 0 }, true},
		{"NoRemainder", func(c *Config) { c.RemainderAddress = "" }, true},
		{"ReserveWithoutAddress", func(c *Config) { c.FoundationReserveCapacity = 10 }, true},
		{"NoRetries", func(c *Config) { c.RPCRetries = 0 }, true},
		{"NoName", func(c *Config) { c.SpecName = "" }, true},
		{"NameWithSeparator", func(c *Config) { c.SpecName = "../lina" }, true},
		{"NameWithQuote", func(c *Config) { c.SpecName = `li"na` }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{TargetEpoch: 89, RemainderAddress: "ckb1...", RPCRetries: 1, SpecName: "lina"}
			tt.modify(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
