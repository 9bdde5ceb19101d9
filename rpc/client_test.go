package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lina-genesis/wire"
)

type request struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// handlerFunc answers one call with a raw JSON result, or fails the whole
// HTTP request when status is not 200.
type handlerFunc func(method string, params []json.RawMessage) (result string, status int)

func newNode(t *testing.T, h handlerFunc) (*Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		result, status := h(req.Method, req.Params)
		if status != http.StatusOK {
			http.Error(w, http.StatusText(status), status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if result == "" {
			w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(req.ID) + `,"error":{"code":-32601,"message":"method not found"}}`))
			return
		}
		w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(req.ID) + `,"result":` + result + `}`))
	}))
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.URL = srv.URL
	cfg.Timeout = 5 * time.Second
	cfg.Retry = RetryConfig{MaxAttempts: 3, BaseBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}

	c, err := Dial(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c, &calls
}

const tipHeader = `{
	"compact_target": "0x1a08a97e",
	"epoch": "0x70806c8000059",
	"hash": "0x18e020f6b1237a3d06b75121f25a7efa0550e4b3f44f974822f471902424c104",
	"nonce": "0x0",
	"number": "0x9c1bc",
	"parent_hash": "0x0000000000000000000000000000000000000000000000000000000000000000",
	"timestamp": "0x16e70e6985c",
	"version": "0x0"
}`

func TestGetTipHeader(t *testing.T) {
	c, _ := newNode(t, func(method string, params []json.RawMessage) (string, int) {
		assert.Equal(t, "get_tip_header", method)
		assert.Empty(t, params)
		return tipHeader, http.StatusOK
	})

	header, err := c.GetTipHeader()
	require.NoError(t, err)
	require.NotNil(t, header)
	assert.Equal(t, uint64(0x1a08a97e), uint64(header.CompactTarget))
	assert.Equal(t, uint64(0x9c1bc), uint64(header.Number))
	assert.Equal(t, uint64(0x16e70e6985c), uint64(header.Timestamp))
	assert.Equal(t, "0x18e020f6b1237a3d06b75121f25a7efa0550e4b3f44f974822f471902424c104", header.Hash.String())

	epoch := header.EpochWithFraction()
	assert.Equal(t, uint64(0x59), epoch.Number())
}

func TestNumberParams(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	c, _ := newNode(t, func(method string, params []json.RawMessage) (string, int) {
		if !assert.Len(t, params, 1) {
			return "", http.StatusBadRequest
		}
		mu.Lock()
		seen = append(seen, method+" "+string(params[0]))
		mu.Unlock()
		switch method {
		case "get_block_hash":
			return `"0x0000000000000000000000000000000000000000000000000000000000000001"`, http.StatusOK
		case "get_epoch_by_number":
			return `{"number":"0x2","start_number":"0xfa0","length":"0x7d0","compact_target":"0x1a08a97e"}`, http.StatusOK
		case "get_cellbase_output_capacity_details":
			return `{"primary":"0x174876e800","secondary":"0x0","total":"0x174876e800","tx_fee":"0x0","proposal_reward":"0x0"}`, http.StatusOK
		}
		return "null", http.StatusOK
	})

	hash, err := c.GetBlockHash(26)
	require.NoError(t, err)
	assert.Equal(t, wire.Hash{31: 1}, *hash)

	epoch, err := c.GetEpochByNumber(2)
	require.NoError(t, err)
	assert.Equal(t, uint64(4000), uint64(epoch.StartNumber))

	reward, err := c.GetCellbaseOutputCapacityDetails(*hash)
	require.NoError(t, err)
	assert.Equal(t, uint64(100_000_000_000), uint64(reward.Primary))

	block, err := c.GetBlockByNumber(1 << 40)
	require.NoError(t, err)
	assert.Nil(t, block)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		`get_block_hash "0x1a"`,
		`get_epoch_by_number "0x2"`,
		`get_cellbase_output_capacity_details "0x0000000000000000000000000000000000000000000000000000000000000001"`,
		`get_block_by_number "0x10000000000"`,
	}, seen)
}

func TestRetryTransientStatus(t *testing.T) {
	var failures int32 = 2
	c, calls := newNode(t, func(method string, params []json.RawMessage) (string, int) {
		if atomic.AddInt32(&failures, -1) >= 0 {
			return "", http.StatusServiceUnavailable
		}
		return tipHeader, http.StatusOK
	})

	header, err := c.GetTipHeader()
	require.NoError(t, err)
	assert.NotNil(t, header)
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))
}

func TestRetryGivesUp(t *testing.T) {
	c, calls := newNode(t, func(method string, params []json.RawMessage) (string, int) {
		return "", http.StatusBadGateway
	})

	_, err := c.GetTipHeader()
	require.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))
}

func TestNodeErrorIsFinal(t *testing.T) {
	c, calls := newNode(t, func(method string, params []json.RawMessage) (string, int) {
		return "", http.StatusOK
	})

	_, err := c.GetBlockByNumber(1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get_block_by_number")
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestDialBadProxy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ProxyAddr = "127.0.0.1:1"
	cfg.Retry.MaxAttempts = 1

	c, err := Dial(context.Background(), cfg)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.GetTipHeader()
	assert.Error(t, err)
}
