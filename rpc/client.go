// Package rpc reads chain data from a node over JSON-RPC.
package rpc

import (
	"context"
	"fmt"
	"net/http"
	"time"

	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/sirupsen/logrus"
)

// Config holds the node connection settings.
type Config struct {
	URL     string
	Timeout time.Duration
	Retry   RetryConfig

	// ProxyAddr is an optional SOCKS5 proxy (host:port) the node is
	// reached through.
	ProxyAddr string
}

// DefaultConfig returns the settings for a local node.
func DefaultConfig() Config {
	return Config{
		URL:     "http://127.0.0.1:8114",
		Timeout: 30 * time.Second,
		Retry:   DefaultRetryConfig(),
	}
}

// Client is a chain-data client.  Every call is bounded by the configured
// timeout and retried on transient failures.
type Client struct {
	ctx     context.Context
	c       *gethrpc.Client
	timeout time.Duration
	retry   RetryConfig
}

// Dial connects to the node.  ctx bounds every later call made through the
// client, including retries.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.ProxyAddr != "" {
		dial, err := socksDialContext(cfg.ProxyAddr)
		if err != nil {
			return nil, err
		}
		transport.DialContext = dial
		transport.Proxy = nil
	}

	c, err := gethrpc.DialOptions(ctx, cfg.URL, gethrpc.WithHTTPClient(&http.Client{Transport: transport}))
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", cfg.URL, err)
	}

	logrus.WithFields(logrus.Fields{
		"url":     cfg.URL,
		"proxy":   cfg.ProxyAddr,
		"timeout": cfg.Timeout,
	}).Info("Connected to node RPC")

	return &Client{
		ctx:     ctx,
		c:       c,
		timeout: cfg.Timeout,
		retry:   cfg.Retry,
	}, nil
}

func (c *Client) Close() {
	c.c.Close()
}

func (c *Client) call(result interface{}, method string, args ...interface{}) error {
	attempt := 0
	err := Do(c.ctx, c.retry, func() error {
		attempt++
		ctx, cancel := c.callContext()
		defer cancel()

		err := c.c.CallContext(ctx, result, method, args...)
		if err != nil && attempt < c.retry.MaxAttempts {
			logrus.WithFields(logrus.Fields{
				"method":  method,
				"attempt": attempt,
			}).Debugf("RPC call failed: %v", err)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

func (c *Client) callContext() (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(c.ctx)
	}
	return context.WithTimeout(c.ctx, c.timeout)
}
