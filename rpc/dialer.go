package rpc

import (
	"context"
	"fmt"
	"net"

	"golang.org/x/net/proxy"
)

type dialContextFunc func(ctx context.Context, network, address string) (net.Conn, error)

// socksDialContext returns a dial function that connects through the SOCKS5
// proxy at addr.
func socksDialContext(addr string) (dialContextFunc, error) {
	dialer, err := proxy.SOCKS5("tcp", addr, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}
	if cd, ok := dialer.(proxy.ContextDialer); ok {
		return cd.DialContext, nil
	}

	return func(ctx context.Context, network, address string) (net.Conn, error) {
		type result struct {
			conn net.Conn
			err  error
		}

		ch := make(chan result, 1)
		go func() {
			conn, err := dialer.Dial(network, address)
			ch <- result{conn, err}
		}()

		select {
		case <-ctx.Done():
			go func() {
				if res := <-ch; res.conn != nil {
					res.conn.Close()
				}
			}()
			return nil, ctx.Err()
		case res := <-ch:
			return res.conn, res.err
		}
	}, nil
}
