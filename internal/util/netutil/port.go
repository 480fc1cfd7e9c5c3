// Package netutil provides network utility functions for port checking.
package netutil

import (
	"context"
	"fmt"
	"net"
	"time"
)

// ProbeTCP checks once whether address accepts TCP connections within timeout.
func ProbeTCP(ctx context.Context, address string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("timeout connecting to %s", address)
		}
		return fmt.Errorf("connect to %s: %w", address, err)
	}
	_ = conn.Close()
	return nil
}
