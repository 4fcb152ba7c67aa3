//go:build !linux

package server

import (
	"context"
	"net"
)

// The backlog is left to the platform default.
func listen(addr string, _ int) (net.Listener, error) {
	var lc net.ListenConfig
	return lc.Listen(context.Background(), "tcp4", addr)
}
