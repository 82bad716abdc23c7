// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"log/slog"
	"net"
	"sync"
)

// registry tracks open agency connections so shutdown can close them.
// The mutex guards only the set; Close calls happen outside it.
type registry struct {
	logger *slog.Logger

	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

func newRegistry(logger *slog.Logger) *registry {
	return &registry{
		logger: logger,
		conns:  make(map[net.Conn]struct{}),
	}
}

// Register adds conn to the set.
func (r *registry) Register(conn net.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[conn] = struct{}{}
}

// Unregister removes conn. Removing an absent conn is a no-op.
func (r *registry) Unregister(conn net.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, conn)
}

// Len returns the number of open connections.
func (r *registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// CloseAll closes and removes every registered connection. Close
// failures are logged and otherwise ignored.
func (r *registry) CloseAll() {
	r.mu.Lock()
	conns := make([]net.Conn, 0, len(r.conns))
	for conn := range r.conns {
		conns = append(conns, conn)
	}
	clear(r.conns)
	r.mu.Unlock()

	for _, conn := range conns {
		if err := conn.Close(); err != nil {
			r.logger.Warn("closing agency connection failed",
				"remote", conn.RemoteAddr(),
				"error", err,
			)
		}
	}
	if len(conns) > 0 {
		r.logger.Info("closed agency connections", "count", len(conns))
	}
}
