// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package netutil

import (
	"fmt"
	"net"
)

// ListenTCP listens on address. Outside Linux the backlog is left to
// the kernel default.
func ListenTCP(address string, backlog int) (*net.TCPListener, error) {
	tcpAddress, err := net.ResolveTCPAddr("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", address, err)
	}
	return net.ListenTCP("tcp", tcpAddress)
}
