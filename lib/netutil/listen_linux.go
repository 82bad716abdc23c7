// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package netutil

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// ListenTCP listens on address ("host:port", ":port", or ":0") with the
// given accept backlog. The socket has SO_REUSEADDR set so a restarted
// server can rebind while old connections sit in TIME_WAIT. A backlog
// of zero or less falls back to net.ListenTCP and the kernel default
// (somaxconn).
func ListenTCP(address string, backlog int) (*net.TCPListener, error) {
	tcpAddress, err := net.ResolveTCPAddr("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", address, err)
	}
	if backlog <= 0 {
		return net.ListenTCP("tcp", tcpAddress)
	}

	domain, sockaddr, err := socketAddress(tcpAddress)
	if err != nil {
		return nil, err
	}

	fd, err := unix.Socket(domain, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return nil, fmt.Errorf("creating socket for %s: %w", address, err)
	}
	// net.FileListener duplicates the descriptor, so the original is
	// always ours to close.
	file := os.NewFile(uintptr(fd), "tcp:"+address)
	defer file.Close()

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return nil, fmt.Errorf("setting SO_REUSEADDR on %s: %w", address, err)
	}
	if err := unix.Bind(fd, sockaddr); err != nil {
		return nil, fmt.Errorf("binding %s: %w", address, err)
	}
	if err := unix.Listen(fd, backlog); err != nil {
		return nil, fmt.Errorf("listening on %s with backlog %d: %w", address, backlog, err)
	}

	listener, err := net.FileListener(file)
	if err != nil {
		return nil, fmt.Errorf("wrapping listener for %s: %w", address, err)
	}
	tcpListener, ok := listener.(*net.TCPListener)
	if !ok {
		listener.Close()
		return nil, fmt.Errorf("listener for %s is %T, not *net.TCPListener", address, listener)
	}
	return tcpListener, nil
}

// socketAddress converts a resolved TCP address into the socket domain
// and sockaddr for bind(2). An empty host binds every IPv4 interface.
func socketAddress(address *net.TCPAddr) (int, unix.Sockaddr, error) {
	if address.IP == nil || address.IP.To4() != nil {
		sockaddr := &unix.SockaddrInet4{Port: address.Port}
		if address.IP != nil {
			copy(sockaddr.Addr[:], address.IP.To4())
		}
		return unix.AF_INET, sockaddr, nil
	}

	sockaddr := &unix.SockaddrInet6{Port: address.Port}
	copy(sockaddr.Addr[:], address.IP.To16())
	if address.Zone != "" {
		iface, err := net.InterfaceByName(address.Zone)
		if err != nil {
			return 0, nil, fmt.Errorf("resolving zone %q: %w", address.Zone, err)
		}
		sockaddr.ZoneId = uint32(iface.Index)
	}
	return unix.AF_INET6, sockaddr, nil
}
