// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil holds small socket helpers shared by the lottery
// server, the agency client, and the status socket.
//
// [ListenTCP] opens a TCP listener with an explicit accept backlog,
// which net.Listen does not expose. [IsExpectedCloseError] separates a
// peer going away from a real socket fault so callers can log the two
// differently.
package netutil
