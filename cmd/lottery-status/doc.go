// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// lottery-status queries a running lottery-server through its status
// socket and prints the answer as JSON.
//
//	lottery-status                      # draw progress
//	lottery-status winners --agency 3   # agency 3's winning documents
//	lottery-status winners              # winning bets per agency
//
// The socket path comes from --socket, else server.status_socket in
// the config file. --raw prints the CBOR response in diagnostic
// notation instead of JSON.
package main
