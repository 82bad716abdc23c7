// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package service provides the operator status socket: a CBOR
// request-response protocol on a Unix socket, separate from the
// agency TCP port.
//
// The lottery server registers its actions on a [SocketServer]:
//
//	server := service.NewSocketServer(path, logger)
//	server.Handle("status", statusHandler)
//	go server.Serve(ctx)
//
// and lottery-status queries it with a [Client]:
//
//	var status Status
//	err := service.NewClient(path).Call(ctx, "status", nil, &status)
//
// Every request is a CBOR map with an "action" field plus any
// action-specific fields. Every response is a [Response] envelope.
// Access control is the socket file's permissions.
package service
