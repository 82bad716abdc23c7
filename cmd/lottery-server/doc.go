// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// lottery-server accepts bets from agencies over TCP, stores them, and
// once every agency has finished, answers each agency's query for its
// winning documents.
//
// Each accepted connection runs in its own goroutine, reading one
// framed message at a time and dispatching it by kind:
//
//   - BET and BATCH are decoded and appended to the bet store. The
//     reply is SUCCESS or ERROR carrying the first bet's document and
//     number; a storage failure does not close the connection.
//   - FINISHED registers the agency with the completion barrier and is
//     acknowledged with SUCCESS("OK").
//   - WINNERS_QUERY answers with an empty list until five distinct
//     agencies have finished, then with the agency's winners.
//
// Malformed frames, undecodable payloads, and unknown kinds close the
// connection without a reply (a malformed FINISHED is first answered
// with ERROR("ERROR")).
//
// On SIGINT or SIGTERM the server stops accepting, closes every open
// agency connection, closes the listener, and waits for the session
// goroutines to exit.
//
// An optional Unix status socket (server.status_socket) answers CBOR
// "status" and "winners" requests from lottery-status.
package main
