// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds the CBOR configuration shared by the lottery
// status socket and its client.
//
// The lottery uses two serialization formats with a clear boundary:
//
//   - The custom binary frame format of package wire for agency
//     traffic on the TCP port.
//   - CBOR for the operator status socket, where the server and
//     lottery-status exchange small request and response maps.
//
// The encoder uses Core Deterministic Encoding, so the same logical
// value always produces identical bytes.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For sockets:
//
//	encoder := codec.NewEncoder(conn)
//	decoder := codec.NewDecoder(conn)
//
// Types that cross the socket and are also printed as JSON by the CLI
// carry `json` tags; fxamacker/cbor reads them when `cbor` tags are
// absent. Purely internal envelopes carry `cbor` tags. Never put both
// on one field.
package codec
