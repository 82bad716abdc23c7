// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package wire implements the framing layer of the lottery protocol.
//
// Every message on a connection is one frame:
//
//	+----------------+--------+-----------------+---------+
//	| length (u32be) | kind   | payload         | trailer |
//	| 4 bytes        | 1 byte | length bytes    | 0xFF    |
//	+----------------+--------+-----------------+---------+
//
// The length counts payload bytes only and may not exceed
// [MaxPayloadSize]. A frame whose length is too large is rejected
// before any payload byte is read; a frame whose trailer is not
// [Trailer] is rejected after the payload is read. Either way the
// frame boundary is no longer trustworthy and the caller must drop the
// connection.
//
// Inside payloads, strings are a u16be byte length followed by UTF-8
// bytes ([AppendString], [DecodeString]) and list counts are u32be
// ([AppendCount], [DecodeCount]). These widths are part of the wire
// format and are shared with clients written in other languages.
//
// [ReadExact] and [WriteExact] never return after a short transfer:
// they either move every requested byte or fail.
//
// # Errors
//
// Errors fall into three groups, distinguished with [errors.Is]:
//
//   - [ErrConnectionClosed] and [ErrConnectionBroken]: the peer went
//     away. [IsClosed] reports these. They end a session quietly.
//   - [ErrFraming], [ErrMessageTooLarge], [ErrTruncated],
//     [ErrStringTooLong]: the peer sent bytes that violate the
//     protocol. [IsViolation] reports these (and any other error that
//     wraps [ErrViolation], such as malformed bet records).
//   - Anything else is an I/O fault on the socket.
package wire
