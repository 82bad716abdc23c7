// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package protocol is the message catalog of the lottery protocol: the
// message kinds, the [Bet] record, and the payload layout of every
// message. Framing lives in package wire; this package only builds and
// parses payloads.
//
//	BET               agency, first_name, last_name, document, birthdate, number (strings)
//	BATCH             u32 count, then count bare BET payloads
//	FINISHED          agency id (string)
//	WINNERS_QUERY     agency id (string)
//	SUCCESS / ERROR   document, number (strings), or "OK" / "ERROR" for FINISHED
//	WINNERS_RESPONSE  u32 count, then count documents (strings)
//
// Decode failures wrap wire.ErrViolation, so a session can tell a
// misbehaving peer from a socket fault with wire.IsViolation.
package protocol
