// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import "fmt"

// Kind identifies a message in the lottery protocol. It travels as the
// kind byte of a wire frame.
type Kind byte

const (
	// KindBet carries one bet from an agency.
	KindBet Kind = 0x01

	// KindBatch carries several bets that are stored all-or-nothing.
	KindBatch Kind = 0x02

	// KindSuccess acknowledges a bet, batch, or finished notice.
	KindSuccess Kind = 0x03

	// KindError reports that a bet, batch, or finished notice failed.
	KindError Kind = 0x04

	// KindFinished tells the server an agency has sent all its bets.
	KindFinished Kind = 0x05

	// KindWinnersQuery asks for an agency's winning documents.
	KindWinnersQuery Kind = 0x06

	// KindWinnersResponse answers a winners query.
	KindWinnersResponse Kind = 0x07
)

var kindNames = map[Kind]string{
	KindBet:             "BET",
	KindBatch:           "BATCH",
	KindSuccess:         "SUCCESS",
	KindError:           "ERROR",
	KindFinished:        "FINISHED",
	KindWinnersQuery:    "WINNERS_QUERY",
	KindWinnersResponse: "WINNERS_RESPONSE",
}

// String returns the protocol name of k, or UNKNOWN(0xNN).
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(0x%02x)", byte(k))
}

// Valid reports whether k is part of the message catalog.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// FromClient reports whether agencies send k to the server.
func (k Kind) FromClient() bool {
	switch k {
	case KindBet, KindBatch, KindFinished, KindWinnersQuery:
		return true
	}
	return false
}

// ClientKinds returns every kind the server must handle, in wire order.
func ClientKinds() []Kind {
	return []Kind{KindBet, KindBatch, KindFinished, KindWinnersQuery}
}
