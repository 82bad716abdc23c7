// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package draw decides which stored bets won.
package draw

import (
	"context"
	"fmt"

	"github.com/bureau-foundation/lottery/lib/betstore"
	"github.com/bureau-foundation/lottery/lib/protocol"
)

// WinningNumber is the number drawn for every round.
const WinningNumber = 7574

// HasWon reports whether bet carries the winning number.
func HasWon(bet protocol.Bet) bool {
	return bet.Number() == WinningNumber
}

// Lookup computes winners by scanning a bet store.
type Lookup struct {
	Scanner betstore.Scanner

	// Predicate decides whether a bet won. Nil means HasWon.
	Predicate func(protocol.Bet) bool
}

// Winners returns, in storage order, the documents of agency's
// winning bets. A document that won more than once appears once per
// winning bet.
func (l Lookup) Winners(ctx context.Context, agency int) ([]string, error) {
	predicate := l.Predicate
	if predicate == nil {
		predicate = HasWon
	}

	documents := []string{}
	for bet, err := range l.Scanner.Bets(ctx) {
		if err != nil {
			return nil, fmt.Errorf("draw: scanning bets for agency %d: %w", agency, err)
		}
		if bet.Agency() == agency && predicate(bet) {
			documents = append(documents, bet.Document())
		}
	}
	return documents, nil
}

// Tally returns the number of winning bets per agency over the whole
// store.
func (l Lookup) Tally(ctx context.Context) (map[int]int, error) {
	predicate := l.Predicate
	if predicate == nil {
		predicate = HasWon
	}

	tally := make(map[int]int)
	for bet, err := range l.Scanner.Bets(ctx) {
		if err != nil {
			return nil, fmt.Errorf("draw: scanning bets: %w", err)
		}
		if predicate(bet) {
			tally[bet.Agency()]++
		}
	}
	return tally, nil
}
