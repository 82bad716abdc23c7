// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package agencyclient

import (
	"fmt"

	"github.com/bureau-foundation/lottery/lib/protocol"
	"github.com/bureau-foundation/lottery/lib/wire"
)

// SplitBatches groups bets, in order, into batches of at most
// maxAmount bets whose BATCH payload fits in one frame. A bet too
// large to fit in a frame on its own is an error.
func SplitBatches(bets []protocol.Bet, maxAmount int) ([][]protocol.Bet, error) {
	if maxAmount <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", maxAmount)
	}

	var batches [][]protocol.Bet
	start := 0
	size := wire.CountSize
	for i, bet := range bets {
		betSize := bet.EncodedSize()
		if wire.CountSize+betSize > wire.MaxPayloadSize {
			return nil, fmt.Errorf("%s encodes to %d bytes, more than a frame holds", bet, betSize)
		}
		if i-start == maxAmount || size+betSize > wire.MaxPayloadSize {
			batches = append(batches, bets[start:i])
			start = i
			size = wire.CountSize
		}
		size += betSize
	}
	if start < len(bets) {
		batches = append(batches, bets[start:])
	}
	return batches, nil
}
