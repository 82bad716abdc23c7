// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package barrier tracks which agencies have finished submitting bets
// and decides, once, when the lottery is complete.
//
// A [Barrier] is a one-shot quorum latch. Agencies register as finished
// in any order, from any goroutine, any number of times; the barrier
// completes the moment the number of distinct finished agencies first
// reaches the quorum. Completion is permanent for the life of the
// Barrier: there is no way to un-finish an agency or start a new
// round.
//
// The Barrier is an ordinary value owned by the server, not a global,
// so tests can build as many as they need.
package barrier

import (
	"fmt"
	"slices"
	"sync"
)

// Quorum is the number of distinct agencies whose completion unlocks
// the winners. The lottery always runs with five agencies.
const Quorum = 5

// Barrier is safe for concurrent use. All state is guarded by one
// mutex that is held only for the check-and-update, never across I/O.
type Barrier struct {
	quorum int

	mu        sync.Mutex
	finished  map[int]struct{}
	completed bool

	// done is closed when completed flips to true.
	done chan struct{}
}

// New returns a barrier that completes when quorum distinct agencies
// have finished. Panics if quorum is not positive.
func New(quorum int) *Barrier {
	if quorum <= 0 {
		panic(fmt.Sprintf("barrier: quorum must be positive, got %d", quorum))
	}
	return &Barrier{
		quorum:   quorum,
		finished: make(map[int]struct{}, quorum),
		done:     make(chan struct{}),
	}
}

// RegisterFinished records that agency has finished. It returns true
// only for the call that brought the set of finished agencies to the
// quorum; every other call, including repeats for an agency already
// recorded and calls after completion, returns false.
func (b *Barrier) RegisterFinished(agency int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.finished[agency] = struct{}{}
	if b.completed || len(b.finished) != b.quorum {
		return false
	}
	b.completed = true
	close(b.done)
	return true
}

// IsCompleted reports whether the quorum has been reached.
func (b *Barrier) IsCompleted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.completed
}

// Done returns a channel that is closed when the barrier completes.
func (b *Barrier) Done() <-chan struct{} {
	return b.done
}

// Quorum returns the number of agencies the barrier waits for.
func (b *Barrier) Quorum() int {
	return b.quorum
}

// Finished returns the agencies that have finished, in ascending order.
func (b *Barrier) Finished() []int {
	b.mu.Lock()
	agencies := make([]int, 0, len(b.finished))
	for agency := range b.finished {
		agencies = append(agencies, agency)
	}
	b.mu.Unlock()

	slices.Sort(agencies)
	return agencies
}
