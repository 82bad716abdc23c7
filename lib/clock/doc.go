// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// Code that reads the time or waits accepts a [Clock] instead of
// calling time.Now or time.After. Production wires [Real]; tests wire
// [Fake], whose time moves only when the test calls Advance:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	client := agencyclient.New(agencyclient.Config{Clock: c, ...})
//	go client.AwaitWinners(ctx, 3)
//	c.WaitForTimers(1)        // the poll loop is now waiting
//	c.Advance(5 * time.Second) // release it deterministically
//
// WaitForTimers removes the race between a goroutine registering a
// wait and the test advancing past it.
package clock
