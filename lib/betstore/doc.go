// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package betstore persists accepted bets and scans them back for the
// draw.
//
// Two backends implement [Store]:
//
//   - [CSVStore] appends rows to one CSV file, one bet per line in the
//     column order agency, first name, last name, document, birthdate,
//     number. This is the default and the format operators expect.
//   - [SQLiteStore] inserts into a bets table through lib/sqlitepool.
//
// Both treat an Append as all-or-nothing: either every bet in the call
// is stored or none is. Scans are sequential, restartable, and stream
// one bet at a time rather than loading the whole store.
//
//	store, err := betstore.Open(betstore.Options{Backend: "csv", Path: "bets.csv"})
//	...
//	for bet, err := range store.Bets(ctx) {
//	    if err != nil {
//	        return err
//	    }
//	    ...
//	}
package betstore
