// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package betstore

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"github.com/bureau-foundation/lottery/lib/protocol"
)

// Backend names accepted by [Open].
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// Appender persists bets. The server holds only this half of the
// store.
type Appender interface {
	// Append stores every bet in bets or none of them.
	Append(ctx context.Context, bets []protocol.Bet) error
}

// Scanner reads stored bets in insertion order. Each call to Bets
// starts a fresh scan from the beginning. A scan that hits an error
// yields it once with a zero Bet and stops.
type Scanner interface {
	Bets(ctx context.Context) iter.Seq2[protocol.Bet, error]
}

// Store is a complete bet store.
type Store interface {
	Appender
	Scanner

	// Reset removes every stored bet.
	Reset(ctx context.Context) error

	// Close releases the store's resources.
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	// Backend is BackendCSV or BackendSQLite. Empty means CSV.
	Backend string

	// Path is the CSV file or SQLite database file.
	Path string

	// PoolSize is the SQLite connection pool size. Ignored for CSV.
	PoolSize int

	Logger *slog.Logger
}

// Open opens the backend named by opts.Backend.
func Open(opts Options) (Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	switch opts.Backend {
	case "", BackendCSV:
		return OpenCSV(opts.Path, logger)
	case BackendSQLite:
		return OpenSQLite(opts.Path, opts.PoolSize, logger)
	default:
		return nil, fmt.Errorf("betstore: unknown backend %q", opts.Backend)
	}
}
