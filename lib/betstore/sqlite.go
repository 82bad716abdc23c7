// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package betstore

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/lottery/lib/protocol"
	"github.com/bureau-foundation/lottery/lib/sqlitepool"
)

const schema = `
CREATE TABLE IF NOT EXISTS bets (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	agency     INTEGER NOT NULL,
	first_name TEXT    NOT NULL,
	last_name  TEXT    NOT NULL,
	document   TEXT    NOT NULL,
	birthdate  TEXT    NOT NULL,
	number     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS bets_by_agency ON bets (agency);
`

const insertBet = `INSERT INTO bets
	(agency, first_name, last_name, document, birthdate, number)
	VALUES (?, ?, ?, ?, ?, ?)`

const selectBets = `SELECT agency, first_name, last_name, document, birthdate, number
	FROM bets ORDER BY seq`

// errStopScan ends a sqlitex.Execute early when the consumer of a
// scan stops iterating.
var errStopScan = errors.New("betstore: scan stopped")

// SQLiteStore keeps bets in a SQLite table. Each Append is one
// IMMEDIATE transaction.
type SQLiteStore struct {
	pool   *sqlitepool.Pool
	logger *slog.Logger
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string, poolSize int, logger *slog.Logger) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("betstore: SQLite path is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:     path,
		PoolSize: poolSize,
		Logger:   logger,
		OnConnect: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, schema, nil)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("betstore: %w", err)
	}
	return &SQLiteStore{pool: pool, logger: logger}, nil
}

// Append inserts every bet in one transaction. Any failure rolls the
// whole call back.
func (s *SQLiteStore) Append(ctx context.Context, bets []protocol.Bet) (err error) {
	if len(bets) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("betstore: append: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("betstore: begin transaction: %w", err)
	}
	defer endTransaction(&err)

	for _, bet := range bets {
		err = sqlitex.Execute(conn, insertBet, &sqlitex.ExecOptions{
			Args: []any{
				bet.Agency(),
				bet.FirstName(),
				bet.LastName(),
				bet.Document(),
				bet.Birthdate().Format(protocol.DateLayout),
				bet.Number(),
			},
		})
		if err != nil {
			return fmt.Errorf("betstore: inserting %v: %w", bet, err)
		}
	}
	return nil
}

// Bets streams rows in insertion order over one pooled connection,
// held until the scan ends.
func (s *SQLiteStore) Bets(ctx context.Context) iter.Seq2[protocol.Bet, error] {
	return func(yield func(protocol.Bet, error) bool) {
		conn, err := s.pool.Take(ctx)
		if err != nil {
			yield(protocol.Bet{}, fmt.Errorf("betstore: scan: %w", err))
			return
		}
		defer s.pool.Put(conn)

		stopped := false
		err = sqlitex.Execute(conn, selectBets, &sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				bet, err := scanBet(stmt)
				if err != nil {
					return err
				}
				if !yield(bet, nil) {
					stopped = true
					return errStopScan
				}
				return nil
			},
		})
		if err != nil && !stopped {
			yield(protocol.Bet{}, fmt.Errorf("betstore: scan: %w", err))
		}
	}
}

// Columns: agency(0), first_name(1), last_name(2), document(3),
// birthdate(4), number(5).
func scanBet(stmt *sqlite.Stmt) (protocol.Bet, error) {
	birthdate, err := time.Parse(protocol.DateLayout, stmt.ColumnText(4))
	if err != nil {
		return protocol.Bet{}, fmt.Errorf("stored birthdate %q: %w", stmt.ColumnText(4), err)
	}
	return protocol.NewBet(
		stmt.ColumnInt(0),
		stmt.ColumnText(1),
		stmt.ColumnText(2),
		stmt.ColumnText(3),
		birthdate,
		stmt.ColumnInt(5),
	)
}

// Reset deletes every row.
func (s *SQLiteStore) Reset(ctx context.Context) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("betstore: reset: %w", err)
	}
	defer s.pool.Put(conn)

	if err := sqlitex.ExecuteTransient(conn, "DELETE FROM bets", nil); err != nil {
		return fmt.Errorf("betstore: reset: %w", err)
	}
	s.logger.Info("bet store reset", "backend", BackendSQLite, "path", s.pool.Path())
	return nil
}

// Close closes the connection pool.
func (s *SQLiteStore) Close() error {
	return s.pool.Close()
}
