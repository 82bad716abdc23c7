// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool provides the SQLite connection pool behind the
// sqlite bet store backend.
//
// It wraps zombiezen.com/go/sqlite's sqlitex.Pool and applies a fixed
// set of pragmas to every connection:
//
//   - journal_mode=WAL: the draw's scan does not block appends.
//   - synchronous=FULL: an acknowledged bet survives power loss. The
//     server only sends SUCCESS after the append commits.
//   - busy_timeout=5000: concurrent agency sessions wait for the write
//     lock instead of failing with SQLITE_BUSY.
//   - foreign_keys=OFF and temp_store=MEMORY.
//
// Usage:
//
//	pool, err := sqlitepool.Open(sqlitepool.Config{
//	    Path:   "/var/lib/lottery/bets.db",
//	    Logger: logger,
//	    OnConnect: func(conn *sqlite.Conn) error {
//	        return sqlitex.ExecuteScript(conn, schema, nil)
//	    },
//	})
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
// The package exposes zombiezen's types directly; callers write SQL
// and manage transactions with sqlitex.
package sqlitepool
