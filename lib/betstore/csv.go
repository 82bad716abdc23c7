// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package betstore

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"sync"

	"github.com/bureau-foundation/lottery/lib/protocol"
)

// CSVStore keeps bets in a single append-only CSV file without a
// header row.
//
// Appends take the write lock; scans take the read lock for their
// whole duration, so a loop over Bets must not call Append.
type CSVStore struct {
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

// OpenCSV returns a store backed by the file at path. The file is
// created on the first append; a missing file scans as empty.
func OpenCSV(path string, logger *slog.Logger) (*CSVStore, error) {
	if path == "" {
		return nil, fmt.Errorf("betstore: CSV path is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CSVStore{path: path, logger: logger}, nil
}

// Append writes all bets with a single write call. If the write
// fails, the file is truncated back to its previous size so no
// partial rows remain.
func (s *CSVStore) Append(ctx context.Context, bets []protocol.Bet) error {
	if len(bets) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var buffer bytes.Buffer
	writer := csv.NewWriter(&buffer)
	for _, bet := range bets {
		fields := bet.Fields()
		if err := writer.Write(fields[:]); err != nil {
			return fmt.Errorf("betstore: encoding %v: %w", bet, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("betstore: encoding bets: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("betstore: opening %s: %w", s.path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("betstore: stat %s: %w", s.path, err)
	}

	if _, err := file.Write(buffer.Bytes()); err != nil {
		if truncateErr := file.Truncate(info.Size()); truncateErr != nil {
			s.logger.Error("rolling back partial append failed",
				"path", s.path,
				"error", truncateErr,
			)
		}
		return fmt.Errorf("betstore: appending to %s: %w", s.path, err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("betstore: syncing %s: %w", s.path, err)
	}
	return nil
}

// Bets scans the file from the start, parsing one row at a time.
func (s *CSVStore) Bets(ctx context.Context) iter.Seq2[protocol.Bet, error] {
	return func(yield func(protocol.Bet, error) bool) {
		s.mu.RLock()
		defer s.mu.RUnlock()

		file, err := os.Open(s.path)
		if errors.Is(err, os.ErrNotExist) {
			return
		}
		if err != nil {
			yield(protocol.Bet{}, fmt.Errorf("betstore: opening %s: %w", s.path, err))
			return
		}
		defer file.Close()

		reader := csv.NewReader(file)
		reader.FieldsPerRecord = 6
		reader.ReuseRecord = true

		for {
			if err := ctx.Err(); err != nil {
				yield(protocol.Bet{}, err)
				return
			}
			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(protocol.Bet{}, fmt.Errorf("betstore: reading %s: %w", s.path, err))
				return
			}
			bet, err := protocol.ParseBet(record[0], record[1], record[2], record[3], record[4], record[5])
			if err != nil {
				line, _ := reader.FieldPos(0)
				yield(protocol.Bet{}, fmt.Errorf("betstore: %s line %d: %w", s.path, line, err))
				return
			}
			if !yield(bet, nil) {
				return
			}
		}
	}
}

// Reset truncates the file, creating it if needed.
func (s *CSVStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("betstore: truncating %s: %w", s.path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("betstore: truncating %s: %w", s.path, err)
	}
	s.logger.Info("bet store reset", "backend", BackendCSV, "path", s.path)
	return nil
}

// Close is a no-op; the file is opened per operation.
func (s *CSVStore) Close() error { return nil }
