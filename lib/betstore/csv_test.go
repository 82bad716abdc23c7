// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package betstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/lottery/lib/protocol"
)

func TestCSVFileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bets.csv")
	store, err := OpenCSV(path, testLogger())
	if err != nil {
		t.Fatalf("OpenCSV: %v", err)
	}

	bets := []protocol.Bet{
		mustBet(t, "1", "12345678", "7574"),
	}
	quoted, err := protocol.ParseBet("2", "Ana, María", `O"Neil`, "30904465", "1985-12-31", "42")
	if err != nil {
		t.Fatalf("ParseBet: %v", err)
	}
	bets = append(bets, quoted)

	if err := store.Append(context.Background(), bets); err != nil {
		t.Fatalf("Append: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading file: %v", err)
	}
	want := "1,Juan,Perez,12345678,1990-01-01,7574\n" +
		`2,"Ana, María","O""Neil",30904465,1985-12-31,42` + "\n"
	if string(data) != want {
		t.Errorf("file contents:\n%s\nwant:\n%s", data, want)
	}

	requireBets(t, collect(t, store), bets)
}

func TestCSVMissingFileScansEmpty(t *testing.T) {
	store, err := OpenCSV(filepath.Join(t.TempDir(), "absent.csv"), nil)
	if err != nil {
		t.Fatalf("OpenCSV: %v", err)
	}
	if bets := collect(t, store); len(bets) != 0 {
		t.Errorf("missing file scanned %d bets", len(bets))
	}
}

func TestCSVCorruptRowYieldsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bets.csv")
	contents := "1,Juan,Perez,12345678,1990-01-01,7574\n" +
		"1,Juan,Perez,12345678,not-a-date,7574\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}
	store, err := OpenCSV(path, nil)
	if err != nil {
		t.Fatalf("OpenCSV: %v", err)
	}

	var good int
	var scanErr error
	for _, err := range store.Bets(context.Background()) {
		if err != nil {
			scanErr = err
			break
		}
		good++
	}
	if good != 1 {
		t.Errorf("yielded %d bets before the error, want 1", good)
	}
	if scanErr == nil || !strings.Contains(scanErr.Error(), "line 2") {
		t.Errorf("scan error = %v, want it to name line 2", scanErr)
	}
}

func TestCSVAppendToUnwritablePathFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "bets.csv")
	store, err := OpenCSV(path, nil)
	if err != nil {
		t.Fatalf("OpenCSV: %v", err)
	}
	if err := store.Append(context.Background(), []protocol.Bet{mustBet(t, "1", "1", "1")}); err == nil {
		t.Fatal("Append succeeded into a missing directory")
	}
}
