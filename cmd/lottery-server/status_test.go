// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/lottery/lib/barrier"
	"github.com/bureau-foundation/lottery/lib/clock"
	"github.com/bureau-foundation/lottery/lib/draw"
	"github.com/bureau-foundation/lottery/lib/netutil"
	"github.com/bureau-foundation/lottery/lib/protocol"
	"github.com/bureau-foundation/lottery/lib/service"
	"github.com/bureau-foundation/lottery/lib/testutil"
)

// startStatus serves the status actions for ts and returns a client.
func startStatus(t *testing.T, ts *testServer) *service.Client {
	t.Helper()
	socketPath := filepath.Join(testutil.SocketDir(t), "status.sock")
	socket := service.NewSocketServer(socketPath, testLogger())
	actions := &statusActions{server: ts.server, lookup: draw.Lookup{Scanner: ts.store}}
	actions.register(socket)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- socket.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := testutil.RequireReceive(t, done, ioTimeout, "status socket did not stop"); err != nil {
			t.Errorf("status Serve: %v", err)
		}
	})
	testutil.RequireClosed(t, socket.Ready(), ioTimeout, "status socket never became ready")
	return service.NewClient(socketPath)
}

func TestStatusReportsProgress(t *testing.T) {
	ts := startServer(t, serverOptions{})
	client := startStatus(t, ts)
	conn := ts.dial(t)
	sendFinished(t, conn, 3)
	sendFinished(t, conn, 1)

	var status statusResponse
	if err := client.Call(context.Background(), "status", nil, &status); err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Quorum != barrier.Quorum {
		t.Errorf("quorum = %d, want %d", status.Quorum, barrier.Quorum)
	}
	if !slices.Equal(status.Finished, []int{1, 3}) {
		t.Errorf("finished = %v, want [1 3]", status.Finished)
	}
	if status.Completed {
		t.Error("completed = true with two agencies finished")
	}
	if status.Connections != 1 {
		t.Errorf("connections = %d, want 1", status.Connections)
	}
	if status.Version == "" {
		t.Error("version is empty")
	}
}

func TestStatusWinnersRequiresCompletion(t *testing.T) {
	ts := startServer(t, serverOptions{})
	client := startStatus(t, ts)

	err := client.Call(context.Background(), "winners", map[string]any{"agency": 1}, nil)
	var serviceError *service.ServiceError
	if !errors.As(err, &serviceError) {
		t.Fatalf("winners before the draw: err = %v, want ServiceError", err)
	}
	if !strings.Contains(serviceError.Message, "draw not completed") {
		t.Errorf("message = %q", serviceError.Message)
	}
}

func TestStatusWinnersAfterCompletion(t *testing.T) {
	ts := startServer(t, serverOptions{})
	client := startStatus(t, ts)

	var bets []protocol.Bet
	for _, row := range []struct {
		agency   int
		document string
		number   int
	}{
		{1, "11111111", draw.WinningNumber},
		{1, "11111112", 10},
		{2, "22222222", draw.WinningNumber},
		{2, "22222223", draw.WinningNumber},
	} {
		bets = append(bets, mustBet(t, row.agency, row.document, row.number))
	}
	if err := ts.store.Append(context.Background(), bets); err != nil {
		t.Fatalf("Append: %v", err)
	}
	for agency := 1; agency <= barrier.Quorum; agency++ {
		ts.barrier.RegisterFinished(agency)
	}

	ctx, cancel := context.WithTimeout(context.Background(), ioTimeout)
	defer cancel()

	var agencyWinners winnersResponse
	if err := client.Call(ctx, "winners", map[string]any{"agency": 2}, &agencyWinners); err != nil {
		t.Fatalf("winners: %v", err)
	}
	if want := []string{"22222222", "22222223"}; !slices.Equal(agencyWinners.Documents, want) {
		t.Errorf("documents = %v, want %v", agencyWinners.Documents, want)
	}

	var tally winnersResponse
	if err := client.Call(ctx, "winners", nil, &tally); err != nil {
		t.Fatalf("winners tally: %v", err)
	}
	if tally.Tally[1] != 1 || tally.Tally[2] != 2 {
		t.Errorf("tally = %v, want map[1:1 2:2]", tally.Tally)
	}
}

func TestServerUptimeFollowsClock(t *testing.T) {
	listener, err := netutil.ListenTCP("127.0.0.1:0", 0)
	if err != nil {
		t.Fatalf("ListenTCP: %v", err)
	}
	defer listener.Close()

	fake := clock.Fake(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	server := NewServer(ServerConfig{Listener: listener, Clock: fake, Logger: testLogger()})
	if got := server.Uptime(); got != 0 {
		t.Fatalf("Uptime() = %v, want 0", got)
	}
	fake.Advance(90 * time.Second)
	if got := server.Uptime(); got != 90*time.Second {
		t.Errorf("Uptime() = %v, want 1m30s", got)
	}
}
