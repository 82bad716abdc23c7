// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"

	"github.com/bureau-foundation/lottery/lib/codec"
	"github.com/bureau-foundation/lottery/lib/draw"
	"github.com/bureau-foundation/lottery/lib/service"
	"github.com/bureau-foundation/lottery/lib/version"
)

// statusResponse is the "status" action's result. lottery-status also
// prints it as JSON.
type statusResponse struct {
	Version       string  `json:"version"`
	Quorum        int     `json:"quorum"`
	Finished      []int   `json:"finished"`
	Completed     bool    `json:"completed"`
	Connections   int     `json:"connections"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

type winnersRequest struct {
	Agency int `cbor:"agency"`
}

// winnersResponse is the "winners" action's result. Agency is zero
// and Tally is set when no agency was requested.
type winnersResponse struct {
	Agency    int         `json:"agency,omitempty"`
	Documents []string    `json:"documents,omitempty"`
	Tally     map[int]int `json:"tally,omitempty"`
}

// statusActions serves the operator status socket.
type statusActions struct {
	server *Server
	lookup draw.Lookup
}

func (a *statusActions) register(socket *service.SocketServer) {
	socket.Handle("status", a.handleStatus)
	socket.Handle("winners", a.handleWinners)
}

func (a *statusActions) handleStatus(_ context.Context, _ []byte) (any, error) {
	return statusResponse{
		Version:       version.Short(),
		Quorum:        a.server.barrier.Quorum(),
		Finished:      a.server.barrier.Finished(),
		Completed:     a.server.barrier.IsCompleted(),
		Connections:   a.server.Connections(),
		UptimeSeconds: a.server.Uptime().Seconds(),
	}, nil
}

// handleWinners answers only after the draw, mirroring what agencies
// see.
func (a *statusActions) handleWinners(ctx context.Context, raw []byte) (any, error) {
	var request winnersRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("invalid winners request: %w", err)
	}
	if request.Agency < 0 {
		return nil, fmt.Errorf("agency must be positive, got %d", request.Agency)
	}

	completion := a.server.barrier
	if !completion.IsCompleted() {
		return nil, fmt.Errorf("draw not completed: %d of %d agencies finished",
			len(completion.Finished()), completion.Quorum())
	}

	if request.Agency == 0 {
		tally, err := a.lookup.Tally(ctx)
		if err != nil {
			return nil, err
		}
		return winnersResponse{Tally: tally}, nil
	}

	documents, err := a.lookup.Winners(ctx, request.Agency)
	if err != nil {
		return nil, err
	}
	return winnersResponse{Agency: request.Agency, Documents: documents}, nil
}
