// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/bureau-foundation/lottery/lib/barrier"
	"github.com/bureau-foundation/lottery/lib/betstore"
	"github.com/bureau-foundation/lottery/lib/protocol"
	"github.com/bureau-foundation/lottery/lib/wire"
)

// WinnersLookup computes an agency's winning documents.
type WinnersLookup interface {
	Winners(ctx context.Context, agency int) ([]string, error)
}

// reply is a message a handler wants sent back to the agency.
type reply struct {
	kind    protocol.Kind
	payload []byte
}

// handlerFunc processes one message payload. A non-nil reply is sent
// first; a non-nil error then ends the session.
type handlerFunc func(ctx context.Context, logger *slog.Logger, payload []byte) (*reply, error)

// dispatcher owns the per-kind handlers and the collaborators they
// share across sessions.
type dispatcher struct {
	store   betstore.Appender
	winners WinnersLookup
	barrier *barrier.Barrier
	logger  *slog.Logger

	handlers map[protocol.Kind]handlerFunc
}

func newDispatcher(store betstore.Appender, winners WinnersLookup, completion *barrier.Barrier, logger *slog.Logger) *dispatcher {
	d := &dispatcher{
		store:   store,
		winners: winners,
		barrier: completion,
		logger:  logger,
	}
	d.handlers = map[protocol.Kind]handlerFunc{
		protocol.KindBet:          d.handleBet,
		protocol.KindBatch:        d.handleBatch,
		protocol.KindFinished:     d.handleFinished,
		protocol.KindWinnersQuery: d.handleWinnersQuery,
	}
	return d
}

// errUnknownKind ends a session that sent a kind the server does not
// accept from agencies.
var errUnknownKind = fmt.Errorf("unknown message kind: %w", wire.ErrViolation)

// serve runs one agency session until the peer disconnects, a message
// violates the protocol, or an I/O fault occurs. The caller closes
// conn.
func (d *dispatcher) serve(ctx context.Context, conn net.Conn) {
	logger := d.logger.With("remote", conn.RemoteAddr().String())
	logger.Debug("agency connected")

	reader := bufio.NewReaderSize(conn, wire.HeaderSize+wire.MaxPayloadSize+1)
	for {
		message, err := wire.ReceiveMessage(reader)
		if err != nil {
			endSession(logger, err)
			return
		}

		kind := protocol.Kind(message.Kind)
		handler, ok := d.handlers[kind]
		if !ok {
			endSession(logger, fmt.Errorf("%s: %w", kind, errUnknownKind))
			return
		}

		response, err := handler(ctx, logger, message.Payload)
		if response != nil {
			if sendErr := wire.SendMessage(conn, byte(response.kind), response.payload); sendErr != nil {
				endSession(logger, fmt.Errorf("sending %s: %w", response.kind, sendErr))
				return
			}
		}
		if err != nil {
			endSession(logger, fmt.Errorf("handling %s: %w", kind, err))
			return
		}
	}
}

// endSession logs why a session ended at a level matching the cause.
func endSession(logger *slog.Logger, err error) {
	switch {
	case wire.IsClosed(err):
		logger.Debug("agency disconnected")
	case wire.IsViolation(err):
		logger.Warn("protocol violation, closing connection", "error", err)
	case errors.Is(err, net.ErrClosed):
		logger.Debug("connection closed by server")
	default:
		logger.Error("connection failed", "error", err)
	}
}
