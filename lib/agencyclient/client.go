// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package agencyclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/bureau-foundation/lottery/lib/clock"
	"github.com/bureau-foundation/lottery/lib/protocol"
	"github.com/bureau-foundation/lottery/lib/wire"
)

// DialFunc opens the connection to the lottery server.
type DialFunc func(ctx context.Context, address string) (net.Conn, error)

// Config configures a Client.
type Config struct {
	// Agency is this agency's positive id.
	Agency int

	// ServerAddress is the lottery server's host:port.
	ServerAddress string

	// BatchMaxAmount caps the bets per BATCH message.
	BatchMaxAmount int

	// PollAttempts is how many WINNERS_QUERY messages are sent before
	// giving up; PollInterval separates them.
	PollAttempts int
	PollInterval time.Duration

	// DialTimeout bounds the TCP connect when Dial is nil.
	DialTimeout time.Duration

	// Dial replaces the TCP dialer. Tests use it to hand the client
	// one end of a net.Pipe.
	Dial DialFunc

	// Clock paces the winners poll. Defaults to clock.Real().
	Clock clock.Clock

	Logger *slog.Logger
}

// Report summarizes one run.
type Report struct {
	// Sent and Accepted count bets; Rejected counts batches the server
	// answered with ERROR.
	Sent     int
	Accepted int
	Rejected int

	// Winners holds the agency's winning documents. Empty if the poll
	// ran out of attempts.
	Winners []string

	// PollAttempts is the number of WINNERS_QUERY messages sent.
	PollAttempts int
}

// Client submits an agency's bets and collects its winners.
type Client struct {
	config Config
	clock  clock.Clock
	logger *slog.Logger
}

// New validates cfg and returns a Client.
func New(cfg Config) (*Client, error) {
	var errs []error
	if cfg.Agency <= 0 {
		errs = append(errs, fmt.Errorf("agency must be positive, got %d", cfg.Agency))
	}
	if cfg.ServerAddress == "" && cfg.Dial == nil {
		errs = append(errs, errors.New("server address is required"))
	}
	if cfg.BatchMaxAmount <= 0 {
		errs = append(errs, fmt.Errorf("batch max amount must be positive, got %d", cfg.BatchMaxAmount))
	}
	if cfg.PollAttempts <= 0 {
		errs = append(errs, fmt.Errorf("poll attempts must be positive, got %d", cfg.PollAttempts))
	}
	if cfg.PollInterval < 0 {
		errs = append(errs, fmt.Errorf("poll interval must not be negative, got %v", cfg.PollInterval))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("agencyclient: %w", err)
	}

	if cfg.Dial == nil {
		dialer := net.Dialer{Timeout: cfg.DialTimeout}
		cfg.Dial = func(ctx context.Context, address string) (net.Conn, error) {
			return dialer.DialContext(ctx, "tcp", address)
		}
	}
	timeSource := cfg.Clock
	if timeSource == nil {
		timeSource = clock.Real()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		config: cfg,
		clock:  timeSource,
		logger: logger.With("agency", cfg.Agency),
	}, nil
}

// Run connects to the server, sends bets in batches, announces
// FINISHED, and polls for winners. Cancelling ctx closes the
// connection and aborts the run.
func (c *Client) Run(ctx context.Context, bets []protocol.Bet) (Report, error) {
	var report Report

	batches, err := SplitBatches(bets, c.config.BatchMaxAmount)
	if err != nil {
		return report, err
	}

	conn, err := c.config.Dial(ctx, c.config.ServerAddress)
	if err != nil {
		return report, fmt.Errorf("connecting to %s: %w", c.config.ServerAddress, err)
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	c.logger.Info("connected", "server", conn.RemoteAddr().String(), "bets", len(bets), "batches", len(batches))

	for i, batch := range batches {
		accepted, err := c.sendBatch(conn, batch)
		if err != nil {
			return report, c.interrupted(ctx, fmt.Errorf("batch %d of %d: %w", i+1, len(batches), err))
		}
		report.Sent += len(batch)
		if accepted {
			report.Accepted += len(batch)
		} else {
			report.Rejected++
		}
	}
	c.logger.Info("bets sent",
		"sent", report.Sent,
		"accepted", report.Accepted,
		"rejected_batches", report.Rejected,
	)

	if err := c.finish(conn); err != nil {
		return report, c.interrupted(ctx, err)
	}

	report.Winners, report.PollAttempts, err = c.pollWinners(ctx, conn)
	if err != nil {
		return report, c.interrupted(ctx, err)
	}
	c.logger.Info("winners received", "count", len(report.Winners), "attempts", report.PollAttempts)
	return report, nil
}

// interrupted prefers the context error when cancellation closed the
// connection underneath an operation.
func (c *Client) interrupted(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w (%v)", ctx.Err(), err)
	}
	return err
}

// sendBatch sends one BATCH and reports whether the server stored it.
func (c *Client) sendBatch(conn net.Conn, batch []protocol.Bet) (bool, error) {
	payload, err := protocol.EncodeBatch(batch)
	if err != nil {
		return false, err
	}
	if err := wire.SendMessage(conn, byte(protocol.KindBatch), payload); err != nil {
		return false, fmt.Errorf("sending BATCH: %w", err)
	}

	message, err := wire.ReceiveMessage(conn)
	if err != nil {
		return false, fmt.Errorf("receiving BATCH reply: %w", err)
	}
	kind := protocol.Kind(message.Kind)
	if kind != protocol.KindSuccess && kind != protocol.KindError {
		return false, fmt.Errorf("unexpected %s reply to BATCH: %w", kind, wire.ErrViolation)
	}
	document, number, err := protocol.DecodeBetResult(message.Payload)
	if err != nil {
		return false, err
	}

	if kind == protocol.KindError {
		c.logger.Error("batch rejected", "count", len(batch), "document", document, "number", number)
		return false, nil
	}
	c.logger.Debug("batch stored", "count", len(batch), "document", document, "number", number)
	return true, nil
}

func (c *Client) finish(conn net.Conn) error {
	payload, err := protocol.EncodeAgency(c.config.Agency)
	if err != nil {
		return err
	}
	if err := wire.SendMessage(conn, byte(protocol.KindFinished), payload); err != nil {
		return fmt.Errorf("sending FINISHED: %w", err)
	}

	message, err := wire.ReceiveMessage(conn)
	if err != nil {
		return fmt.Errorf("receiving FINISHED reply: %w", err)
	}
	ok, err := protocol.DecodeAck(message.Payload)
	if err != nil {
		return err
	}
	if protocol.Kind(message.Kind) != protocol.KindSuccess || !ok {
		return fmt.Errorf("server rejected FINISHED for agency %d", c.config.Agency)
	}
	c.logger.Info("finished notice acknowledged")
	return nil
}

// pollWinners sends WINNERS_QUERY until a non-empty answer arrives or
// the attempts run out.
func (c *Client) pollWinners(ctx context.Context, conn net.Conn) ([]string, int, error) {
	payload, err := protocol.EncodeAgency(c.config.Agency)
	if err != nil {
		return nil, 0, err
	}

	for attempt := 1; ; attempt++ {
		if err := wire.SendMessage(conn, byte(protocol.KindWinnersQuery), payload); err != nil {
			return nil, attempt, fmt.Errorf("sending WINNERS_QUERY: %w", err)
		}
		message, err := wire.ReceiveMessage(conn)
		if err != nil {
			return nil, attempt, fmt.Errorf("receiving WINNERS_RESPONSE: %w", err)
		}
		if kind := protocol.Kind(message.Kind); kind != protocol.KindWinnersResponse {
			return nil, attempt, fmt.Errorf("unexpected %s reply to WINNERS_QUERY: %w", kind, wire.ErrViolation)
		}
		documents, err := protocol.DecodeWinners(message.Payload)
		if err != nil {
			return nil, attempt, err
		}

		if len(documents) > 0 || attempt == c.config.PollAttempts {
			return documents, attempt, nil
		}
		c.logger.Debug("no winners yet", "attempt", attempt, "of", c.config.PollAttempts)

		select {
		case <-ctx.Done():
			return nil, attempt, ctx.Err()
		case <-c.clock.After(c.config.PollInterval):
		}
	}
}
