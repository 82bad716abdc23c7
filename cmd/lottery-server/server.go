// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/bureau-foundation/lottery/lib/barrier"
	"github.com/bureau-foundation/lottery/lib/betstore"
	"github.com/bureau-foundation/lottery/lib/clock"
	"github.com/bureau-foundation/lottery/lib/netutil"
)

// ServerConfig holds a Server's collaborators.
type ServerConfig struct {
	// Listener is the bound agency listener. The server closes it on
	// shutdown.
	Listener *net.TCPListener

	Store   betstore.Appender
	Winners WinnersLookup
	Barrier *barrier.Barrier

	// AcceptPollInterval bounds each Accept so shutdown is noticed.
	// Defaults to one second.
	AcceptPollInterval time.Duration

	// Clock computes accept deadlines. Defaults to clock.Real().
	Clock clock.Clock

	Logger *slog.Logger
}

// Server accepts agency connections and runs one session goroutine
// per connection.
type Server struct {
	listener     *net.TCPListener
	dispatcher   *dispatcher
	registry     *registry
	barrier      *barrier.Barrier
	pollInterval time.Duration
	clock        clock.Clock
	logger       *slog.Logger
	startedAt    time.Time

	sessions sync.WaitGroup
}

// NewServer builds a server from cfg.
func NewServer(cfg ServerConfig) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	timeSource := cfg.Clock
	if timeSource == nil {
		timeSource = clock.Real()
	}
	pollInterval := cfg.AcceptPollInterval
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	completion := cfg.Barrier
	if completion == nil {
		completion = barrier.New(barrier.Quorum)
	}

	return &Server{
		listener:     cfg.Listener,
		dispatcher:   newDispatcher(cfg.Store, cfg.Winners, completion, logger),
		registry:     newRegistry(logger),
		barrier:      completion,
		pollInterval: pollInterval,
		clock:        timeSource,
		logger:       logger,
		startedAt:    timeSource.Now(),
	}
}

// Addr returns the listener's address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Connections returns the number of open agency connections.
func (s *Server) Connections() int {
	return s.registry.Len()
}

// Uptime returns the time since the server was built.
func (s *Server) Uptime() time.Duration {
	return s.clock.Now().Sub(s.startedAt)
}

// Serve accepts connections until ctx is cancelled, then shuts down:
// stop accepting, close every agency connection, close the listener,
// and wait for the sessions to exit.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("accepting agency connections",
		"address", s.listener.Addr().String(),
		"quorum", s.barrier.Quorum(),
	)

	s.acceptLoop(ctx)

	s.logger.Info("shutting down", "open_connections", s.registry.Len())
	s.registry.CloseAll()
	if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		s.logger.Warn("closing listener failed", "error", err)
	}
	s.sessions.Wait()
	s.logger.Info("shutdown complete")
	return nil
}

func (s *Server) acceptLoop(ctx context.Context) {
	for ctx.Err() == nil {
		if err := s.listener.SetDeadline(s.clock.Now().Add(s.pollInterval)); err != nil {
			s.logger.Error("setting accept deadline failed", "error", err)
			return
		}

		conn, err := s.listener.AcceptTCP()
		if err != nil {
			if netutil.IsTimeout(err) {
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Error("accept failed", "error", err)
			select {
			case <-ctx.Done():
			case <-s.clock.After(s.pollInterval):
			}
			continue
		}

		s.registry.Register(conn)
		s.sessions.Add(1)
		go func() {
			defer s.sessions.Done()
			defer s.registry.Unregister(conn)
			defer conn.Close()
			s.dispatcher.serve(ctx, conn)
		}()
	}
}
