// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/lottery/lib/barrier"
	"github.com/bureau-foundation/lottery/lib/betstore"
	"github.com/bureau-foundation/lottery/lib/clock"
	"github.com/bureau-foundation/lottery/lib/config"
	"github.com/bureau-foundation/lottery/lib/draw"
	"github.com/bureau-foundation/lottery/lib/logging"
	"github.com/bureau-foundation/lottery/lib/netutil"
	"github.com/bureau-foundation/lottery/lib/process"
	"github.com/bureau-foundation/lottery/lib/service"
	"github.com/bureau-foundation/lottery/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var (
		configPath   string
		address      string
		backlog      int
		logLevel     string
		statusSocket string
		showVersion  bool
	)

	flagSet := pflag.NewFlagSet("lottery-server", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to lottery.yaml (default: $LOTTERY_CONFIG, then built-in defaults)")
	flagSet.StringVar(&address, "address", "", "TCP listen address (overrides server.address)")
	flagSet.IntVar(&backlog, "backlog", 0, "listen backlog (overrides server.listen_backlog)")
	flagSet.StringVar(&logLevel, "log-level", "", "debug, info, warn, or error (overrides logging.level)")
	flagSet.StringVar(&statusSocket, "status-socket", "", "Unix socket for lottery-status (overrides server.status_socket)")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", process.ErrUsage, err)
	}
	if help, _ := flagSet.GetBool("help"); help {
		fmt.Fprintf(os.Stderr, "Usage: lottery-server [flags]\n\n%s", flagSet.FlagUsages())
		return nil
	}
	if showVersion {
		version.Print("lottery-server")
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("%w: unexpected argument %q", process.ErrUsage, args[0])
	}

	cfg, err := config.Resolve(configPath)
	if err != nil {
		return err
	}
	if flagSet.Changed("address") {
		cfg.Server.Address = address
	}
	if flagSet.Changed("backlog") {
		cfg.Server.ListenBacklog = backlog
	}
	if flagSet.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if flagSet.Changed("status-socket") {
		cfg.Server.StatusSocket = statusSocket
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	logger, err := logging.New(os.Stderr, level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	logger = logger.With("component", "lottery-server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := betstore.Open(betstore.Options{
		Backend:  cfg.Storage.Backend,
		Path:     cfg.Storage.Path,
		PoolSize: cfg.Storage.PoolSize,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("closing bet store failed", "error", err)
		}
	}()
	if cfg.Storage.ResetOnStart {
		if err := store.Reset(ctx); err != nil {
			return err
		}
	}

	listener, err := netutil.ListenTCP(cfg.Server.Address, cfg.Server.ListenBacklog)
	if err != nil {
		return err
	}

	lookup := draw.Lookup{Scanner: store}
	server := NewServer(ServerConfig{
		Listener:           listener,
		Store:              store,
		Winners:            lookup,
		Barrier:            barrier.New(barrier.Quorum),
		AcceptPollInterval: cfg.Server.AcceptPollInterval,
		Clock:              clock.Real(),
		Logger:             logger,
	})

	statusDone := make(chan error, 1)
	if cfg.Server.StatusSocket != "" {
		socket := service.NewSocketServer(cfg.Server.StatusSocket, logger)
		actions := &statusActions{server: server, lookup: lookup}
		actions.register(socket)
		go func() {
			statusDone <- socket.Serve(ctx)
		}()
	} else {
		statusDone <- nil
	}

	logger.Info("lottery server starting",
		"version", version.Info(),
		"backend", cfg.Storage.Backend,
		"store", cfg.Storage.Path,
		"backlog", cfg.Server.ListenBacklog,
	)

	if err := server.Serve(ctx); err != nil {
		return err
	}
	if err := <-statusDone; err != nil {
		logger.Error("status socket failed", "error", err)
	}
	return nil
}
