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

	"github.com/bureau-foundation/lottery/lib/agencyclient"
	"github.com/bureau-foundation/lottery/lib/config"
	"github.com/bureau-foundation/lottery/lib/logging"
	"github.com/bureau-foundation/lottery/lib/process"
	"github.com/bureau-foundation/lottery/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var (
		configPath  string
		agencyID    int
		server      string
		dataFile    string
		batchAmount int
		logLevel    string
		showVersion bool
	)

	flagSet := pflag.NewFlagSet("lottery-agency", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to lottery.yaml (default: $LOTTERY_CONFIG, then built-in defaults)")
	flagSet.IntVar(&agencyID, "id", 0, "agency id (overrides agency.id)")
	flagSet.StringVar(&server, "server", "", "lottery server host:port (overrides agency.server_address)")
	flagSet.StringVar(&dataFile, "data-file", "", "bets CSV file (overrides agency.data_file)")
	flagSet.IntVar(&batchAmount, "batch-max-amount", 0, "bets per BATCH message (overrides agency.batch_max_amount)")
	flagSet.StringVar(&logLevel, "log-level", "", "debug, info, warn, or error (overrides logging.level)")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", process.ErrUsage, err)
	}
	if help, _ := flagSet.GetBool("help"); help {
		fmt.Fprintf(os.Stderr, "Usage: lottery-agency [flags]\n\n%s", flagSet.FlagUsages())
		return nil
	}
	if showVersion {
		version.Print("lottery-agency")
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("%w: unexpected argument %q", process.ErrUsage, args[0])
	}

	cfg, err := config.Resolve(configPath)
	if err != nil {
		return err
	}
	if flagSet.Changed("id") {
		cfg.Agency.ID = agencyID
	}
	if flagSet.Changed("server") {
		cfg.Agency.ServerAddress = server
	}
	if flagSet.Changed("data-file") {
		cfg.Agency.DataFile = dataFile
	}
	if flagSet.Changed("batch-max-amount") {
		cfg.Agency.BatchMaxAmount = batchAmount
	}
	if flagSet.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.ValidateAgency(); err != nil {
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
	logger = logger.With("component", "lottery-agency")

	path := cfg.AgencyDataFile()
	bets, err := agencyclient.LoadBetsFile(path, cfg.Agency.ID, logger)
	if err != nil {
		return err
	}
	logger.Info("bets loaded", "agency", cfg.Agency.ID, "file", path, "count", len(bets))

	client, err := agencyclient.New(agencyclient.Config{
		Agency:         cfg.Agency.ID,
		ServerAddress:  cfg.Agency.ServerAddress,
		BatchMaxAmount: cfg.Agency.BatchMaxAmount,
		PollAttempts:   cfg.Agency.PollAttempts,
		PollInterval:   cfg.Agency.PollInterval,
		DialTimeout:    cfg.Agency.DialTimeout,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := client.Run(ctx, bets)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("interrupted", "sent", report.Sent)
			return nil
		}
		return err
	}

	logger.Info("draw results",
		"agency", cfg.Agency.ID,
		"winners", len(report.Winners),
		"accepted", report.Accepted,
		"rejected_batches", report.Rejected,
	)
	return nil
}
