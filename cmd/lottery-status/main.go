// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/lottery/lib/codec"
	"github.com/bureau-foundation/lottery/lib/config"
	"github.com/bureau-foundation/lottery/lib/process"
	"github.com/bureau-foundation/lottery/lib/service"
	"github.com/bureau-foundation/lottery/lib/version"
)

const requestTimeout = 10 * time.Second

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		process.Fatal(err)
	}
}

// status mirrors the server's "status" result.
type status struct {
	Version       string  `json:"version"`
	Quorum        int     `json:"quorum"`
	Finished      []int   `json:"finished"`
	Completed     bool    `json:"completed"`
	Connections   int     `json:"connections"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// winners mirrors the server's "winners" result.
type winners struct {
	Agency    int         `json:"agency,omitempty"`
	Documents []string    `json:"documents,omitempty"`
	Tally     map[int]int `json:"tally,omitempty"`
}

func run(args []string, stdout io.Writer) error {
	var (
		configPath  string
		socketPath  string
		agency      int
		raw         bool
		showVersion bool
	)

	flagSet := pflag.NewFlagSet("lottery-status", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to lottery.yaml (default: $LOTTERY_CONFIG, then built-in defaults)")
	flagSet.StringVar(&socketPath, "socket", "", "status socket path (overrides server.status_socket)")
	flagSet.IntVar(&agency, "agency", 0, "agency whose winners to list (winners command only)")
	flagSet.BoolVar(&raw, "raw", false, "print the CBOR response in diagnostic notation")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", process.ErrUsage, err)
	}
	if help, _ := flagSet.GetBool("help"); help {
		fmt.Fprintf(os.Stderr, "Usage: lottery-status [status|winners] [flags]\n\n%s", flagSet.FlagUsages())
		return nil
	}
	if showVersion {
		version.Fprint(stdout, "lottery-status")
		return nil
	}

	command := "status"
	switch positional := flagSet.Args(); len(positional) {
	case 0:
	case 1:
		command = positional[0]
	default:
		return fmt.Errorf("%w: unexpected argument %q", process.ErrUsage, positional[1])
	}
	if command != "status" && command != "winners" {
		return fmt.Errorf("%w: unknown command %q (want status or winners)", process.ErrUsage, command)
	}
	if flagSet.Changed("agency") && command != "winners" {
		return fmt.Errorf("%w: --agency applies only to the winners command", process.ErrUsage)
	}
	if agency < 0 {
		return fmt.Errorf("%w: --agency must be positive, got %d", process.ErrUsage, agency)
	}

	if !flagSet.Changed("socket") {
		cfg, err := config.Resolve(configPath)
		if err != nil {
			return err
		}
		socketPath = cfg.Server.StatusSocket
	}
	if socketPath == "" {
		return fmt.Errorf("%w: no status socket; pass --socket or set server.status_socket", process.ErrUsage)
	}

	var fields map[string]any
	if command == "winners" && agency > 0 {
		fields = map[string]any{"agency": agency}
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	data, err := service.NewClient(socketPath).CallRaw(ctx, command, fields)
	if err != nil {
		return err
	}

	if raw {
		diagnostic, err := codec.Diagnose(data)
		if err != nil {
			return fmt.Errorf("formatting response: %w", err)
		}
		fmt.Fprintln(stdout, diagnostic)
		return nil
	}

	var result any
	switch command {
	case "status":
		result = &status{}
	case "winners":
		result = &winners{}
	}
	if err := codec.Unmarshal(data, result); err != nil {
		return fmt.Errorf("decoding %s response: %w", command, err)
	}
	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}
