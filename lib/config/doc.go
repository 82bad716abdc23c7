// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the lottery
// binaries.
//
// Configuration comes from a single file named by the --config flag
// (via [LoadFile]) or the LOTTERY_CONFIG environment variable (via
// [Load]). [Resolve] applies that precedence and falls back to
// [Default] when neither is given. There is no file discovery.
//
// The file may carry development and production sections that
// override storage and logging when [Config].Environment matches.
// Production without a section logs as JSON.
//
// Path fields (server.status_socket, storage.path, agency.data_file)
// expand ${HOME}, ${AGENCY_ID}, ${VAR}, and ${VAR:-default}. Command
// line flags are applied by each binary after loading.
//
// This package depends on no other lottery packages.
package config
