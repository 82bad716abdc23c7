// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// lottery-agency submits one agency's bets to the lottery server.
//
// It reads the agency's headerless CSV file (first name, last name,
// document, birthdate, number), sends the bets in BATCH messages over
// one connection, announces FINISHED, and polls for the agency's
// winners once every agency has finished:
//
//	lottery-agency --id 3 --server lottery:12345
//	lottery-agency --config /etc/lottery/agency.yaml
//
// The agency id and data file come from the agency section of the
// config file; flags override them. Without --data-file the bets are
// read from ${LOTTERY_DATA_DIR:-.data}/agency-<id>.csv.
package main
