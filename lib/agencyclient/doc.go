// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package agencyclient is the agency side of the lottery protocol.
//
// An agency loads its bets from a headerless CSV file ([LoadBets]),
// splits them into BATCH messages that respect both the configured
// batch size and the frame payload limit ([SplitBatches]), and sends
// them over one connection, waiting for each SUCCESS or ERROR reply.
// It then announces FINISHED and polls WINNERS_QUERY until the server
// reports winners or the poll attempts run out ([Client.Run]).
//
// The server answers WINNERS_QUERY with an empty list both before the
// draw completes and when an agency simply has no winners, so the poll
// cannot tell the two apart. The client keeps polling on an empty
// answer and reports zero winners once its attempts are exhausted.
package agencyclient
