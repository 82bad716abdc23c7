// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/bureau-foundation/lottery/lib/protocol"
)

func (d *dispatcher) handleBet(ctx context.Context, logger *slog.Logger, payload []byte) (*reply, error) {
	bet, err := protocol.DecodeBet(payload)
	if err != nil {
		return nil, fmt.Errorf("decoding BET: %w", err)
	}
	return d.persist(ctx, logger, []protocol.Bet{bet})
}

func (d *dispatcher) handleBatch(ctx context.Context, logger *slog.Logger, payload []byte) (*reply, error) {
	bets, err := protocol.DecodeBatch(payload)
	if err != nil {
		return nil, fmt.Errorf("decoding BATCH: %w", err)
	}
	if len(bets) == 0 {
		logger.Debug("empty batch received")
		return betResult(protocol.KindSuccess, "", "")
	}
	return d.persist(ctx, logger, bets)
}

// persist appends bets and builds the SUCCESS or ERROR reply naming the
// first bet. A storage failure is reported to the agency and leaves
// the session open.
func (d *dispatcher) persist(ctx context.Context, logger *slog.Logger, bets []protocol.Bet) (*reply, error) {
	first := bets[0]
	document, number := first.Document(), strconv.Itoa(first.Number())

	if err := d.store.Append(ctx, bets); err != nil {
		logger.Error("storing bets failed",
			"agency", first.Agency(),
			"count", len(bets),
			"error", err,
		)
		return betResult(protocol.KindError, document, number)
	}

	if len(bets) == 1 {
		logger.Info("bet stored",
			"agency", first.Agency(),
			"document", document,
			"number", number,
		)
	} else {
		logger.Info("batch stored", "agency", first.Agency(), "count", len(bets))
	}
	return betResult(protocol.KindSuccess, document, number)
}

func betResult(kind protocol.Kind, document, number string) (*reply, error) {
	payload, err := protocol.EncodeBetResult(document, number)
	if err != nil {
		return nil, fmt.Errorf("encoding %s reply: %w", kind, err)
	}
	return &reply{kind: kind, payload: payload}, nil
}

func (d *dispatcher) handleFinished(ctx context.Context, logger *slog.Logger, payload []byte) (*reply, error) {
	agency, err := protocol.DecodeAgency(payload)
	if err != nil {
		return &reply{kind: protocol.KindError, payload: protocol.EncodeAck(false)},
			fmt.Errorf("decoding FINISHED: %w", err)
	}

	if d.barrier.RegisterFinished(agency) {
		logger.Info("all agencies finished, draw completed",
			"agency", agency,
			"quorum", d.barrier.Quorum(),
		)
	} else {
		logger.Info("agency finished", "agency", agency)
	}
	return &reply{kind: protocol.KindSuccess, payload: protocol.EncodeAck(true)}, nil
}

func (d *dispatcher) handleWinnersQuery(ctx context.Context, logger *slog.Logger, payload []byte) (*reply, error) {
	agency, err := protocol.DecodeAgency(payload)
	if err != nil {
		return nil, fmt.Errorf("decoding WINNERS_QUERY: %w", err)
	}

	var documents []string
	if d.barrier.IsCompleted() {
		documents, err = d.winners.Winners(ctx, agency)
		if err != nil {
			logger.Error("winners lookup failed, answering with no winners",
				"agency", agency,
				"error", err,
			)
			documents = nil
		} else {
			logger.Info("winners sent", "agency", agency, "count", len(documents))
		}
	} else {
		logger.Debug("winners queried before the draw", "agency", agency)
	}

	response, err := protocol.EncodeWinners(documents)
	if err != nil {
		return nil, fmt.Errorf("encoding WINNERS_RESPONSE: %w", err)
	}
	return &reply{kind: protocol.KindWinnersResponse, payload: response}, nil
}
