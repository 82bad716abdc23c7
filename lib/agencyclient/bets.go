// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package agencyclient

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/bureau-foundation/lottery/lib/protocol"
)

// recordFields is the column count of an agency CSV row: first name,
// last name, document, birthdate, number.
const recordFields = 5

// LoadBets reads an agency's bets from r. Rows are first_name,
// last_name, document, birthdate, number with no header. Rows with
// fewer than five columns, an empty field, or a value the protocol
// would reject are skipped with a warning. A CSV syntax error fails
// the load.
func LoadBets(r io.Reader, agency int, logger *slog.Logger) ([]protocol.Bet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	agencyField := strconv.Itoa(agency)
	var bets []protocol.Bet
	skipped := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading agency %d bets: %w", agency, err)
		}
		line, _ := reader.FieldPos(0)

		if len(record) < recordFields {
			logger.Warn("skipping incomplete bet row", "line", line, "columns", len(record))
			skipped++
			continue
		}
		var fields [recordFields]string
		for i := range fields {
			fields[i] = strings.TrimSpace(record[i])
		}
		if blank(fields[:]) {
			logger.Warn("skipping bet row with an empty field", "line", line)
			skipped++
			continue
		}

		bet, err := protocol.ParseBet(agencyField, fields[0], fields[1], fields[2], fields[3], fields[4])
		if err != nil {
			logger.Warn("skipping invalid bet row", "line", line, "error", err)
			skipped++
			continue
		}
		bets = append(bets, bet)
	}

	logger.Debug("bets loaded", "agency", agency, "count", len(bets), "skipped", skipped)
	return bets, nil
}

// LoadBetsFile is LoadBets over the file at path.
func LoadBetsFile(path string, agency int, logger *slog.Logger) ([]protocol.Bet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening bets file: %w", err)
	}
	defer file.Close()

	bets, err := LoadBets(file, agency, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bets, nil
}

func blank(fields []string) bool {
	for _, field := range fields {
		if field == "" {
			return true
		}
	}
	return false
}
