// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"fmt"
	"strconv"

	"github.com/bureau-foundation/lottery/lib/wire"
)

// ErrInvalidAgency means an agency id in a FINISHED or WINNERS_QUERY
// message is not a positive integer.
var ErrInvalidAgency = fmt.Errorf("protocol: invalid agency id: %w", wire.ErrViolation)

// Acknowledgment strings carried by SUCCESS and ERROR replies to a
// FINISHED notice.
const (
	AckOK    = "OK"
	AckError = "ERROR"
)

// ParseAgency parses an agency id. Ids are positive integers; "01" and
// "1" name the same agency.
func ParseAgency(s string) (int, error) {
	agency, err := strconv.Atoi(s)
	if err != nil || agency <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAgency, s)
	}
	return agency, nil
}

// EncodeAgency returns the payload of a FINISHED or WINNERS_QUERY
// message for agency.
func EncodeAgency(agency int) ([]byte, error) {
	return wire.EncodeString(strconv.Itoa(agency))
}

// DecodeAgency decodes the payload of a FINISHED or WINNERS_QUERY
// message.
func DecodeAgency(payload []byte) (int, error) {
	raw, offset, err := wire.DecodeString(payload, 0)
	if err != nil {
		return 0, fmt.Errorf("decoding agency id: %w", err)
	}
	if offset != len(payload) {
		return 0, fmt.Errorf("%w: %d trailing bytes after agency id", ErrInvalidAgency, len(payload)-offset)
	}
	return ParseAgency(raw)
}

// EncodeBetResult returns the payload of a SUCCESS or ERROR reply to a
// BET or BATCH: the document and number identifying the first record.
func EncodeBetResult(document, number string) ([]byte, error) {
	payload, err := wire.EncodeString(document)
	if err != nil {
		return nil, err
	}
	return wire.AppendString(payload, number)
}

// DecodeBetResult decodes the payload of a SUCCESS or ERROR reply to a
// BET or BATCH.
func DecodeBetResult(payload []byte) (document, number string, err error) {
	document, offset, err := wire.DecodeString(payload, 0)
	if err != nil {
		return "", "", fmt.Errorf("decoding result document: %w", err)
	}
	number, _, err = wire.DecodeString(payload, offset)
	if err != nil {
		return "", "", fmt.Errorf("decoding result number: %w", err)
	}
	return document, number, nil
}

// EncodeAck returns the payload of a reply to a FINISHED notice.
func EncodeAck(ok bool) []byte {
	status := AckError
	if ok {
		status = AckOK
	}
	// Both strings are far below the length limit.
	payload, _ := wire.EncodeString(status)
	return payload
}

// DecodeAck decodes the payload of a reply to a FINISHED notice.
func DecodeAck(payload []byte) (bool, error) {
	status, _, err := wire.DecodeString(payload, 0)
	if err != nil {
		return false, fmt.Errorf("decoding acknowledgment: %w", err)
	}
	switch status {
	case AckOK:
		return true, nil
	case AckError:
		return false, nil
	}
	return false, fmt.Errorf("unknown acknowledgment %q: %w", status, wire.ErrViolation)
}

// EncodeWinners returns the payload of a WINNERS_RESPONSE: a u32 count
// followed by that many documents.
func EncodeWinners(documents []string) ([]byte, error) {
	payload := wire.AppendCount(nil, uint32(len(documents)))
	var err error
	for _, document := range documents {
		payload, err = wire.AppendString(payload, document)
		if err != nil {
			return nil, fmt.Errorf("encoding winner document: %w", err)
		}
	}
	return payload, nil
}

// DecodeWinners decodes the payload of a WINNERS_RESPONSE.
func DecodeWinners(payload []byte) ([]string, error) {
	count, offset, err := wire.DecodeCount(payload, 0)
	if err != nil {
		return nil, fmt.Errorf("decoding winners count: %w", err)
	}
	documents := make([]string, 0, min(int(count), (len(payload)-offset)/wire.StringPrefixSize))
	for i := range int(count) {
		var document string
		document, offset, err = wire.DecodeString(payload, offset)
		if err != nil {
			return nil, fmt.Errorf("decoding winner %d of %d: %w", i+1, count, err)
		}
		documents = append(documents, document)
	}
	return documents, nil
}
