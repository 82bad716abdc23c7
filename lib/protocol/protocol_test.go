// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/lottery/lib/wire"
)

func mustParseBet(t *testing.T, fields ...string) Bet {
	t.Helper()
	if len(fields) != betFieldCount {
		t.Fatalf("mustParseBet needs %d fields, got %d", betFieldCount, len(fields))
	}
	bet, err := ParseBet(fields[0], fields[1], fields[2], fields[3], fields[4], fields[5])
	if err != nil {
		t.Fatalf("ParseBet(%v): %v", fields, err)
	}
	return bet
}

// appendRawBet encodes six arbitrary strings as a bet record, bypassing
// validation, so tests can put invalid values on the wire.
func appendRawBet(t *testing.T, dst []byte, fields ...string) []byte {
	t.Helper()
	for _, field := range fields {
		var err error
		dst, err = wire.AppendString(dst, field)
		if err != nil {
			t.Fatalf("AppendString: %v", err)
		}
	}
	return dst
}

func TestKindCatalog(t *testing.T) {
	for _, kind := range ClientKinds() {
		if !kind.Valid() || !kind.FromClient() {
			t.Errorf("%s: Valid=%v FromClient=%v", kind, kind.Valid(), kind.FromClient())
		}
	}
	for _, kind := range []Kind{KindSuccess, KindError, KindWinnersResponse} {
		if !kind.Valid() || kind.FromClient() {
			t.Errorf("%s: Valid=%v FromClient=%v", kind, kind.Valid(), kind.FromClient())
		}
	}
	if Kind(0x42).Valid() {
		t.Error("Kind(0x42) is valid")
	}
	if got := Kind(0x42).String(); got != "UNKNOWN(0x42)" {
		t.Errorf("Kind(0x42).String() = %q", got)
	}
	if KindBet != 0x01 || KindSuccess != 0x03 || KindError != 0x04 {
		t.Errorf("wire values changed: BET=%d SUCCESS=%d ERROR=%d", KindBet, KindSuccess, KindError)
	}
}

func TestBetRoundTrip(t *testing.T) {
	tests := [][]string{
		{"1", "Juan", "Perez", "12345678", "1990-01-01", "7574"},
		{"5", "José", "Pérez Ñandú", "30904465", "1999-03-17", "2201"},
		{"3", "", "", "", "2000-02-29", "1"},
	}
	for _, fields := range tests {
		bet := mustParseBet(t, fields...)
		payload, err := EncodeBet(bet)
		if err != nil {
			t.Fatalf("EncodeBet: %v", err)
		}
		if len(payload) != bet.EncodedSize() {
			t.Errorf("payload is %d bytes, EncodedSize says %d", len(payload), bet.EncodedSize())
		}
		decoded, err := DecodeBet(payload)
		if err != nil {
			t.Fatalf("DecodeBet: %v", err)
		}
		if !decoded.Equal(bet) {
			t.Errorf("round trip: got %v, want %v", decoded.Fields(), bet.Fields())
		}
		if decoded.Fields() != [betFieldCount]string(fields) {
			t.Errorf("Fields() = %v, want %v", decoded.Fields(), fields)
		}
	}
}

func TestBetAccessors(t *testing.T) {
	bet := mustParseBet(t, "1", "Juan", "Perez", "12345678", "1990-01-01", "7574")
	if bet.Agency() != 1 || bet.Number() != 7574 || bet.Document() != "12345678" {
		t.Errorf("accessors: agency=%d number=%d document=%q", bet.Agency(), bet.Number(), bet.Document())
	}
	if bet.FirstName() != "Juan" || bet.LastName() != "Perez" {
		t.Errorf("names: %q %q", bet.FirstName(), bet.LastName())
	}
	want := time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC)
	if !bet.Birthdate().Equal(want) {
		t.Errorf("Birthdate = %v, want %v", bet.Birthdate(), want)
	}
}

func TestNewBetNormalizesBirthdate(t *testing.T) {
	local := time.Date(1985, time.June, 30, 23, 15, 0, 0, time.FixedZone("ART", -3*3600))
	bet, err := NewBet(2, "Ana", "Gomez", "1", local, 10)
	if err != nil {
		t.Fatalf("NewBet: %v", err)
	}
	if got := bet.Fields()[4]; got != "1985-06-30" {
		t.Errorf("birthdate = %q, want 1985-06-30", got)
	}
}

func TestParseBetRejectsInvalidFields(t *testing.T) {
	tests := []struct {
		name   string
		fields []string
	}{
		{"agency not integer", []string{"one", "A", "B", "1", "1990-01-01", "1"}},
		{"agency zero", []string{"0", "A", "B", "1", "1990-01-01", "1"}},
		{"agency negative", []string{"-3", "A", "B", "1", "1990-01-01", "1"}},
		{"number not integer", []string{"1", "A", "B", "1", "1990-01-01", "7.5"}},
		{"number zero", []string{"1", "A", "B", "1", "1990-01-01", "0"}},
		{"birthdate not ISO", []string{"1", "A", "B", "1", "01/01/1990", "1"}},
		{"birthdate impossible", []string{"1", "A", "B", "1", "1990-02-30", "1"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := test.fields
			_, err := ParseBet(f[0], f[1], f[2], f[3], f[4], f[5])
			if !errors.Is(err, ErrMalformedBet) {
				t.Fatalf("error = %v, want ErrMalformedBet", err)
			}
			if !wire.IsViolation(err) {
				t.Error("malformed bet is not a protocol violation")
			}
		})
	}
}

func TestDecodeBetFailures(t *testing.T) {
	valid, err := EncodeBet(mustParseBet(t, "1", "Juan", "Perez", "12345678", "1990-01-01", "7574"))
	if err != nil {
		t.Fatalf("EncodeBet: %v", err)
	}

	t.Run("truncated", func(t *testing.T) {
		for cut := 0; cut < len(valid); cut++ {
			if _, err := DecodeBet(valid[:cut]); !errors.Is(err, wire.ErrTruncated) {
				t.Fatalf("cut at %d: error = %v, want ErrTruncated", cut, err)
			}
		}
	})
	t.Run("trailing bytes", func(t *testing.T) {
		if _, err := DecodeBet(append(valid[:len(valid):len(valid)], 0x00)); !errors.Is(err, ErrMalformedBet) {
			t.Fatalf("error = %v, want ErrMalformedBet", err)
		}
	})
	t.Run("bad number", func(t *testing.T) {
		payload := appendRawBet(t, nil, "1", "Juan", "Perez", "12345678", "1990-01-01", "seven")
		if _, err := DecodeBet(payload); !errors.Is(err, ErrMalformedBet) {
			t.Fatalf("error = %v, want ErrMalformedBet", err)
		}
	})
}

func TestBatchRoundTrip(t *testing.T) {
	bets := []Bet{
		mustParseBet(t, "2", "Ana", "Gomez", "11111111", "1980-05-05", "1"),
		mustParseBet(t, "2", "Luis", "Diaz", "22222222", "1975-12-31", "7574"),
		mustParseBet(t, "2", "Eva", "Sosa", "33333333", "2001-07-09", "9999"),
	}
	payload, err := EncodeBatch(bets)
	if err != nil {
		t.Fatalf("EncodeBatch: %v", err)
	}
	decoded, err := DecodeBatch(payload)
	if err != nil {
		t.Fatalf("DecodeBatch: %v", err)
	}
	if len(decoded) != len(bets) {
		t.Fatalf("decoded %d bets, want %d", len(decoded), len(bets))
	}
	for i := range bets {
		if !decoded[i].Equal(bets[i]) {
			t.Errorf("bet %d: got %v, want %v", i, decoded[i], bets[i])
		}
	}
}

func TestBatchEmpty(t *testing.T) {
	payload, err := EncodeBatch(nil)
	if err != nil {
		t.Fatalf("EncodeBatch: %v", err)
	}
	if len(payload) != wire.CountSize {
		t.Errorf("empty batch is %d bytes, want %d", len(payload), wire.CountSize)
	}
	decoded, err := DecodeBatch(payload)
	if err != nil {
		t.Fatalf("DecodeBatch: %v", err)
	}
	if len(decoded) != 0 {
		t.Errorf("decoded %d bets from an empty batch", len(decoded))
	}
}

func TestBatchIsAtomic(t *testing.T) {
	payload := wire.AppendCount(nil, 3)
	payload = appendRawBet(t, payload, "1", "A", "B", "1", "1990-01-01", "1")
	payload = appendRawBet(t, payload, "1", "C", "D", "2", "1990-13-01", "2")
	payload = appendRawBet(t, payload, "1", "E", "F", "3", "1990-01-01", "3")

	bets, err := DecodeBatch(payload)
	if !errors.Is(err, ErrMalformedBet) {
		t.Fatalf("error = %v, want ErrMalformedBet", err)
	}
	if bets != nil {
		t.Errorf("failed batch returned %d bets", len(bets))
	}
}

func TestBatchCountExceedsRecords(t *testing.T) {
	payload := wire.AppendCount(nil, 1<<31)
	payload = appendRawBet(t, payload, "1", "A", "B", "1", "1990-01-01", "1")

	if _, err := DecodeBatch(payload); !errors.Is(err, wire.ErrTruncated) {
		t.Fatalf("error = %v, want ErrTruncated", err)
	}
	if _, err := DecodeBatch([]byte{0x00, 0x00}); !errors.Is(err, wire.ErrTruncated) {
		t.Fatalf("short count error = %v, want ErrTruncated", err)
	}
}

func TestAgencyPayloads(t *testing.T) {
	payload, err := EncodeAgency(4)
	if err != nil {
		t.Fatalf("EncodeAgency: %v", err)
	}
	agency, err := DecodeAgency(payload)
	if err != nil || agency != 4 {
		t.Fatalf("DecodeAgency = (%d, %v), want (4, nil)", agency, err)
	}

	padded, _ := wire.EncodeString("04")
	if agency, err := DecodeAgency(padded); err != nil || agency != 4 {
		t.Errorf("DecodeAgency(\"04\") = (%d, %v), want (4, nil)", agency, err)
	}

	for _, raw := range []string{"", "zero", "0", "-1"} {
		payload, _ := wire.EncodeString(raw)
		if _, err := DecodeAgency(payload); !errors.Is(err, ErrInvalidAgency) {
			t.Errorf("DecodeAgency(%q) error = %v, want ErrInvalidAgency", raw, err)
		}
	}
	if _, err := DecodeAgency([]byte{0x00}); !errors.Is(err, wire.ErrTruncated) {
		t.Errorf("truncated agency error = %v, want ErrTruncated", err)
	}
}

func TestBetResultPayload(t *testing.T) {
	payload, err := EncodeBetResult("12345678", "7574")
	if err != nil {
		t.Fatalf("EncodeBetResult: %v", err)
	}
	document, number, err := DecodeBetResult(payload)
	if err != nil {
		t.Fatalf("DecodeBetResult: %v", err)
	}
	if document != "12345678" || number != "7574" {
		t.Errorf("DecodeBetResult = (%q, %q)", document, number)
	}
}

func TestAckPayload(t *testing.T) {
	for _, ok := range []bool{true, false} {
		got, err := DecodeAck(EncodeAck(ok))
		if err != nil || got != ok {
			t.Errorf("DecodeAck(EncodeAck(%v)) = (%v, %v)", ok, got, err)
		}
	}
	unknown, _ := wire.EncodeString("MAYBE")
	if _, err := DecodeAck(unknown); !wire.IsViolation(err) {
		t.Errorf("DecodeAck(MAYBE) error = %v, want a violation", err)
	}
}

func TestWinnersPayload(t *testing.T) {
	tests := [][]string{
		{},
		{"30904465"},
		{"30904465", "22222222", strings.Repeat("9", 40)},
	}
	for _, documents := range tests {
		payload, err := EncodeWinners(documents)
		if err != nil {
			t.Fatalf("EncodeWinners: %v", err)
		}
		decoded, err := DecodeWinners(payload)
		if err != nil {
			t.Fatalf("DecodeWinners: %v", err)
		}
		if strings.Join(decoded, ",") != strings.Join(documents, ",") || len(decoded) != len(documents) {
			t.Errorf("DecodeWinners = %v, want %v", decoded, documents)
		}
	}
}
