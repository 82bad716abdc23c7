// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"fmt"
	"strconv"
	"time"

	"github.com/bureau-foundation/lottery/lib/wire"
)

// ErrMalformedBet means a bet record decoded structurally but one of
// its fields is unusable: a non-positive or non-integer agency or
// number, or a birthdate that is not a YYYY-MM-DD date. It is a
// protocol violation.
var ErrMalformedBet = fmt.Errorf("protocol: malformed bet: %w", wire.ErrViolation)

// DateLayout is the ISO-8601 calendar date format used for birthdates
// on the wire and in storage.
const DateLayout = time.DateOnly

// betFieldCount is the number of string fields in a bet record.
const betFieldCount = 6

// minBetSize is the encoded size of a bet whose strings are all empty.
// It bounds how many records a batch payload can possibly hold.
const minBetSize = betFieldCount * wire.StringPrefixSize

// Bet is one wager placed through an agency. A Bet can only be built
// by [NewBet] or [ParseBet], so every Bet in the program has a
// positive agency and number and a valid birthdate. Bet is a value
// type; copies share nothing.
type Bet struct {
	agency    int
	firstName string
	lastName  string
	document  string
	birthdate time.Time
	number    int
}

// NewBet validates and builds a bet from typed fields. The birthdate
// is truncated to its calendar date in UTC.
func NewBet(agency int, firstName, lastName, document string, birthdate time.Time, number int) (Bet, error) {
	if agency <= 0 {
		return Bet{}, fmt.Errorf("%w: agency %d is not positive", ErrMalformedBet, agency)
	}
	if number <= 0 {
		return Bet{}, fmt.Errorf("%w: number %d is not positive", ErrMalformedBet, number)
	}
	if birthdate.IsZero() {
		return Bet{}, fmt.Errorf("%w: missing birthdate", ErrMalformedBet)
	}
	year, month, day := birthdate.Date()
	return Bet{
		agency:    agency,
		firstName: firstName,
		lastName:  lastName,
		document:  document,
		birthdate: time.Date(year, month, day, 0, 0, 0, 0, time.UTC),
		number:    number,
	}, nil
}

// ParseBet validates and builds a bet from the string form used on the
// wire and in agency CSV files.
func ParseBet(agency, firstName, lastName, document, birthdate, number string) (Bet, error) {
	agencyID, err := strconv.Atoi(agency)
	if err != nil {
		return Bet{}, fmt.Errorf("%w: agency %q is not an integer", ErrMalformedBet, agency)
	}
	parsedNumber, err := strconv.Atoi(number)
	if err != nil {
		return Bet{}, fmt.Errorf("%w: number %q is not an integer", ErrMalformedBet, number)
	}
	date, err := time.Parse(DateLayout, birthdate)
	if err != nil {
		return Bet{}, fmt.Errorf("%w: birthdate %q is not a YYYY-MM-DD date", ErrMalformedBet, birthdate)
	}
	return NewBet(agencyID, firstName, lastName, document, date, parsedNumber)
}

// Agency returns the agency the bet was placed through.
func (b Bet) Agency() int { return b.agency }

// FirstName returns the bettor's first name.
func (b Bet) FirstName() string { return b.firstName }

// LastName returns the bettor's last name.
func (b Bet) LastName() string { return b.lastName }

// Document returns the bettor's identity document number.
func (b Bet) Document() string { return b.document }

// Birthdate returns the bettor's birthdate at midnight UTC.
func (b Bet) Birthdate() time.Time { return b.birthdate }

// Number returns the number the bettor chose.
func (b Bet) Number() int { return b.number }

// Fields returns the bet in its six-string form: agency, first name,
// last name, document, birthdate (YYYY-MM-DD), number.
func (b Bet) Fields() [betFieldCount]string {
	return [betFieldCount]string{
		strconv.Itoa(b.agency),
		b.firstName,
		b.lastName,
		b.document,
		b.birthdate.Format(DateLayout),
		strconv.Itoa(b.number),
	}
}

// Equal reports whether two bets carry the same fields.
func (b Bet) Equal(other Bet) bool {
	return b.agency == other.agency &&
		b.firstName == other.firstName &&
		b.lastName == other.lastName &&
		b.document == other.document &&
		b.birthdate.Equal(other.birthdate) &&
		b.number == other.number
}

// String formats the bet for logs.
func (b Bet) String() string {
	return fmt.Sprintf("bet{agency=%d document=%s number=%d}", b.agency, b.document, b.number)
}

// EncodedSize returns the number of payload bytes [AppendBet] writes
// for b.
func (b Bet) EncodedSize() int {
	size := 0
	for _, field := range b.Fields() {
		size += wire.StringPrefixSize + len(field)
	}
	return size
}

// AppendBet appends the bare BET payload for bet to dst.
func AppendBet(dst []byte, bet Bet) ([]byte, error) {
	var err error
	for _, field := range bet.Fields() {
		dst, err = wire.AppendString(dst, field)
		if err != nil {
			return dst, fmt.Errorf("encoding %s: %w", bet, err)
		}
	}
	return dst, nil
}

// EncodeBet returns the payload of a BET message.
func EncodeBet(bet Bet) ([]byte, error) {
	return AppendBet(make([]byte, 0, bet.EncodedSize()), bet)
}

// DecodeBet decodes the payload of a BET message. The payload must
// hold exactly one bet record.
func DecodeBet(payload []byte) (Bet, error) {
	bet, offset, err := decodeBetAt(payload, 0)
	if err != nil {
		return Bet{}, err
	}
	if offset != len(payload) {
		return Bet{}, fmt.Errorf("%w: %d trailing bytes after bet", ErrMalformedBet, len(payload)-offset)
	}
	return bet, nil
}

// decodeBetAt decodes one bare bet record starting at offset and
// returns the offset just past it.
func decodeBetAt(buffer []byte, offset int) (Bet, int, error) {
	var fields [betFieldCount]string
	for i := range fields {
		var err error
		fields[i], offset, err = wire.DecodeString(buffer, offset)
		if err != nil {
			return Bet{}, offset, err
		}
	}
	bet, err := ParseBet(fields[0], fields[1], fields[2], fields[3], fields[4], fields[5])
	if err != nil {
		return Bet{}, offset, err
	}
	return bet, offset, nil
}

// EncodeBatch returns the payload of a BATCH message: a u32 count
// followed by that many bare bet records.
func EncodeBatch(bets []Bet) ([]byte, error) {
	size := wire.CountSize
	for _, bet := range bets {
		size += bet.EncodedSize()
	}
	payload := wire.AppendCount(make([]byte, 0, size), uint32(len(bets)))
	var err error
	for _, bet := range bets {
		payload, err = AppendBet(payload, bet)
		if err != nil {
			return nil, err
		}
	}
	return payload, nil
}

// DecodeBatch decodes the payload of a BATCH message. Records are
// decoded in order; the first failure discards every record and
// fails the whole batch.
func DecodeBatch(payload []byte) ([]Bet, error) {
	count, offset, err := wire.DecodeCount(payload, 0)
	if err != nil {
		return nil, fmt.Errorf("decoding batch count: %w", err)
	}

	// The declared count is untrusted: size the slice by what the
	// payload could actually hold.
	bets := make([]Bet, 0, min(int(count), (len(payload)-offset)/minBetSize))
	for i := range int(count) {
		var bet Bet
		bet, offset, err = decodeBetAt(payload, offset)
		if err != nil {
			return nil, fmt.Errorf("decoding bet %d of %d: %w", i+1, count, err)
		}
		bets = append(bets, bet)
	}
	if offset != len(payload) {
		return nil, fmt.Errorf("%w: %d trailing bytes after %d bets", ErrMalformedBet, len(payload)-offset, count)
	}
	return bets, nil
}
