// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"
)

const (
	// StringPrefixSize is the width of a string's length prefix.
	StringPrefixSize = 2

	// MaxStringSize is the largest encoded string the prefix can describe.
	MaxStringSize = math.MaxUint16

	// CountSize is the width of a list count.
	CountSize = 4
)

// EncodeString returns s as a length-prefixed field.
func EncodeString(s string) ([]byte, error) {
	return AppendString(make([]byte, 0, StringPrefixSize+len(s)), s)
}

// AppendString appends s to dst as a u16be byte length followed by the
// UTF-8 bytes of s. Strings longer than [MaxStringSize] bytes fail with
// [ErrStringTooLong] and dst is returned unchanged.
func AppendString(dst []byte, s string) ([]byte, error) {
	if len(s) > MaxStringSize {
		return dst, fmt.Errorf("%w: %d bytes, limit is %d", ErrStringTooLong, len(s), MaxStringSize)
	}
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(s)))
	return append(dst, s...), nil
}

// DecodeString reads a length-prefixed string from buffer starting at
// offset. It returns the string and the offset just past it.
func DecodeString(buffer []byte, offset int) (string, int, error) {
	if offset < 0 || len(buffer)-offset < StringPrefixSize {
		return "", offset, fmt.Errorf("%w: string length prefix at offset %d needs %d bytes, have %d",
			ErrTruncated, offset, StringPrefixSize, max(len(buffer)-offset, 0))
	}
	length := int(binary.BigEndian.Uint16(buffer[offset:]))
	start := offset + StringPrefixSize
	if len(buffer)-start < length {
		return "", offset, fmt.Errorf("%w: string at offset %d declares %d bytes, have %d",
			ErrTruncated, offset, length, len(buffer)-start)
	}
	value := buffer[start : start+length]
	if !utf8.Valid(value) {
		return "", offset, fmt.Errorf("wire: string at offset %d is not valid UTF-8: %w", offset, ErrViolation)
	}
	return string(value), start + length, nil
}

// AppendCount appends a u32be list count to dst.
func AppendCount(dst []byte, count uint32) []byte {
	return binary.BigEndian.AppendUint32(dst, count)
}

// DecodeCount reads a u32be list count from buffer at offset and
// returns it with the offset just past it.
func DecodeCount(buffer []byte, offset int) (uint32, int, error) {
	if offset < 0 || len(buffer)-offset < CountSize {
		return 0, offset, fmt.Errorf("%w: count at offset %d needs %d bytes, have %d",
			ErrTruncated, offset, CountSize, max(len(buffer)-offset, 0))
	}
	return binary.BigEndian.Uint32(buffer[offset:]), offset + CountSize, nil
}
