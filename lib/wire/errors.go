// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"errors"
	"fmt"
)

// ErrViolation is the parent of every protocol-violation error. Packages
// that add their own decode failures on top of this one (malformed
// records, for example) wrap it so [IsViolation] recognizes them.
var ErrViolation = errors.New("protocol violation")

var (
	// ErrConnectionClosed means the peer closed the stream before the
	// requested bytes arrived, including a close before the first byte.
	ErrConnectionClosed = errors.New("wire: connection closed")

	// ErrConnectionBroken means a write made no progress because the
	// peer reset or the socket was closed underneath us.
	ErrConnectionBroken = errors.New("wire: connection broken")

	// ErrFraming means the frame trailer did not match [Trailer].
	ErrFraming = fmt.Errorf("wire: framing error: %w", ErrViolation)

	// ErrMessageTooLarge means a frame declared a payload larger than
	// [MaxPayloadSize].
	ErrMessageTooLarge = fmt.Errorf("wire: message too large: %w", ErrViolation)

	// ErrTruncated means a payload ended before a field it declares.
	ErrTruncated = fmt.Errorf("wire: truncated data: %w", ErrViolation)

	// ErrStringTooLong means a string does not fit the u16 length field.
	ErrStringTooLong = fmt.Errorf("wire: string too long: %w", ErrViolation)
)

// IsClosed reports whether err means the peer is gone: a close before
// a read completed or a reset during a write.
func IsClosed(err error) bool {
	return errors.Is(err, ErrConnectionClosed) || errors.Is(err, ErrConnectionBroken)
}

// IsViolation reports whether err is a protocol violation by the peer.
func IsViolation(err error) bool {
	return errors.Is(err, ErrViolation)
}
