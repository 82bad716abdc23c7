// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"errors"
	"fmt"
	"io"

	"github.com/bureau-foundation/lottery/lib/netutil"
)

// ReadExact reads exactly n bytes from r. It blocks until all n bytes
// have arrived or the stream ends. End of stream before n bytes
// (including before the first byte) returns an error wrapping
// [ErrConnectionClosed]; the partial data is discarded.
func ReadExact(r io.Reader, n int) ([]byte, error) {
	buffer := make([]byte, n)
	if n == 0 {
		return buffer, nil
	}
	read, err := io.ReadFull(r, buffer)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || netutil.IsExpectedCloseError(err) {
			return nil, fmt.Errorf("%w after %d of %d bytes", ErrConnectionClosed, read, n)
		}
		return nil, fmt.Errorf("wire: reading %d bytes: %w", n, err)
	}
	return buffer, nil
}

// WriteExact writes every byte of data to w, retrying after partial
// writes. A write that makes no progress, or fails because the peer
// reset or the socket was closed, returns an error wrapping
// [ErrConnectionBroken].
func WriteExact(w io.Writer, data []byte) error {
	written := 0
	for written < len(data) {
		n, err := w.Write(data[written:])
		written += n
		if err != nil {
			if netutil.IsExpectedCloseError(err) {
				return fmt.Errorf("%w after %d of %d bytes: %v", ErrConnectionBroken, written, len(data), err)
			}
			return fmt.Errorf("wire: writing %d bytes: %w", len(data), err)
		}
		if n == 0 {
			return fmt.Errorf("%w: write made no progress after %d of %d bytes", ErrConnectionBroken, written, len(data))
		}
	}
	return nil
}
