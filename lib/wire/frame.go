// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	// HeaderSize is the length of the frame header: a u32be payload
	// length followed by one kind byte.
	HeaderSize = 5

	// MaxPayloadSize is the largest payload a frame may carry.
	MaxPayloadSize = 8192

	// Trailer terminates every frame.
	Trailer byte = 0xFF
)

// Message is one decoded frame. Kind is the raw kind byte; the message
// catalog (package protocol) gives it meaning.
type Message struct {
	Kind    byte
	Payload []byte
}

// ReceiveMessage reads one frame from r.
//
// A declared length above [MaxPayloadSize] fails with
// [ErrMessageTooLarge] without reading any of the payload. A trailer
// other than [Trailer] fails with [ErrFraming]. End of stream at any
// point fails with [ErrConnectionClosed].
func ReceiveMessage(r io.Reader) (Message, error) {
	header, err := ReadExact(r, HeaderSize)
	if err != nil {
		return Message{}, err
	}

	length := binary.BigEndian.Uint32(header[:4])
	kind := header[4]
	if length > MaxPayloadSize {
		return Message{}, fmt.Errorf("%w: kind 0x%02x declares %d bytes, limit is %d",
			ErrMessageTooLarge, kind, length, MaxPayloadSize)
	}

	// Payload and trailer arrive back to back, so read them together.
	body, err := ReadExact(r, int(length)+1)
	if err != nil {
		return Message{}, err
	}
	if trailer := body[length]; trailer != Trailer {
		return Message{}, fmt.Errorf("%w: kind 0x%02x trailer is 0x%02x, want 0x%02x",
			ErrFraming, kind, trailer, Trailer)
	}

	return Message{Kind: kind, Payload: body[:length:length]}, nil
}

// SendMessage frames payload with kind and writes the whole frame with
// one [WriteExact] call. Payloads above [MaxPayloadSize] are refused
// before anything is written.
func SendMessage(w io.Writer, kind byte, payload []byte) error {
	frame, err := AppendFrame(nil, kind, payload)
	if err != nil {
		return err
	}
	return WriteExact(w, frame)
}

// AppendFrame appends the complete frame for kind and payload to dst.
func AppendFrame(dst []byte, kind byte, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadSize {
		return dst, fmt.Errorf("%w: refusing to send %d bytes, limit is %d",
			ErrMessageTooLarge, len(payload), MaxPayloadSize)
	}
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(payload)))
	dst = append(dst, kind)
	dst = append(dst, payload...)
	return append(dst, Trailer), nil
}
