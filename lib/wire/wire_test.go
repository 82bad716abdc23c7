// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"bytes"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"
	"testing"
	"testing/iotest"
)

// trickleWriter accepts at most one byte per Write call without
// reporting an error, which exercises WriteExact's retry loop.
type trickleWriter struct {
	buffer bytes.Buffer
	calls  int
}

func (w *trickleWriter) Write(p []byte) (int, error) {
	w.calls++
	if len(p) == 0 {
		return 0, nil
	}
	w.buffer.WriteByte(p[0])
	return 1, nil
}

type stalledWriter struct{}

func (stalledWriter) Write([]byte) (int, error) { return 0, nil }

type failingWriter struct{ err error }

func (w failingWriter) Write([]byte) (int, error) { return 0, w.err }

// countingReader records how many bytes were pulled from the
// underlying reader.
type countingReader struct {
	reader io.Reader
	read   int
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.read += n
	return n, err
}

func mustFrame(t *testing.T, kind byte, payload []byte) []byte {
	t.Helper()
	frame, err := AppendFrame(nil, kind, payload)
	if err != nil {
		t.Fatalf("AppendFrame: %v", err)
	}
	return frame
}

func TestReadExact(t *testing.T) {
	data := []byte("hello, lottery")

	got, err := ReadExact(iotest.OneByteReader(bytes.NewReader(data)), len(data))
	if err != nil {
		t.Fatalf("ReadExact: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("ReadExact = %q, want %q", got, data)
	}
}

func TestReadExactEndOfStream(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"empty stream", nil},
		{"short stream", []byte("abc")},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ReadExact(bytes.NewReader(test.input), 8)
			if !errors.Is(err, ErrConnectionClosed) {
				t.Fatalf("error = %v, want ErrConnectionClosed", err)
			}
			if !IsClosed(err) {
				t.Error("IsClosed = false for a closed stream")
			}
			if IsViolation(err) {
				t.Error("IsViolation = true for a closed stream")
			}
		})
	}
}

func TestReadExactFault(t *testing.T) {
	fault := errors.New("disk on fire")
	_, err := ReadExact(iotest.ErrReader(fault), 4)
	if !errors.Is(err, fault) {
		t.Fatalf("error = %v, want wrapped fault", err)
	}
	if IsClosed(err) || IsViolation(err) {
		t.Errorf("fault misclassified: closed=%v violation=%v", IsClosed(err), IsViolation(err))
	}
}

func TestWriteExactPartialWrites(t *testing.T) {
	writer := &trickleWriter{}
	data := []byte("a frame's worth of bytes")

	if err := WriteExact(writer, data); err != nil {
		t.Fatalf("WriteExact: %v", err)
	}
	if !bytes.Equal(writer.buffer.Bytes(), data) {
		t.Errorf("written = %q, want %q", writer.buffer.Bytes(), data)
	}
	if writer.calls != len(data) {
		t.Errorf("Write called %d times, want %d", writer.calls, len(data))
	}
}

func TestWriteExactBroken(t *testing.T) {
	tests := []struct {
		name   string
		writer io.Writer
	}{
		{"zero progress", stalledWriter{}},
		{"peer reset", failingWriter{err: syscall.ECONNRESET}},
		{"broken pipe", failingWriter{err: syscall.EPIPE}},
		{"closed socket", failingWriter{err: net.ErrClosed}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := WriteExact(test.writer, []byte("x"))
			if !errors.Is(err, ErrConnectionBroken) {
				t.Fatalf("error = %v, want ErrConnectionBroken", err)
			}
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	tests := []string{
		"",
		"Hola",
		"Test con espacios",
		"Test con ñ y áéíóú",
		"日本語のテキスト",
		strings.Repeat("A", 1000),
		strings.Repeat("z", MaxStringSize),
	}
	for _, input := range tests {
		encoded, err := EncodeString(input)
		if err != nil {
			t.Fatalf("EncodeString(%d bytes): %v", len(input), err)
		}
		if len(encoded) != StringPrefixSize+len(input) {
			t.Errorf("encoded length = %d, want %d", len(encoded), StringPrefixSize+len(input))
		}
		decoded, offset, err := DecodeString(encoded, 0)
		if err != nil {
			t.Fatalf("DecodeString(%d bytes): %v", len(input), err)
		}
		if decoded != input {
			t.Errorf("round trip of %d bytes changed the string", len(input))
		}
		if offset != len(encoded) {
			t.Errorf("offset = %d, want %d", offset, len(encoded))
		}
	}
}

func TestEncodeStringTooLong(t *testing.T) {
	_, err := EncodeString(strings.Repeat("x", MaxStringSize+1))
	if !errors.Is(err, ErrStringTooLong) {
		t.Fatalf("error = %v, want ErrStringTooLong", err)
	}
}

func TestDecodeStringSequence(t *testing.T) {
	var buffer []byte
	for _, s := range []string{"first", "", "third"} {
		var err error
		buffer, err = AppendString(buffer, s)
		if err != nil {
			t.Fatalf("AppendString: %v", err)
		}
	}

	offset := 0
	for _, want := range []string{"first", "", "third"} {
		var got string
		var err error
		got, offset, err = DecodeString(buffer, offset)
		if err != nil {
			t.Fatalf("DecodeString: %v", err)
		}
		if got != want {
			t.Errorf("DecodeString = %q, want %q", got, want)
		}
	}
	if offset != len(buffer) {
		t.Errorf("final offset = %d, want %d", offset, len(buffer))
	}
}

func TestDecodeStringTruncated(t *testing.T) {
	tests := []struct {
		name   string
		buffer []byte
		offset int
	}{
		{"empty buffer", nil, 0},
		{"one prefix byte", []byte{0x00}, 0},
		{"declared length exceeds data", []byte{0x00, 0x01}, 0},
		{"offset past end", []byte{0x00, 0x00}, 3},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, offset, err := DecodeString(test.buffer, test.offset)
			if !errors.Is(err, ErrTruncated) {
				t.Fatalf("error = %v, want ErrTruncated", err)
			}
			if offset != test.offset {
				t.Errorf("offset moved to %d on failure", offset)
			}
		})
	}
}

func TestDecodeStringInvalidUTF8(t *testing.T) {
	_, _, err := DecodeString([]byte{0x00, 0x02, 0xC3, 0x28}, 0)
	if !IsViolation(err) {
		t.Fatalf("error = %v, want a protocol violation", err)
	}
}

func TestCountRoundTrip(t *testing.T) {
	buffer := AppendCount([]byte{0xAA}, 70000)
	count, offset, err := DecodeCount(buffer, 1)
	if err != nil {
		t.Fatalf("DecodeCount: %v", err)
	}
	if count != 70000 || offset != 5 {
		t.Errorf("DecodeCount = (%d, %d), want (70000, 5)", count, offset)
	}
	if _, _, err := DecodeCount(buffer, 2); !errors.Is(err, ErrTruncated) {
		t.Errorf("short count error = %v, want ErrTruncated", err)
	}
}

func TestFrameLayout(t *testing.T) {
	payload := []byte("test payload")
	frame := mustFrame(t, 0x01, payload)

	want := append([]byte{0x00, 0x00, 0x00, byte(len(payload)), 0x01}, payload...)
	want = append(want, Trailer)
	if !bytes.Equal(frame, want) {
		t.Errorf("frame = % x\nwant    % x", frame, want)
	}
	if len(frame) != HeaderSize+len(payload)+1 {
		t.Errorf("frame length = %d, want %d", len(frame), HeaderSize+len(payload)+1)
	}
}

func TestReceiveMessageFragmentation(t *testing.T) {
	payload := bytes.Repeat([]byte("0123456789"), 50)
	frame := mustFrame(t, 0x02, payload)

	bulk, err := ReceiveMessage(bytes.NewReader(frame))
	if err != nil {
		t.Fatalf("bulk ReceiveMessage: %v", err)
	}
	trickled, err := ReceiveMessage(iotest.OneByteReader(bytes.NewReader(frame)))
	if err != nil {
		t.Fatalf("byte-at-a-time ReceiveMessage: %v", err)
	}

	if bulk.Kind != trickled.Kind || !bytes.Equal(bulk.Payload, trickled.Payload) {
		t.Errorf("fragmented read differs: bulk=(%d, %d bytes) trickled=(%d, %d bytes)",
			bulk.Kind, len(bulk.Payload), trickled.Kind, len(trickled.Payload))
	}
	if bulk.Kind != 0x02 || !bytes.Equal(bulk.Payload, payload) {
		t.Errorf("ReceiveMessage = (%d, %d bytes), want (2, %d bytes)", bulk.Kind, len(bulk.Payload), len(payload))
	}
}

func TestReceiveMessageBackToBack(t *testing.T) {
	var stream []byte
	stream = append(stream, mustFrame(t, 0x05, []byte("one"))...)
	stream = append(stream, mustFrame(t, 0x06, nil)...)
	reader := bytes.NewReader(stream)

	first, err := ReceiveMessage(reader)
	if err != nil {
		t.Fatalf("first ReceiveMessage: %v", err)
	}
	second, err := ReceiveMessage(reader)
	if err != nil {
		t.Fatalf("second ReceiveMessage: %v", err)
	}
	if first.Kind != 0x05 || string(first.Payload) != "one" {
		t.Errorf("first = (%d, %q)", first.Kind, first.Payload)
	}
	if second.Kind != 0x06 || len(second.Payload) != 0 {
		t.Errorf("second = (%d, %q)", second.Kind, second.Payload)
	}
	if _, err := ReceiveMessage(reader); !errors.Is(err, ErrConnectionClosed) {
		t.Errorf("third ReceiveMessage error = %v, want ErrConnectionClosed", err)
	}
}

func TestReceiveMessageTooLargeReadsOnlyHeader(t *testing.T) {
	header := []byte{0x00, 0x00, 0x20, 0x01, 0x01} // 8193 bytes declared
	rest := bytes.Repeat([]byte{0x41}, 8194)
	reader := &countingReader{reader: bytes.NewReader(append(header, rest...))}

	_, err := ReceiveMessage(reader)
	if !errors.Is(err, ErrMessageTooLarge) {
		t.Fatalf("error = %v, want ErrMessageTooLarge", err)
	}
	if reader.read > HeaderSize {
		t.Errorf("read %d bytes, want at most the %d-byte header", reader.read, HeaderSize)
	}
}

func TestReceiveMessageMaxPayload(t *testing.T) {
	payload := bytes.Repeat([]byte{0x07}, MaxPayloadSize)
	message, err := ReceiveMessage(bytes.NewReader(mustFrame(t, 0x01, payload)))
	if err != nil {
		t.Fatalf("ReceiveMessage at the limit: %v", err)
	}
	if len(message.Payload) != MaxPayloadSize {
		t.Errorf("payload length = %d, want %d", len(message.Payload), MaxPayloadSize)
	}
}

func TestReceiveMessageCorruptTrailer(t *testing.T) {
	frame := mustFrame(t, 0x01, []byte("payload"))
	frame[len(frame)-1] = 0x00

	_, err := ReceiveMessage(bytes.NewReader(frame))
	if !errors.Is(err, ErrFraming) {
		t.Fatalf("error = %v, want ErrFraming", err)
	}
	if !IsViolation(err) {
		t.Error("IsViolation = false for a framing error")
	}
}

func TestReceiveMessageTruncatedFrame(t *testing.T) {
	frame := mustFrame(t, 0x01, []byte("payload"))
	for cut := 1; cut < len(frame); cut++ {
		_, err := ReceiveMessage(bytes.NewReader(frame[:cut]))
		if !errors.Is(err, ErrConnectionClosed) {
			t.Fatalf("frame cut at %d: error = %v, want ErrConnectionClosed", cut, err)
		}
	}
}

func TestSendMessage(t *testing.T) {
	writer := &trickleWriter{}
	if err := SendMessage(writer, 0x03, []byte("ok")); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	message, err := ReceiveMessage(&writer.buffer)
	if err != nil {
		t.Fatalf("ReceiveMessage: %v", err)
	}
	if message.Kind != 0x03 || string(message.Payload) != "ok" {
		t.Errorf("received (%d, %q), want (3, \"ok\")", message.Kind, message.Payload)
	}
}

func TestSendMessageTooLarge(t *testing.T) {
	var buffer bytes.Buffer
	err := SendMessage(&buffer, 0x02, make([]byte, MaxPayloadSize+1))
	if !errors.Is(err, ErrMessageTooLarge) {
		t.Fatalf("error = %v, want ErrMessageTooLarge", err)
	}
	if buffer.Len() != 0 {
		t.Errorf("wrote %d bytes for a refused frame", buffer.Len())
	}
}
