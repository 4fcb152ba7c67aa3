package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// maxRequestSize caps the header block of a request.
const maxRequestSize = 4096

var (
	headerTerminator = []byte("\r\n\r\n")
	methodGet        = []byte("GET ")
)

var (
	ErrRequestTooLarge  = errors.New("request header exceeds buffer capacity")
	ErrConnectionClosed = errors.New("connection closed before end of headers")
	ErrMalformedRequest = errors.New("malformed request")
)

// requestBuffer accumulates request bytes up to a fixed capacity.
type requestBuffer struct {
	buf []byte
}

func newRequestBuffer(limit int) *requestBuffer {
	return &requestBuffer{buf: make([]byte, 0, limit)}
}

func (b *requestBuffer) Len() int      { return len(b.buf) }
func (b *requestBuffer) Bytes() []byte { return b.buf }

// readFrom performs a single Read into the unused capacity.
func (b *requestBuffer) readFrom(r io.Reader) (int, error) {
	if len(b.buf) == cap(b.buf) {
		return 0, ErrRequestTooLarge
	}
	n, err := r.Read(b.buf[len(b.buf):cap(b.buf)])
	b.buf = b.buf[:len(b.buf)+n]
	return n, err
}

// receive reads from r until the accumulated bytes contain the end of the
// header block. Bytes after the terminator, if any, are returned as well.
func receive(r io.Reader, limit int) ([]byte, error) {
	b := newRequestBuffer(limit)
	for {
		// The terminator may straddle two reads.
		scanFrom := max(0, b.Len()-len(headerTerminator)+1)

		n, err := b.readFrom(r)
		if n > 0 && bytes.Contains(b.buf[scanFrom:], headerTerminator) {
			return b.Bytes(), nil
		}

		switch {
		case errors.Is(err, ErrRequestTooLarge):
			return nil, fmt.Errorf("%w (%d bytes)", err, limit)
		case err != nil:
			return nil, fmt.Errorf("%w: %w", ErrConnectionClosed, err)
		case n == 0:
			return nil, ErrConnectionClosed
		}
	}
}

// parseRequestLine returns the target of a GET request: the bytes between
// "GET " and the next space.
func parseRequestLine(raw []byte) (string, error) {
	rest, ok := bytes.CutPrefix(raw, methodGet)
	if !ok {
		return "", fmt.Errorf("%w: method is not GET", ErrMalformedRequest)
	}

	path, _, found := bytes.Cut(rest, []byte{' '})
	if !found {
		return "", fmt.Errorf("%w: invalid path", ErrMalformedRequest)
	}
	return string(path), nil
}
