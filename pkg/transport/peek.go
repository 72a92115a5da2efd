package transport

import (
	"bufio"
	"errors"
	"io"
)

// minPeekBuffer is the smallest buffer bufio will allocate
const minPeekBuffer = 16

// verifiedStream is a stream whose first bytes have already been pulled
// from the underlying source. Reads are served from the buffer first.
type verifiedStream struct {
	*bufio.Reader
	closer io.Closer
}

// Close closes the underlying stream
func (s *verifiedStream) Close() error {
	return s.closer.Close()
}

// verifyStream buffers rc and reads ahead up to peekSize bytes without
// consuming them. Failures that only surface once bytes are pulled
// (truncated bodies, resets mid-stream) are reported here instead of to the
// caller's first Read. A stream shorter than peekSize is not an error. On
// failure rc is closed.
func verifyStream(rc io.ReadCloser, peekSize int) (io.ReadCloser, error) {
	if peekSize < 1 {
		peekSize = 1
	}
	br := bufio.NewReaderSize(rc, max(peekSize, minPeekBuffer))
	if _, err := br.Peek(peekSize); err != nil && !errors.Is(err, io.EOF) {
		_ = rc.Close()
		return nil, err
	}
	return &verifiedStream{Reader: br, closer: rc}, nil
}
