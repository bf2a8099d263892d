package download

import (
	"errors"
	"fmt"
	"io"
)

// ErrTooLarge is returned once a stream produces more bytes than allowed.
var ErrTooLarge = errors.New("size limit exceeded")

// CapReader reads from an underlying reader, failing with ErrTooLarge once
// more than a fixed number of bytes have been produced. Errors from the
// underlying reader other than io.EOF are wrapped with ErrConnection so
// callers can tell a broken stream from a local write failure.
type CapReader struct {
	r     io.Reader
	limit int64
	n     int64
}

// NewCapReader returns a CapReader allowing up to limit bytes. A negative
// limit disables the cap.
func NewCapReader(r io.Reader, limit int64) *CapReader {
	return &CapReader{
		r:     r,
		limit: limit,
	}
}

// Read implements io.Reader#Read().
func (cr *CapReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += int64(n)

	if cr.limit >= 0 && cr.n > cr.limit {
		return n, fmt.Errorf("%w: read more than %d bytes", ErrTooLarge, cr.limit)
	}
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("%w: %w", ErrConnection, err)
	}
	return n, err
}

// N returns the number of bytes read so far.
func (cr *CapReader) N() int64 {
	return cr.n
}
