// Package codec provides compression for persisted training-pool files.
package codec

import "io"

// Codec wraps readers and writers with a compression scheme.
type Codec interface {
	// Reader wraps r to decompress data read from it.
	Reader(r io.Reader) (io.ReadCloser, error)
	// Writer wraps w to compress data written to it.
	Writer(w io.Writer) (io.WriteCloser, error)
	// Extension returns the file extension without dot (e.g. "zst", "gz").
	// Empty string means no compression.
	Extension() string
}

// Noop is the identity codec.
type Noop struct{}

var _ Codec = (*Noop)(nil)

// NewNoop returns a codec that performs no compression.
func NewNoop() *Noop {
	return &Noop{}
}

// Reader returns r wrapped as a ReadCloser.
func (c *Noop) Reader(r io.Reader) (io.ReadCloser, error) {
	if rc, ok := r.(io.ReadCloser); ok {
		return rc, nil
	}
	return io.NopCloser(r), nil
}

// Writer returns w wrapped as a WriteCloser.
func (c *Noop) Writer(w io.Writer) (io.WriteCloser, error) {
	if wc, ok := w.(io.WriteCloser); ok {
		return wc, nil
	}
	return nopWriteCloser{w}, nil
}

// Extension returns the empty string.
func (c *Noop) Extension() string {
	return ""
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
