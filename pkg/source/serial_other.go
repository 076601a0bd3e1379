//go:build !linux

package source

import (
	"errors"
	"time"
)

// ErrUnsupported is returned by OpenSerial on platforms goserial does
// not support; goserial itself is Linux-only (termios ioctls).
var ErrUnsupported = errors.New("source: serial symbol source is only supported on linux")

// SerialSource is a stub on non-Linux platforms.
type SerialSource struct{}

// OpenSerial always fails with ErrUnsupported outside Linux.
func OpenSerial(device string, baudRate int, readTimeout time.Duration) (*SerialSource, error) {
	return nil, ErrUnsupported
}

// ReadBytes always fails with ErrUnsupported.
func (s *SerialSource) ReadBytes(buf []byte) (int, uint64, error) {
	return 0, 0, ErrUnsupported
}

// Close is a no-op.
func (s *SerialSource) Close() error { return nil }
