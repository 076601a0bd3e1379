package source

import (
	"bytes"
	"io"
	"sync"
)

// SyntheticSource replays a fixed byte buffer or an io.Reader as a
// Source, for tests and the daemon's --synthetic mode. It carries no
// goserial dependency so it builds and runs on every platform.
type SyntheticSource struct {
	mu     sync.Mutex
	reader io.Reader
	clock  func() uint64
	closed bool
}

// NewSyntheticBuffer replays buf (in as many reads as the caller's
// buffer size needs), then returns io.EOF.
func NewSyntheticBuffer(buf []byte) *SyntheticSource {
	return NewSyntheticReader(bytes.NewReader(buf))
}

// NewSyntheticReader replays r, stamping each read with the wall
// clock.
func NewSyntheticReader(r io.Reader) *SyntheticSource {
	return &SyntheticSource{reader: r, clock: nowMillis}
}

// ReadBytes reads from the underlying reader and stamps the read with
// the current wall-clock time.
func (s *SyntheticSource) ReadBytes(buf []byte) (int, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, 0, io.ErrClosedPipe
	}
	n, err := s.reader.Read(buf)
	return n, s.clock(), err
}

// Close marks the source closed; subsequent reads fail.
func (s *SyntheticSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
