// Package source provides the symbol-stream collaborators the daemon
// feeds into messageframer.MessageFramer.ReceiveBytes: a real
// serial-attached demodulator, and a synthetic in-memory replay source
// for tests and --synthetic mode.
package source

import "time"

// Source supplies packed-dibit bytes with the wall-clock time at which
// each read returned, matching
// messageframer.MessageFramer.ReceiveBytes's (buf, tsMs) contract.
type Source interface {
	ReadBytes(buf []byte) (n int, tsMs uint64, err error)
	Close() error
}

func nowMillis() uint64 {
	return uint64(time.Now().UnixMilli())
}
