// Package pll provides concrete framer.IPhaseLockedLoop collaborators:
// a serial-backed correction channel, a logging stand-in for tests and
// --synthetic mode, and a no-op default.
package pll

import (
	"encoding/binary"
	"math"

	"github.com/dbehnke/dmr-burstframer/pkg/logger"
)

// serialWriter is the subset of source.SerialSource's Port that
// SerialPLL needs; satisfied by goserial.Port.Write.
type serialWriter interface {
	Write(data []byte) (int, error)
}

// SerialPLL writes a fixed-format correction command back over the
// same serial link used for symbol input, per spec.md §6's
// pll.correct(offset_hz: f64) contract: the upstream demodulator is
// assumed to listen for these commands on the same link.
type SerialPLL struct {
	port   serialWriter
	prefix string
}

// NewSerialPLL builds a SerialPLL that frames every correction as
// prefix followed by the big-endian IEEE-754 offset.
func NewSerialPLL(port serialWriter, prefix string) *SerialPLL {
	return &SerialPLL{port: port, prefix: prefix}
}

// Correct writes "<prefix><big-endian float64 offsetHz>" to the port.
// Write errors are swallowed: a lost correction command degrades lock
// quality, it does not stop the framer (spec.md §6).
func (p *SerialPLL) Correct(offsetHz float64) {
	cmd := make([]byte, len(p.prefix)+8)
	copy(cmd, p.prefix)
	binary.BigEndian.PutUint64(cmd[len(p.prefix):], math.Float64bits(offsetHz))
	_, _ = p.port.Write(cmd)
}

// LoggingPLL only logs the correction command; used for --synthetic
// mode and in tests where no real hardware link exists.
type LoggingPLL struct {
	log *logger.Logger
}

// NewLoggingPLL builds a LoggingPLL.
func NewLoggingPLL(log *logger.Logger) *LoggingPLL {
	if log == nil {
		log = logger.New(logger.Config{Level: "info", Format: "text"})
	}
	return &LoggingPLL{log: log.WithComponent("pll")}
}

// Correct logs the would-be correction.
func (p *LoggingPLL) Correct(offsetHz float64) {
	p.log.Debug("pll correction", logger.Float64("offset_hz", offsetHz))
}

// NoopPLL discards every correction. It is the default collaborator
// when PLLConfig.Mode == "none".
type NoopPLL struct{}

// Correct does nothing.
func (NoopPLL) Correct(offsetHz float64) {}
