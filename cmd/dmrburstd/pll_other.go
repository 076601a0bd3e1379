//go:build !linux

package main

import (
	"github.com/dbehnke/dmr-burstframer/pkg/framer"
	"github.com/dbehnke/dmr-burstframer/pkg/logger"
	"github.com/dbehnke/dmr-burstframer/pkg/pll"
	"github.com/dbehnke/dmr-burstframer/pkg/source"
)

// newSerialCorrectionPLL always falls back to logging outside Linux,
// since goserial (and therefore a real serial link) is unavailable.
func newSerialCorrectionPLL(_ source.Source, _ string, log *logger.Logger) framer.IPhaseLockedLoop {
	return pll.NewLoggingPLL(log)
}
