//go:build linux

package main

import (
	"github.com/dbehnke/dmr-burstframer/pkg/framer"
	"github.com/dbehnke/dmr-burstframer/pkg/logger"
	"github.com/dbehnke/dmr-burstframer/pkg/pll"
	"github.com/dbehnke/dmr-burstframer/pkg/source"
)

// newSerialCorrectionPLL writes corrections back over sym's own
// serial port when sym is a real SerialSource; otherwise it falls
// back to logging, since there is no shared link to write to.
func newSerialCorrectionPLL(sym source.Source, prefix string, log *logger.Logger) framer.IPhaseLockedLoop {
	ss, ok := sym.(*source.SerialSource)
	if !ok {
		return pll.NewLoggingPLL(log)
	}
	return pll.NewSerialPLL(ss.Port(), prefix)
}
