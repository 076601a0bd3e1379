// Command dmrburstd reads a dibit symbol stream from a serial-attached
// demodulator, frames it into DMR bursts, and republishes burst and
// sync-loss events to the configured sinks and metrics endpoint.
package main

import (
	"os"

	"github.com/dbehnke/dmr-burstframer/pkg/logger"
)

var (
	version   = "dev"
	gitCommit = "unknown"
)

func main() {
	if err := newRootCommand(version, gitCommit).Execute(); err != nil {
		logger.New(logger.Config{Level: "error", Format: "text"}).Error("dmrburstd exited with error", logger.Error(err))
		os.Exit(1)
	}
}
