// Package matcher implements the rolling sync-word matcher the burst
// framer feeds one dibit at a time.
package matcher

import (
	"fmt"
	"math/bits"

	"github.com/dbehnke/dmr-burstframer/pkg/dibit"
	"github.com/dbehnke/dmr-burstframer/pkg/syncpattern"
)

// Result is what SoftSyncMatcher.Receive reports on a match.
type Result struct {
	Pattern   syncpattern.Pattern
	Lock      syncpattern.CarrierLock
	BitErrors uint8
}

// SoftSyncMatcher maintains a 48-bit rolling register and reports the
// first pattern (in table order) whose canonical form is within
// Threshold bit errors, or whose rotated form matches exactly.
type SoftSyncMatcher struct {
	register  uint64
	threshold int
}

// New constructs a matcher with the given Hamming-distance threshold.
// threshold must be in [1,24]; spec.md §7 classifies an out-of-range
// threshold as programmer misuse, so this fails fast rather than
// clamping.
func New(threshold int) *SoftSyncMatcher {
	if threshold < 1 || threshold > 24 {
		panic(fmt.Sprintf("matcher: threshold %d out of range [1,24]", threshold))
	}
	return &SoftSyncMatcher{threshold: threshold}
}

// Threshold returns the configured matching threshold.
func (m *SoftSyncMatcher) Threshold() int { return m.threshold }

// SetThreshold reconfigures the threshold, e.g. when the framer
// transitions between searching (~3) and synchronized (~6) regimes.
func (m *SoftSyncMatcher) SetThreshold(threshold int) {
	if threshold < 1 || threshold > 24 {
		panic(fmt.Sprintf("matcher: threshold %d out of range [1,24]", threshold))
	}
	m.threshold = threshold
}

// SetRegister forces the rolling register to an explicit value, used
// by the framer when it falls back to searching mid-stream and wants
// the matcher primed from the sync field already sitting in the
// message buffer rather than waiting 24 more dibits to refill it.
func (m *SoftSyncMatcher) SetRegister(value uint64) {
	m.register = value & (1<<48 - 1)
}

// Register returns the current 48-bit rolling register value.
func (m *SoftSyncMatcher) Register() uint64 { return m.register }

// Reset clears the rolling register to zero.
func (m *SoftSyncMatcher) Reset() { m.register = 0 }

// Receive shifts d into the rolling register and scans the pattern
// table in order. It never allocates.
func (m *SoftSyncMatcher) Receive(d dibit.Dibit) (Result, bool) {
	m.register = ((m.register << 2) | uint64(d&0x03)) & (1<<48 - 1)
	return m.match()
}

func (m *SoftSyncMatcher) match() (Result, bool) {
	for _, p := range syncpattern.All() {
		errs := bits.OnesCount64(m.register ^ p.Canonical)
		if errs <= m.threshold {
			return Result{Pattern: p, Lock: syncpattern.NORMAL, BitErrors: uint8(errs)}, true
		}
		if m.register == p.Plus90 {
			return Result{Pattern: p, Lock: syncpattern.PLUS_90, BitErrors: 0}, true
		}
		if m.register == p.Minus90 {
			return Result{Pattern: p, Lock: syncpattern.MINUS_90, BitErrors: 0}, true
		}
		if m.register == p.Inverted {
			return Result{Pattern: p, Lock: syncpattern.INVERTED, BitErrors: 0}, true
		}
	}
	return Result{}, false
}
