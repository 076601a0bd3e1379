// Package tracker implements per-timeslot sync state and the
// voice-superframe predictor chain.
package tracker

import (
	"math/bits"

	"github.com/dbehnke/dmr-burstframer/pkg/dibit"
	"github.com/dbehnke/dmr-burstframer/pkg/syncpattern"
)

// syncFieldOffset and syncFieldLength locate the 48-bit sync word
// within a 144-dibit burst (spec.md §4.5's "exact constants").
const (
	syncFieldOffset = 66
	syncFieldLength = 24
)

// Outcome is what Step reports.
type Outcome int

const (
	LostSync Outcome = iota
	Synchronized
)

// SyncTracker holds one timeslot's last-known sync pattern and walks
// the voice-superframe predictor chain (A->B->C->D->E->F) when no
// real sync field is present in a burst.
type SyncTracker struct {
	lastPattern   syncpattern.Pattern
	lastBitErrors uint8
}

// New returns a tracker in the UNKNOWN (not synchronized) state.
func New() *SyncTracker {
	return &SyncTracker{lastPattern: syncpattern.Unknown}
}

// LastPattern returns the most recently matched or predicted pattern.
func (t *SyncTracker) LastPattern() syncpattern.Pattern { return t.lastPattern }

// LastBitErrors returns the bit-error count of the most recent match
// (always 0 for a voice-chain prediction).
func (t *SyncTracker) LastBitErrors() uint8 { return t.lastBitErrors }

// IsSynchronized reports whether this tracker currently holds a real
// (non-UNKNOWN) pattern.
func (t *SyncTracker) IsSynchronized() bool { return t.lastPattern.Class != syncpattern.UNKNOWN }

// Set forces the tracker's state, used by the framer when the
// matcher fires directly on a burst boundary.
func (t *SyncTracker) Set(p syncpattern.Pattern, bitErrors uint8) {
	t.lastPattern = p
	t.lastBitErrors = bitErrors
}

// Reset returns the tracker to UNKNOWN.
func (t *SyncTracker) Reset() {
	t.lastPattern = syncpattern.Unknown
	t.lastBitErrors = 0
}

// Step extracts the sync field from buf (a 144-dibit message buffer)
// and tries, in order: a real-pattern match at the synchronized
// threshold, then a voice-superframe chain advance, then gives up.
// matchThreshold is the synchronized-regime Hamming threshold
// (spec.md §4.4, typically 6).
func (t *SyncTracker) Step(buf *dibit.Buffer, matchThreshold int) Outcome {
	field := buf.SyncFieldValue(syncFieldOffset, syncFieldLength)

	if p, errs, ok := softMatch(field, matchThreshold); ok {
		t.lastPattern = p
		t.lastBitErrors = uint8(errs)
		return Synchronized
	}

	if next, ok := syncpattern.NextVoiceFrame(t.lastPattern); ok {
		t.lastPattern = next
		t.lastBitErrors = 0
		return Synchronized
	}

	t.lastPattern = syncpattern.Unknown
	t.lastBitErrors = 0
	return LostSync
}

func softMatch(field uint64, threshold int) (syncpattern.Pattern, int, bool) {
	for _, p := range syncpattern.All() {
		errs := bits.OnesCount64(field ^ p.Canonical)
		if errs <= threshold {
			return p, errs, true
		}
	}
	return syncpattern.Pattern{}, 0, false
}
