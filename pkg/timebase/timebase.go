// Package timebase converts a count of bits processed into
// milliseconds at the DMR bit rate, drift-corrected by external
// wall-clock hints.
package timebase

// bitsPerSecond is the DMR symbol rate's implied bit rate: 4800 baud
// at 2 bits/symbol.
const bitsPerSecond = 9600

// Tracker maintains the current timestamp. Set anchors it to an
// external wall-clock hint; Advance accounts for dibits processed
// since the last anchor without losing sub-millisecond accuracy to
// repeated rounding.
type Tracker struct {
	currentMillis uint64
	// residualBits carries the remainder (in thousandths of a bit,
	// negative when the last rounding went up) that Advance's
	// integer-millisecond rounding has not yet accounted for, so many
	// small Advance calls don't accumulate rounding error relative to
	// one large call.
	residualBits int64
}

// New returns a tracker anchored at millisecond 0.
func New() *Tracker {
	return &Tracker{}
}

// CurrentMillis returns the tracker's current timestamp.
func (t *Tracker) CurrentMillis() uint64 { return t.currentMillis }

// Set anchors the timebase to an external wall-clock hint, discarding
// any unaccounted residual from prior Advance calls.
func (t *Tracker) Set(tsMs uint64) {
	t.currentMillis = tsMs
	t.residualBits = 0
}

// Advance adds round(bitsProcessed * 1000 / 9600) ms, carrying the
// rounding remainder forward so it is not lost across repeated calls
// during a sync-loss interval.
func (t *Tracker) Advance(bitsProcessed uint32) {
	totalBits := t.residualBits + int64(bitsProcessed)*1000
	ms := (totalBits + bitsPerSecond/2) / bitsPerSecond
	t.residualBits = totalBits - ms*bitsPerSecond
	t.currentMillis += uint64(ms)
}
