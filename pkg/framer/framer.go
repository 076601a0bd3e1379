// Package framer implements the central burst-framer state machine:
// it owns the message and sync-delay buffers and the two per-timeslot
// sync trackers, and turns a raw dibit stream into burst and
// sync-loss events.
package framer

import (
	"fmt"

	"github.com/dbehnke/dmr-burstframer/pkg/dibit"
	"github.com/dbehnke/dmr-burstframer/pkg/matcher"
	"github.com/dbehnke/dmr-burstframer/pkg/syncpattern"
	"github.com/dbehnke/dmr-burstframer/pkg/tracker"
)

const (
	burstDibits       = 144
	syncDelayDibits   = 54
	syncLossThreshold = 4800 + burstDibits
	symbolRateHz      = 4800.0
	searchThreshold   = 3
	syncThreshold     = 6
)

// Burst is the outbound event delivered on every framed TDMA slot.
type Burst struct {
	Bits        [36]byte // 288 bits, MSB-first, dibit order
	Sync        syncpattern.Pattern
	Lock        syncpattern.CarrierLock
	BitErrors   uint8
	Timeslot    int
	TimestampMs uint64
}

// SyncLoss is the outbound event accounting for dibits that could not
// be attributed to any burst.
type SyncLoss struct {
	Bits        uint32
	TimestampMs uint64
}

// IPhaseLockedLoop is the out-of-band correction contract the framer
// drives when it detects a rotated sync match. offsetHz follows
// spec.md §6: ±1200 for a ±90° anomaly, +2400 for a 180° anomaly.
type IPhaseLockedLoop interface {
	Correct(offsetHz float64)
}

// Listener receives framed events. Implementations must not block;
// spec.md §5 treats a blocking listener as an accepted source of
// downstream sync loss, not a framer bug.
type Listener interface {
	OnBurst(Burst)
	OnSyncLoss(SyncLoss)
}

// Clock supplies the current timestamp for emitted events. Advance is
// called only across sync-loss intervals (spec.md §4.6), so burst
// timestamps stay anchored to the most recent external wall-clock
// hint rather than drifting from repeated internal rounding.
type Clock interface {
	CurrentMillis() uint64
	Advance(bitsProcessed uint32)
}

type state int

const (
	searching state = iota
	synchronized
)

// BurstFramer is the central FSM described in spec.md §4.5. It is
// single-threaded: Receive is the only entry point and must only ever
// be called from one goroutine.
type BurstFramer struct {
	messageBuffer   *dibit.Buffer
	syncDelayBuffer *dibit.Buffer
	matcher         *matcher.SoftSyncMatcher

	primary   *tracker.SyncTracker
	secondary *tracker.SyncTracker
	current   *tracker.SyncTracker

	state        state
	dibitCounter uint32

	listener Listener
	clock    Clock
	pll      IPhaseLockedLoop
}

// New constructs a framer. listener and clock must not be nil; pll
// may be nil, meaning rotated-sync anomalies are still detected and
// the buffer still self-corrects, but no correction command is sent.
func New(listener Listener, clock Clock, pll IPhaseLockedLoop) *BurstFramer {
	if listener == nil {
		panic("framer: listener must not be nil")
	}
	if clock == nil {
		panic("framer: clock must not be nil")
	}
	f := &BurstFramer{
		messageBuffer:   dibit.NewBuffer(burstDibits),
		syncDelayBuffer: dibit.NewBuffer(syncDelayDibits),
		matcher:         matcher.New(searchThreshold),
		primary:         tracker.New(),
		secondary:       tracker.New(),
		listener:        listener,
		clock:           clock,
		pll:             pll,
	}
	f.current = f.primary
	return f
}

// Synchronized reports whether either tracker currently holds a real
// pattern (spec.md §3's BurstFramer.synchronized invariant).
func (f *BurstFramer) Synchronized() bool {
	return f.primary.IsSynchronized() || f.secondary.IsSynchronized()
}

// Reset clears buffers, counters, and tracker state but keeps the
// listener, clock, and PLL collaborators (spec.md §5 teardown model).
func (f *BurstFramer) Reset() {
	f.messageBuffer.Reset()
	f.syncDelayBuffer.Reset()
	f.matcher.Reset()
	f.matcher.SetThreshold(searchThreshold)
	f.primary.Reset()
	f.secondary.Reset()
	f.current = f.primary
	f.state = searching
	f.dibitCounter = 0
}

// Receive processes one dibit. It never allocates.
func (f *BurstFramer) Receive(d dibit.Dibit) {
	f.dibitCounter++
	f.messageBuffer.Put(d)
	delayed := f.syncDelayBuffer.GetAndPut(d)

	if f.state == synchronized {
		f.stepSynchronized()
		return
	}

	if res, ok := f.matcher.Receive(delayed); ok {
		f.onMatch(res)
	}
	if f.dibitCounter > syncLossThreshold {
		f.emitSyncLoss(2 * 4800)
		f.dibitCounter -= 4800
	}
}

func (f *BurstFramer) stepSynchronized() {
	if f.dibitCounter < burstDibits {
		return
	}

	outcome := f.current.Step(f.messageBuffer, syncThreshold)
	switch {
	case outcome == tracker.Synchronized:
		f.emitBurst(f.current.LastPattern(), f.current.LastBitErrors(), syncpattern.NORMAL)
	case f.otherTracker().IsSynchronized():
		f.emitBurst(syncpattern.Unknown, 0, syncpattern.NORMAL)
	default:
		f.state = searching
		f.matcher.SetThreshold(searchThreshold)
		f.matcher.SetRegister(f.messageBuffer.SyncFieldValue(66, 24))
	}
	f.toggleCurrentTracker()
}

func (f *BurstFramer) otherTracker() *tracker.SyncTracker {
	if f.current == f.primary {
		return f.secondary
	}
	return f.primary
}

func (f *BurstFramer) toggleCurrentTracker() {
	f.current = f.otherTracker()
}

func (f *BurstFramer) onMatch(res matcher.Result) {
	f.current.Set(res.Pattern, res.BitErrors)
	if res.Lock != syncpattern.NORMAL {
		if f.pll != nil {
			switch res.Lock {
			case syncpattern.PLUS_90:
				f.pll.Correct(-symbolRateHz / 4)
			case syncpattern.MINUS_90:
				f.pll.Correct(symbolRateHz / 4)
			case syncpattern.INVERTED:
				f.pll.Correct(symbolRateHz / 2)
			}
		}
		f.derotateMessageBuffer(res.Lock)
	}
	f.emitBurst(res.Pattern, res.BitErrors, res.Lock)
	f.state = synchronized
	f.matcher.SetThreshold(syncThreshold)
}

// derotateMessageBuffer applies the inverse rotation to every dibit
// currently held in messageBuffer, so the packed burst bits come out
// in the carrier's true (unrotated) orientation even though the
// upstream demodulator is still mislocked.
func (f *BurstFramer) derotateMessageBuffer(lock syncpattern.CarrierLock) {
	inverse := inverseLock(lock)
	var scratch [burstDibits]dibit.Dibit
	window := f.messageBuffer.Window(scratch[:0], 0, burstDibits)
	f.messageBuffer.Reset()
	for _, d := range window {
		f.messageBuffer.Put(dibit.Dibit(syncpattern.Rotate48(uint64(d), inverse)))
	}
}

func inverseLock(lock syncpattern.CarrierLock) syncpattern.CarrierLock {
	switch lock {
	case syncpattern.PLUS_90:
		return syncpattern.MINUS_90
	case syncpattern.MINUS_90:
		return syncpattern.PLUS_90
	case syncpattern.INVERTED:
		return syncpattern.INVERTED
	default:
		return syncpattern.NORMAL
	}
}

// emitBurst implements spec.md §4.5's emit_burst: pad for any drift
// before the aligned burst, pack the buffer, hand off, then reset the
// cadence counter.
func (f *BurstFramer) emitBurst(pattern syncpattern.Pattern, bitErrors uint8, lock syncpattern.CarrierLock) {
	if f.dibitCounter > burstDibits {
		f.emitSyncLoss(2 * (f.dibitCounter - burstDibits))
	}

	var burst Burst
	f.messageBuffer.PackBits(burst.Bits[:], 0, burstDibits)
	burst.Sync = pattern
	burst.Lock = lock
	burst.BitErrors = bitErrors
	burst.TimestampMs = f.clock.CurrentMillis()
	if f.current == f.secondary {
		burst.Timeslot = 1
	}
	f.listener.OnBurst(burst)

	f.dibitCounter = 0
}

func (f *BurstFramer) emitSyncLoss(bits uint32) {
	f.clock.Advance(bits)
	f.listener.OnSyncLoss(SyncLoss{Bits: bits, TimestampMs: f.clock.CurrentMillis()})
}

func (f *BurstFramer) String() string {
	return fmt.Sprintf("BurstFramer{state=%v synchronized=%v}", f.state, f.Synchronized())
}
