// Package messageframer provides the thin orchestration facade that
// sits between a raw symbol/byte stream and a downstream message
// sink: it drives the burst framer, resolves the final timeslot for
// each burst, and dispatches to the sink.
package messageframer

import (
	"github.com/dbehnke/dmr-burstframer/pkg/dibit"
	"github.com/dbehnke/dmr-burstframer/pkg/framer"
	"github.com/dbehnke/dmr-burstframer/pkg/syncpattern"
	"github.com/dbehnke/dmr-burstframer/pkg/timebase"
)

// Sink receives finished bursts and sync-loss events, already
// tagged with a resolved timeslot.
type Sink interface {
	OnBurst(framer.Burst)
	OnSyncLoss(framer.SyncLoss)
}

// MessageFramer unpacks bytes into dibits, runs the burst framer, and
// resolves the timeslot for every emitted burst before forwarding it.
type MessageFramer struct {
	framer   *framer.BurstFramer
	timebase *timebase.Tracker
	sink     Sink

	lastKnownTimeslot int
}

// bridgeListener adapts framer.Listener to call back into the
// MessageFramer that owns it; it exists so BurstFramer never needs to
// import this package.
type bridgeListener struct {
	mf *MessageFramer
}

func (b bridgeListener) OnBurst(burst framer.Burst)       { b.mf.handleBurst(burst) }
func (b bridgeListener) OnSyncLoss(loss framer.SyncLoss) { b.mf.sink.OnSyncLoss(loss) }

// New constructs a MessageFramer. sink and pll follow framer.New's
// nilability rules (sink must not be nil, pll may be).
func New(sink Sink, pll framer.IPhaseLockedLoop) *MessageFramer {
	if sink == nil {
		panic("messageframer: sink must not be nil")
	}
	mf := &MessageFramer{
		timebase: timebase.New(),
		sink:     sink,
	}
	mf.framer = framer.New(bridgeListener{mf: mf}, mf.timebase, pll)
	return mf
}

// Receive forwards a single dibit to the burst framer.
func (mf *MessageFramer) Receive(d dibit.Dibit) {
	mf.framer.Receive(d)
}

// ReceiveBytes anchors the timebase to tsMs, then unpacks each byte
// into four dibits in big-endian dibit order (bits [7:6], [5:4],
// [3:2], [1:0]) and forwards them.
func (mf *MessageFramer) ReceiveBytes(buf []byte, tsMs uint64) {
	mf.timebase.Set(tsMs)
	for _, b := range buf {
		mf.framer.Receive(dibit.Dibit((b >> 6) & 0x03))
		mf.framer.Receive(dibit.Dibit((b >> 4) & 0x03))
		mf.framer.Receive(dibit.Dibit((b >> 2) & 0x03))
		mf.framer.Receive(dibit.Dibit(b & 0x03))
	}
}

// Reset resets the underlying burst framer and the last-known
// timeslot fallback.
func (mf *MessageFramer) Reset() {
	mf.framer.Reset()
	mf.lastKnownTimeslot = 0
}

// handleBurst resolves the final timeslot per spec.md §4.7, then
// forwards to the sink.
func (mf *MessageFramer) handleBurst(burst framer.Burst) {
	switch {
	case burst.Sync.HasCACH:
		var prefix [3]byte
		copy(prefix[:], burst.Bits[:3])
		cach := ParseCACH(prefix)
		if cach.Valid {
			burst.Timeslot = cach.Timeslot
			mf.lastKnownTimeslot = cach.Timeslot
		} else {
			burst.Timeslot = mf.toggle()
		}
	case burst.Sync.Class == syncpattern.DIRECT_D0 || burst.Sync.Class == syncpattern.DIRECT_V0:
		burst.Timeslot = 0
		mf.lastKnownTimeslot = 0
	case burst.Sync.Class == syncpattern.DIRECT_D1 || burst.Sync.Class == syncpattern.DIRECT_V1:
		burst.Timeslot = 1
		mf.lastKnownTimeslot = 1
	default:
		burst.Timeslot = mf.toggle()
	}
	mf.sink.OnBurst(burst)
}

func (mf *MessageFramer) toggle() int {
	mf.lastKnownTimeslot = 1 - mf.lastKnownTimeslot
	return mf.lastKnownTimeslot
}
