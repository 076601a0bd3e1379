// Package sink provides sink fan-out for when more than one
// messageframer.Sink is enabled at once.
package sink

import "github.com/dbehnke/dmr-burstframer/pkg/framer"

// Multi dispatches every burst and sync-loss event to all of its
// member sinks, in order.
type Multi struct {
	sinks []interface {
		OnBurst(framer.Burst)
		OnSyncLoss(framer.SyncLoss)
	}
}

// NewMulti builds a fan-out sink over the given members.
func NewMulti(members ...interface {
	OnBurst(framer.Burst)
	OnSyncLoss(framer.SyncLoss)
}) *Multi {
	return &Multi{sinks: members}
}

// OnBurst forwards burst to every member sink.
func (m *Multi) OnBurst(burst framer.Burst) {
	for _, s := range m.sinks {
		s.OnBurst(burst)
	}
}

// OnSyncLoss forwards loss to every member sink.
func (m *Multi) OnSyncLoss(loss framer.SyncLoss) {
	for _, s := range m.sinks {
		s.OnSyncLoss(loss)
	}
}
