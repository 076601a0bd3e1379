// Package metrics exposes burst-framer runtime metrics to Prometheus.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector wraps the burst-framer's Prometheus series behind a
// method-per-event API, so framer/sink code never imports the
// Prometheus client directly.
type Collector struct {
	registry       *prometheus.Registry
	bursts         *prometheus.CounterVec
	syncLossTotal  prometheus.Counter
	syncLossBits   prometheus.Counter
	bitErrors      prometheus.Histogram
	pllCorrections *prometheus.CounterVec
	synchronized   *prometheus.GaugeVec
}

// NewCollector creates a collector and registers its series with reg.
// Passing prometheus.NewRegistry() gives each caller (each test, or
// the daemon) its own isolated registry; PrometheusServer exposes
// whichever registry the collector was built with.
func NewCollector(reg *prometheus.Registry) *Collector {
	c := &Collector{
		registry: reg,
		bursts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dmrburst_bursts_total",
			Help: "Total number of framed bursts emitted, by timeslot and carrier lock.",
		}, []string{"slot", "lock"}),
		syncLossTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dmrburst_sync_loss_total",
			Help: "Total number of sync-loss events emitted.",
		}),
		syncLossBits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dmrburst_sync_loss_bits_total",
			Help: "Total number of dibit-stream bits accounted for by sync-loss events.",
		}),
		bitErrors: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dmrburst_bit_errors",
			Help:    "Distribution of Hamming-distance bit errors on matched sync fields.",
			Buckets: prometheus.LinearBuckets(0, 1, 25), // 0..24 inclusive
		}),
		pllCorrections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dmrburst_pll_corrections_total",
			Help: "Total number of PLL correction commands issued, by carrier lock anomaly.",
		}, []string{"lock"}),
		synchronized: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dmrburst_synchronized",
			Help: "Whether a timeslot is currently synchronized (1) or not (0).",
		}, []string{"slot"}),
	}

	reg.MustRegister(c.bursts, c.syncLossTotal, c.syncLossBits, c.bitErrors, c.pllCorrections, c.synchronized)
	return c
}

// Registry returns the Prometheus registry this collector's series are
// registered against, for mounting an exposition handler.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// BurstEmitted records a framed burst for the given timeslot and
// carrier lock, and its bit-error count.
func (c *Collector) BurstEmitted(slot int, lock string, bitErrors uint8) {
	c.bursts.WithLabelValues(strconv.Itoa(slot), lock).Inc()
	c.bitErrors.Observe(float64(bitErrors))
}

// SyncLossEmitted records a sync-loss event covering the given number
// of bits.
func (c *Collector) SyncLossEmitted(bits uint32) {
	c.syncLossTotal.Inc()
	c.syncLossBits.Add(float64(bits))
}

// PLLCorrected records a PLL correction command for the given carrier
// lock anomaly.
func (c *Collector) PLLCorrected(lock string) {
	c.pllCorrections.WithLabelValues(lock).Inc()
}

// SetSynchronized records whether the given timeslot is currently
// synchronized.
func (c *Collector) SetSynchronized(slot int, synced bool) {
	value := 0.0
	if synced {
		value = 1.0
	}
	c.synchronized.WithLabelValues(strconv.Itoa(slot)).Set(value)
}
