package metrics

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewCollector(t *testing.T) {
	collector := NewCollector(prometheus.NewRegistry())
	if collector == nil {
		t.Fatal("expected non-nil collector")
	}
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestCollector_BurstEmitted(t *testing.T) {
	collector := NewCollector(prometheus.NewRegistry())

	collector.BurstEmitted(1, "normal", 0)
	collector.BurstEmitted(1, "normal", 2)
	collector.BurstEmitted(2, "plus_90", 5)

	c, err := collector.bursts.GetMetricWithLabelValues("1", "normal")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := counterValue(t, c); got != 2 {
		t.Errorf("expected 2 bursts for slot 1/normal, got %v", got)
	}
}

func TestCollector_SyncLossEmitted(t *testing.T) {
	collector := NewCollector(prometheus.NewRegistry())

	collector.SyncLossEmitted(4944)
	collector.SyncLossEmitted(100)

	if got := counterValue(t, collector.syncLossTotal); got != 2 {
		t.Errorf("expected sync_loss_total 2, got %v", got)
	}
	if got := counterValue(t, collector.syncLossBits); got != 5044 {
		t.Errorf("expected sync_loss_bits_total 5044, got %v", got)
	}
}

func TestCollector_PLLCorrected(t *testing.T) {
	collector := NewCollector(prometheus.NewRegistry())

	collector.PLLCorrected("plus_90")
	collector.PLLCorrected("plus_90")
	collector.PLLCorrected("inverted")

	c, err := collector.pllCorrections.GetMetricWithLabelValues("plus_90")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := counterValue(t, c); got != 2 {
		t.Errorf("expected 2 plus_90 corrections, got %v", got)
	}
}

func TestCollector_SetSynchronized(t *testing.T) {
	collector := NewCollector(prometheus.NewRegistry())

	collector.SetSynchronized(1, true)
	g, err := collector.synchronized.GetMetricWithLabelValues("1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := &dto.Metric{}
	if err := g.Write(m); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if m.GetGauge().GetValue() != 1 {
		t.Errorf("expected gauge 1 after sync, got %v", m.GetGauge().GetValue())
	}

	collector.SetSynchronized(1, false)
	if err := g.Write(m); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if m.GetGauge().GetValue() != 0 {
		t.Errorf("expected gauge 0 after loss, got %v", m.GetGauge().GetValue())
	}
}

func TestCollector_BitErrorsHistogram(t *testing.T) {
	collector := NewCollector(prometheus.NewRegistry())

	collector.BurstEmitted(1, "normal", 0)
	collector.BurstEmitted(1, "normal", 3)
	collector.BurstEmitted(1, "normal", 10)

	m := &dto.Metric{}
	if err := collector.bitErrors.(prometheus.Metric).Write(m); err != nil {
		t.Fatalf("failed to write histogram: %v", err)
	}
	if m.GetHistogram().GetSampleCount() != 3 {
		t.Errorf("expected 3 histogram samples, got %d", m.GetHistogram().GetSampleCount())
	}
}

func TestCollector_Concurrent(t *testing.T) {
	collector := NewCollector(prometheus.NewRegistry())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			collector.BurstEmitted(i%2+1, "normal", uint8(i))
			collector.PLLCorrected("normal")
			collector.SyncLossEmitted(144)
		}(i)
	}
	wg.Wait()

	if got := counterValue(t, collector.syncLossTotal); got != 10 {
		t.Errorf("expected sync_loss_total 10, got %v", got)
	}
}
