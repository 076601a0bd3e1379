package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func TestPrometheusHandler_ServeHTTP(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := NewCollector(reg)

	collector.BurstEmitted(1, "normal", 0)
	collector.SyncLossEmitted(144)
	collector.PLLCorrected("plus_90")
	collector.SetSynchronized(1, true)

	handler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)
	bodyStr := string(body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}

	for _, metric := range []string{
		"dmrburst_bursts_total",
		"dmrburst_sync_loss_total",
		"dmrburst_sync_loss_bits_total",
		"dmrburst_pll_corrections_total",
		"dmrburst_synchronized",
	} {
		if !strings.Contains(bodyStr, metric) {
			t.Errorf("expected metric %s in output", metric)
		}
	}
}

func TestPrometheusHandler_Format(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := NewCollector(reg)
	collector.BurstEmitted(1, "normal", 0)

	handler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	body, _ := io.ReadAll(w.Result().Body)
	bodyStr := string(body)

	if !strings.Contains(bodyStr, "# HELP") {
		t.Error("expected # HELP comments in output")
	}
	if !strings.Contains(bodyStr, "# TYPE") {
		t.Error("expected # TYPE comments in output")
	}
}

func TestPrometheusServer(t *testing.T) {
	collector := NewCollector(prometheus.NewRegistry())
	config := PrometheusConfig{
		Enabled: true,
		Port:    0,
		Path:    "/metrics",
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := NewPrometheusServer(config, collector, nil)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-errChan:
		if err != nil && err != context.Canceled && err != http.ErrServerClosed {
			t.Errorf("unexpected error from server: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("server did not stop in time")
	}
}

func TestPrometheusServer_Disabled(t *testing.T) {
	collector := NewCollector(prometheus.NewRegistry())
	config := PrometheusConfig{Enabled: false}

	ctx := context.Background()
	server := NewPrometheusServer(config, collector, nil)

	if err := server.Start(ctx); err != nil {
		t.Errorf("expected no error when disabled, got %v", err)
	}
}
