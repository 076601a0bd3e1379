package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dbehnke/dmr-burstframer/pkg/config"
	"github.com/dbehnke/dmr-burstframer/pkg/framer"
	"github.com/dbehnke/dmr-burstframer/pkg/logger"
	"github.com/dbehnke/dmr-burstframer/pkg/messageframer"
	"github.com/dbehnke/dmr-burstframer/pkg/metrics"
	"github.com/dbehnke/dmr-burstframer/pkg/pll"
	"github.com/dbehnke/dmr-burstframer/pkg/sink"
	"github.com/dbehnke/dmr-burstframer/pkg/sink/mqtt"
	"github.com/dbehnke/dmr-burstframer/pkg/sink/websocket"
	"github.com/dbehnke/dmr-burstframer/pkg/source"

	"github.com/prometheus/client_golang/prometheus"
)

func newRootCommand(version, gitCommit string) *cobra.Command {
	var configFile string
	var synthetic bool
	var validateOnly bool

	cmd := &cobra.Command{
		Use:     "dmrburstd",
		Short:   "Frame a DMR symbol stream into bursts and publish them to sinks",
		Version: fmt.Sprintf("%s (%s)", version, gitCommit),
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(configFile, synthetic, validateOnly)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&configFile, "config", "", "path to configuration file")
	cmd.Flags().BoolVar(&synthetic, "synthetic", false, "use an in-memory synthetic symbol source instead of a serial port")
	cmd.Flags().BoolVar(&validateOnly, "validate", false, "validate configuration and exit")

	return cmd
}

func run(configFile string, synthetic bool, validateOnly bool) error {
	log := logger.New(logger.Config{Level: "info", Format: "text"})

	if synthetic {
		// Set before Load so validation sees it and does not require
		// serial.device.
		viper.Set("serial.synthetic", true)
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if validateOnly {
		log.Info("configuration is valid")
		return nil
	}

	log = logger.New(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	log.Info("starting dmrburstd", logger.String("version", version), logger.String("commit", gitCommit))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	if cfg.Metrics.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			srv := metrics.NewPrometheusServer(metrics.PrometheusConfig{
				Enabled: cfg.Metrics.Enabled,
				Port:    cfg.Metrics.Port,
				Path:    cfg.Metrics.Path,
			}, collector, log)
			if err := srv.Start(ctx); err != nil && err != context.Canceled {
				log.Error("metrics server error", logger.Error(err))
			}
		}()
	}

	sym, err := buildSource(cfg)
	if err != nil {
		return fmt.Errorf("build symbol source: %w", err)
	}

	sinkOut, mqttPublisher, hub := buildSinks(cfg, log)
	lock := buildPLL(cfg, sym, log)
	mf := messageframer.New(&metricsSink{next: sinkOut, collector: collector}, &metricsPLL{next: lock, collector: collector})

	if mqttPublisher != nil {
		if err := mqttPublisher.Start(); err != nil {
			log.Error("mqtt publisher failed to connect", logger.Error(err))
		}
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		readLoop(ctx, sym, mf, collector, log)
	}()

	log.Info("dmrburstd initialized")

	sig := <-sigCh
	log.Info("received shutdown signal", logger.String("signal", sig.String()))
	cancel()

	if mqttPublisher != nil {
		mqttPublisher.Stop()
	}
	if hub != nil {
		hub.Close()
	}
	_ = sym.Close()

	wg.Wait()
	log.Info("dmrburstd stopped")
	return nil
}

// buildSource opens the symbol source named by cfg.Serial: a real
// serial port, or a synthetic in-memory source in --synthetic mode.
func buildSource(cfg *config.Config) (source.Source, error) {
	if cfg.Serial.Synthetic {
		return source.NewSyntheticBuffer(nil), nil
	}
	timeout := time.Duration(cfg.Serial.ReadTimeoutMS) * time.Millisecond
	return source.OpenSerial(cfg.Serial.Device, cfg.Serial.BaudRate, timeout)
}

// buildPLL selects the framer.IPhaseLockedLoop collaborator named by
// cfg.PLL.Mode.
func buildPLL(cfg *config.Config, sym source.Source, log *logger.Logger) framer.IPhaseLockedLoop {
	switch cfg.PLL.Mode {
	case "serial":
		return newSerialCorrectionPLL(sym, cfg.PLL.CorrectionCommandPrefix, log)
	default:
		return pll.NoopPLL{}
	}
}

// buildSinks wires every enabled sink, fanning out through sink.Multi
// when more than one is active. It also returns the dashboard hub (if
// enabled) so the caller can disconnect its clients on shutdown.
func buildSinks(cfg *config.Config, log *logger.Logger) (messageframer.Sink, *mqtt.Publisher, *websocket.Hub) {
	var active []interface {
		OnBurst(framer.Burst)
		OnSyncLoss(framer.SyncLoss)
	}
	var mqttPublisher *mqtt.Publisher
	var hub *websocket.Hub

	if cfg.Sinks.WebSocket.Enabled {
		hub = websocket.NewHub(log)
		active = append(active, hub)
	}
	if cfg.Sinks.MQTT.Enabled {
		mqttPublisher = mqtt.New(mqtt.Config{
			Enabled:     cfg.Sinks.MQTT.Enabled,
			Broker:      cfg.Sinks.MQTT.Broker,
			TopicPrefix: cfg.Sinks.MQTT.TopicPrefix,
			ClientID:    cfg.Sinks.MQTT.ClientID,
			Username:    cfg.Sinks.MQTT.Username,
			Password:    cfg.Sinks.MQTT.Password,
			QoS:         cfg.Sinks.MQTT.QoS,
			Retained:    cfg.Sinks.MQTT.Retained,
		}, log)
		active = append(active, mqttPublisher)
	}

	switch len(active) {
	case 0:
		return noopSink{}, mqttPublisher, hub
	case 1:
		return active[0], mqttPublisher, hub
	default:
		return sink.NewMulti(active...), mqttPublisher, hub
	}
}

// readLoop drains sym into mf until ctx is cancelled or sym returns
// io.EOF. It does not touch collector itself; burst and sync state
// reach collector through metricsSink.
func readLoop(ctx context.Context, sym source.Source, mf *messageframer.MessageFramer, collector *metrics.Collector, log *logger.Logger) {
	buf := make([]byte, 256)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, tsMs, err := sym.ReadBytes(buf)
		if n > 0 {
			mf.ReceiveBytes(buf[:n], tsMs)
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if err == io.EOF {
				return
			}
			log.Warn("symbol source read error", logger.Error(err))
			time.Sleep(50 * time.Millisecond)
		}
	}
}

type noopSink struct{}

func (noopSink) OnBurst(framer.Burst)       {}
func (noopSink) OnSyncLoss(framer.SyncLoss) {}

// metricsSink records every event on collector before forwarding it,
// so the daemon's sinks stay unaware of metrics entirely.
type metricsSink struct {
	next      messageframer.Sink
	collector *metrics.Collector
}

func (m *metricsSink) OnBurst(b framer.Burst) {
	m.collector.BurstEmitted(b.Timeslot, b.Lock.String(), b.BitErrors)
	m.collector.SetSynchronized(b.Timeslot, true)
	m.next.OnBurst(b)
}

func (m *metricsSink) OnSyncLoss(l framer.SyncLoss) {
	m.collector.SyncLossEmitted(l.Bits)
	m.next.OnSyncLoss(l)
}

// metricsPLL records every correction command on collector before
// forwarding it to the real collaborator.
type metricsPLL struct {
	next      framer.IPhaseLockedLoop
	collector *metrics.Collector
}

func (m *metricsPLL) Correct(offsetHz float64) {
	m.collector.PLLCorrected(lockLabelForOffset(offsetHz))
	m.next.Correct(offsetHz)
}

// lockLabelForOffset maps the correction offsets framer.BurstFramer
// issues (spec.md §6: ±1200 Hz for a ±90° anomaly, +2400 Hz for a
// 180° anomaly) back to a carrier-lock label for the metric.
func lockLabelForOffset(offsetHz float64) string {
	switch {
	case offsetHz < 0:
		return "+90"
	case offsetHz > 0 && offsetHz < 2000:
		return "-90"
	default:
		return "180"
	}
}
