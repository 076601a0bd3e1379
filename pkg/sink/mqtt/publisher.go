// Package mqtt implements a messageframer.Sink that publishes burst
// and sync-loss events to an MQTT broker, adapted from the teacher's
// publisher stub and wired to a real paho.mqtt.golang client.
package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/dbehnke/dmr-burstframer/pkg/framer"
	"github.com/dbehnke/dmr-burstframer/pkg/logger"
)

// Config holds MQTT publisher configuration.
type Config struct {
	Enabled     bool
	Broker      string
	TopicPrefix string
	ClientID    string
	Username    string
	Password    string
	QoS         byte
	Retained    bool
}

// BurstEvent is the JSON payload published for a framed burst.
type BurstEvent struct {
	Sync        string    `json:"sync"`
	Lock        string    `json:"lock"`
	BitErrors   uint8     `json:"bit_errors"`
	Timeslot    int       `json:"timeslot"`
	TimestampMs uint64    `json:"timestamp_ms"`
	ReceivedAt  time.Time `json:"received_at"`
}

// SyncLossEvent is the JSON payload published for a sync-loss event.
type SyncLossEvent struct {
	Bits        uint32    `json:"bits"`
	TimestampMs uint64    `json:"timestamp_ms"`
	ReceivedAt  time.Time `json:"received_at"`
}

// Publisher publishes burst and sync-loss events over MQTT,
// implementing messageframer.Sink.
type Publisher struct {
	config Config
	log    *logger.Logger
	client paho.Client
}

// New creates a new MQTT publisher. The broker connection is made by
// Start, not New.
func New(config Config, log *logger.Logger) *Publisher {
	if log == nil {
		log = logger.New(logger.Config{Level: "info", Format: "text"})
	}
	return &Publisher{
		config: config,
		log:    log.WithComponent("sink.mqtt"),
	}
}

// Start connects to the configured broker. It is a no-op when the
// sink is disabled.
func (p *Publisher) Start() error {
	if !p.config.Enabled {
		p.log.Info("mqtt publisher disabled")
		return nil
	}

	opts := paho.NewClientOptions().
		AddBroker(p.config.Broker).
		SetClientID(p.config.ClientID).
		SetAutoReconnect(true)
	if p.config.Username != "" {
		opts.SetUsername(p.config.Username)
		opts.SetPassword(p.config.Password)
	}

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt: connect %s: %w", p.config.Broker, err)
	}

	p.log.Info("mqtt publisher connected",
		logger.String("broker", p.config.Broker),
		logger.String("client_id", p.config.ClientID))
	return nil
}

// Stop disconnects from the broker.
func (p *Publisher) Stop() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}

// OnBurst implements messageframer.Sink.
func (p *Publisher) OnBurst(b framer.Burst) {
	if !p.config.Enabled {
		return
	}
	event := BurstEvent{
		Sync:        b.Sync.Class.String(),
		Lock:        b.Lock.String(),
		BitErrors:   b.BitErrors,
		Timeslot:    b.Timeslot,
		TimestampMs: b.TimestampMs,
		ReceivedAt:  time.Now(),
	}
	p.publish(p.formatTopic("bursts"), event)
}

// OnSyncLoss implements messageframer.Sink.
func (p *Publisher) OnSyncLoss(loss framer.SyncLoss) {
	if !p.config.Enabled {
		return
	}
	event := SyncLossEvent{
		Bits:        loss.Bits,
		TimestampMs: loss.TimestampMs,
		ReceivedAt:  time.Now(),
	}
	p.publish(p.formatTopic("sync_loss"), event)
}

func (p *Publisher) publish(topic string, event interface{}) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.log.Error("failed to marshal mqtt event", logger.String("topic", topic), logger.Error(err))
		return
	}

	if p.client == nil {
		p.log.Debug("mqtt publisher not connected, dropping event", logger.String("topic", topic))
		return
	}

	token := p.client.Publish(topic, p.config.QoS, p.config.Retained, payload)
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			p.log.Error("mqtt publish failed", logger.String("topic", topic), logger.Error(err))
		}
	}()
}

func (p *Publisher) formatTopic(suffix string) string {
	prefix := strings.TrimSuffix(p.config.TopicPrefix, "/")
	if prefix == "" {
		return suffix
	}
	return fmt.Sprintf("%s/%s", prefix, suffix)
}
