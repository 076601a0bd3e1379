package config

import (
	"testing"

	"github.com/spf13/viper"
)

func TestLoad_UsesDefaults_WhenNoFile(t *testing.T) {
	// Reset viper to avoid cross-test pollution.
	viper.Reset()
	// A device is required when serial.synthetic keeps its false default.
	viper.Set("serial.device", "/dev/ttyUSB0")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Serial.Synthetic != false {
		t.Errorf("expected Serial.Synthetic default false, got %v", cfg.Serial.Synthetic)
	}
	if cfg.Serial.BaudRate != 115200 {
		t.Errorf("expected Serial.BaudRate default 115200, got %d", cfg.Serial.BaudRate)
	}
	if cfg.Framer.SearchThreshold != 3 {
		t.Errorf("expected Framer.SearchThreshold default 3, got %d", cfg.Framer.SearchThreshold)
	}
	if cfg.Framer.SyncThreshold != 6 {
		t.Errorf("expected Framer.SyncThreshold default 6, got %d", cfg.Framer.SyncThreshold)
	}
	if cfg.Sinks.WebSocket.Port != 8080 {
		t.Errorf("expected Sinks.WebSocket.Port default 8080, got %d", cfg.Sinks.WebSocket.Port)
	}
	if cfg.PLL.Mode != "none" {
		t.Errorf("expected PLL.Mode default \"none\", got %q", cfg.PLL.Mode)
	}
	if cfg.Logging.Level == "" {
		t.Errorf("expected Logging.Level to be set (default info)")
	}
	if cfg.Metrics.Port != 9090 {
		t.Errorf("expected Metrics.Port default 9090, got %d", cfg.Metrics.Port)
	}
}

// Load with no config file and serial.synthetic left at its false
// default must fail validation, since serial.device is then required.
func TestLoad_FailsValidation_WhenNoDeviceAndNotSynthetic(t *testing.T) {
	viper.Reset()
	if _, err := Load(""); err == nil {
		t.Fatal("expected validation error for missing serial.device")
	}
}

func TestValidate_Errors(t *testing.T) {
	base := func() Config {
		return Config{
			Serial: SerialConfig{Synthetic: true},
			Framer: FramerConfig{SearchThreshold: 3, SyncThreshold: 6, SymbolRateHz: 4800},
			PLL:    PLLConfig{Mode: "none"},
		}
	}

	t.Run("search threshold out of range", func(t *testing.T) {
		cfg := base()
		cfg.Framer.SearchThreshold = 25
		if err := validate(&cfg); err == nil {
			t.Fatal("expected error for search_threshold > 24")
		}
	})

	t.Run("sync threshold out of range", func(t *testing.T) {
		cfg := base()
		cfg.Framer.SyncThreshold = 0
		if err := validate(&cfg); err == nil {
			t.Fatal("expected error for sync_threshold < 1")
		}
	})

	t.Run("device required unless synthetic", func(t *testing.T) {
		cfg := base()
		cfg.Serial.Synthetic = false
		if err := validate(&cfg); err == nil {
			t.Fatal("expected error for missing serial.device")
		}
	})

	t.Run("mqtt broker required when enabled", func(t *testing.T) {
		cfg := base()
		cfg.Sinks.MQTT.Enabled = true
		if err := validate(&cfg); err == nil {
			t.Fatal("expected error for missing mqtt.broker")
		}
	})

	t.Run("websocket port out of range", func(t *testing.T) {
		cfg := base()
		cfg.Sinks.WebSocket.Enabled = true
		cfg.Sinks.WebSocket.Port = 70000
		if err := validate(&cfg); err == nil {
			t.Fatal("expected error for websocket port out of range")
		}
	})

	t.Run("invalid pll mode", func(t *testing.T) {
		cfg := base()
		cfg.PLL.Mode = "bogus"
		if err := validate(&cfg); err == nil {
			t.Fatal("expected error for invalid pll.mode")
		}
	})

	t.Run("metrics port out of range", func(t *testing.T) {
		cfg := base()
		cfg.Metrics.Enabled = true
		cfg.Metrics.Port = 0
		if err := validate(&cfg); err == nil {
			t.Fatal("expected error for metrics.port out of range")
		}
	})

	t.Run("valid config passes", func(t *testing.T) {
		cfg := base()
		if err := validate(&cfg); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})
}
