package config

import "fmt"

// validate validates the configuration.
func validate(cfg *Config) error {
	if cfg.Framer.SearchThreshold < 1 || cfg.Framer.SearchThreshold > 24 {
		return fmt.Errorf("framer.search_threshold must be between 1 and 24")
	}
	if cfg.Framer.SyncThreshold < 1 || cfg.Framer.SyncThreshold > 24 {
		return fmt.Errorf("framer.sync_threshold must be between 1 and 24")
	}
	if cfg.Framer.SymbolRateHz <= 0 {
		return fmt.Errorf("framer.symbol_rate_hz must be positive")
	}

	if !cfg.Serial.Synthetic && cfg.Serial.Device == "" {
		return fmt.Errorf("serial.device is required unless serial.synthetic is set")
	}

	if cfg.Sinks.MQTT.Enabled && cfg.Sinks.MQTT.Broker == "" {
		return fmt.Errorf("sinks.mqtt.broker is required when sinks.mqtt is enabled")
	}

	if cfg.Sinks.WebSocket.Enabled {
		if cfg.Sinks.WebSocket.Port <= 0 || cfg.Sinks.WebSocket.Port > 65535 {
			return fmt.Errorf("sinks.websocket.port must be between 1 and 65535")
		}
	}

	switch cfg.PLL.Mode {
	case "serial", "none", "":
	default:
		return fmt.Errorf("pll.mode must be \"serial\" or \"none\", got %q", cfg.PLL.Mode)
	}
	if cfg.PLL.Mode == "serial" && !cfg.Serial.Synthetic && cfg.Serial.Device == "" {
		return fmt.Errorf("pll.mode \"serial\" requires serial.device")
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Port <= 0 || cfg.Metrics.Port > 65535 {
			return fmt.Errorf("metrics.port must be between 1 and 65535")
		}
	}

	return nil
}
