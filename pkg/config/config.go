package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config represents the application configuration.
type Config struct {
	Serial  SerialConfig  `mapstructure:"serial"`
	Framer  FramerConfig  `mapstructure:"framer"`
	Sinks   SinkConfig    `mapstructure:"sinks"`
	PLL     PLLConfig     `mapstructure:"pll"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// SerialConfig holds the symbol-source serial port configuration.
type SerialConfig struct {
	Device        string `mapstructure:"device"`
	BaudRate      int    `mapstructure:"baud_rate"`
	ReadTimeoutMS int    `mapstructure:"read_timeout_ms"`
	Synthetic     bool   `mapstructure:"synthetic"`
}

// FramerConfig holds burst-framer tuning parameters.
type FramerConfig struct {
	SearchThreshold int     `mapstructure:"search_threshold"`
	SyncThreshold   int     `mapstructure:"sync_threshold"`
	SymbolRateHz    float64 `mapstructure:"symbol_rate_hz"`
}

// SinkConfig groups the burst/sync-loss event sinks.
type SinkConfig struct {
	MQTT      MQTTSinkConfig      `mapstructure:"mqtt"`
	WebSocket WebSocketSinkConfig `mapstructure:"websocket"`
}

// MQTTSinkConfig holds MQTT publisher configuration.
type MQTTSinkConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	QoS         byte   `mapstructure:"qos"`
	Retained    bool   `mapstructure:"retained"`
}

// WebSocketSinkConfig holds the dashboard WebSocket hub configuration.
type WebSocketSinkConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

// PLLConfig selects the phase-locked-loop correction collaborator.
type PLLConfig struct {
	Mode                    string `mapstructure:"mode"` // "serial" or "none"
	CorrectionCommandPrefix string `mapstructure:"correction_command_prefix"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig holds the Prometheus exposition configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// Load loads configuration from file and environment variables.
func Load(configFile string) (*Config, error) {
	setDefaults()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath("/etc/dmrburstd")
	}

	viper.SetEnvPrefix("DMRBURST")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found is OK, use defaults.
		} else if os.IsNotExist(err) {
			// File explicitly specified but doesn't exist - also OK.
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults() {
	viper.SetDefault("serial.baud_rate", 115200)
	viper.SetDefault("serial.read_timeout_ms", 100)
	viper.SetDefault("serial.synthetic", false)

	viper.SetDefault("framer.search_threshold", 3)
	viper.SetDefault("framer.sync_threshold", 6)
	viper.SetDefault("framer.symbol_rate_hz", 4800.0)

	viper.SetDefault("sinks.mqtt.enabled", false)
	viper.SetDefault("sinks.mqtt.topic_prefix", "dmrburst")
	viper.SetDefault("sinks.mqtt.client_id", "dmrburstd")
	viper.SetDefault("sinks.mqtt.qos", 1)
	viper.SetDefault("sinks.mqtt.retained", false)

	viper.SetDefault("sinks.websocket.enabled", true)
	viper.SetDefault("sinks.websocket.host", "0.0.0.0")
	viper.SetDefault("sinks.websocket.port", 8080)

	viper.SetDefault("pll.mode", "none")
	viper.SetDefault("pll.correction_command_prefix", "PLL")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.port", 9090)
	viper.SetDefault("metrics.path", "/metrics")
}
