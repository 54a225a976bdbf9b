package homink

import (
	"github.com/Birgenshire/homink/internal/adapters/hass"
	"github.com/Birgenshire/homink/internal/app/config"
)

// Config re-exports the root configuration struct so downstream projects can
// construct or modify it programmatically.
type Config = config.Config

type (
	// MQTTConfig holds the statestream session details.
	MQTTConfig = hass.Config
	// MetricsConfig configures the metrics HTTP server.
	MetricsConfig = config.MetricsConfig
	// HistoryConfig enables the optional Postgres reading recorder.
	HistoryConfig = config.HistoryConfig
)

// LoadConfig loads YAML from disk using the internal config reader.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}
