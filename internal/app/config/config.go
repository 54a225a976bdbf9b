package config

import (
	"fmt"
	"os"
	"time"

	"github.com/Birgenshire/homink/internal/adapters/hass"
	"github.com/Birgenshire/homink/internal/ports"
	"github.com/Birgenshire/homink/internal/sensor"
	"gopkg.in/yaml.v3"
)

type Config struct {
	MQTT    hass.Config         `yaml:"mqtt"`
	Sensors []sensor.Descriptor `yaml:"sensors"`
	Refresh ports.Timing        `yaml:"refresh"`
	Metrics MetricsConfig       `yaml:"metrics"`
	History HistoryConfig       `yaml:"history"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// HistoryConfig enables the optional reading recorder when ConnString is set.
type HistoryConfig struct {
	ConnString string `yaml:"conn_string"`
	Table      string `yaml:"table"`
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Refresh.PollInterval == 0 {
		c.Refresh.PollInterval = 15 * time.Second
	}
	if c.Refresh.ForcedInterval == 0 {
		c.Refresh.ForcedInterval = 30 * time.Minute
	}
	if c.Refresh.ConnectionTimeout == 0 {
		c.Refresh.ConnectionTimeout = 30 * time.Minute
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9100"
	}
	if c.History.Table == "" {
		c.History.Table = "readings"
	}

	c.MQTT.ApplyDefaults()
}

func (c *Config) validate() error {
	if err := c.MQTT.Validate(); err != nil {
		return fmt.Errorf("mqtt config: %w", err)
	}
	if len(c.Sensors) == 0 {
		return fmt.Errorf("at least one sensor must be configured")
	}
	seen := make(map[string]bool, len(c.Sensors))
	for _, d := range c.Sensors {
		if _, err := sensor.Build(d, nil, nil); err != nil {
			return err
		}
		if seen[d.SourceID] {
			return fmt.Errorf("sensor %q: duplicate source_id %q", d.Name, d.SourceID)
		}
		seen[d.SourceID] = true
	}
	if c.Refresh.PollInterval <= 0 {
		return fmt.Errorf("refresh.poll_interval must be > 0")
	}
	if c.Refresh.ForcedInterval <= 0 {
		return fmt.Errorf("refresh.forced_interval must be > 0")
	}
	if c.Refresh.ConnectionTimeout <= 0 {
		return fmt.Errorf("refresh.connection_timeout must be > 0")
	}
	return nil
}
