package ports

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Timing holds the three host-scheduled trigger intervals consumed by the
// refresh engine.
type Timing struct {
	PollInterval      time.Duration `yaml:"poll_interval"`
	ForcedInterval    time.Duration `yaml:"forced_interval"`
	ConnectionTimeout time.Duration `yaml:"connection_timeout"`
}

// UnmarshalYAML accepts Go duration strings ("15s", "30m") for every interval.
func (t *Timing) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		PollInterval      string `yaml:"poll_interval"`
		ForcedInterval    string `yaml:"forced_interval"`
		ConnectionTimeout string `yaml:"connection_timeout"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	for _, item := range []struct {
		dst  *time.Duration
		src  string
		name string
	}{
		{&t.PollInterval, raw.PollInterval, "poll_interval"},
		{&t.ForcedInterval, raw.ForcedInterval, "forced_interval"},
		{&t.ConnectionTimeout, raw.ConnectionTimeout, "connection_timeout"},
	} {
		if item.src == "" {
			continue
		}
		d, err := time.ParseDuration(item.src)
		if err != nil {
			return fmt.Errorf("refresh.%s: %w", item.name, err)
		}
		*item.dst = d
	}
	return nil
}
