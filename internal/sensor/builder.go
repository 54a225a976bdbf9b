package sensor

import (
	"fmt"

	"github.com/Birgenshire/homink/internal/domain"
	"github.com/Birgenshire/homink/internal/ports"
)

// Descriptor is one row of the monitored-quantity table. The whole set of
// sensors is declared as data and built by a single loop instead of one
// constructor call per quantity.
type Descriptor struct {
	Name      string      `yaml:"name"`
	SourceID  string      `yaml:"source_id"`
	Kind      domain.Kind `yaml:"kind"`
	Threshold float64     `yaml:"threshold"`
	Ignored   string      `yaml:"ignored"`
}

func (d Descriptor) validate() error {
	if d.Name == "" {
		return fmt.Errorf("sensor name is required")
	}
	if d.SourceID == "" {
		return fmt.Errorf("sensor %q: source_id is required", d.Name)
	}
	if !d.Kind.Valid() {
		return fmt.Errorf("sensor %q: unknown kind %q", d.Name, d.Kind)
	}
	if d.Kind == domain.KindThreshold && d.Threshold <= 0 {
		return fmt.Errorf("sensor %q: threshold must be > 0", d.Name)
	}
	if d.Kind == domain.KindFilteredText && d.Ignored == "" {
		return fmt.Errorf("sensor %q: ignored value is required", d.Name)
	}
	return nil
}

// Build constructs the sensor for one descriptor, wiring the source accessor
// from the collector. A nil source is legal; the record behaves as
// unavailable until the host wiring completes.
func Build(d Descriptor, src ports.Source, obs ports.Observability) (Sensor, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	switch d.Kind {
	case domain.KindState:
		return NewState(d.Name, d.SourceID, src, obs), nil
	case domain.KindThreshold:
		return NewThreshold(d.Name, d.SourceID, d.Threshold, src, obs), nil
	case domain.KindPassive:
		return NewPassive(d.Name, d.SourceID, src, obs), nil
	case domain.KindFilteredText:
		return NewFilteredText(d.Name, d.SourceID, d.Ignored, src, obs), nil
	}
	return nil, fmt.Errorf("sensor %q: unknown kind %q", d.Name, d.Kind)
}

// BuildRegistry builds every descriptor and registers the resulting sensors
// in declaration order.
func BuildRegistry(descs []Descriptor, sources func(id string) ports.Source, obs ports.Observability) (*Registry, error) {
	reg := NewRegistry()
	for _, d := range descs {
		var src ports.Source
		if sources != nil {
			src = sources(d.SourceID)
		}
		s, err := Build(d, src, obs)
		if err != nil {
			return nil, err
		}
		reg.Register(s)
	}
	return reg, nil
}
