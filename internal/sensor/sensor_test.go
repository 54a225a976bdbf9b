package sensor

import (
	"testing"
)

type stubSource struct {
	state string
	has   bool
}

func (s *stubSource) HasValue() bool { return s.has }
func (s *stubSource) State() string  { return s.state }

func TestThresholdFirstAvailableReadingIsSignificantOnce(t *testing.T) {
	src := &stubSource{state: "21.5", has: true}
	s := NewThreshold("Temperature", "sensor.birgenshire_temp", 1.0, src, nil)

	if !s.Significant() {
		t.Fatalf("expected first available reading to be significant")
	}
	if s.Significant() {
		t.Fatalf("expected repeated check without external change to be false")
	}
	if !s.Available() {
		t.Fatalf("expected sensor to be available after first reading")
	}
	if s.Float64() != 21.5 {
		t.Fatalf("expected cache 21.5, got %f", s.Float64())
	}
}

func TestThresholdBootstrapSurvivesRefresh(t *testing.T) {
	src := &stubSource{state: "21.5", has: true}
	s := NewThreshold("Temperature", "sensor.birgenshire_temp", 1.0, src, nil)

	s.Refresh()
	if s.Float64() != 21.5 {
		t.Fatalf("refresh should sync cache, got %f", s.Float64())
	}
	if !s.Significant() {
		t.Fatalf("first significance check must still report the bootstrap")
	}
	if s.Significant() {
		t.Fatalf("bootstrap must report exactly once")
	}
}

func TestThresholdBoundaryIsStrict(t *testing.T) {
	src := &stubSource{state: "10", has: true}
	s := NewThreshold("Temperature", "sensor.birgenshire_temp", 1.0, src, nil)
	if !s.Significant() {
		t.Fatalf("bootstrap expected")
	}

	src.state = "11"
	if s.Significant() {
		t.Fatalf("delta equal to threshold must not be significant")
	}
	if s.Float64() != 10 {
		t.Fatalf("insignificant check must not mutate cache, got %f", s.Float64())
	}

	src.state = "11.001"
	if !s.Significant() {
		t.Fatalf("delta beyond threshold must be significant")
	}
	if s.Float64() != 11.001 {
		t.Fatalf("significant check must cache the new value, got %f", s.Float64())
	}
}

func TestAvailabilityEdgeDominatesValueRule(t *testing.T) {
	src := &stubSource{state: "on", has: true}
	s := NewState("Sidewalk", "binary_sensor.gate", src, nil)
	if !s.Significant() {
		t.Fatalf("bootstrap expected")
	}

	src.has = false
	if !s.Significant() {
		t.Fatalf("available->unavailable must be significant")
	}
	if s.Significant() {
		t.Fatalf("repeated check after the edge must be false")
	}

	src.has = true // same value as cached
	if !s.Significant() {
		t.Fatalf("unavailable->available must be significant even with unchanged value")
	}
}

func TestNeverAvailableIsNeverSignificant(t *testing.T) {
	src := &stubSource{has: false}
	s := NewState("Lock", "lock.shed_lock", src, nil)

	for i := 0; i < 3; i++ {
		if s.Significant() {
			t.Fatalf("source that never had a value must not be significant")
		}
	}
}

func TestPassiveNeverTriggersButRefreshCaches(t *testing.T) {
	src := &stubSource{state: "42.5", has: true}
	s := NewPassive("Solar 24hr", "sensor.solar_production_last_24h_2", src, nil)

	if s.Significant() {
		t.Fatalf("passive bootstrap must not trigger")
	}
	src.has = false
	if s.Significant() {
		t.Fatalf("passive availability edge must not trigger")
	}
	src.has = true
	src.state = "99.9"
	if s.Significant() {
		t.Fatalf("passive value change must not trigger")
	}

	s.Refresh()
	if s.State() != "99.9" {
		t.Fatalf("refresh must still cache passive values, got %q", s.State())
	}
	if !s.Available() {
		t.Fatalf("refresh must sync passive availability")
	}
}

func TestFilteredTextAbsorbsGlitch(t *testing.T) {
	src := &stubSource{state: "Charging", has: true}
	s := NewFilteredText("Charger", "sensor.tesla_wall_connector_status", "unavailable", src, nil)
	if !s.Significant() {
		t.Fatalf("bootstrap expected")
	}

	src.state = "unavailable"
	if s.Significant() {
		t.Fatalf("transition into the ignored value must not be significant")
	}
	if s.State() != "Charging" {
		t.Fatalf("ignored transition must not mutate cache, got %q", s.State())
	}

	src.state = "Charging"
	if s.Significant() {
		t.Fatalf("glitch round trip must not be significant")
	}

	src.state = "Idle"
	if !s.Significant() {
		t.Fatalf("transition between two non-ignored values must be significant")
	}
	if s.State() != "Idle" {
		t.Fatalf("significant transition must cache the new value, got %q", s.State())
	}
}

func TestFilteredTextIgnoresTransitionOutOfCachedIgnoredValue(t *testing.T) {
	src := &stubSource{state: "unavailable", has: true}
	s := NewFilteredText("Charger", "sensor.tesla_wall_connector_status", "unavailable", src, nil)
	if !s.Significant() {
		t.Fatalf("bootstrap applies before filtering")
	}

	// Poll path can refresh the cache to the ignored value; leaving it is
	// still transparent.
	src.state = "Charging"
	if s.Significant() {
		t.Fatalf("transition out of the ignored value must not be significant")
	}
}

func TestNilSourceIsInertNotACrash(t *testing.T) {
	s := NewThreshold("Temperature", "sensor.birgenshire_temp", 1.0, nil, nil)

	s.Refresh()
	if s.Significant() {
		t.Fatalf("nil source must never be significant")
	}
	if s.Available() {
		t.Fatalf("nil source must report unavailable")
	}
}

func TestThresholdTreatsUnparseableAsUnavailable(t *testing.T) {
	src := &stubSource{state: "10", has: true}
	s := NewThreshold("Solar Output", "sensor.birgenshire_solar_power", 0.5, src, nil)
	if !s.Significant() {
		t.Fatalf("bootstrap expected")
	}

	src.state = "NaN"
	if !s.Significant() {
		t.Fatalf("NaN reading must register as an availability edge")
	}
	if s.Available() {
		t.Fatalf("NaN reading must leave the sensor unavailable")
	}
	if s.Significant() {
		t.Fatalf("repeated NaN must be quiet")
	}

	src.state = "12"
	if !s.Significant() {
		t.Fatalf("recovering a numeric value must be significant")
	}
	if s.Float64() != 12 {
		t.Fatalf("expected cache 12, got %f", s.Float64())
	}
}

func TestBuildRejectsBadDescriptors(t *testing.T) {
	cases := []Descriptor{
		{Name: "", SourceID: "sensor.x", Kind: "state"},
		{Name: "X", SourceID: "", Kind: "state"},
		{Name: "X", SourceID: "sensor.x", Kind: "magic"},
		{Name: "X", SourceID: "sensor.x", Kind: "threshold", Threshold: 0},
		{Name: "X", SourceID: "sensor.x", Kind: "filtered_text"},
	}
	for _, d := range cases {
		if _, err := Build(d, nil, nil); err == nil {
			t.Fatalf("expected descriptor %+v to be rejected", d)
		}
	}
}
