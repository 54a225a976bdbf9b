package sensor

import (
	"math"
	"strconv"
	"strings"

	"github.com/Birgenshire/homink/internal/domain"
	"github.com/Birgenshire/homink/internal/ports"
)

// Sensor is one monitored quantity: identity, cached state, and a
// kind-specific change-significance rule.
//
// Refresh syncs the cache to the source unconditionally and is used by the
// periodic poll path. Significant compares the source's live state against the
// cache and, when it reports true, updates the cache as a side effect, so
// repeated calls without an intervening external change report false.
type Sensor interface {
	Refresh()
	Significant() bool

	Name() string
	SourceID() string
	Kind() domain.Kind
	Available() bool
	State() string
	View() domain.SensorView
}

// kindRule is the per-kind slice of the significance check. current reports
// the live state and availability as seen by this kind, cache overwrites the
// cached value, and changed applies the value rule, mutating the cache only
// when it reports true. Kinds that never trigger a redraw report triggers
// false and are skipped before any cache mutation.
type kindRule interface {
	current() (string, bool)
	cache(state string)
	changed(state string) bool
	triggers() bool
}

type record struct {
	name     string
	sourceID string
	kind     domain.Kind
	src      ports.Source
	obs      ports.Observability

	avail  bool
	primed bool
}

func (r *record) Name() string      { return r.name }
func (r *record) SourceID() string  { return r.sourceID }
func (r *record) Kind() domain.Kind { return r.kind }
func (r *record) Available() bool   { return r.avail }

func (r *record) current() (string, bool) {
	if r.src == nil || !r.src.HasValue() {
		return "", false
	}
	return r.src.State(), true
}

func (r *record) triggers() bool { return true }

func (r *record) refresh(k kindRule) {
	if r.src == nil {
		return
	}
	state, ok := k.current()
	r.avail = ok
	if ok {
		k.cache(state)
	}
}

// check implements the significance contract shared by every kind:
// availability flips dominate, a never-available source is never significant,
// the first available observation bootstraps, and only then does the
// kind-specific value rule apply.
func (r *record) check(k kindRule) bool {
	if r.src == nil {
		return false
	}
	state, curAvail := k.current()

	if curAvail != r.avail {
		if !k.triggers() {
			return false
		}
		r.avail = curAvail
		if curAvail {
			k.cache(state)
			r.primed = true
		}
		r.logChange("availability changed")
		return true
	}

	if !curAvail {
		return false
	}

	if !r.primed {
		if !k.triggers() {
			return false
		}
		k.cache(state)
		r.primed = true
		r.logChange("initialized with first value")
		return true
	}

	return k.changed(state)
}

func (r *record) logChange(reason string) {
	if r.obs != nil {
		r.obs.LogInfo("sensor_change", ports.Field{Key: "sensor", Value: r.name}, ports.Field{Key: "reason", Value: reason})
	}
}

func newRecord(name, sourceID string, kind domain.Kind, src ports.Source, obs ports.Observability) record {
	return record{name: name, sourceID: sourceID, kind: kind, src: src, obs: obs}
}

// StateSensor reports any value inequality as significant. It covers both
// binary sources ("on"/"off") and free-text status strings.
type StateSensor struct {
	record
	value string
}

func NewState(name, sourceID string, src ports.Source, obs ports.Observability) *StateSensor {
	return &StateSensor{record: newRecord(name, sourceID, domain.KindState, src, obs)}
}

func (s *StateSensor) Refresh()          { s.refresh(s) }
func (s *StateSensor) Significant() bool { return s.check(s) }
func (s *StateSensor) State() string     { return s.value }

func (s *StateSensor) cache(state string) { s.value = state }

func (s *StateSensor) changed(state string) bool {
	if state == s.value {
		return false
	}
	s.value = state
	s.logChange("value changed")
	return true
}

func (s *StateSensor) View() domain.SensorView { return view(&s.record, s.value) }

// ThresholdSensor is significant only when the absolute numeric delta against
// the cached value exceeds the threshold (strict). A state that does not parse
// as a finite number is treated as unavailable, never compared.
type ThresholdSensor struct {
	record
	value     float64
	threshold float64
}

func NewThreshold(name, sourceID string, threshold float64, src ports.Source, obs ports.Observability) *ThresholdSensor {
	return &ThresholdSensor{
		record:    newRecord(name, sourceID, domain.KindThreshold, src, obs),
		threshold: threshold,
	}
}

func (s *ThresholdSensor) Refresh()          { s.refresh(s) }
func (s *ThresholdSensor) Significant() bool { return s.check(s) }

func (s *ThresholdSensor) State() string {
	return strconv.FormatFloat(s.value, 'f', -1, 64)
}

// Float64 exposes the cached numeric value for display formatting.
func (s *ThresholdSensor) Float64() float64 { return s.value }

func (s *ThresholdSensor) current() (string, bool) {
	state, ok := s.record.current()
	if !ok {
		return "", false
	}
	if _, err := parseState(state); err != nil {
		return "", false
	}
	return state, true
}

func (s *ThresholdSensor) cache(state string) {
	if f, err := parseState(state); err == nil {
		s.value = f
	}
}

func (s *ThresholdSensor) changed(state string) bool {
	f, err := parseState(state)
	if err != nil {
		return false
	}
	if math.Abs(f-s.value) <= s.threshold {
		return false
	}
	s.value = f
	s.logChange("threshold exceeded")
	return true
}

func (s *ThresholdSensor) View() domain.SensorView { return view(&s.record, s.State()) }

func parseState(state string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(state), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, strconv.ErrRange
	}
	return f, nil
}

// PassiveSensor tracks and caches its value for display but never contributes
// to the redraw decision, not even on availability flips or bootstrap.
type PassiveSensor struct {
	record
	value string
}

func NewPassive(name, sourceID string, src ports.Source, obs ports.Observability) *PassiveSensor {
	return &PassiveSensor{record: newRecord(name, sourceID, domain.KindPassive, src, obs)}
}

func (s *PassiveSensor) Refresh()          { s.refresh(s) }
func (s *PassiveSensor) Significant() bool { return s.check(s) }
func (s *PassiveSensor) State() string     { return s.value }

func (s *PassiveSensor) cache(state string)  { s.value = state }
func (s *PassiveSensor) changed(string) bool { return false }
func (s *PassiveSensor) triggers() bool      { return false }

func (s *PassiveSensor) View() domain.SensorView { return view(&s.record, s.value) }

// FilteredTextSensor is a StateSensor that treats one configured value as
// transparent: a transition into or out of the ignored value is not
// significant. This absorbs transient glitch states reported as a normal
// value string rather than as an availability flag.
type FilteredTextSensor struct {
	record
	value   string
	ignored string
}

func NewFilteredText(name, sourceID, ignored string, src ports.Source, obs ports.Observability) *FilteredTextSensor {
	return &FilteredTextSensor{
		record:  newRecord(name, sourceID, domain.KindFilteredText, src, obs),
		ignored: ignored,
	}
}

func (s *FilteredTextSensor) Refresh()          { s.refresh(s) }
func (s *FilteredTextSensor) Significant() bool { return s.check(s) }
func (s *FilteredTextSensor) State() string     { return s.value }

func (s *FilteredTextSensor) cache(state string) { s.value = state }

func (s *FilteredTextSensor) changed(state string) bool {
	if state == s.ignored {
		s.logChange("ignoring transition to filtered value")
		return false
	}
	if s.value == s.ignored {
		s.logChange("ignoring transition from filtered value")
		return false
	}
	if state == s.value {
		return false
	}
	s.value = state
	s.logChange("value changed")
	return true
}

func (s *FilteredTextSensor) View() domain.SensorView { return view(&s.record, s.value) }

func view(r *record, state string) domain.SensorView {
	return domain.SensorView{
		Name:      r.name,
		SourceID:  r.sourceID,
		Kind:      r.kind,
		State:     state,
		Available: r.avail,
	}
}

var (
	_ Sensor = (*StateSensor)(nil)
	_ Sensor = (*ThresholdSensor)(nil)
	_ Sensor = (*PassiveSensor)(nil)
	_ Sensor = (*FilteredTextSensor)(nil)
)
