package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Birgenshire/homink/internal/app/refresh"
	"github.com/Birgenshire/homink/internal/domain"
	"github.com/Birgenshire/homink/internal/ports"
	"github.com/Birgenshire/homink/internal/sensor"
)

type stubSource struct {
	state string
	has   bool
}

func (s *stubSource) HasValue() bool { return s.has }
func (s *stubSource) State() string  { return s.state }

// seqSource steps through a fixed sequence of states, one per read, and then
// sticks at the last one.
type seqSource struct {
	states []string
}

func (s *seqSource) HasValue() bool { return true }

func (s *seqSource) State() string {
	st := s.states[0]
	if len(s.states) > 1 {
		s.states = s.states[1:]
	}
	return st
}

type stubRenderer struct {
	redraws  [][]domain.SensorView
	failures int
}

func (r *stubRenderer) Redraw(views []domain.SensorView) error {
	if r.failures > 0 {
		r.failures--
		return errors.New("display busy")
	}
	r.redraws = append(r.redraws, views)
	return nil
}

func (r *stubRenderer) Name() string { return "stub" }

type stubRecorder struct {
	readings []domain.Reading
}

func (r *stubRecorder) Record(readings []domain.Reading) error {
	r.readings = append(r.readings, readings...)
	return nil
}

func (r *stubRecorder) Name() string { return "stub" }

type stubObs struct {
	counters map[string]float64
	errors   []error
}

func newStubObs() *stubObs { return &stubObs{counters: make(map[string]float64)} }

func (s *stubObs) LogInfo(string, ...ports.Field) {}
func (s *stubObs) LogError(_ string, err error, _ ...ports.Field) {
	s.errors = append(s.errors, err)
}
func (s *stubObs) IncCounter(name string, v float64) { s.counters[name] += v }
func (s *stubObs) SetGauge(string, float64)          {}

// quiet timing keeps the tickers out of the way so tests drive every cycle
// through the event channel.
var quietTiming = ports.Timing{
	PollInterval:      time.Hour,
	ForcedInterval:    time.Hour,
	ConnectionTimeout: time.Hour,
}

func newTestEngine(t *testing.T, rend ports.Renderer, rec ports.Recorder, obs ports.Observability, sensors ...sensor.Sensor) *Engine {
	t.Helper()
	reg := sensor.NewRegistry()
	for _, s := range sensors {
		reg.Register(s)
	}
	tracker := refresh.NewTracker(quietTiming.ConnectionTimeout, obs)
	coord := refresh.NewCoordinator(reg, tracker, obs)
	return New(reg, tracker, coord, quietTiming, rend, rec, obs)
}

func runEvents(t *testing.T, e *Engine, events ...domain.Event) {
	t.Helper()
	ch := make(chan domain.Event, len(events))
	for _, ev := range events {
		ch <- ev
	}
	close(ch)
	if err := e.Run(context.Background(), ch, nil); err != nil {
		t.Fatalf("engine run: %v", err)
	}
}

func TestEngineRedrawsOncePerBurst(t *testing.T) {
	srcA := &stubSource{state: "on", has: true}
	srcB := &stubSource{state: "Idle", has: true}
	a := sensor.NewState("Sidewalk", "binary_sensor.gate", srcA, nil)
	b := sensor.NewState("Charger", "sensor.tesla_wall_connector_status", srcB, nil)

	rend := &stubRenderer{}
	obs := newStubObs()
	e := newTestEngine(t, rend, nil, obs, a, b)

	now := time.Unix(1_700_000_000, 0)
	runEvents(t, e,
		domain.Event{SourceID: "binary_sensor.gate", State: "on", Available: true, At: now},
		domain.Event{SourceID: "sensor.tesla_wall_connector_status", State: "Idle", Available: true, At: now},
	)

	// Each decision cycle ends with at most one redraw; two significant
	// pushes handled in two cycles yield two redraws, but within one cycle
	// the latch coalesces.
	if len(rend.redraws) != 2 {
		t.Fatalf("expected 2 redraws, got %d", len(rend.redraws))
	}
	if obs.counters["homink_readings_received_total"] != 2 {
		t.Fatalf("expected 2 readings counted, got %f", obs.counters["homink_readings_received_total"])
	}
	if obs.counters["homink_redraws_total"] != 2 {
		t.Fatalf("expected 2 redraws counted, got %f", obs.counters["homink_redraws_total"])
	}
}

func TestEngineRendererFailureKeepsRedrawOwed(t *testing.T) {
	src := &stubSource{state: "on", has: true}
	s := sensor.NewState("Sidewalk", "binary_sensor.gate", src, nil)

	rend := &stubRenderer{failures: 1}
	obs := newStubObs()
	e := newTestEngine(t, rend, nil, obs, s)

	now := time.Unix(1_700_000_000, 0)
	runEvents(t, e,
		domain.Event{SourceID: "binary_sensor.gate", State: "on", Available: true, At: now},
		// An insignificant follow-up cycle still settles the owed redraw.
		domain.Event{SourceID: "binary_sensor.gate", State: "on", Available: true, At: now.Add(time.Second)},
	)

	if len(rend.redraws) != 1 {
		t.Fatalf("expected retried redraw to land exactly once, got %d", len(rend.redraws))
	}
	if len(obs.errors) != 1 {
		t.Fatalf("expected the failure to be logged")
	}
	if obs.counters["homink_redraw_failures_total"] != 1 {
		t.Fatalf("expected 1 redraw failure counted")
	}
}

func TestEngineRecordsAcceptedReadings(t *testing.T) {
	src := &stubSource{state: "21.5", has: true}
	s := sensor.NewThreshold("Temperature", "sensor.birgenshire_temp", 1.0, src, nil)

	rec := &stubRecorder{}
	e := newTestEngine(t, &stubRenderer{}, rec, newStubObs(), s)

	now := time.Unix(1_700_000_000, 0)
	runEvents(t, e, domain.Event{SourceID: "sensor.birgenshire_temp", State: "21.5", Available: true, At: now})

	if len(rec.readings) != 1 {
		t.Fatalf("expected 1 recorded reading, got %d", len(rec.readings))
	}
	got := rec.readings[0]
	if got.SourceID != "sensor.birgenshire_temp" || got.State != "21.5" || !got.Available {
		t.Fatalf("unexpected reading %+v", got)
	}
	if !got.At.Equal(now) {
		t.Fatalf("expected reading timestamp %s, got %s", now, got.At)
	}
}

// An insignificant reading leaves the sensor cache alone on purpose, but the
// recorder must still store the value the platform delivered.
func TestEngineRecordsDeliveredStateNotCache(t *testing.T) {
	src := &seqSource{states: []string{"10", "10.5"}}
	s := sensor.NewThreshold("Temperature", "sensor.birgenshire_temp", 1.0, src, nil)

	rec := &stubRecorder{}
	e := newTestEngine(t, &stubRenderer{}, rec, newStubObs(), s)

	now := time.Unix(1_700_000_000, 0)
	runEvents(t, e,
		domain.Event{SourceID: "sensor.birgenshire_temp", State: "10", Available: true, At: now},
		domain.Event{SourceID: "sensor.birgenshire_temp", State: "10.5", Available: true, At: now.Add(time.Minute)},
	)

	if len(rec.readings) != 2 {
		t.Fatalf("expected 2 recorded readings, got %d", len(rec.readings))
	}
	if rec.readings[1].State != "10.5" {
		t.Fatalf("recorder must store the delivered state, got %q", rec.readings[1].State)
	}
	// The drift stayed below the threshold, so the display cache still holds
	// the bootstrap value.
	if s.State() != "10" {
		t.Fatalf("expected cache to stay at 10, got %q", s.State())
	}
}

func TestEngineRunStopsOnContextCancel(t *testing.T) {
	e := newTestEngine(t, &stubRenderer{}, nil, newStubObs())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := e.Run(ctx, make(chan domain.Event), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
