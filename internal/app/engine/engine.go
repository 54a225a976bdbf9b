package engine

import (
	"context"
	"time"

	"github.com/Birgenshire/homink/internal/app/refresh"
	"github.com/Birgenshire/homink/internal/domain"
	"github.com/Birgenshire/homink/internal/ports"
	"github.com/Birgenshire/homink/internal/sensor"
)

// Engine serializes push notifications and the three timer ticks onto one
// goroutine and drives the registry, tracker, and coordinator. All sensor
// mutation happens on this single execution context, so the records need no
// locks; read-modify-clear on the latch is atomic by construction.
type Engine struct {
	reg      *sensor.Registry
	tracker  *refresh.Tracker
	coord    *refresh.Coordinator
	timing   ports.Timing
	renderer ports.Renderer
	recorder ports.Recorder
	obs      ports.Observability
}

func New(reg *sensor.Registry, tracker *refresh.Tracker, coord *refresh.Coordinator, timing ports.Timing, renderer ports.Renderer, recorder ports.Recorder, obs ports.Observability) *Engine {
	return &Engine{
		reg:      reg,
		tracker:  tracker,
		coord:    coord,
		timing:   timing,
		renderer: renderer,
		recorder: recorder,
		obs:      obs,
	}
}

// Run consumes events until ctx is cancelled. The collector feeds events; the
// poll, forced-refresh, and connectivity-timeout tickers fire here so that no
// two handlers ever interleave.
func (e *Engine) Run(ctx context.Context, events <-chan domain.Event, poller func([]string) error) error {
	poll := time.NewTicker(e.timing.PollInterval)
	defer poll.Stop()
	forced := time.NewTicker(e.timing.ForcedInterval)
	defer forced.Stop()
	timeout := time.NewTicker(e.timing.ConnectionTimeout)
	defer timeout.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			e.handlePush(ev)
		case <-poll.C:
			e.handlePoll(poller)
		case <-forced.C:
			e.coord.OnForcedRefresh()
		case now := <-timeout.C:
			e.tracker.CheckTimeout(now)
		}
		e.settle()
	}
}

func (e *Engine) handlePush(ev domain.Event) {
	if e.obs != nil {
		e.obs.IncCounter("homink_readings_received_total", 1)
	}
	e.coord.OnPush(ev.SourceID, ev.At)
	e.record(ev)
}

func (e *Engine) handlePoll(poller func([]string) error) {
	e.coord.OnPoll()
	if poller == nil {
		return
	}
	ids := e.reg.SourceIDs()
	if len(ids) == 0 {
		return
	}
	if err := poller(ids); err != nil && e.obs != nil {
		e.obs.LogError("poll_request_failed", err)
	}
}

// settle ends every decision cycle with at most one redraw. A renderer error
// re-arms the latch so the redraw stays owed for the next cycle.
func (e *Engine) settle() {
	if !e.coord.ConsumeRedraw() {
		return
	}
	if e.renderer == nil {
		return
	}
	if err := e.renderer.Redraw(e.reg.Views()); err != nil {
		if e.obs != nil {
			e.obs.LogError("redraw_failed", err)
			e.obs.IncCounter("homink_redraw_failures_total", 1)
		}
		e.coord.Trigger("retry")
		return
	}
	if e.obs != nil {
		e.obs.IncCounter("homink_redraws_total", 1)
	}
}

// record persists the reading as the event delivered it. The sensor cache is
// the wrong source here: an insignificant drift deliberately leaves the cache
// alone, but history must still hold the live value.
func (e *Engine) record(ev domain.Event) {
	if e.recorder == nil {
		return
	}
	if _, ok := e.reg.Lookup(ev.SourceID); !ok {
		return
	}
	reading := domain.Reading{
		SourceID:  ev.SourceID,
		State:     ev.State,
		Available: ev.Available,
		At:        ev.At,
	}
	if err := e.recorder.Record([]domain.Reading{reading}); err != nil && e.obs != nil {
		e.obs.LogError("history_record_failed", err)
	}
}
