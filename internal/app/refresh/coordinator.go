package refresh

import (
	"time"

	"github.com/Birgenshire/homink/internal/ports"
	"github.com/Birgenshire/homink/internal/sensor"
)

// Coordinator folds the three overlapping refresh triggers into a single
// pending-redraw latch. While a redraw is owed, further triggers are
// absorbed; the latch clears exactly once, when the rendering collaborator
// consumes the decision.
type Coordinator struct {
	reg     *sensor.Registry
	tracker *Tracker
	obs     ports.Observability
	pending bool
}

func NewCoordinator(reg *sensor.Registry, tracker *Tracker, obs ports.Observability) *Coordinator {
	return &Coordinator{reg: reg, tracker: tracker, obs: obs}
}

// Trigger latches a redraw. Triggers while already pending coalesce.
func (c *Coordinator) Trigger(reason string) {
	if c.pending {
		return
	}
	c.pending = true
	if c.obs != nil {
		c.obs.LogInfo("redraw_pending", ports.Field{Key: "reason", Value: reason})
		c.obs.SetGauge("homink_redraw_pending", 1)
	}
}

// Pending reports whether a redraw is owed without consuming it.
func (c *Coordinator) Pending() bool { return c.pending }

// ConsumeRedraw returns true and clears the latch exactly once per pending
// redraw; when idle it returns false.
func (c *Coordinator) ConsumeRedraw() bool {
	if !c.pending {
		return false
	}
	c.pending = false
	if c.obs != nil {
		c.obs.SetGauge("homink_redraw_pending", 0)
	}
	return true
}

// OnPush handles an edge-triggered notification for one sensor: the platform
// is marked seen and the record's own significance rule decides the latch.
func (c *Coordinator) OnPush(sourceID string, now time.Time) {
	c.tracker.OnReading(now)
	s, ok := c.reg.Lookup(sourceID)
	if !ok {
		return
	}
	if s.Significant() {
		if c.obs != nil {
			c.obs.IncCounter("homink_significant_changes_total", 1)
		}
		c.Trigger("push:" + s.Name())
	}
}

// OnPoll handles the periodic poll tick. Significance is evaluated against
// the caches as they stood after the previous pass, then RefreshAll syncs
// every cache for the next one. The check-then-refresh order is deliberate:
// a change the short-circuit skipped this pass must still be pending on the
// next, and refreshing first would erase it.
func (c *Coordinator) OnPoll() {
	if c.reg.AnySignificantChange() {
		if c.obs != nil {
			c.obs.IncCounter("homink_significant_changes_total", 1)
		}
		c.Trigger("poll")
	} else {
		c.reg.RefreshAll()
	}
}

// OnForcedRefresh latches a redraw unconditionally.
func (c *Coordinator) OnForcedRefresh() {
	c.Trigger("forced")
}
