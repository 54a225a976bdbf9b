package refresh

import (
	"fmt"
	"sync"
	"time"

	"github.com/Birgenshire/homink/internal/ports"
)

// Tracker derives connectivity state from reading arrivals. A reading always
// re-sets connected immediately, regardless of elapsed time; only the
// periodic timeout check flips it back off. The engine mutates it on its own
// goroutine while status readers live outside it, so access is locked.
type Tracker struct {
	obs    ports.Observability
	window time.Duration

	mu       sync.Mutex
	lastSeen time.Time
	seen     bool
	up       bool
}

func NewTracker(window time.Duration, obs ports.Observability) *Tracker {
	return &Tracker{window: window, obs: obs}
}

// OnReading records an accepted reading from any source.
func (t *Tracker) OnReading(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastSeen = now
	t.seen = true
	if !t.up {
		t.up = true
		if t.obs != nil {
			t.obs.LogInfo("platform_connected")
			t.obs.SetGauge("homink_connected", 1)
		}
	}
}

// CheckTimeout flips to disconnected once no reading has arrived for the
// configured window. It never flips back on its own.
func (t *Tracker) CheckTimeout(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.up {
		return
	}
	if now.Sub(t.lastSeen) >= t.window {
		t.up = false
		if t.obs != nil {
			t.obs.LogError("platform_disconnected", fmt.Errorf("no reading for %s", now.Sub(t.lastSeen)))
			t.obs.SetGauge("homink_connected", 0)
		}
	}
}

func (t *Tracker) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.up
}

// TimeSinceLastSeen reports the age of the most recent reading, and false if
// no reading was ever accepted.
func (t *Tracker) TimeSinceLastSeen(now time.Time) (time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.seen {
		return 0, false
	}
	return now.Sub(t.lastSeen), true
}

// StatusText formats connectivity for the "Last Seen" display line.
func (t *Tracker) StatusText(now time.Time) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.up {
		return "connected"
	}
	if !t.seen {
		return "never seen"
	}
	return fmt.Sprintf("last seen %s ago", now.Sub(t.lastSeen).Truncate(time.Second))
}
