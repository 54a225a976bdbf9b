package sensor

import (
	"strings"

	"github.com/Birgenshire/homink/internal/domain"
)

// Registry is the insertion-ordered set of every sensor record in the
// process. The set is fixed after construction: there is no removal.
type Registry struct {
	sensors []Sensor
	byID    map[string]Sensor
}

func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]Sensor)}
}

func (r *Registry) Register(s Sensor) {
	r.sensors = append(r.sensors, s)
	r.byID[s.SourceID()] = s
}

func (r *Registry) Len() int { return len(r.sensors) }

// Lookup finds the sensor record for a source ID.
func (r *Registry) Lookup(sourceID string) (Sensor, bool) {
	s, ok := r.byID[sourceID]
	return s, ok
}

// RefreshAll syncs every record's cache to its source, in registration order.
// The poll path uses this to keep caches current even for sensors that notify
// via push.
func (r *Registry) RefreshAll() {
	for _, s := range r.sensors {
		s.Refresh()
	}
}

// AnySignificantChange asks each record in registration order whether its
// source changed enough to matter, stopping at the first yes. The
// short-circuit is deliberate, not an optimization: Significant caches on
// true, and records past the hit keep their pending change for the next pass.
func (r *Registry) AnySignificantChange() bool {
	for _, s := range r.sensors {
		if s.Significant() {
			return true
		}
	}
	return false
}

// SourceIDs returns the identifiers of externally-polled sources, in
// registration order. An ID containing a '.' names a platform entity;
// anything else is a host built-in that the batch re-fetch must not request.
func (r *Registry) SourceIDs() []string {
	ids := make([]string, 0, len(r.sensors))
	for _, s := range r.sensors {
		if strings.Contains(s.SourceID(), ".") {
			ids = append(ids, s.SourceID())
		}
	}
	return ids
}

// JoinedSourceIDs is the comma-separated form of SourceIDs, used to build one
// batch re-fetch request.
func (r *Registry) JoinedSourceIDs() string {
	return strings.Join(r.SourceIDs(), ",")
}

// Views snapshots every record for the rendering collaborator.
func (r *Registry) Views() []domain.SensorView {
	views := make([]domain.SensorView, len(r.sensors))
	for i, s := range r.sensors {
		views[i] = s.View()
	}
	return views
}
