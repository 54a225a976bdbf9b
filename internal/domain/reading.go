package domain

import "time"

// Reading is the canonical unit of monitored state in homink: one accepted
// observation from one source, as delivered by the host platform.
type Reading struct {
	SourceID  string    `json:"source_id"`
	State     string    `json:"state"`
	Available bool      `json:"available"`
	At        time.Time `json:"at"`
}

// Event is an edge-triggered push notification: a source delivered a new
// reading and the matching sensor record should be checked for significance.
// State and Available carry the payload as delivered, so consumers that
// persist readings store what the platform sent rather than a cached value.
type Event struct {
	SourceID  string
	State     string
	Available bool
	At        time.Time
}

// Kind selects the change-significance rule applied to a sensor record.
type Kind string

const (
	// KindState treats any value inequality as significant.
	KindState Kind = "state"
	// KindThreshold is significant only when the absolute numeric delta
	// exceeds the configured threshold.
	KindThreshold Kind = "threshold"
	// KindPassive tracks and caches values but never triggers a redraw.
	KindPassive Kind = "passive"
	// KindFilteredText is KindState with one configured value treated as
	// transparent: transitions into or out of it are not significant.
	KindFilteredText Kind = "filtered_text"
)

// Valid reports whether k names one of the closed set of sensor kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindState, KindThreshold, KindPassive, KindFilteredText:
		return true
	}
	return false
}

// SensorView is the read-only projection of one sensor record handed to the
// rendering collaborator on each redraw.
type SensorView struct {
	Name      string
	SourceID  string
	Kind      Kind
	State     string
	Available bool
}
