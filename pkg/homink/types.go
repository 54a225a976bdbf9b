package homink

import (
	"github.com/Birgenshire/homink/internal/domain"
	"github.com/Birgenshire/homink/internal/ports"
	"github.com/Birgenshire/homink/internal/sensor"
)

// Reading is one accepted observation from one source.
type Reading = domain.Reading

// Event is an edge-triggered push notification from the sensing platform.
type Event = domain.Event

// Kind selects a sensor's change-significance rule.
type Kind = domain.Kind

const (
	KindState        = domain.KindState
	KindThreshold    = domain.KindThreshold
	KindPassive      = domain.KindPassive
	KindFilteredText = domain.KindFilteredText
)

// SensorView is the read-only per-sensor projection handed to the renderer.
type SensorView = domain.SensorView

// SensorDescriptor is one row of the monitored-quantity table.
type SensorDescriptor = sensor.Descriptor

// Sensor is one monitored quantity with its significance rule.
type Sensor = sensor.Sensor

// Registry is the fixed, insertion-ordered set of sensor records.
type Registry = sensor.Registry

// Source is the pull-style value/availability accessor for one quantity.
type Source = ports.Source

// Collector delivers push notifications and owns the Source handles.
type Collector = ports.Collector

// Renderer performs the physical display redraw.
type Renderer = ports.Renderer

// Recorder persists accepted readings for history display.
type Recorder = ports.Recorder

// Observability emits logs and metrics for the refresh core.
type Observability = ports.Observability

// Field is a structured log field used by Observability implementations.
type Field = ports.Field

// Timing holds the three host-scheduled trigger intervals.
type Timing = ports.Timing

// RenderFunc is invoked with the full sensor snapshot on each redraw.
type RenderFunc func(views []SensorView) error
