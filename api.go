package homink

import (
	base "github.com/Birgenshire/homink/pkg/homink"
)

// Re-exported errors for convenience.
var (
	ErrChannelRendererClosed = base.ErrChannelRendererClosed
)

// Type aliases so consumers can import github.com/Birgenshire/homink directly.
type (
	Config           = base.Config
	MQTTConfig       = base.MQTTConfig
	MetricsConfig    = base.MetricsConfig
	HistoryConfig    = base.HistoryConfig
	Timing           = base.Timing
	Runtime          = base.Runtime
	RuntimeOption    = base.RuntimeOption
	Reading          = base.Reading
	Event            = base.Event
	Kind             = base.Kind
	SensorView       = base.SensorView
	SensorDescriptor = base.SensorDescriptor
	Sensor           = base.Sensor
	Registry         = base.Registry
	Source           = base.Source
	Collector        = base.Collector
	Renderer         = base.Renderer
	Recorder         = base.Recorder
	Observability    = base.Observability
	Field            = base.Field
	RenderFunc       = base.RenderFunc
)

// Sensor kinds.
const (
	KindState        = base.KindState
	KindThreshold    = base.KindThreshold
	KindPassive      = base.KindPassive
	KindFilteredText = base.KindFilteredText
)

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

// Runtime construction.
func Conf(path string, opts ...RuntimeOption) (*Runtime, error) {
	return base.Conf(path, opts...)
}

func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	return base.NewRuntime(cfg, opts...)
}

func WithCollector(col Collector) RuntimeOption {
	return base.WithCollector(col)
}

func WithRenderer(r Renderer) RuntimeOption {
	return base.WithRenderer(r)
}

func WithRecorder(rec Recorder) RuntimeOption {
	return base.WithRecorder(rec)
}

func WithObservability(obs Observability) RuntimeOption {
	return base.WithObservability(obs)
}

// Renderer adapters.
func NewCallbackRenderer(name string, fn RenderFunc) Renderer {
	return base.NewCallbackRenderer(name, fn)
}

func NewChannelRenderer(name string, buffer int) (Renderer, <-chan []SensorView, func()) {
	return base.NewChannelRenderer(name, buffer)
}
