package homink

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Birgenshire/homink/internal/adapters/hass"
	"github.com/Birgenshire/homink/internal/adapters/history"
	"github.com/Birgenshire/homink/internal/adapters/observability"
	"github.com/Birgenshire/homink/internal/app/engine"
	"github.com/Birgenshire/homink/internal/app/refresh"
	"github.com/Birgenshire/homink/internal/sensor"
)

// RuntimeOption customizes the dependencies used by Runtime.
type RuntimeOption func(*runtimeOverrides)

type runtimeOverrides struct {
	collector     Collector
	renderer      Renderer
	recorder      Recorder
	observability Observability
}

// WithCollector injects a custom collector implementation (simulators, native
// APIs, test doubles) in place of the MQTT statestream adapter.
func WithCollector(col Collector) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.collector = col
	}
}

// WithRenderer injects the display driver that consumes redraw decisions.
func WithRenderer(r Renderer) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.renderer = r
	}
}

// WithRecorder overrides the optional reading recorder.
func WithRecorder(rec Recorder) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.recorder = rec
	}
}

// WithObservability plugs in a custom observability backend.
func WithObservability(obs Observability) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.observability = obs
	}
}

// Runtime wires the collector → registry → coordinator → renderer path and
// exposes simple lifecycle hooks for embedding homink inside any Go service.
type Runtime struct {
	cfg        *Config
	reg        *sensor.Registry
	tracker    *refresh.Tracker
	coord      *refresh.Coordinator
	eng        *engine.Engine
	collector  Collector
	renderer   Renderer
	display    *displayRenderer
	views      *viewCache
	obs        Observability
	db         *sql.DB
	metricsSrv *http.Server
	events     chan Event
	cancel     context.CancelFunc
	doneCh     chan struct{}
}

// NewRuntime bootstraps the default adapters (MQTT statestream collector,
// Prometheus observability, optional Postgres history recorder) and builds
// the sensor registry from the configured table. RuntimeOption values
// override any dependency.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	var overrides runtimeOverrides
	for _, opt := range opts {
		if opt != nil {
			opt(&overrides)
		}
	}

	obs := overrides.observability
	if obs == nil {
		obs = observability.NewPromObs()
	}

	col := overrides.collector
	if col == nil {
		var err error
		col, err = hass.NewCollector(cfg.MQTT)
		if err != nil {
			return nil, err
		}
	}

	reg, err := sensor.BuildRegistry(cfg.Sensors, col.Source, obs)
	if err != nil {
		return nil, err
	}

	var (
		db  *sql.DB
		rec Recorder
	)
	if overrides.recorder != nil {
		rec = overrides.recorder
	} else if cfg.History.ConnString != "" {
		db, err = sql.Open("postgres", cfg.History.ConnString)
		if err != nil {
			return nil, err
		}
		rec = history.NewPostgresRecorder(db, cfg.History.Table)
	}

	rend := overrides.renderer
	if rend == nil {
		rend = NewCallbackRenderer("log", func(views []SensorView) error {
			obs.LogInfo("redraw", Field{Key: "sensors", Value: len(views)})
			return nil
		})
	}

	tracker := refresh.NewTracker(cfg.Refresh.ConnectionTimeout, obs)
	coord := refresh.NewCoordinator(reg, tracker, obs)
	views := newViewCache(reg.Views())
	display := &displayRenderer{inner: rend, cache: views}
	eng := engine.New(reg, tracker, coord, cfg.Refresh, display, rec, obs)

	return &Runtime{
		cfg:       cfg,
		reg:       reg,
		tracker:   tracker,
		coord:     coord,
		eng:       eng,
		collector: col,
		renderer:  rend,
		display:   display,
		views:     views,
		obs:       obs,
		db:        db,
		events:    make(chan Event, 64),
	}, nil
}

// Conf loads YAML from disk and builds a Runtime in one step.
func Conf(path string, opts ...RuntimeOption) (*Runtime, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return NewRuntime(cfg, opts...)
}

// Start begins the collector and the refresh engine and launches the metrics
// server. It returns immediately; call Run to block on a context instead.
func (r *Runtime) Start() error {
	if r == nil {
		return fmt.Errorf("runtime is nil")
	}
	if err := r.collector.Start(r.events); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.doneCh = make(chan struct{})
	go func() {
		defer close(r.doneCh)
		if err := r.eng.Run(ctx, r.events, r.collector.Poll); err != nil && !errors.Is(err, context.Canceled) {
			r.obs.LogError("engine_exited", err)
		}
	}()

	r.startMetrics()
	return nil
}

// Run starts the runtime and blocks until the provided context is cancelled.
// Upon cancellation it attempts a graceful shutdown.
func (r *Runtime) Run(ctx context.Context) error {
	if err := r.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.Shutdown(shutdownCtx)
}

// Shutdown stops the collector, engine, metrics server, and DB connection.
func (r *Runtime) Shutdown(ctx context.Context) error {
	var errs []error

	if r.cancel != nil {
		r.cancel()
	}
	if r.doneCh != nil {
		select {
		case <-r.doneCh:
		case <-ctx.Done():
			errs = append(errs, ctx.Err())
		}
	}

	if r.metricsSrv != nil {
		if err := r.metricsSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, err)
		}
	}

	if r.collector != nil {
		if err := r.collector.Stop(); err != nil {
			errs = append(errs, err)
		}
	}

	if r.db != nil {
		if err := r.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Views reports the snapshot currently on the display: the last successful
// redraw, or the construction-time state before the first one. It is safe to
// call while the engine is running; the engine's own sensor caches are never
// touched from here.
func (r *Runtime) Views() []SensorView { return r.views.load() }

// JoinedSourceIDs is the comma-separated batch re-fetch list.
func (r *Runtime) JoinedSourceIDs() string { return r.reg.JoinedSourceIDs() }

// ConnectivityStatusText formats "connected" or "last seen <duration> ago"
// for the display's Last Seen line.
func (r *Runtime) ConnectivityStatusText(now time.Time) string {
	return r.tracker.StatusText(now)
}

// displayRenderer wraps the configured renderer and keeps the last snapshot
// that actually reached the display, so facade callers can read display state
// without racing the engine goroutine.
type displayRenderer struct {
	inner Renderer
	cache *viewCache
}

func (d *displayRenderer) Redraw(views []SensorView) error {
	if err := d.inner.Redraw(views); err != nil {
		return err
	}
	d.cache.store(views)
	return nil
}

func (d *displayRenderer) Name() string { return d.inner.Name() }

type viewCache struct {
	p atomic.Pointer[[]SensorView]
}

func newViewCache(views []SensorView) *viewCache {
	c := &viewCache{}
	c.store(views)
	return c
}

func (c *viewCache) store(views []SensorView) {
	snap := make([]SensorView, len(views))
	copy(snap, views)
	c.p.Store(&snap)
}

func (c *viewCache) load() []SensorView { return *c.p.Load() }

func (r *Runtime) startMetrics() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.metricsSrv = &http.Server{
		Addr:    r.cfg.Metrics.Addr,
		Handler: mux,
	}

	go func() {
		if err := r.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics server exited: %v", err)
		}
	}()
}
