package observability

import (
	"fmt"
	"log"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Birgenshire/homink/internal/ports"
)

type PromObs struct {
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
}

func NewPromObs() *PromObs {
	return newPromObs(prometheus.DefaultRegisterer)
}

func newPromObs(reg prometheus.Registerer) *PromObs {
	readings := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "homink_readings_received_total",
		Help: "Push notifications accepted from the sensing platform.",
	})
	significant := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "homink_significant_changes_total",
		Help: "Changes judged significant enough to latch a redraw.",
	})
	redraws := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "homink_redraws_total",
		Help: "Physical display redraws performed.",
	})
	redrawFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "homink_redraw_failures_total",
		Help: "Redraw attempts the renderer rejected; the latch stays armed.",
	})
	connected := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "homink_connected",
		Help: "1 while the sensing platform is considered connected.",
	})
	pending := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "homink_redraw_pending",
		Help: "1 while a redraw is owed but not yet consumed.",
	})

	reg.MustRegister(readings, significant, redraws, redrawFailures, connected, pending)

	return &PromObs{
		counters: map[string]prometheus.Counter{
			"homink_readings_received_total":   readings,
			"homink_significant_changes_total": significant,
			"homink_redraws_total":             redraws,
			"homink_redraw_failures_total":     redrawFailures,
		},
		gauges: map[string]prometheus.Gauge{
			"homink_connected":      connected,
			"homink_redraw_pending": pending,
		},
	}
}

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {
	log.Printf("INFO: %s%s", msg, formatFields(fields))
}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	if err != nil {
		log.Printf("ERROR: %s: %v%s", msg, err, formatFields(fields))
	}
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

func formatFields(fields []ports.Field) string {
	var b strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
	}
	return b.String()
}

var _ ports.Observability = (*PromObs)(nil)
