// Package metrics exposes simulation counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jwebster45206/hexsim/pkg/event"
	"github.com/jwebster45206/hexsim/pkg/sim"
	"github.com/jwebster45206/hexsim/pkg/tools"
)

// Command outcome labels.
const (
	StatusAccepted    = "accepted"
	StatusUnknownTool = "unknown_tool"
	StatusBusy        = "busy"
	StatusInvalid     = "invalid"
	StatusError       = "error"
)

// Metrics observes a simulator. It implements sim.Observer and
// sim.CommandObserver.
type Metrics struct {
	EventsTotal   *prometheus.CounterVec
	CommandsTotal *prometheus.CounterVec
	DeathsTotal   prometheus.Counter
	DamageTotal   *prometheus.CounterVec
	Tick          prometheus.Gauge
	Recipients    prometheus.Histogram
}

var (
	_ sim.Observer        = (*Metrics)(nil)
	_ sim.CommandObserver = (*Metrics)(nil)
)

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hexsim_events_dispatched_total",
				Help: "Total number of dispatched events by kind",
			},
			[]string{"kind"},
		),
		CommandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hexsim_commands_total",
				Help: "Total number of commands by tool and outcome",
			},
			[]string{"tool", "status"},
		),
		DeathsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hexsim_deaths_total",
			Help: "Total number of characters that died",
		}),
		DamageTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hexsim_damage_total",
				Help: "Total hit points of damage applied by damage type",
			},
			[]string{"damage_type"},
		),
		Tick: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hexsim_tick",
			Help: "Tick of the most recently dispatched event",
		}),
		Recipients: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hexsim_event_recipients",
			Help:    "Number of characters that perceived each event",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13},
		}),
	}

	reg.MustRegister(m.EventsTotal, m.CommandsTotal, m.DeathsTotal, m.DamageTotal, m.Tick, m.Recipients)
	return m
}

// OnEvent records a dispatched event.
func (m *Metrics) OnEvent(d sim.Dispatched) {
	m.EventsTotal.WithLabelValues(string(d.Event.Kind)).Inc()
	m.Tick.Set(float64(d.Event.Tick))
	m.Recipients.Observe(float64(len(d.Recipients)))

	switch d.Event.Kind {
	case event.KindNPCDied:
		m.DeathsTotal.Inc()
	case event.KindDamageApplied:
		if amount, ok := d.Event.Payload.Int("amount"); ok && amount > 0 {
			m.DamageTotal.WithLabelValues(d.Event.Payload.String("damage_type")).Add(float64(amount))
		}
	}
}

// OnCommand records a command outcome.
func (m *Metrics) OnCommand(_ string, tool tools.Name, err error) {
	m.CommandsTotal.WithLabelValues(string(tool), Status(err)).Inc()
}

// Status maps a ProcessCommand result to an outcome label.
func Status(err error) string {
	switch {
	case err == nil:
		return StatusAccepted
	case sim.IsUnknownTool(err):
		return StatusUnknownTool
	case sim.IsActorBusy(err):
		return StatusBusy
	case sim.IsInvalidIntent(err):
		return StatusInvalid
	default:
		return StatusError
	}
}

// NewRegistry returns a registry carrying the Go runtime and process
// collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// Handler serves reg in the Prometheus exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
