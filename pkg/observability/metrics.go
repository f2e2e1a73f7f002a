package observability

import (
	"context"
	"time"

	"github.com/aretw0/nest/pkg/fsm"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of the engine.
type Metrics struct {
	entered    *prometheus.CounterVec
	exited     *prometheus.CounterVec
	failures   *prometheus.CounterVec
	dispatches *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		entered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nest_state_enter_total",
				Help: "Total number of states entered",
			},
			[]string{"state"},
		),
		exited: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nest_state_exit_total",
				Help: "Total number of states exited",
			},
			[]string{"state"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nest_handler_errors_total",
				Help: "Total number of failed or panicking state handlers",
			},
			[]string{"state"},
		),
		dispatches: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nest_dispatch_duration_seconds",
				Help:    "Duration of event dispatches, including load and save",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
	}
	for _, c := range []prometheus.Collector{m.entered, m.exited, m.failures, m.dispatches} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Instrument counts the lifecycle of every state p creates from now on.
func (m *Metrics) Instrument(p *fsm.Process) func() {
	removeCreate := p.OnStateCreate(func(s *fsm.State) {
		s.OnEnter(func(ctx context.Context, s *fsm.State) error {
			m.entered.WithLabelValues(s.Key()).Inc()
			return nil
		})
		s.OnExit(func(ctx context.Context, s *fsm.State) error {
			m.exited.WithLabelValues(s.Key()).Inc()
			return nil
		})
	})
	removeError := p.OnStateError(func(ctx context.Context, s *fsm.State, err error) {
		m.failures.WithLabelValues(s.Key()).Inc()
	})
	return func() {
		removeCreate()
		removeError()
	}
}

// ObserveDispatch records how long an engine call took. The Engine reports
// outcome "ok", "rejected" (sentinel errors such as a disabled event) or "error".
func (m *Metrics) ObserveDispatch(outcome string, d time.Duration) {
	m.dispatches.WithLabelValues(outcome).Observe(d.Seconds())
}

// Entered returns the enter counter of a state.
func (m *Metrics) Entered(state string) prometheus.Counter {
	return m.entered.WithLabelValues(state)
}

// Exited returns the exit counter of a state.
func (m *Metrics) Exited(state string) prometheus.Counter {
	return m.exited.WithLabelValues(state)
}

// Failures returns the handler failure counter of a state.
func (m *Metrics) Failures(state string) prometheus.Counter {
	return m.failures.WithLabelValues(state)
}
