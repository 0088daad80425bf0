// Package observability holds the Prometheus metrics and OpenTelemetry
// tracing hooks of the engine. Everything here is optional: a nil
// *Collector records nothing.
package observability

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the engine's Prometheus metrics.
type Collector struct {
	gatherer prometheus.Gatherer

	Navigations        *prometheus.CounterVec
	NavigationDuration prometheus.Histogram
	ModuleLoads        *prometheus.CounterVec
	Transitions        *prometheus.CounterVec
	Reconnects         prometheus.Counter
	Logouts            prometheus.Counter
}

// NewCollector registers the engine metrics against reg, defaulting to the
// global registry when nil. Registering twice against the same registry
// returns the existing collectors.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	navigations, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "casper_navigations_total",
		Help: "Location changes handled, labeled by outcome.",
	}, []string{"outcome"}), "casper_navigations_total")
	if err != nil {
		return nil, err
	}

	duration, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "casper_navigation_duration_seconds",
		Help:    "Time from a location change to the page being shown, readiness wait excluded.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}), "casper_navigation_duration_seconds")
	if err != nil {
		return nil, err
	}

	loads, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "casper_module_loads_total",
		Help: "Page module loads, labeled by result.",
	}, []string{"result"}), "casper_module_loads_total")
	if err != nil {
		return nil, err
	}

	transitions, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "casper_state_transitions_total",
		Help: "Session state changes, labeled by previous and next state.",
	}, []string{"from", "to"}), "casper_state_transitions_total")
	if err != nil {
		return nil, err
	}

	reconnects, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "casper_reconnect_attempts_total",
		Help: "Reconnect attempts started by user activity.",
	}), "casper_reconnect_attempts_total")
	if err != nil {
		return nil, err
	}

	logouts, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "casper_logouts_total",
		Help: "Completed logout flows.",
	}), "casper_logouts_total")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:           gatherer,
		Navigations:        navigations,
		NavigationDuration: duration,
		ModuleLoads:        loads,
		Transitions:        transitions,
		Reconnects:         reconnects,
		Logouts:            logouts,
	}, nil
}

// Handler exposes the metrics in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// ObserveNavigation records a finished navigation.
func (c *Collector) ObserveNavigation(outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.Navigations.WithLabelValues(outcome).Inc()
	c.NavigationDuration.Observe(elapsed.Seconds())
}

// ObserveModuleLoad records a page module load.
func (c *Collector) ObserveModuleLoad(err error) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.ModuleLoads.WithLabelValues(result).Inc()
}

// ObserveTransition records a session state change.
func (c *Collector) ObserveTransition(from, to string) {
	if c == nil {
		return
	}
	c.Transitions.WithLabelValues(from, to).Inc()
}

// ReconnectArmed records a reconnect attempt.
func (c *Collector) ReconnectArmed() {
	if c == nil {
		return
	}
	c.Reconnects.Inc()
}

// LoggedOut records a logout.
func (c *Collector) LoggedOut() {
	if c == nil {
		return
	}
	c.Logouts.Inc()
}

func register[T prometheus.Collector](reg prometheus.Registerer, collector T, name string) (T, error) {
	if err := reg.Register(collector); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero T
		return zero, err
	}
	return collector, nil
}
