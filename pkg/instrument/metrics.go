package instrument

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/storable/pkg/collection"
	"github.com/vango-dev/storable/pkg/storable"
	"github.com/vango-dev/storable/pkg/ui"
)

// MetricsConfig holds the settings used by NewMetrics.
type MetricsConfig struct {
	Namespace   string
	Subsystem   string
	ConstLabels prometheus.Labels
	// Buckets bound the save duration histogram.
	Buckets  []float64
	Registry prometheus.Registerer
}

// MetricsOption adjusts a MetricsConfig.
type MetricsOption func(*MetricsConfig)

// WithNamespace replaces the "storable" metric prefix.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) { c.Namespace = namespace }
}

func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) { c.Subsystem = subsystem }
}

// WithConstLabels attaches labels shared by every storable collector.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) { c.ConstLabels = labels }
}

func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) { c.Buckets = buckets }
}

// WithRegistry registers the collectors somewhere other than the default
// registerer. Tests and short-lived commands pass a fresh registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) { c.Registry = registry }
}

// Metrics counts controller outcomes. One Metrics can serve many hosts,
// each attached under its own controller label.
type Metrics struct {
	saves        *prometheus.CounterVec
	cancels      *prometheus.CounterVec
	invalid      *prometheus.CounterVec
	exceptions   *prometheus.CounterVec
	saveDuration *prometheus.HistogramVec
	inFlight     *prometheus.GaugeVec
}

// NewMetrics registers the storable collectors:
//
//	<ns>_saves_total{controller,action}
//	<ns>_cancels_total{controller}
//	<ns>_invalid_total{controller}
//	<ns>_exceptions_total{controller,action,type}
//	<ns>_save_duration_seconds{controller}
//	<ns>_saves_in_flight{controller}
func NewMetrics(opts ...MetricsOption) *Metrics {
	cfg := MetricsConfig{
		Namespace: "storable",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	f := promauto.With(cfg.Registry)
	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return f.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace, Subsystem: cfg.Subsystem, ConstLabels: cfg.ConstLabels,
			Name: name, Help: help,
		}, labels)
	}

	return &Metrics{
		saves:      counter("saves_total", "Records written after a save", "controller", "action"),
		cancels:    counter("cancels_total", "Edits discarded with the cancel button", "controller"),
		invalid:    counter("invalid_total", "Saves stopped by form validation", "controller"),
		exceptions: counter("exceptions_total", "Saves that ended in a store exception", "controller", "action", "type"),
		saveDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace, Subsystem: cfg.Subsystem, ConstLabels: cfg.ConstLabels,
			Name:    "save_duration_seconds",
			Help:    "Seconds from before-save until the write or exception event",
			Buckets: cfg.Buckets,
		}, []string{"controller"}),
		inFlight: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: cfg.Namespace, Subsystem: cfg.Subsystem, ConstLabels: cfg.ConstLabels,
			Name: "saves_in_flight",
			Help: "Saves still waiting for the store to answer",
		}, []string{"controller"}),
	}
}

// Attach subscribes to host events under the controller label name and
// returns a function removing the subscriptions.
func (m *Metrics) Attach(host ui.Observable, name string) (detach func()) {
	var (
		mu      sync.Mutex
		started time.Time
	)
	finish := func() {
		mu.Lock()
		defer mu.Unlock()
		if started.IsZero() {
			return
		}
		m.saveDuration.WithLabelValues(name).Observe(time.Since(started).Seconds())
		m.inFlight.WithLabelValues(name).Dec()
		started = time.Time{}
	}

	offs := []func(){
		host.On(storable.EventBeforeSave, func(args ...any) bool {
			if action, ok := ui.Arg[collection.Action](args, 1); ok && action == collection.ActionDestroy {
				return true
			}
			mu.Lock()
			defer mu.Unlock()
			// A save still open here lost its outcome; it stays counted
			// in flight as the new one.
			if started.IsZero() {
				m.inFlight.WithLabelValues(name).Inc()
			}
			started = time.Now()
			return true
		}),
		host.On(storable.EventSave, func(args ...any) bool {
			action := "unknown"
			if ev, ok := ui.Arg[collection.WriteEvent](args, 1); ok {
				action = string(ev.Action)
			}
			m.saves.WithLabelValues(name, action).Inc()
			finish()
			return true
		}),
		host.On(storable.EventException, func(args ...any) bool {
			action, typ := "unknown", "unknown"
			if ev, ok := ui.Arg[collection.ExceptionEvent](args, 1); ok {
				action, typ = string(ev.Action), string(ev.Type)
			}
			m.exceptions.WithLabelValues(name, action, typ).Inc()
			finish()
			return true
		}),
		host.On(storable.EventCancel, func(args ...any) bool {
			m.cancels.WithLabelValues(name).Inc()
			return true
		}),
		host.On(storable.EventInvalid, func(args ...any) bool {
			m.invalid.WithLabelValues(name).Inc()
			return true
		}),
	}
	return func() {
		for _, off := range offs {
			off()
		}
	}
}
