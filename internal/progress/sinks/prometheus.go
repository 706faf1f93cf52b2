package sinks

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/shelfscan/shelfscan/internal/progress"
)

// PrometheusSink exports scan progress via Prometheus. It owns the collectors
// for lookup completions, run totals, and lookup latency.
type PrometheusSink struct {
	lookupsCompleted *prometheus.CounterVec
	lookupsPlanned   prometheus.Gauge
	lookupsDone      prometheus.Gauge
	lookupDuration   *prometheus.HistogramVec
}

// NewPrometheusSink registers the collectors against the provided registry.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		lookupsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shelfscan_lookups_completed_total",
			Help: "Completed lookups partitioned by catalog and availability.",
		}, []string{"catalog", "availability"}),
		lookupsPlanned: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "shelfscan_lookups_planned",
			Help: "Total lookups generated for the current run.",
		}),
		lookupsDone: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "shelfscan_lookups_done",
			Help: "Lookups completed so far in the current run.",
		}),
		lookupDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shelfscan_lookup_duration_seconds",
			Help:    "Wall time per lookup partitioned by catalog.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 45, 90},
		}, []string{"catalog"}),
	}
	for _, collector := range []prometheus.Collector{
		s.lookupsCompleted,
		s.lookupsPlanned,
		s.lookupsDone,
		s.lookupDuration,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register progress collector: %w", err)
		}
	}
	return s, nil
}

// Record updates the collectors from one completion event. It is safe for
// concurrent use by multiple goroutines.
func (s *PrometheusSink) Record(_ context.Context, evt progress.Event) error {
	catalogLabel := evt.Catalog
	if catalogLabel == "" {
		catalogLabel = "unknown"
	}
	s.lookupsCompleted.WithLabelValues(catalogLabel, string(evt.Availability)).Inc()
	s.lookupsPlanned.Set(float64(evt.Total))
	s.lookupsDone.Set(float64(evt.Completed))
	if evt.Dur > 0 {
		s.lookupDuration.WithLabelValues(catalogLabel).Observe(evt.Dur.Seconds())
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}
