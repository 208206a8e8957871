package observability

import (
	"errors"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// amountBuckets cover minor-unit VND amounts from 10,000 to ~2.6 billion.
	amountBuckets  = prometheus.ExponentialBuckets(10_000, 4, 10)
	latencyBuckets = prometheus.ExponentialBuckets(0.25, 2, 12)
)

// PrometheusFactory is a MetricFactory backed by client_golang collectors.
// Dotted metric names are converted to underscores.
type PrometheusFactory struct {
	reg prometheus.Registerer

	mu         sync.Mutex
	counters   map[string]prometheus.Counter
	histograms map[string]prometheus.Histogram
	gauges     map[string]prometheus.Gauge
}

// NewPrometheusFactory returns a factory registering on reg. A nil reg uses
// prometheus.DefaultRegisterer.
func NewPrometheusFactory(reg prometheus.Registerer) *PrometheusFactory {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &PrometheusFactory{
		reg:        reg,
		counters:   make(map[string]prometheus.Counter),
		histograms: make(map[string]prometheus.Histogram),
		gauges:     make(map[string]prometheus.Gauge),
	}
}

// Counter implements MetricFactory.
func (f *PrometheusFactory) Counter(name string) Counter {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := metricName(name)
	if c, ok := f.counters[key]; ok {
		return c
	}
	c := register(f.reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: key + "_total",
		Help: "Count of " + name + " events.",
	}))
	f.counters[key] = c
	return c
}

// Histogram implements MetricFactory.
func (f *PrometheusFactory) Histogram(name string) Histogram {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := metricName(name)
	if h, ok := f.histograms[key]; ok {
		return h
	}
	buckets := prometheus.DefBuckets
	switch {
	case strings.HasSuffix(key, "_ms"):
		buckets = latencyBuckets
	case strings.HasSuffix(key, "_amount"):
		buckets = amountBuckets
	}
	h := register(f.reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    key,
		Help:    "Distribution of " + name + ".",
		Buckets: buckets,
	}))
	f.histograms[key] = h
	return h
}

// Gauge implements MetricFactory.
func (f *PrometheusFactory) Gauge(name string) Gauge {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := metricName(name)
	if g, ok := f.gauges[key]; ok {
		return g
	}
	g := register(f.reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: key,
		Help: "Current " + name + ".",
	}))
	f.gauges[key] = g
	return g
}

// register adds c to reg, reusing an identical collector registered by an
// earlier factory on the same registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func metricName(name string) string {
	return strings.NewReplacer(".", "_", "-", "_").Replace(name)
}
