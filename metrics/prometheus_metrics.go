package metrics

import (
	"log"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics implements Metrics on its own Prometheus registry, so
// several instances (one per test, say) never collide on metric names.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	mu            sync.RWMutex
	counters      map[string]prometheus.Counter
	counterVecs   map[string]*prometheus.CounterVec
	gauges        map[string]prometheus.Gauge
	gaugeVecs     map[string]*prometheus.GaugeVec
	histograms    map[string]prometheus.Histogram
	histogramVecs map[string]*prometheus.HistogramVec
	customBuckets map[string][]float64
}

// NewPrometheusMetrics returns a PrometheusMetrics whose registry also
// carries the Go runtime and process collectors.
func NewPrometheusMetrics() *PrometheusMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return &PrometheusMetrics{
		registry:      reg,
		counters:      make(map[string]prometheus.Counter),
		counterVecs:   make(map[string]*prometheus.CounterVec),
		gauges:        make(map[string]prometheus.Gauge),
		gaugeVecs:     make(map[string]*prometheus.GaugeVec),
		histograms:    make(map[string]prometheus.Histogram),
		histogramVecs: make(map[string]*prometheus.HistogramVec),
		customBuckets: make(map[string][]float64),
	}
}

// SetCustomBuckets sets the histogram buckets used when name is registered
// later. It has no effect on an already registered histogram.
func (p *PrometheusMetrics) SetCustomBuckets(name string, buckets []float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.customBuckets[name] = buckets
}

func (p *PrometheusMetrics) buckets(name string) []float64 {
	if b, ok := p.customBuckets[name]; ok {
		return b
	}
	return prometheus.DefBuckets
}

// Register creates and registers an unlabelled Counter, Gauge or Histogram.
func (p *PrometheusMetrics) Register(name, metricType, help string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch metricType {
	case Counter:
		c := prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: help})
		p.registry.MustRegister(c)
		p.counters[name] = c
	case Gauge:
		g := prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
		p.registry.MustRegister(g)
		p.gauges[name] = g
	case Histogram:
		h := prometheus.NewHistogram(prometheus.HistogramOpts{Name: name, Help: help, Buckets: p.buckets(name)})
		p.registry.MustRegister(h)
		p.histograms[name] = h
	default:
		log.Printf("Error: Attempted to register unknown metric type '%s' with name '%s'", metricType, name)
	}
}

// Record adds to a counter, sets a gauge or observes a histogram. Unknown
// names are ignored.
func (p *PrometheusMetrics) Record(name string, value float64) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if c, ok := p.counters[name]; ok {
		c.Add(value)
		return
	}
	if g, ok := p.gauges[name]; ok {
		g.Set(value)
		return
	}
	if h, ok := p.histograms[name]; ok {
		h.Observe(value)
	}
}

// RegisterWithLabels is Register for the labelled vector types.
func (p *PrometheusMetrics) RegisterWithLabels(name, metricType, help string, labels []string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch metricType {
	case Counter:
		cv := prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labels)
		p.registry.MustRegister(cv)
		p.counterVecs[name] = cv
	case Gauge:
		gv := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: help}, labels)
		p.registry.MustRegister(gv)
		p.gaugeVecs[name] = gv
	case Histogram:
		hv := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: name, Help: help, Buckets: p.buckets(name)}, labels)
		p.registry.MustRegister(hv)
		p.histogramVecs[name] = hv
	default:
		log.Printf("Error: Attempted to register unknown metric type '%s' with name '%s'", metricType, name)
	}
}

// RecordWithLabels is Record for labelled metrics. labelValues must match
// the labels given at registration, in order.
func (p *PrometheusMetrics) RecordWithLabels(name string, value float64, labelValues ...string) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if cv, ok := p.counterVecs[name]; ok {
		cv.WithLabelValues(labelValues...).Add(value)
		return
	}
	if gv, ok := p.gaugeVecs[name]; ok {
		gv.WithLabelValues(labelValues...).Set(value)
		return
	}
	if hv, ok := p.histogramVecs[name]; ok {
		hv.WithLabelValues(labelValues...).Observe(value)
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Gatherer exposes the registry to tests and to other exporters.
func (p *PrometheusMetrics) Gatherer() prometheus.Gatherer {
	return p.registry
}
