// Package metrics exposes document generation counters and histograms
// in the Prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	docgen "github.com/alnah/go-docgen"
)

const namespace = "docgen"

// Outcome label values besides error kinds.
const (
	OutcomeSuccess = "success"
	labelInvalid   = "invalid"
)

// Recorder records generation and cache metrics on its own registry.
// It implements docgen.GenerationObserver and docgen.CacheObserver.
type Recorder struct {
	registry *prometheus.Registry

	generated    *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	bytes        *prometheus.HistogramVec
	cacheLookups *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
}

// Compile-time interface checks.
var (
	_ docgen.GenerationObserver = (*Recorder)(nil)
	_ docgen.CacheObserver      = (*Recorder)(nil)
)

// New registers every metric on a fresh registry, plus Go runtime and
// process collectors.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		generated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "documents_generated_total",
				Help:      "Total number of generation attempts by format and outcome",
			},
			[]string{"format", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "generation_duration_seconds",
				Help:      "Duration of document generation in seconds",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"format"},
		),
		bytes: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "document_bytes",
				Help:      "Size of generated documents in bytes",
				Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
			},
			[]string{"format"},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "template_cache_lookups_total",
				Help:      "Template cache lookups by result",
			},
			[]string{"result"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
	}
}

// Registry returns the registry the recorder writes to.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// ObserveGeneration implements docgen.GenerationObserver.
func (r *Recorder) ObserveGeneration(format docgen.Format, err error, elapsed time.Duration, size int) {
	f := formatLabel(format)

	outcome := OutcomeSuccess
	if err != nil {
		outcome = docgen.KindOf(err).String()
	}
	r.generated.WithLabelValues(f, outcome).Inc()

	if err == nil {
		r.duration.WithLabelValues(f).Observe(elapsed.Seconds())
		r.bytes.WithLabelValues(f).Observe(float64(size))
	}
}

// CacheLookup implements docgen.CacheObserver.
func (r *Recorder) CacheLookup(hit bool) {
	if hit {
		r.cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	r.cacheLookups.WithLabelValues("miss").Inc()
}

// ObserveHTTP counts one served request.
func (r *Recorder) ObserveHTTP(route string, code int) {
	r.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// formatLabel bounds label cardinality to the known formats.
func formatLabel(f docgen.Format) string {
	switch f {
	case docgen.FormatHTML, docgen.FormatPDF:
		return string(f)
	case "":
		return string(docgen.FormatHTML)
	}
	return labelInvalid
}
