package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kingrea/sigillum/internal/site"
)

// Metrics holds the build counters exposed on /metrics. Each instance owns
// its registry so servers and tests never collide on registration.
type Metrics struct {
	registry      *prometheus.Registry
	builds        *prometheus.CounterVec
	buildDuration prometheus.Histogram
	posts         prometheus.Counter
}

// NewMetrics registers the sigillum collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		builds: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sigillum",
			Name:      "builds_total",
			Help:      "Site builds and rebuilds by result.",
		}, []string{"result"}),
		buildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sigillum",
			Name:      "build_duration_seconds",
			Help:      "Time spent building the site.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		posts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "sigillum",
			Name:      "posts_generated_total",
			Help:      "Post pages written.",
		}),
	}
}

// ObserveBuild records a build report.
func (m *Metrics) ObserveBuild(r site.Report) {
	if m == nil {
		return
	}
	result := "ok"
	if !r.OK() {
		result = "failed"
	}
	m.builds.WithLabelValues(result).Inc()
	m.buildDuration.Observe(r.Duration.Seconds())
	m.posts.Add(float64(r.Posts))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
