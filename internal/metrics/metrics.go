// Package metrics exposes fieldops counters over prometheus. The sync
// paths are the interesting signal: how often they run and how much
// they change.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	SyncRuns       *prometheus.CounterVec
	TasksCreated   prometheus.Counter
	TasksDeleted   prometheus.Counter
	DailiesCreated prometheus.Counter
	DailiesUpdated prometheus.Counter

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		SyncRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fieldops_sync_runs_total",
			Help: "Synchronization passes by kind and outcome.",
		}, []string{"kind", "outcome"}),
		TasksCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "fieldops_sync_tasks_created_total",
			Help: "Tasks created by project synchronization.",
		}),
		TasksDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "fieldops_sync_tasks_deleted_total",
			Help: "Tasks deleted by project synchronization.",
		}),
		DailiesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "fieldops_sync_dailies_created_total",
			Help: "Daily reports created by the task-to-daily sync.",
		}),
		DailiesUpdated: factory.NewCounter(prometheus.CounterOpts{
			Name: "fieldops_sync_dailies_updated_total",
			Help: "Daily reports updated by the task-to-daily sync.",
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fieldops_http_requests_total",
			Help: "HTTP requests by method and status code.",
		}, []string{"method", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fieldops_http_request_duration_seconds",
			Help:    "HTTP request latency by method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

// Handler serves the /metrics endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
