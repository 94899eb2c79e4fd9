package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters for the view pipeline, the index synchronizer and the result
// cache. Exposed on GET /metrics.
var (
	ViewHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kitaphana_view_hits_total",
		Help: "View registrations by outcome (accepted, deduplicated, error).",
	}, []string{"outcome"})

	FlushedRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kitaphana_flush_rows_total",
		Help: "Pending view rows processed by the flush job, by outcome (flushed, missing, skipped, error).",
	}, []string{"outcome"})

	FlushedViews = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kitaphana_flush_views_total",
		Help: "Buffered view increments committed to the record store.",
	})

	IndexOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kitaphana_index_operations_total",
		Help: "Index synchronizer operations by op (index, delete) and status (ok, retried, dropped, overflow).",
	}, []string{"op", "status"})

	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kitaphana_cache_requests_total",
		Help: "Result cache lookups by outcome (hit, miss, error).",
	}, []string{"outcome"})

	SearchRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kitaphana_search_requests_total",
		Help: "Search requests by outcome (ok, unavailable, error).",
	}, []string{"outcome"})
)
