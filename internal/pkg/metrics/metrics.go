// Package metrics holds the Prometheus collectors exposed at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	// CacheLookups counts cache reads by namespace and result (hit, miss, error)
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_lookups_total",
			Help: "Total number of cache lookups",
		},
		[]string{"namespace", "result"},
	)

	// CacheErrors counts failed cache operations (get, set, delete, decode)
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_errors_total",
			Help: "Total number of failed cache operations",
		},
		[]string{"operation"},
	)

	// CacheInvalidatedKeys counts keys removed by namespace invalidation
	CacheInvalidatedKeys = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_invalidated_keys_total",
			Help: "Total number of cache keys removed by invalidation",
		},
		[]string{"namespace"},
	)

	// LikeToggles counts like toggles by action (liked, unliked)
	LikeToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_like_toggles_total",
			Help: "Total number of like toggles",
		},
		[]string{"action"},
	)

	// PageRequests counts paginated list requests by page bucket
	PageRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_page_requests_total",
			Help: "Total number of paginated list requests",
		},
		[]string{"page_range"},
	)
)

// RecordHTTPRequest records one served request
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordCacheLookup records a cache read result
func RecordCacheLookup(namespace, result string) {
	CacheLookups.WithLabelValues(namespace, result).Inc()
}

// RecordCacheError records a failed cache operation
func RecordCacheError(operation string) {
	CacheErrors.WithLabelValues(operation).Inc()
}

// RecordInvalidation records how many keys an invalidation removed
func RecordInvalidation(namespace string, keys int) {
	CacheInvalidatedKeys.WithLabelValues(namespace).Add(float64(keys))
}

// RecordLikeToggle records the outcome of a toggle
func RecordLikeToggle(liked bool) {
	action := "unliked"
	if liked {
		action = "liked"
	}
	LikeToggles.WithLabelValues(action).Inc()
}

// RecordPageRequest records a list request for the given page
func RecordPageRequest(page int) {
	PageRequests.WithLabelValues(pageRangeBucket(page)).Inc()
}

func pageRangeBucket(page int) string {
	switch {
	case page <= 10:
		return "1-10"
	case page <= 50:
		return "11-50"
	case page <= 100:
		return "51-100"
	default:
		return "100+"
	}
}
