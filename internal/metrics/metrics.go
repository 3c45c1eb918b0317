// Package metrics holds the Prometheus collectors of the API.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodgram_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "foodgram_api_active_requests",
			Help: "Number of requests currently being served",
		},
	)

	ShoppingListDownloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_shopping_list_downloads_total",
			Help: "Total number of shopping list downloads",
		},
		[]string{"format"},
	)

	SocialEdgeChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_social_edge_changes_total",
			Help: "Follows, favorites and cart entries added or removed",
		},
		[]string{"edge", "op"},
	)

	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_rate_limit_rejections_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"limiter"},
	)
)

// Edge names for SocialEdgeChanges.
const (
	EdgeFollow   = "follow"
	EdgeFavorite = "favorite"
	EdgeCart     = "shopping_cart"
)

// RecordAPIRequest records one served request. route is the gin route
// pattern, never the raw path, to keep label cardinality bounded.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

func RecordDownload(format string) {
	ShoppingListDownloads.WithLabelValues(format).Inc()
}

// RecordEdge counts an added (added=true) or removed social edge.
func RecordEdge(edge string, added bool) {
	op := "remove"
	if added {
		op = "add"
	}
	SocialEdgeChanges.WithLabelValues(edge, op).Inc()
}

func RecordRateLimited(limiter string) {
	RateLimitRejections.WithLabelValues(limiter).Inc()
}
