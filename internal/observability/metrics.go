package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PostsCreated counts successfully created posts.
	PostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agora_posts_created_total",
		Help: "Total number of posts created",
	})

	// PostsDeleted counts successfully deleted posts.
	PostsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agora_posts_deleted_total",
		Help: "Total number of posts deleted",
	})

	// ReactionsTotal counts like and unlike operations by action.
	ReactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_post_reactions_total",
		Help: "Total number of like and unlike operations",
	}, []string{"action"})

	// CommentsTotal counts comment additions and removals by action.
	CommentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_comments_total",
		Help: "Total number of comment operations",
	}, []string{"action"})

	// CacheResults counts cache lookups by outcome (hit, miss, error).
	CacheResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_cache_results_total",
		Help: "Cache lookups by outcome",
	}, []string{"result"})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records store latency by backend and operation.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agora_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend", "operation"})

	// WebSocketConnectionsTotal is the gauge of open feed connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agora_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketEventsTotal counts events relayed to the feed by type.
	WebSocketEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_websocket_events_total",
		Help: "Total WebSocket events by type",
	}, []string{"event_type"})

	// WebSocketBackpressureDrops counts messages dropped for slow clients.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"reason"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(backend, operation string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(backend, operation).Observe(time.Since(start).Seconds())
	}
}
