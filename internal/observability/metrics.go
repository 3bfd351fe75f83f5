package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialhub_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// MediaUploads counts media store uploads by result.
	MediaUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialhub_media_uploads_total",
		Help: "Total number of media uploads by result",
	}, []string{"result"})

	// MediaDeletes counts media store deletes by reason and result.
	MediaDeletes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialhub_media_deletes_total",
		Help: "Total number of media deletes by reason and result",
	}, []string{"reason", "result"})

	// Compensations counts operations that had to roll back uploaded media.
	Compensations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialhub_compensations_total",
		Help: "Total number of compensating media rollbacks by operation",
	}, []string{"operation"})

	// CascadeDeleteDuration records how long a cascading user delete takes.
	CascadeDeleteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "socialhub_cascade_delete_seconds",
		Help:    "Duration of cascading user deletes in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// StoriesExpired counts stories removed by the expiry sweeper.
	StoriesExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "socialhub_stories_expired_total",
		Help: "Total number of expired stories removed by the sweeper",
	})

	// WebSocketConnectionsTotal is the gauge of total WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "socialhub_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialhub_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"reason"})
)

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// ResultLabel turns an error into a result label.
func ResultLabel(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
