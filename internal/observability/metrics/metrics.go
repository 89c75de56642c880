package metrics

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricPrefix = "console_"

	// ResultSuccess labels a successful operation.
	ResultSuccess = "success"
	// ResultError labels a failed operation.
	ResultError = "error"
)

var (
	registerOnce sync.Once

	snapshotLoads       *prometheus.CounterVec
	snapshotLoadLatency *prometheus.HistogramVec

	deltasApplied  *prometheus.CounterVec
	deltasRejected *prometheus.CounterVec

	storeEntities *prometheus.GaugeVec

	mutationsFired   *prometheus.CounterVec
	mutationFailures *prometheus.CounterVec

	pushReconnects prometheus.Counter
	pushFrames     *prometheus.CounterVec
)

// Init registers console metrics. Safe to call more than once.
func Init(logger *log.Logger) {
	registerOnce.Do(func() {
		snapshotLoads = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "snapshot_loads_total",
				Help: "Total bulk snapshot loads by collection and result",
			},
			[]string{"collection", "result"},
		)
		snapshotLoadLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "snapshot_load_latency_seconds",
				Help:    "Bulk snapshot load latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"collection", "result"},
		)

		deltasApplied = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "deltas_applied_total",
				Help: "Total push deltas applied by event name",
			},
			[]string{"event"},
		)
		deltasRejected = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "deltas_rejected_total",
				Help: "Total push deltas rejected by reason",
			},
			[]string{"reason"},
		)

		storeEntities = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "store_entities",
				Help: "Entities currently held per store",
			},
			[]string{"kind"},
		)

		mutationsFired = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "mutations_fired_total",
				Help: "Total fire-and-forget mutation requests by kind",
			},
			[]string{"kind"},
		)
		mutationFailures = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "mutation_failures_total",
				Help: "Total fire-and-forget mutation failures by kind",
			},
			[]string{"kind"},
		)

		pushReconnects = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "push_reconnects_total",
				Help: "Total push channel reconnect attempts",
			},
		)
		pushFrames = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "push_frames_total",
				Help: "Total push frames received by result",
			},
			[]string{"result"},
		)

		collectors := []prometheus.Collector{
			snapshotLoads,
			snapshotLoadLatency,
			deltasApplied,
			deltasRejected,
			storeEntities,
			mutationsFired,
			mutationFailures,
			pushReconnects,
			pushFrames,
		}
		for _, collector := range collectors {
			if err := prometheus.Register(collector); err != nil {
				if logger != nil {
					logger.Printf("metrics register error: %v", err)
				}
			}
		}
	})
}

// Handler exposes the default prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveSnapshotLoad records one bulk load attempt.
func ObserveSnapshotLoad(collection, result string, duration time.Duration) {
	if snapshotLoads == nil {
		return
	}
	snapshotLoads.WithLabelValues(collection, result).Inc()
	snapshotLoadLatency.WithLabelValues(collection, result).Observe(duration.Seconds())
}

// IncDeltaApplied records an applied push delta.
func IncDeltaApplied(event string) {
	if deltasApplied == nil {
		return
	}
	deltasApplied.WithLabelValues(event).Inc()
}

// IncDeltaRejected records a rejected push delta.
func IncDeltaRejected(reason string) {
	if deltasRejected == nil {
		return
	}
	deltasRejected.WithLabelValues(reason).Inc()
}

// SetStoreSize records the current entity count of a store.
func SetStoreSize(kind string, size int) {
	if storeEntities == nil {
		return
	}
	storeEntities.WithLabelValues(kind).Set(float64(size))
}

// IncMutationFired records a fire-and-forget mutation request.
func IncMutationFired(kind string) {
	if mutationsFired == nil {
		return
	}
	mutationsFired.WithLabelValues(kind).Inc()
}

// IncMutationFailure records a fire-and-forget mutation failure.
func IncMutationFailure(kind string) {
	if mutationFailures == nil {
		return
	}
	mutationFailures.WithLabelValues(kind).Inc()
}

// IncPushReconnect records a push channel reconnect attempt.
func IncPushReconnect() {
	if pushReconnects == nil {
		return
	}
	pushReconnects.Inc()
}

// IncPushFrame records one received push frame.
func IncPushFrame(result string) {
	if pushFrames == nil {
		return
	}
	pushFrames.WithLabelValues(result).Inc()
}
