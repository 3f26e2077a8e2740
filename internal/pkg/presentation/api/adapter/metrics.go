package adapter

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	invocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "adapter_host",
		Name:      "invocations_total",
		Help:      "Number of adapter invocations by method and response code.",
	}, []string{"method", "code"})

	invocationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "adapter_host",
		Name:      "invocation_duration_seconds",
		Help:      "Time spent running the adapter command.",
		Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300},
	}, []string{"method"})
)

func observe(method string, code int, started time.Time) {
	invocations.WithLabelValues(method, strconv.Itoa(code)).Inc()
	invocationDuration.WithLabelValues(method).Observe(time.Since(started).Seconds())
}
