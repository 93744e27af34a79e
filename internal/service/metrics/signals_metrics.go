package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	SignalsLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "signalpulse",
			Subsystem: "api",
			Name:      "latency_seconds",
			Help:      "Latency of signal endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	SignalsErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "signalpulse",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Errors by signal endpoint",
		},
		[]string{"endpoint"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(SignalsLatency, SignalsErrors)
	})
}
