package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(aiCallsLatencyMs, aiFallbacksTotal) }

var aiCallsLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "ai_calls_latency_ms",
		Help:    "AI call latency distribution in milliseconds.",
		Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
	},
	[]string{"provider", "mode", "success"},
)

var aiFallbacksTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ai_fallbacks_total",
		Help: "Media analyses that degraded to the manual-review fallback.",
	},
	[]string{"mode"},
)

func ObserveAICall(provider, mode string, latencyMs int, success bool) {
	aiCallsLatencyMs.WithLabelValues(norm(provider), norm(mode), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}

func IncAIFallback(mode string) {
	aiFallbacksTotal.WithLabelValues(norm(mode)).Inc()
}
