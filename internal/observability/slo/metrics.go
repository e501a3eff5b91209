package slo

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Targets for the read API. The worker runs on a cron schedule and has no
// latency objective, so only the HTTP surface is tracked here.
const (
	// AvailabilitySLO is the target uptime percentage.
	AvailabilitySLO = 99.9

	// LatencyP95SLO and LatencyP99SLO are latency targets in seconds.
	LatencyP95SLO = 0.200
	LatencyP99SLO = 0.500

	// ErrorRateSLO is the maximum acceptable 5xx ratio.
	ErrorRateSLO = 0.001
)

// Gauges published by Tracker.Flush once per window.
var (
	currentAvailability = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slo_availability_ratio",
		Help: "Availability over the last window (0-1), target: 0.999",
	})

	currentLatencyP95 = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slo_latency_p95_seconds",
		Help: "p95 request latency over the last window, target: 0.200",
	})

	currentLatencyP99 = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slo_latency_p99_seconds",
		Help: "p99 request latency over the last window, target: 0.500",
	})

	currentErrorRate = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slo_error_rate_ratio",
		Help: "5xx ratio over the last window (0-1), target: 0.001",
	})
)

func publishAvailability(ratio float64) { currentAvailability.Set(ratio) }

func publishLatencyP95(seconds float64) { currentLatencyP95.Set(seconds) }

func publishLatencyP99(seconds float64) { currentLatencyP99.Set(seconds) }

func publishErrorRate(ratio float64) { currentErrorRate.Set(ratio) }
