// Package metrics exposes the prometheus collectors for the /metrics
// endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScansTotal counts finished reconciliation passes by outcome.
	ScansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coursewatcher_scans_total",
		Help: "Completed library scans by outcome.",
	}, []string{"outcome"})

	// ScanVideosAdded counts videos inserted by scans.
	ScanVideosAdded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coursewatcher_scan_videos_added_total",
		Help: "Videos newly discovered by library scans.",
	})

	// VideosByStatus tracks the current library breakdown.
	VideosByStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "coursewatcher_videos",
		Help: "Videos in the library by watch status.",
	}, []string{"status"})

	// HTTPRequests counts handled requests.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coursewatcher_http_requests_total",
		Help: "HTTP requests by method and status code.",
	}, []string{"method", "code"})
)
