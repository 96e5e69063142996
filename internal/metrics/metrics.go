// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FilesProcessed counts processed source files by outcome
	// (success, skipped, error).
	FilesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalog",
		Subsystem: "import",
		Name:      "files_total",
		Help:      "Number of feed files handled, by outcome",
	}, []string{"outcome"})

	// OffersProcessed counts successfully reconciled offers.
	OffersProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "catalog",
		Subsystem: "import",
		Name:      "offers_processed_total",
		Help:      "Number of offers reconciled into the product store",
	})

	// OffersFailed counts offers dropped by extraction or write failures.
	OffersFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "catalog",
		Subsystem: "import",
		Name:      "offers_failed_total",
		Help:      "Number of offers skipped due to extraction or store errors",
	})

	// ImportDuration observes wall time of whole directory sync runs.
	ImportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "catalog",
		Subsystem: "import",
		Name:      "run_duration_seconds",
		Help:      "Duration of directory sync runs",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	})
)
