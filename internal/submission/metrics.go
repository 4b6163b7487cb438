package submission

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sheetscan_submissions_total",
			Help: "Total number of submissions by outcome",
		},
		[]string{"outcome"}, // success, warning, rejected, error
	)

	submissionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sheetscan_submission_duration_seconds",
			Help:    "Submission processing duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 25, 50, 100},
		},
		[]string{"outcome"},
	)

	failuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sheetscan_failures_total",
			Help: "Total number of failed submissions by stage",
		},
		[]string{"stage"}, // upload, ocr, append
	)

	candidateRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sheetscan_candidate_rows_total",
			Help: "Table rows considered for extraction by result",
		},
		[]string{"result"}, // accepted, unknown_item, empty_quantity
	)

	rowsAppended = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sheetscan_rows_appended",
			Help:    "Number of rows appended per submission",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		},
	)

	cleanupFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sheetscan_blob_cleanup_failures_total",
			Help: "Total number of staged blobs that could not be deleted",
		},
	)

	uploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sheetscan_upload_size_bytes",
			Help:    "Size of submitted files in bytes",
			Buckets: []float64{1024, 10 * 1024, 100 * 1024, 1024 * 1024, 10 * 1024 * 1024, 50 * 1024 * 1024},
		},
	)
)
