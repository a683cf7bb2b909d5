package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus metrics of an Engine.
type Metrics struct {
	DocumentsProcessed prometheus.Counter
	DocumentErrors     prometheus.Counter
	RowsEmitted        prometheus.Counter
	QueryDuration      *prometheus.HistogramVec
}

// NewMetrics creates and registers all metrics with the provided registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	documentsProcessed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "xmlq_documents_processed_total",
		Help: "Total documents processed, including failed ones",
	})

	documentErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "xmlq_document_errors_total",
		Help: "Total documents that failed to load or traverse",
	})

	rowsEmitted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "xmlq_rows_emitted_total",
		Help: "Total rows produced by single-document execution",
	})

	queryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "xmlq_query_duration_seconds",
		Help:    "Wall-clock duration of query executions",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})

	reg.MustRegister(documentsProcessed, documentErrors, rowsEmitted, queryDuration)

	return &Metrics{
		DocumentsProcessed: documentsProcessed,
		DocumentErrors:     documentErrors,
		RowsEmitted:        rowsEmitted,
		QueryDuration:      queryDuration,
	}
}
