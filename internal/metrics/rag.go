package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval, answer and ingestion metrics.
var (
	RetrievalRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrieval_requests_total",
			Help:      "Total number of retrieval requests",
		},
		[]string{"status"},
	)

	RetrievalResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_results",
			Help:      "Number of results kept after the similarity threshold",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20},
		},
	)

	RetrievalDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrieval_dropped_total",
			Help:      "Results dropped for scoring below the similarity threshold",
		},
	)

	AnswerRouteTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answer_route_total",
			Help:      "Answers produced per extractor route",
		},
		[]string{"route"},
	)

	IngestDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_documents_total",
			Help:      "Documents processed by ingestion",
		},
		[]string{"status"},
	)

	IngestChunksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_chunks_total",
			Help:      "Chunks written to the vector index",
		},
	)
)

func ragCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		RetrievalRequestsTotal,
		RetrievalResults,
		RetrievalDroppedTotal,
		AnswerRouteTotal,
		IngestDocumentsTotal,
		IngestChunksTotal,
	}
}
