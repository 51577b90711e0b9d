package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "rag_chat"

// Metrics holds the pipeline's collectors. Each instance owns its registry so
// tests can build as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	AnswersTotal     *prometheus.CounterVec
	AnswerDuration   *prometheus.HistogramVec
	RetrievedChunks  prometheus.Histogram
	IngestedChunks   prometheus.Counter
	IngestionsTotal  *prometheus.CounterVec
	IngestionSeconds prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		AnswersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_total",
			Help:      "Answer calls by outcome (ok or the failure kind).",
		}, []string{"outcome"}),
		AnswerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "answer_stage_seconds",
			Help:      "Latency of each Answer stage.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 14),
		}, []string{"stage"}),
		RetrievedChunks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieved_chunks",
			Help:      "Chunks returned by nearest-neighbor retrieval per question.",
			Buckets:   prometheus.LinearBuckets(0, 1, 11),
		}),
		IngestedChunks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingested_chunks_total",
			Help:      "Chunks written by ingestion runs.",
		}),
		IngestionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingestions_total",
			Help:      "Ingestion runs by outcome.",
		}, []string{"outcome"}),
		IngestionSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingestion_seconds",
			Help:      "Duration of ingestion runs.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 16),
		}),
	}

	m.Registry.MustRegister(
		m.AnswersTotal,
		m.AnswerDuration,
		m.RetrievedChunks,
		m.IngestedChunks,
		m.IngestionsTotal,
		m.IngestionSeconds,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}
