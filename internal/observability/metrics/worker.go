package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WorkerMetrics covers the two job families the worker runs: tree
// scans and format conversions.
type WorkerMetrics struct {
	registry *prometheus.Registry

	scansTotal        *prometheus.CounterVec
	scanDuration      *prometheus.HistogramVec
	scannedDocuments  *prometheus.HistogramVec
	conversionsTotal  *prometheus.CounterVec
	convertDuration   *prometheus.HistogramVec
	jobsInFlight      prometheus.Gauge
	classificationTot *prometheus.CounterVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	scansTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docpipe",
			Subsystem: "worker",
			Name:      "scans_total",
			Help:      "Total completed scan jobs by outcome.",
		},
		[]string{"service", "status"},
	)
	scanDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docpipe",
			Subsystem: "worker",
			Name:      "scan_duration_seconds",
			Help:      "Scan job duration in seconds by outcome.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		},
		[]string{"service", "status"},
	)
	scannedDocuments := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docpipe",
			Subsystem: "worker",
			Name:      "scan_documents_found",
			Help:      "Distribution of documents discovered per scan job.",
			Buckets:   []float64{0, 10, 50, 100, 500, 1000, 5000, 20000},
		},
		[]string{"service"},
	)
	conversionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docpipe",
			Subsystem: "worker",
			Name:      "conversions_total",
			Help:      "Total conversion attempts by outcome.",
		},
		[]string{"service", "status"},
	)
	convertDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docpipe",
			Subsystem: "worker",
			Name:      "conversion_duration_seconds",
			Help:      "Conversion duration in seconds by outcome.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	jobsInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docpipe",
			Subsystem: "worker",
			Name:      "jobs_in_flight",
			Help:      "Number of in-flight worker jobs.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	classificationTot := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docpipe",
			Subsystem: "worker",
			Name:      "classifications_total",
			Help:      "Total stored classifications by resulting type.",
		},
		[]string{"service", "doc_type"},
	)

	registry.MustRegister(scansTotal, scanDuration, scannedDocuments, conversionsTotal, convertDuration, jobsInFlight, classificationTot)

	return &WorkerMetrics{
		registry:          registry,
		scansTotal:        scansTotal,
		scanDuration:      scanDuration,
		scannedDocuments:  scannedDocuments,
		conversionsTotal:  conversionsTotal,
		convertDuration:   convertDuration,
		jobsInFlight:      jobsInFlight,
		classificationTot: classificationTot,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartJob() {
	m.jobsInFlight.Inc()
}

func (m *WorkerMetrics) FinishScan(service string, duration time.Duration, found int, err error) {
	m.jobsInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}
	m.scansTotal.WithLabelValues(service, status).Inc()
	m.scanDuration.WithLabelValues(service, status).Observe(duration.Seconds())
	if err == nil {
		m.scannedDocuments.WithLabelValues(service).Observe(float64(found))
	}
}

func (m *WorkerMetrics) FinishConversion(service string, duration time.Duration, err error) {
	m.jobsInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}
	m.conversionsTotal.WithLabelValues(service, status).Inc()
	m.convertDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) RecordClassification(service, docType string) {
	if docType == "" {
		docType = "unknown"
	}
	m.classificationTot.WithLabelValues(service, docType).Inc()
}
