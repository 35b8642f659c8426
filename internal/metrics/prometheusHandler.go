package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var countJobsInQueue = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "count_jobs_in_queue",
	Help: "Number of jobs in queue",
})

var dispatcherSignalCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "dispatcher_signal_count",
	Help: "How often the dispatcher has signaled to start worker",
})

var activeWorkerCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "active_worker_count",
	Help: "Number of active workers",
})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func IncrementJobsInQueue() {
	countJobsInQueue.Inc()
}

func DecrementJobsInQueue() {
	countJobsInQueue.Dec()
}

func StartDispatcherSignalCount() {
	dispatcherSignalCount.Inc()
}

func IncrementActiveWorkerCount() {
	activeWorkerCount.Inc()
}
func DecrementActiveWorkerCount() {
	activeWorkerCount.Dec()
}

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "process_request_duration_seconds",
	Help:    "Total time spent in ProcessRequest.",
	Buckets: []float64{.1, .5, 1, 2, 5, 10, 30},
}, []string{"status"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureJobMetrics(label string, timeElapsed time.Duration) {
	requestDuration.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

var documentReads = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "document_reads_total",
	Help: "Documents read by the reader registry, labelled by format and outcome",
}, []string{"format", "outcome"})

var documentReadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "document_read_duration_seconds",
	Help:    "Time spent reading and classifying one document.",
	Buckets: []float64{.01, .05, .1, .5, 1, 5, 15, 60},
}, []string{"format"})

var documentsByType = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "documents_classified_total",
	Help: "Successfully read documents labelled by detected document type",
}, []string{"document_type"})

// CaptureDocumentRead records one registry read. outcome is "success" or the failure reason.
func CaptureDocumentRead(format, outcome string, timeElapsed time.Duration) {
	if format == "" {
		format = "unknown"
	}
	documentReads.WithLabelValues(format, outcome).Inc()
	documentReadDuration.WithLabelValues(format).Observe(timeElapsed.Seconds())
}

func CaptureDocumentType(documentType string) {
	documentsByType.WithLabelValues(documentType).Inc()
}
