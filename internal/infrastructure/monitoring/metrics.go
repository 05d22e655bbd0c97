package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ops API metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Upstream fetch metrics
	FetchesTotal  *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	BreakerState  *prometheus.GaugeVec

	// Extraction metrics
	PagesTotal       *prometheus.CounterVec
	StageDuration    *prometheus.HistogramVec
	BatchesTotal     prometheus.Counter
	RecordsTotal     prometheus.Counter
	AnnotationsTotal *prometheus.CounterVec

	// Pagination metrics
	ContinuationsTotal *prometheus.CounterVec

	// Crawl pool metrics
	RunsActive    prometheus.Gauge
	RunsTotal     prometheus.Counter
	WorkersActive prometheus.Gauge
	QueueDepth    prometheus.Gauge

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot Snapshot

	mu sync.RWMutex
}

// Snapshot holds current metric values for the JSON API
type Snapshot struct {
	TotalRequests int64   `json:"total_requests"`
	TotalErrors   int64   `json:"total_errors"`
	TotalDuration float64 `json:"-"`
	RequestCount  int64   `json:"-"`
	Pages         int64   `json:"pages"`
	Batches       int64   `json:"batches"`
	Records       int64   `json:"records"`
	Annotations   int64   `json:"annotations"`
	ActiveRuns    int64   `json:"active_runs"`
	Connections   int64   `json:"ws_connections"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	m := &Metrics{
		startTime: time.Now(),

		// Ops API metrics
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_http_requests_total",
				Help: "Total number of ops API requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scraper_http_request_duration_seconds",
				Help:    "Ops API request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scraper_http_request_size_bytes",
				Help:    "Ops API request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scraper_http_response_size_bytes",
				Help:    "Ops API response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),

		// Upstream fetch metrics
		FetchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_fetches_total",
				Help: "Total number of upstream fetches",
			},
			[]string{"host", "status_class"},
		),
		FetchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scraper_fetch_duration_seconds",
				Help:    "Upstream fetch duration in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"host"},
		),
		BreakerState: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "scraper_breaker_state",
				Help: "Per-host circuit breaker state (0=closed 1=half-open 2=open)",
			},
			[]string{"host"},
		),

		// Extraction metrics
		PagesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_pages_total",
				Help: "Total number of extraction units processed",
			},
			[]string{"mode"},
		),
		StageDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scraper_stage_duration_seconds",
				Help:    "Pipeline stage duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"mode", "stage"},
		),
		BatchesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "scraper_batches_total",
				Help: "Total number of result batches emitted",
			},
		),
		RecordsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "scraper_records_total",
				Help: "Total number of records emitted",
			},
		),
		AnnotationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_annotations_total",
				Help: "Total number of batch annotations by code",
			},
			[]string{"code"},
		),

		// Pagination metrics
		ContinuationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_continuations_total",
				Help: "Continuation decisions by mode and outcome",
			},
			[]string{"mode", "outcome"},
		),

		// Crawl pool metrics
		RunsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "scraper_runs_active",
				Help: "Number of runs currently executing",
			},
		),
		RunsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "scraper_runs_total",
				Help: "Total number of runs started",
			},
		),
		WorkersActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "scraper_workers_active",
				Help: "Number of workers currently processing a unit",
			},
		),
		QueueDepth: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "scraper_queue_depth",
				Help: "Number of extraction units waiting in the queue",
			},
		),

		// WebSocket metrics
		WSConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "scraper_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),

		// System metrics
		Uptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "scraper_uptime_seconds",
				Help: "Worker uptime in seconds",
			},
		),
	}

	// Start uptime updater
	go m.updateUptime()

	return m
}

// updateUptime continuously updates the uptime metric
func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.Uptime.Set(time.Since(m.startTime).Seconds())
	}
}

// RecordHTTPRequest records an ops API request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	m.snapshot.RequestCount++
	if len(status) > 0 && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordFetch records one upstream fetch
func (m *Metrics) RecordFetch(host, statusClass string, duration time.Duration) {
	m.FetchesTotal.WithLabelValues(host, statusClass).Inc()
	m.FetchDuration.WithLabelValues(host).Observe(duration.Seconds())
}

// SetBreakerState records a per-host breaker state transition
func (m *Metrics) SetBreakerState(host string, state int) {
	m.BreakerState.WithLabelValues(host).Set(float64(state))
}

// RecordPage records one processed extraction unit
func (m *Metrics) RecordPage(mode string, duration time.Duration) {
	m.PagesTotal.WithLabelValues(mode).Inc()
	m.StageDuration.WithLabelValues(mode, "unit").Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.Pages++
	m.mu.Unlock()
}

// RecordStage records one pipeline stage duration
func (m *Metrics) RecordStage(mode, stage string, duration time.Duration) {
	m.StageDuration.WithLabelValues(mode, stage).Observe(duration.Seconds())
}

// RecordBatch records an emitted batch and its record count
func (m *Metrics) RecordBatch(records int) {
	m.BatchesTotal.Inc()
	m.RecordsTotal.Add(float64(records))

	m.mu.Lock()
	m.snapshot.Batches++
	m.snapshot.Records += int64(records)
	m.mu.Unlock()
}

// RecordAnnotation records one batch annotation
func (m *Metrics) RecordAnnotation(code string) {
	m.AnnotationsTotal.WithLabelValues(code).Inc()

	m.mu.Lock()
	m.snapshot.Annotations++
	m.mu.Unlock()
}

// RecordContinuation records a continuation decision
func (m *Metrics) RecordContinuation(mode, outcome string) {
	m.ContinuationsTotal.WithLabelValues(mode, outcome).Inc()
}

// IncRunsActive marks a run as started
func (m *Metrics) IncRunsActive() {
	m.RunsActive.Inc()
	m.RunsTotal.Inc()

	m.mu.Lock()
	m.snapshot.ActiveRuns++
	m.mu.Unlock()
}

// DecRunsActive marks a run as finished
func (m *Metrics) DecRunsActive() {
	m.RunsActive.Dec()

	m.mu.Lock()
	m.snapshot.ActiveRuns--
	m.mu.Unlock()
}

// SetWorkersActive sets the number of busy workers
func (m *Metrics) SetWorkersActive(count int) {
	m.WorkersActive.Set(float64(count))
}

// SetQueueDepth sets the number of queued units
func (m *Metrics) SetQueueDepth(count int) {
	m.QueueDepth.Set(float64(count))
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()

	m.mu.Lock()
	m.snapshot.Connections++
	m.mu.Unlock()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()

	m.mu.Lock()
	m.snapshot.Connections--
	m.mu.Unlock()
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// GetSnapshot returns current metric values for the JSON API
func (m *Metrics) GetSnapshot() Snapshot {
	m.mu.RLock()
	snap := m.snapshot
	m.mu.RUnlock()

	snap.UptimeSeconds = time.Since(m.startTime).Seconds()
	return snap
}
