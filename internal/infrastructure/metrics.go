package infrastructure

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the pipeline's Prometheus collectors.
type Metrics struct {
	RunsTotal           *prometheus.CounterVec
	RunDuration         *prometheus.HistogramVec
	RowsSelected        *prometheus.GaugeVec
	ChartsRendered      *prometheus.CounterVec
	MessagesSent        *prometheus.CounterVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg. A nil
// registerer leaves them unregistered, which tests rely on.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "opsreports",
			Name:      "runs_total",
			Help:      "Report runs by report name and outcome.",
		}, []string{"report", "status"}),
		RunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "opsreports",
			Name:      "run_duration_seconds",
			Help:      "Report run duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"report"}),
		RowsSelected: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "opsreports",
			Name:      "rows_selected",
			Help:      "Rows left after filtering in the last run.",
		}, []string{"report"}),
		ChartsRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "opsreports",
			Name:      "charts_rendered_total",
			Help:      "Charts rendered by kind and outcome.",
		}, []string{"kind", "status"}),
		MessagesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "opsreports",
			Name:      "messages_sent_total",
			Help:      "Chart images sent to messaging groups.",
		}, []string{"group", "status"}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "opsreports",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "opsreports",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.RunsTotal,
			m.RunDuration,
			m.RowsSelected,
			m.ChartsRendered,
			m.MessagesSent,
			m.HTTPRequestsTotal,
			m.HTTPRequestDuration,
		)
	}

	return m
}

// ObserveRun records the outcome of a report run.
func (m *Metrics) ObserveRun(report string, rows int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(report, statusLabel(err)).Inc()
	m.RunDuration.WithLabelValues(report).Observe(duration.Seconds())
	m.RowsSelected.WithLabelValues(report).Set(float64(rows))
}

// ObserveChart records one chart render attempt.
func (m *Metrics) ObserveChart(kind string, err error) {
	if m == nil {
		return
	}
	m.ChartsRendered.WithLabelValues(kind, statusLabel(err)).Inc()
}

// ObserveEmptyChart records a chart skipped for lack of data.
func (m *Metrics) ObserveEmptyChart(kind string) {
	if m == nil {
		return
	}
	m.ChartsRendered.WithLabelValues(kind, "empty").Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// ObserveMessage records one image delivery attempt.
func (m *Metrics) ObserveMessage(group string, err error) {
	if m == nil {
		return
	}
	m.MessagesSent.WithLabelValues(group, statusLabel(err)).Inc()
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
