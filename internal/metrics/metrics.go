// Package metrics exposes the Prometheus collector of the HealthMate server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "healthmate"

// Collector owns a dedicated registry so several collectors (one per test)
// can coexist in a process.
type Collector struct {
	Registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge

	VitalsRecordedTotal  prometheus.Counter
	ReportsCompiledTotal *prometheus.CounterVec
	SharesCreatedTotal   prometheus.Counter
	SharedReadsTotal     *prometheus.CounterVec
}

// NewCollector registers the HealthMate metrics and the Go runtime
// collectors on a fresh registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Collector{
		Registry: reg,

		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, route, and status code.",
		}, []string{"method", "route", "status"}),

		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "route", "status"}),

		InFlightGauge: f.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		VitalsRecordedTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "vitals",
			Name:      "recorded_total",
			Help:      "Total number of vital records created.",
		}),

		ReportsCompiledTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "reports",
			Name:      "compiled_total",
			Help:      "Total reports compiled by output format.",
		}, []string{"format"}),

		SharesCreatedTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "shares",
			Name:      "created_total",
			Help:      "Total shared reports published.",
		}),

		SharedReadsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "shares",
			Name:      "reads_total",
			Help:      "Shared report reads by result.",
		}, []string{"result"}),
	}
}

// ObserveRequest records one finished HTTP request.
func (c *Collector) ObserveRequest(method, route string, status int, d time.Duration) {
	code := strconv.Itoa(status)
	c.RequestsTotal.WithLabelValues(method, route, code).Inc()
	c.RequestDuration.WithLabelValues(method, route, code).Observe(d.Seconds())
}

// InFlight moves the in-flight gauge by delta.
func (c *Collector) InFlight(delta float64) { c.InFlightGauge.Add(delta) }

// VitalRecorded counts a stored vital record.
func (c *Collector) VitalRecorded() { c.VitalsRecordedTotal.Inc() }

// ReportCompiled counts a report compiled for format.
func (c *Collector) ReportCompiled(format string) {
	c.ReportsCompiledTotal.WithLabelValues(format).Inc()
}

// ShareCreated counts a published shared report.
func (c *Collector) ShareCreated() { c.SharesCreatedTotal.Inc() }

// SharedRead counts a shared report lookup.
func (c *Collector) SharedRead(found bool) {
	result := "missing"
	if found {
		result = "found"
	}
	c.SharedReadsTotal.WithLabelValues(result).Inc()
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{Registry: c.Registry})
}
