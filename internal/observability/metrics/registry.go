// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Dataset metrics track the table loaded at startup.
var (
	// DatasetRecords tracks the number of records in the loaded dataset.
	// The dataset is immutable, so this is set once at startup.
	DatasetRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dataset_records",
			Help: "Number of records in the loaded dataset",
		},
	)
)

// Chart metrics track on-demand chart rendering.
var (
	// ChartRendersTotal counts chart renders by chart kind and status.
	ChartRendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chart_renders_total",
			Help: "Total number of chart renders",
		},
		[]string{"chart", "status"},
	)

	// ChartRenderDuration measures time to rasterize one chart.
	ChartRenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chart_render_duration_seconds",
			Help:    "Time taken to render a chart to PNG",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"chart"},
	)
)

// Report metrics track report document generation.
var (
	// ReportBuildsTotal counts report builds by status.
	ReportBuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_builds_total",
			Help: "Total number of report builds",
		},
		[]string{"status"},
	)

	// ReportBuildDuration measures time to build the full report.
	ReportBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "report_build_duration_seconds",
			Help:    "Time taken to build the report document",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)
)

// UpdateDatasetRecords sets the loaded dataset record count.
func UpdateDatasetRecords(count int) {
	DatasetRecords.Set(float64(count))
}

// RecordChartRender records the outcome and duration of a chart render.
func RecordChartRender(chart string, duration time.Duration, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	ChartRendersTotal.WithLabelValues(chart, status).Inc()
	if success {
		ChartRenderDuration.WithLabelValues(chart).Observe(duration.Seconds())
	}
}

// RecordReportBuild records the outcome and duration of a report build.
func RecordReportBuild(duration time.Duration, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	ReportBuildsTotal.WithLabelValues(status).Inc()
	if success {
		ReportBuildDuration.Observe(duration.Seconds())
	}
}
