package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	SearchRequestsTotal     metric.Int64Counter
	PipelineDurationSeconds metric.Float64Histogram
	CatalogPagesFetched     metric.Int64Counter
	JudgeCallsTotal         metric.Int64Counter
	JudgeErrorsTotal        metric.Int64Counter
	SanitizerRepairsTotal   metric.Int64Counter
	QATurnsTotal            metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metric instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("EventScout")
		var err error
		m := &AppMetrics{}

		m.SearchRequestsTotal, err = meter.Int64Counter(
			"search_requests_total",
			metric.WithDescription("Total number of event searches completed"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create search_requests_total: %v", err)
		}

		m.PipelineDurationSeconds, err = meter.Float64Histogram(
			"pipeline_duration_seconds",
			metric.WithDescription("Duration of the full recommendation pipeline in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create pipeline_duration_seconds: %v", err)
		}

		m.CatalogPagesFetched, err = meter.Int64Counter(
			"catalog_pages_fetched_total",
			metric.WithDescription("Total number of catalog pages fetched across all searches"),
			metric.WithUnit("{page}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create catalog_pages_fetched_total: %v", err)
		}

		m.JudgeCallsTotal, err = meter.Int64Counter(
			"judge_calls_total",
			metric.WithDescription("Total number of judge round-trips (scoring and QA)"),
			metric.WithUnit("{call}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create judge_calls_total: %v", err)
		}

		m.JudgeErrorsTotal, err = meter.Int64Counter(
			"judge_errors_total",
			metric.WithDescription("Total number of failed judge round-trips"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create judge_errors_total: %v", err)
		}

		m.SanitizerRepairsTotal, err = meter.Int64Counter(
			"sanitizer_repairs_total",
			metric.WithDescription("Total number of judge replies that needed structural repair"),
			metric.WithUnit("{reply}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create sanitizer_repairs_total: %v", err)
		}

		m.QATurnsTotal, err = meter.Int64Counter(
			"qa_turns_total",
			metric.WithDescription("Total number of follow-up question turns"),
			metric.WithUnit("{turn}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create qa_turns_total: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the initialized metrics instance. InitAppMetrics must have run.
func Get() *AppMetrics {
	if appMetrics == nil {
		InitAppMetrics()
	}
	return appMetrics
}
