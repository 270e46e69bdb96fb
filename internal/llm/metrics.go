package llm

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// recordDuration records the request duration histogram for one
// provider call, matching the metric name used across the app.
func recordDuration(ctx context.Context, meter metric.Meter, start time.Time) {
	if meter == nil {
		return
	}
	histogram, err := meter.Float64Histogram(
		"http.client.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
	)
	if err == nil {
		histogram.Record(ctx, float64(time.Since(start).Milliseconds()))
	}
}

// recordUsage records token-usage counters reported by the provider.
func recordUsage(ctx context.Context, meter metric.Meter, usage map[string]int64) {
	if meter == nil {
		return
	}
	for key, value := range usage {
		counter, err := meter.Int64Counter(
			"llm.usage."+key,
			metric.WithDescription("LLM usage metric: "+key),
		)
		if err != nil {
			continue
		}
		counter.Add(ctx, value)
	}
}
