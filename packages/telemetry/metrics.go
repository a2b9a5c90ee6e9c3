package telemetry

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "repo-analyzer"

// Metrics records upload and model usage. Instruments that fail to
// initialise degrade to no-ops rather than failing startup.
type Metrics struct {
	filesUploaded    metric.Int64Counter
	uploadFailures   metric.Int64Counter
	filesAnalyzed    metric.Int64Counter
	promptBytes      metric.Int64Histogram
	promptTokens     metric.Int64Counter
	completionTokens metric.Int64Counter
}

// NewMetrics creates the instruments on the global meter provider.
func NewMetrics() *Metrics {
	return NewMetricsWithProvider(otel.GetMeterProvider())
}

// NewMetricsWithProvider creates the instruments on mp.
func NewMetricsWithProvider(mp metric.MeterProvider) *Metrics {
	meter := mp.Meter(meterName, metric.WithInstrumentationVersion("1.0.0"))

	return &Metrics{
		filesUploaded: counter(meter, "repo.files.uploaded",
			"Files uploaded to object storage", "{files}"),
		uploadFailures: counter(meter, "repo.files.upload_failures",
			"Files that failed to upload", "{files}"),
		filesAnalyzed: counter(meter, "analysis.files",
			"Source files included in an analysis prompt", "{files}"),
		promptBytes: histogram(meter, "analysis.prompt.size",
			"Size of the concatenated source sent to the model", "By"),
		promptTokens: counter(meter, "genai.token.prompt",
			"The number of prompt tokens used", "{tokens}"),
		completionTokens: counter(meter, "genai.token.completion",
			"The number of completion tokens used", "{tokens}"),
	}
}

// RecordUploads records the outcome of one repository upload.
func (m *Metrics) RecordUploads(ctx context.Context, bucket string, ok, failed int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("bucket", bucket))
	m.filesUploaded.Add(ctx, int64(ok), attrs)
	m.uploadFailures.Add(ctx, int64(failed), attrs)
}

// RecordPrompt records the files, by language, and bytes that made up one
// prompt.
func (m *Metrics) RecordPrompt(ctx context.Context, filesByLanguage map[string]int, bytes int) {
	if m == nil {
		return
	}
	for lang, n := range filesByLanguage {
		m.filesAnalyzed.Add(ctx, int64(n), metric.WithAttributes(attribute.String("language", lang)))
	}
	m.promptBytes.Record(ctx, int64(bytes))
}

// RecordTokens records model token usage. Zero values are skipped.
func (m *Metrics) RecordTokens(ctx context.Context, model string, prompt, completion int64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("model", model))
	if prompt > 0 {
		m.promptTokens.Add(ctx, prompt, attrs)
	}
	if completion > 0 {
		m.completionTokens.Add(ctx, completion, attrs)
	}
}

func counter(meter metric.Meter, name, desc, unit string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	if err != nil {
		slog.Warn("Failed to create counter, metric will be disabled", "error", err, "name", name)
		return noop.Int64Counter{}
	}
	return c
}

func histogram(meter metric.Meter, name, desc, unit string) metric.Int64Histogram {
	h, err := meter.Int64Histogram(name, metric.WithDescription(desc), metric.WithUnit(unit))
	if err != nil {
		slog.Warn("Failed to create histogram, metric will be disabled", "error", err, "name", name)
		return noop.Int64Histogram{}
	}
	return h
}
