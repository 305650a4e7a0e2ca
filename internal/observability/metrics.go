package observability

import (
	"context"
	"fmt"
	"time"

	"resumeforge/internal/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the custom instruments. A zero Metrics records nothing.
type Metrics struct {
	DocumentsParsed   metric.Int64Counter
	ParseDuration     metric.Float64Histogram
	ExtractionErrors  metric.Int64Counter
	DocumentsRendered metric.Int64Counter
	RateLimitHits     metric.Int64Counter

	trackDuration bool
}

func newMetrics(meter metric.Meter, cfg ObservabilityConfig) (*Metrics, error) {
	m := &Metrics{trackDuration: cfg.TrackDuration}
	var err error

	if cfg.TrackDocuments {
		m.DocumentsParsed, err = meter.Int64Counter(
			"resumeforge_documents_parsed_total",
			metric.WithDescription("Total number of résumé parse calls"),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create documents parsed metric: %w", err)
		}

		m.ParseDuration, err = meter.Float64Histogram(
			"resumeforge_parse_duration_seconds",
			metric.WithDescription("Time spent extracting and parsing a document"),
			metric.WithUnit("s"),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create parse duration metric: %w", err)
		}

		m.ExtractionErrors, err = meter.Int64Counter(
			"resumeforge_extraction_errors_total",
			metric.WithDescription("Total number of failed parse calls by error code"),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create extraction errors metric: %w", err)
		}

		m.DocumentsRendered, err = meter.Int64Counter(
			"resumeforge_documents_rendered_total",
			metric.WithDescription("Total number of rendered documents"),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create documents rendered metric: %w", err)
		}
	}

	if cfg.TrackRateLimits {
		m.RateLimitHits, err = meter.Int64Counter(
			"resumeforge_rate_limit_hits_total",
			metric.WithDescription("Total number of rate limit hits"),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limit hits metric: %w", err)
		}
	}

	return m, nil
}

// TrackParse runs fn inside a "resume.parse" span and records the parse
// counters. source names the caller (http, mcp, cli, watch).
func (m *Metrics) TrackParse(ctx context.Context, source, format string, fn func(context.Context) error) error {
	ctx, span := otel.Tracer("resumeforge.parser").Start(ctx, "resume.parse")
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start).Seconds()

	attrs := []attribute.KeyValue{
		attribute.String("source", source),
		attribute.String("format", format),
		attribute.Bool("success", err == nil),
	}
	span.SetAttributes(attrs...)

	if m.DocumentsParsed != nil {
		m.DocumentsParsed.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	if m.ParseDuration != nil && m.trackDuration {
		m.ParseDuration.Record(ctx, duration, metric.WithAttributes(attrs...))
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if m.ExtractionErrors != nil {
			m.ExtractionErrors.Add(ctx, 1, metric.WithAttributes(
				attribute.String("source", source),
				attribute.String("code", errors.CodeOf(err)),
			))
		}
	}
	return err
}

// RecordRender counts one render call.
func (m *Metrics) RecordRender(ctx context.Context, templateID, format string, success bool) {
	if m.DocumentsRendered == nil {
		return
	}
	m.DocumentsRendered.Add(ctx, 1, metric.WithAttributes(
		attribute.String("template_id", templateID),
		attribute.String("format", format),
		attribute.Bool("success", success),
	))
}

// RecordRateLimitHit counts one rejected request.
func (m *Metrics) RecordRateLimitHit(ctx context.Context, attributes ...attribute.KeyValue) {
	if m.RateLimitHits == nil {
		return
	}
	m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attributes...))
}
