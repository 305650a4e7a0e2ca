package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"resumeforge/internal/config"
	"resumeforge/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func enabledConfig() ObservabilityConfig {
	return ObservabilityConfig{
		ServiceName:        "resumeforge-test",
		ServiceVersion:     "test",
		Enabled:            true,
		SampleRate:         1.0,
		CollectionInterval: time.Second,
		TrackDocuments:     true,
		TrackDuration:      true,
		TrackRateLimits:    true,
	}
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumOf(t *testing.T, data metricdata.Aggregation) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok, "expected an int64 sum, got %T", data)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestManagerRecordsDocumentMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	om, err := NewObservabilityManager(enabledConfig(), nil, reader)
	require.NoError(t, err)
	defer func() { _ = om.Shutdown(context.Background()) }()

	m := om.GetMetrics()
	ctx := context.Background()

	require.NoError(t, m.TrackParse(ctx, "http", "pdf", func(context.Context) error { return nil }))
	failure := errors.NewExtractionError(errors.ErrCodeExtractionFailed, "corrupt", nil)
	err = m.TrackParse(ctx, "http", "pdf", func(context.Context) error { return failure })
	assert.Same(t, failure, err)
	m.RecordRender(ctx, "moderno-azul", "pdf", true)
	m.RecordRateLimitHit(ctx)

	data := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, data["resumeforge_documents_parsed_total"]))
	assert.Equal(t, int64(1), sumOf(t, data["resumeforge_extraction_errors_total"]))
	assert.Equal(t, int64(1), sumOf(t, data["resumeforge_documents_rendered_total"]))
	assert.Equal(t, int64(1), sumOf(t, data["resumeforge_rate_limit_hits_total"]))
	assert.Contains(t, data, "resumeforge_parse_duration_seconds")
}

func TestManagerHonorsDisabledGroups(t *testing.T) {
	cfg := enabledConfig()
	cfg.TrackDocuments = false
	reader := sdkmetric.NewManualReader()
	om, err := NewObservabilityManager(cfg, nil, reader)
	require.NoError(t, err)
	defer func() { _ = om.Shutdown(context.Background()) }()

	require.NoError(t, om.GetMetrics().TrackParse(context.Background(), "cli", "word", func(context.Context) error { return nil }))

	data := collect(t, reader)
	assert.NotContains(t, data, "resumeforge_documents_parsed_total")
}

func TestDisabledManager(t *testing.T) {
	om, err := NewObservabilityManager(ObservabilityConfig{Enabled: false}, nil)
	require.NoError(t, err)

	called := false
	err = om.GetMetrics().TrackParse(context.Background(), "cli", "pdf", func(context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
	om.GetMetrics().RecordRender(context.Background(), "x", "pdf", true)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })
	rec := httptest.NewRecorder()
	om.HTTPMiddleware()(handler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	_, span := om.Tracer("test").Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	assert.NoError(t, om.Shutdown(context.Background()))
}

func TestGetObservabilityConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Observability.Enabled = true
	cfg.Observability.ServiceName = "svc"
	cfg.Observability.Metrics.Enabled = true
	cfg.Observability.CustomMetrics.Documents.Enabled = true
	cfg.Observability.Prometheus.Endpoint = "/metrics"

	obs := GetObservabilityConfig(cfg, "1.2.3")

	assert.Equal(t, "svc", obs.ServiceName)
	assert.Equal(t, "1.2.3", obs.ServiceVersion)
	assert.Equal(t, 15*time.Second, obs.CollectionInterval)
	assert.True(t, obs.TrackDocuments)
	assert.False(t, obs.TrackRateLimits)
	assert.Equal(t, "/metrics", obs.Prometheus.Endpoint)

	fallback := GetObservabilityConfig(nil, "dev")
	assert.Equal(t, "resumeforge", fallback.ServiceName)
	assert.False(t, fallback.Prometheus.Enabled)
}

func TestPrometheusExporterServesMetrics(t *testing.T) {
	reader, handler, err := SetupPrometheusExporter(PrometheusConfig{Enabled: true, Endpoint: "/metrics"})
	require.NoError(t, err)

	cfg := enabledConfig()
	om, err := NewObservabilityManager(cfg, nil, reader)
	require.NoError(t, err)
	defer func() { _ = om.Shutdown(context.Background()) }()
	om.GetMetrics().RecordRender(context.Background(), "moderno-azul", "html", true)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "resumeforge_documents_rendered_total")

	reader, handler, err = SetupPrometheusExporter(PrometheusConfig{Enabled: false})
	assert.NoError(t, err)
	assert.Nil(t, reader)
	assert.Nil(t, handler)
}
