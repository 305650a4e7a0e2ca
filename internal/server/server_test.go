package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"resumeforge/internal/config"
	appErrors "resumeforge/internal/errors"
	"resumeforge/internal/extract"
	"resumeforge/internal/observability"
	"resumeforge/internal/parser"
	"resumeforge/internal/render"
	"resumeforge/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

const uploadedText = `João Pereira
joao@example.com | +55 21 99999-0000
Experiência
Globex - Analista (2018 - 2021)
- Automatizou relatórios
Competências
Go; Docker
`

const renderBody = `{
  "template_id": "moderno-azul",
  "format": "docx",
  "resume": {
    "contact": {"full_name": "João Pereira", "email": "joao@example.com"},
    "experiences": [{"role": "Analista", "company": "Globex", "highlights": ["Automatizou relatórios"]}],
    "skills": ["Go"]
  }
}`

type stubExtractor struct {
	text  string
	err   error
	state string
}

func (s stubExtractor) Name() string { return "stub" }

func (s stubExtractor) Extract(context.Context, []byte, string) (string, error) {
	return s.text, s.err
}

type breakerExtractor struct {
	stubExtractor
}

func (b breakerExtractor) Name() string { return "tika" }

func (b breakerExtractor) BreakerState() string { return b.state }

func testLogger() *appErrors.Logger {
	return appErrors.NewLoggerWithHandler(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, pdf extract.TextExtractor, cfg ServerConfig, om *observability.ObservabilityManager) *Server {
	t.Helper()
	extractors := extract.NewDefaultRegistry(nil)
	extractors.Register(extract.FormatPDF, pdf)
	renderer, err := render.NewDefaultRegistry(nil)
	require.NoError(t, err)

	svc := service.New(extractors, renderer, parser.Options{},
		service.Defaults{TemplateID: "moderno-azul", Format: "pdf"}, nil, testLogger())
	if cfg.Version == "" {
		cfg.Version = "test"
	}
	srv := NewServer(&config.Config{}, cfg, svc, om, testLogger())
	t.Cleanup(srv.cleanupRateLimiter)
	return srv
}

func multipartUpload(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/resume/parse", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealthHandler(t *testing.T) {
	srv := newTestServer(t, stubExtractor{}, ServerConfig{}, nil)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])
	assert.Equal(t, map[string]any{"pdf": "stub", "word": "native"}, body["engines"])
	assert.NotContains(t, body, "circuit_breakers")

	rec = serve(srv, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthReportsOpenBreaker(t *testing.T) {
	srv := newTestServer(t, breakerExtractor{stubExtractor{state: "open"}}, ServerConfig{}, nil)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, map[string]any{"tika": "open"}, body["circuit_breakers"])
}

func TestRequestIDIsPreserved(t *testing.T) {
	srv := newTestServer(t, stubExtractor{}, ServerConfig{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")

	rec := serve(srv, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, stubExtractor{}, ServerConfig{}, nil)

	rec := serve(srv, httptest.NewRequest(http.MethodOptions, "/resume/render", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestTemplatesHandler(t *testing.T) {
	srv := newTestServer(t, stubExtractor{}, ServerConfig{}, nil)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/templates", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var templates []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &templates))
	require.Len(t, templates, 4)
	ids := make([]any, 0, len(templates))
	for _, tpl := range templates {
		ids = append(ids, tpl["id"])
	}
	assert.ElementsMatch(t, []any{"moderno-azul", "classico-serifado", "minimalista-grade", "executivo-dourado"}, ids)
}

func TestStatsHandler(t *testing.T) {
	srv := newTestServer(t, stubExtractor{}, ServerConfig{
		MaxRequestSize: 1024,
		RateLimit:      &config.RateLimitConfig{Enabled: true, RequestsPerMin: 60, BurstCapacity: 5, ByIP: true},
	}, nil)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []any{"docx", "html", "markdown", "pdf"}, body["render_formats"])
	limiting, ok := body["rate_limiting"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(5), limiting["burst_capacity"])
}

func TestParseHandler(t *testing.T) {
	srv := newTestServer(t, stubExtractor{text: uploadedText}, ServerConfig{}, nil)

	rec := serve(srv, multipartUpload(t, "file", "joao.pdf", []byte("%PDF-")))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resume map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resume))
	contact := resume["contact"].(map[string]any)
	assert.Equal(t, "João Pereira", contact["full_name"])
	assert.Equal(t, "joao@example.com", contact["email"])
	assert.Equal(t, []any{"Go", "Docker"}, resume["skills"])
	assert.Equal(t, []any{}, resume["projects"])
}

func TestParseHandlerErrors(t *testing.T) {
	extractionFailure := appErrors.NewExtractionError(appErrors.ErrCodeExtractionFailed, "corrupt PDF", nil)
	tikaDown := appErrors.NewNetworkError(appErrors.ErrCodeExtractorDown, "tika server unavailable", nil)

	tests := []struct {
		name      string
		extractor stubExtractor
		request   func(t *testing.T) *http.Request
		status    int
		errorName string
	}{
		{
			name:      "unsupported extension",
			extractor: stubExtractor{text: uploadedText},
			request: func(t *testing.T) *http.Request {
				return multipartUpload(t, "file", "notes.txt", []byte("hello"))
			},
			status:    http.StatusBadRequest,
			errorName: "unsupported_format",
		},
		{
			name:      "corrupt document",
			extractor: stubExtractor{err: extractionFailure},
			request: func(t *testing.T) *http.Request {
				return multipartUpload(t, "file", "cv.pdf", []byte("garbage"))
			},
			status:    http.StatusUnprocessableEntity,
			errorName: "extraction_failed",
		},
		{
			name:      "extractor unavailable",
			extractor: stubExtractor{err: tikaDown},
			request: func(t *testing.T) *http.Request {
				return multipartUpload(t, "file", "cv.pdf", []byte("%PDF"))
			},
			status:    http.StatusServiceUnavailable,
			errorName: "extractor_unavailable",
		},
		{
			name:      "missing file field",
			extractor: stubExtractor{text: uploadedText},
			request: func(t *testing.T) *http.Request {
				return multipartUpload(t, "document", "cv.pdf", []byte("%PDF"))
			},
			status:    http.StatusBadRequest,
			errorName: "invalid_request",
		},
		{
			name:      "not multipart",
			extractor: stubExtractor{text: uploadedText},
			request: func(t *testing.T) *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/resume/parse", strings.NewReader("{}"))
				req.Header.Set("Content-Type", "application/json")
				return req
			},
			status:    http.StatusBadRequest,
			errorName: "invalid_request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.extractor, ServerConfig{}, nil)

			rec := serve(srv, tt.request(t))

			assert.Equal(t, tt.status, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.errorName, resp.Error)
			assert.NotEmpty(t, resp.RequestID)
		})
	}
}

func TestRenderHandler(t *testing.T) {
	srv := newTestServer(t, stubExtractor{}, ServerConfig{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/resume/render", strings.NewReader(renderBody))
	req.Header.Set("Content-Type", "application/json")

	rec := serve(srv, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=curriculo-moderno-azul.docx", rec.Header().Get("Content-Disposition"))

	text, err := extract.NewDocxExtractor().Extract(context.Background(), rec.Body.Bytes(), "out.docx")
	require.NoError(t, err)
	assert.Contains(t, text, "João Pereira")
	assert.Contains(t, text, "Automatizou relatórios")
}

func TestRenderHandlerAcceptsAliasesAndDefaults(t *testing.T) {
	srv := newTestServer(t, stubExtractor{}, ServerConfig{}, nil)
	body := `{"layout_id": "classico-serifado", "curriculo": {"contato": {"nome_completo": "Ana"}}}`
	req := httptest.NewRequest(http.MethodPost, "/resume/render", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	rec := serve(srv, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=curriculo-classico-serifado.pdf", rec.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
}

func TestRenderHandlerErrors(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		maxSize     int64
		status      int
		errorName   string
	}{
		{
			name:        "unknown template",
			body:        `{"template_id": "inexistente", "format": "pdf", "resume": {}}`,
			contentType: "application/json",
			status:      http.StatusNotFound,
			errorName:   "template_not_found",
		},
		{
			name:        "unknown format",
			body:        `{"template_id": "moderno-azul", "format": "odt", "resume": {}}`,
			contentType: "application/json",
			status:      http.StatusBadRequest,
			errorName:   "invalid_format",
		},
		{
			name:        "malformed JSON",
			body:        `{"template_id": `,
			contentType: "application/json",
			status:      http.StatusBadRequest,
			errorName:   "invalid_request",
		},
		{
			name:        "wrong content type",
			body:        renderBody,
			contentType: "text/plain",
			status:      http.StatusBadRequest,
			errorName:   "invalid_request",
		},
		{
			name:        "body too large",
			body:        renderBody,
			contentType: "application/json",
			maxSize:     32,
			status:      http.StatusRequestEntityTooLarge,
			errorName:   "file_too_large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, stubExtractor{}, ServerConfig{MaxRequestSize: tt.maxSize}, nil)
			req := httptest.NewRequest(http.MethodPost, "/resume/render", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)

			rec := serve(srv, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.errorName, decodeError(t, rec).Error)
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	srv := newTestServer(t, stubExtractor{text: uploadedText}, ServerConfig{APIKeys: []string{"secret-key-123", ""}}, nil)

	rec := serve(srv, multipartUpload(t, "file", "cv.pdf", []byte("%PDF")))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "missing_api_key", decodeError(t, rec).Error)

	req := multipartUpload(t, "file", "cv.pdf", []byte("%PDF"))
	req.Header.Set("X-API-Key", "wrong")
	rec = serve(srv, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_api_key", decodeError(t, rec).Error)

	req = multipartUpload(t, "file", "cv.pdf", []byte("%PDF"))
	req.Header.Set("Authorization", "Bearer secret-key-123")
	rec = serve(srv, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// catalog and health stay public
	rec = serve(srv, httptest.NewRequest(http.MethodGet, "/templates", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitRecordsMetric(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	om, err := observability.NewObservabilityManager(observability.ObservabilityConfig{
		ServiceName:        "resumeforge-test",
		Enabled:            true,
		SampleRate:         1.0,
		CollectionInterval: time.Second,
		TrackRateLimits:    true,
	}, testLogger(), reader)
	require.NoError(t, err)
	defer func() { _ = om.Shutdown(context.Background()) }()

	srv := newTestServer(t, stubExtractor{text: uploadedText}, ServerConfig{
		RateLimit: &config.RateLimitConfig{Enabled: true, RequestsPerMin: 1, BurstCapacity: 1, ByIP: true},
	}, om)

	first := serve(srv, multipartUpload(t, "file", "cv.pdf", []byte("%PDF")))
	second := serve(srv, multipartUpload(t, "file", "cv.pdf", []byte("%PDF")))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "rate_limit_exceeded", decodeError(t, second).Error)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var hits int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "resumeforge_rate_limit_hits_total" {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				hits += dp.Value
			}
		}
	}
	assert.Equal(t, int64(1), hits)
}

func TestGetRateLimitKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	req.Header.Set("X-Forwarded-For", "not-an-ip, 203.0.113.9")

	assert.Equal(t, "ip:203.0.113.9", getRateLimitKey(req, true, true))
	assert.Equal(t, "", getRateLimitKey(req, true, false))

	req.Header.Set("X-API-Key", "abcdefghijkl")
	assert.Equal(t, "api:abcdefghijkl", getRateLimitKey(req, true, true))
	assert.Equal(t, "api:abcdefgh****", maskRateLimitKey("api:abcdefghijkl"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{appErrors.NewUnsupportedFormatError("a.txt"), http.StatusBadRequest},
		{appErrors.NewTemplateNotFoundError("x"), http.StatusNotFound},
		{appErrors.NewValidationError(appErrors.ErrCodeFileTooLarge, "big", nil), http.StatusRequestEntityTooLarge},
		{appErrors.NewNetworkError(appErrors.ErrCodeNetworkTimeout, "slow", nil), http.StatusGatewayTimeout},
		{appErrors.NewRenderError(appErrors.ErrCodeRenderFailed, "boom", nil), http.StatusInternalServerError},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		status, _ := statusFor(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
	}
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "12345678****", maskAPIKey("1234567890"))
}
