package extract

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"resumeforge/internal/config"
	"resumeforge/internal/errors"

	"github.com/sony/gobreaker/v2"
)

// maxTikaResponse bounds the plain text read back from Tika.
const maxTikaResponse = 32 << 20

// TikaExtractor sends documents to an Apache Tika server and reads back
// plain text. Calls go through a circuit breaker when one is configured.
type TikaExtractor struct {
	endpoint  string
	authToken string
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker[string]
	logger    *errors.Logger
}

// NewTikaExtractor creates a Tika client for cfg
func NewTikaExtractor(cfg config.TikaConfig, logger *errors.Logger) *TikaExtractor {
	return &TikaExtractor{
		endpoint:  strings.TrimRight(cfg.URL, "/") + "/tika",
		authToken: cfg.AuthToken,
		client:    &http.Client{Timeout: cfg.Timeout},
		breaker:   newTikaBreaker(cfg.CircuitBreaker, logger),
		logger:    logger,
	}
}

func newTikaBreaker(cfg config.CircuitBreakerConfig, logger *errors.Logger) *gobreaker.CircuitBreaker[string] {
	if !cfg.Enabled {
		return nil
	}

	settings := gobreaker.Settings{
		Name:        "tika",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests && failureRatio >= cfg.FailureThreshold
		},
		// a document Tika cannot parse says nothing about server health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.CodeOf(err) == errors.ErrCodeExtractionFailed
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if logger != nil {
				logger.Info("Circuit breaker state changed",
					"name", name,
					"from", from.String(),
					"to", to.String(),
					"failure_threshold", cfg.FailureThreshold)
			}
		},
	}
	return gobreaker.NewCircuitBreaker[string](settings)
}

func (e *TikaExtractor) Name() string { return "tika" }

// Extract PUTs the document to Tika. An open breaker fails fast with
// EXTRACTOR_UNAVAILABLE.
func (e *TikaExtractor) Extract(ctx context.Context, data []byte, filename string) (string, error) {
	call := func() (string, error) { return e.put(ctx, data, filename) }
	if e.breaker == nil {
		return call()
	}

	text, err := e.breaker.Execute(call)
	if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", errors.NewNetworkError(errors.ErrCodeExtractorDown, "tika server unavailable", err).
			WithContext("breaker_state", e.breaker.State().String())
	}
	return text, err
}

func (e *TikaExtractor) put(ctx context.Context, data []byte, filename string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, e.endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("build tika request: %w", err)
	}
	req.Header.Set("Accept", "text/plain; charset=UTF-8")
	req.Header.Set("X-Tika-Resource-Name", filepath.Base(filename))
	if e.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+e.authToken)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return "", errors.NewNetworkError(errors.ErrCodeNetworkTimeout, "tika request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTikaResponse))
	if err != nil {
		return "", fmt.Errorf("read tika response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnprocessableEntity || resp.StatusCode == http.StatusUnsupportedMediaType:
		return "", errors.NewExtractionError(errors.ErrCodeExtractionFailed,
			fmt.Sprintf("tika could not parse %s", filepath.Base(filename)), nil).
			WithContext("status", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return "", errors.NewNetworkError(errors.ErrCodeExtractorDown,
			fmt.Sprintf("tika returned status %d", resp.StatusCode), nil).
			WithContext("status", resp.StatusCode)
	}

	return strings.ReplaceAll(string(body), "\r\n", "\n"), nil
}

// BreakerState reports the breaker state, or "disabled".
func (e *TikaExtractor) BreakerState() string {
	if e.breaker == nil {
		return "disabled"
	}
	return e.breaker.State().String()
}
