package extract

import (
	"context"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"resumeforge/internal/config"
	"resumeforge/internal/errors"
)

// Format is a document family the pipeline accepts
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatWord Format = "word"
)

var extensionFormats = map[string]Format{
	".pdf":  FormatPDF,
	".doc":  FormatWord,
	".docx": FormatWord,
}

// DetectFormat maps a filename extension, case-insensitively, to a Format.
func DetectFormat(filename string) (Format, error) {
	if format, ok := extensionFormats[strings.ToLower(filepath.Ext(filename))]; ok {
		return format, nil
	}
	return "", errors.NewUnsupportedFormatError(filename)
}

// SupportedExtensions lists the accepted filename extensions.
func SupportedExtensions() []string {
	return []string{".pdf", ".doc", ".docx"}
}

// TextExtractor turns document bytes into plain text with line breaks.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, filename string) (string, error)
	Name() string
}

// Registry routes documents to the extractor configured for their format.
type Registry struct {
	mu         sync.RWMutex
	extractors map[Format]TextExtractor
	logger     *errors.Logger
}

// NewRegistry builds the extractors selected by cfg.Parser. A shared Tika
// client is created once when any format uses it.
func NewRegistry(ctx context.Context, cfg *config.Config, logger *errors.Logger) (*Registry, error) {
	r := &Registry{extractors: make(map[Format]TextExtractor), logger: logger}

	var tika *TikaExtractor
	if cfg.UsesTika() {
		tika = NewTikaExtractor(cfg.Tika, logger)
	}

	switch cfg.Parser.PDFEngine {
	case config.EngineLedongthuc:
		r.Register(FormatPDF, NewLedongthucExtractor())
	case config.EnginePDFCPU:
		r.Register(FormatPDF, NewPDFCPUExtractor())
	case config.EngineEino:
		eino, err := NewEinoExtractor(ctx)
		if err != nil {
			return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to create eino PDF parser", err)
		}
		r.Register(FormatPDF, eino)
	case config.EngineTika:
		r.Register(FormatPDF, tika)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("unknown PDF engine %q", cfg.Parser.PDFEngine), nil)
	}

	switch cfg.Parser.DocxEngine {
	case config.EngineNative:
		r.Register(FormatWord, NewDocxExtractor())
	case config.EngineTika:
		r.Register(FormatWord, tika)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("unknown DOCX engine %q", cfg.Parser.DocxEngine), nil)
	}

	return r, nil
}

// NewDefaultRegistry returns a registry with the built-in engines and no
// configuration dependency.
func NewDefaultRegistry(logger *errors.Logger) *Registry {
	r := &Registry{extractors: make(map[Format]TextExtractor), logger: logger}
	r.Register(FormatPDF, NewLedongthucExtractor())
	r.Register(FormatWord, NewDocxExtractor())
	return r
}

// Register sets the extractor for a format, replacing any previous one.
func (r *Registry) Register(format Format, extractor TextExtractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractors[format] = extractor
}

// Engines reports the engine name per format.
func (r *Registry) Engines() map[Format]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	engines := make(map[Format]string, len(r.extractors))
	for format, extractor := range r.extractors {
		engines[format] = extractor.Name()
	}
	return engines
}

// BreakerStates reports the circuit breaker state of every engine that has
// one, keyed by engine name.
func (r *Registry) BreakerStates() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	states := make(map[string]string)
	for _, extractor := range r.extractors {
		if b, ok := extractor.(interface{ BreakerState() string }); ok {
			states[extractor.Name()] = b.BreakerState()
		}
	}
	return states
}

// Extract detects the format of filename and runs its extractor. Failures
// that are not already application errors become EXTRACTION_FAILED.
func (r *Registry) Extract(ctx context.Context, data []byte, filename string) (string, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return "", err
	}

	r.mu.RLock()
	extractor, ok := r.extractors[format]
	r.mu.RUnlock()
	if !ok {
		return "", errors.NewExtractionError(errors.ErrCodeExtractorDown,
			fmt.Sprintf("no extractor registered for %s documents", format), nil).
			WithContext("filename", filename)
	}

	start := time.Now()
	text, err := extractor.Extract(ctx, data, filename)
	if err != nil {
		var appErr *errors.AppError
		if !stderrors.As(err, &appErr) {
			appErr = errors.NewExtractionError(errors.ErrCodeExtractionFailed,
				fmt.Sprintf("failed to extract text from %s", filepath.Base(filename)), err)
		}
		appErr.WithContext("engine", extractor.Name())
		if r.logger != nil {
			r.logger.LogError(appErr, "Text extraction failed", "filename", filename)
		}
		return "", appErr
	}

	if r.logger != nil {
		r.logger.Debug("Text extracted",
			"filename", filename,
			"engine", extractor.Name(),
			"bytes", len(data),
			"chars", len(text),
			"duration_ms", time.Since(start).Milliseconds())
	}
	return text, nil
}
