package extract

import (
	"context"
	stderrors "errors"
	"testing"

	"resumeforge/internal/config"
	"resumeforge/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExtractor struct {
	name  string
	text  string
	err   error
	calls int
}

func (s *stubExtractor) Name() string { return s.name }

func (s *stubExtractor) Extract(_ context.Context, _ []byte, _ string) (string, error) {
	s.calls++
	return s.text, s.err
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filename string
		expected Format
		wantErr  bool
	}{
		{filename: "cv.pdf", expected: FormatPDF},
		{filename: "CV.PDF", expected: FormatPDF},
		{filename: "/tmp/dir.v2/resume.docx", expected: FormatWord},
		{filename: "old.DOC", expected: FormatWord},
		{filename: "notes.txt", wantErr: true},
		{filename: "pdf", wantErr: true},
		{filename: "archive.pdf.zip", wantErr: true},
		{filename: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			format, err := DetectFormat(tt.filename)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, stderrors.Is(err, errors.ErrUnsupportedFormat))
				assert.Equal(t, errors.ErrCodeUnsupportedFormat, errors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, format)
		})
	}
}

func TestRegistryRoutesByFormat(t *testing.T) {
	pdf := &stubExtractor{name: "pdf-stub", text: "from pdf"}
	word := &stubExtractor{name: "word-stub", text: "from word"}
	r := NewDefaultRegistry(nil)
	r.Register(FormatPDF, pdf)
	r.Register(FormatWord, word)

	text, err := r.Extract(context.Background(), nil, "a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "from pdf", text)

	text, err = r.Extract(context.Background(), nil, "a.docx")
	require.NoError(t, err)
	assert.Equal(t, "from word", text)

	assert.Equal(t, 1, pdf.calls)
	assert.Equal(t, 1, word.calls)
	assert.Equal(t, map[Format]string{FormatPDF: "pdf-stub", FormatWord: "word-stub"}, r.Engines())
}

func TestRegistryUnsupportedSkipsExtractors(t *testing.T) {
	pdf := &stubExtractor{name: "pdf-stub"}
	r := NewDefaultRegistry(nil)
	r.Register(FormatPDF, pdf)

	_, err := r.Extract(context.Background(), []byte("x"), "cv.odt")
	require.Error(t, err)

	assert.True(t, stderrors.Is(err, errors.ErrUnsupportedFormat))
	assert.Zero(t, pdf.calls)
}

func TestRegistryWrapsFailures(t *testing.T) {
	logger, _ := errors.New("error")
	r := NewDefaultRegistry(logger)
	r.Register(FormatPDF, &stubExtractor{name: "broken", err: stderrors.New("bad xref")})

	_, err := r.Extract(context.Background(), []byte("%PDF"), "cv.pdf")
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, stderrors.As(err, &appErr))
	assert.Equal(t, errors.ErrCodeExtractionFailed, appErr.Code)
	assert.Equal(t, "broken", appErr.Context["engine"])
	assert.Contains(t, err.Error(), "bad xref")
}

func TestRegistryKeepsApplicationErrors(t *testing.T) {
	down := errors.NewNetworkError(errors.ErrCodeExtractorDown, "tika server unavailable", nil)
	r := NewDefaultRegistry(nil)
	r.Register(FormatWord, &stubExtractor{name: "tika", err: down})

	_, err := r.Extract(context.Background(), nil, "cv.doc")

	assert.Equal(t, errors.ErrCodeExtractorDown, errors.CodeOf(err))
}

func TestRegistryMissingExtractor(t *testing.T) {
	r := &Registry{extractors: map[Format]TextExtractor{}}

	_, err := r.Extract(context.Background(), nil, "cv.pdf")

	assert.Equal(t, errors.ErrCodeExtractorDown, errors.CodeOf(err))
}

func TestNewRegistryFromConfig(t *testing.T) {
	tests := []struct {
		name     string
		parser   config.ParserConfig
		expected map[Format]string
		wantErr  bool
	}{
		{
			name:     "defaults",
			parser:   config.ParserConfig{PDFEngine: config.EngineLedongthuc, DocxEngine: config.EngineNative},
			expected: map[Format]string{FormatPDF: "ledongthuc", FormatWord: "native"},
		},
		{
			name:     "pdfcpu",
			parser:   config.ParserConfig{PDFEngine: config.EnginePDFCPU, DocxEngine: config.EngineNative},
			expected: map[Format]string{FormatPDF: "pdfcpu", FormatWord: "native"},
		},
		{
			name:     "tika everywhere",
			parser:   config.ParserConfig{PDFEngine: config.EngineTika, DocxEngine: config.EngineTika},
			expected: map[Format]string{FormatPDF: "tika", FormatWord: "tika"},
		},
		{
			name:    "unknown pdf engine",
			parser:  config.ParserConfig{PDFEngine: "ocr", DocxEngine: config.EngineNative},
			wantErr: true,
		},
		{
			name:    "unknown docx engine",
			parser:  config.ParserConfig{PDFEngine: config.EngineLedongthuc, DocxEngine: "pandoc"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Parser: tt.parser, Tika: config.TikaConfig{URL: "http://tika:9998"}}

			r, err := NewRegistry(context.Background(), cfg, nil)
			if tt.wantErr {
				assert.Equal(t, errors.ErrCodeInvalidConfig, errors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, r.Engines())
		})
	}
}

func TestRegistryBreakerStates(t *testing.T) {
	cfg := &config.Config{
		Parser: config.ParserConfig{PDFEngine: config.EngineTika, DocxEngine: config.EngineNative},
		Tika:   config.TikaConfig{URL: "http://tika:9998"},
	}

	r, err := NewRegistry(context.Background(), cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"tika": "disabled"}, r.BreakerStates())
	assert.Empty(t, NewDefaultRegistry(nil).BreakerStates())
}

func TestLedongthucRejectsGarbage(t *testing.T) {
	_, err := NewLedongthucExtractor().Extract(context.Background(), []byte("definitely not a pdf"), "cv.pdf")

	assert.Error(t, err)
}

func TestPDFCPURejectsGarbage(t *testing.T) {
	_, err := NewPDFCPUExtractor().Extract(context.Background(), []byte("definitely not a pdf"), "cv.pdf")

	assert.Error(t, err)
}
