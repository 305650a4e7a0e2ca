package render

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"resumeforge/internal/errors"
	"resumeforge/internal/types"
)

// Output formats
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
	FormatDOCX     = "docx"
	FormatPDF      = "pdf"
)

// Renderer draws a résumé with one template into a document format.
type Renderer interface {
	Render(data types.ResumeData, tpl Template) ([]byte, error)
	ContentType() string
	Extension() string
}

// Output is a rendered document ready to be served or written to disk.
type Output struct {
	Data        []byte
	ContentType string
	Filename    string
	TemplateID  string
	Format      string
}

// Registry pairs the template catalog with the renderers keyed by format.
type Registry struct {
	catalog   *Catalog
	mu        sync.RWMutex
	renderers map[string]Renderer
	logger    *errors.Logger
}

// NewRegistry registers the built-in html, markdown, docx and pdf renderers.
func NewRegistry(catalog *Catalog, logger *errors.Logger) *Registry {
	r := &Registry{
		catalog:   catalog,
		renderers: make(map[string]Renderer),
		logger:    logger,
	}
	html := NewHTMLRenderer()
	r.Register(FormatHTML, html)
	r.Register(FormatMarkdown, NewMarkdownRenderer(html))
	r.Register(FormatDOCX, NewDOCXRenderer())
	r.Register(FormatPDF, NewPDFRenderer())
	return r
}

// NewDefaultRegistry loads the built-in catalog and renderers.
func NewDefaultRegistry(logger *errors.Logger) (*Registry, error) {
	catalog, err := NewCatalog()
	if err != nil {
		return nil, err
	}
	return NewRegistry(catalog, logger), nil
}

// Register adds or replaces the renderer for a format.
func (r *Registry) Register(format string, renderer Renderer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderers[strings.ToLower(format)] = renderer
}

// Catalog returns the template catalog.
func (r *Registry) Catalog() *Catalog {
	return r.catalog
}

// Formats returns the registered output formats, sorted.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	formats := make([]string, 0, len(r.renderers))
	for format := range r.renderers {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}

// Render draws data with the template templateID in the given format.
func (r *Registry) Render(templateID, format string, data types.ResumeData) (*Output, error) {
	tpl, err := r.catalog.Get(templateID)
	if err != nil {
		return nil, err
	}

	format = strings.ToLower(strings.TrimSpace(format))
	r.mu.RLock()
	renderer, ok := r.renderers[format]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("unsupported output format %q, use one of %s", format, strings.Join(r.Formats(), ", ")), nil).
			WithContext("format", format)
	}

	data.EnsureLists()
	content, err := renderer.Render(data, tpl)
	if err != nil {
		appErr := errors.NewRenderError(errors.ErrCodeRenderFailed, "failed to render résumé", err).
			WithContext("template_id", tpl.ID).
			WithContext("format", format)
		if r.logger != nil {
			r.logger.LogError(appErr, "Render failed")
		}
		return nil, appErr
	}

	if r.logger != nil {
		r.logger.Debug("Résumé rendered",
			"template_id", tpl.ID,
			"format", format,
			"bytes", len(content))
	}
	return &Output{
		Data:        content,
		ContentType: renderer.ContentType(),
		Filename:    fmt.Sprintf("curriculo-%s.%s", tpl.ID, renderer.Extension()),
		TemplateID:  tpl.ID,
		Format:      format,
	}, nil
}
