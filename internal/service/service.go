package service

import (
	"context"
	"fmt"
	"strings"

	"resumeforge/internal/config"
	"resumeforge/internal/errors"
	"resumeforge/internal/extract"
	"resumeforge/internal/observability"
	"resumeforge/internal/parser"
	"resumeforge/internal/render"
	"resumeforge/internal/types"
)

// Call sources reported in metrics and logs
const (
	SourceHTTP  = "http"
	SourceMCP   = "mcp"
	SourceCLI   = "cli"
	SourceWatch = "watch"
)

// Defaults holds the render choices applied when a request leaves them empty
type Defaults struct {
	TemplateID string
	Format     string
}

// Service handles parse and render operations for every front end
type Service struct {
	Parser     *parser.Parser
	Extractors *extract.Registry
	Renderer   *render.Registry

	defaults Defaults
	metrics  *observability.Metrics
	logger   *errors.Logger
}

// New wires a service from already built collaborators. A nil metrics
// records nothing.
func New(extractors *extract.Registry, renderer *render.Registry, opts parser.Options, defaults Defaults, metrics *observability.Metrics, logger *errors.Logger) *Service {
	if metrics == nil {
		metrics = &observability.Metrics{}
	}
	return &Service{
		Parser:     parser.New(extractors, opts, logger),
		Extractors: extractors,
		Renderer:   renderer,
		defaults:   defaults,
		metrics:    metrics,
		logger:     logger,
	}
}

// NewService creates a service instance from application configuration
func NewService(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, logger *errors.Logger) (*Service, error) {
	if logger != nil {
		logger.Debug("Initializing resume service",
			"pdf_engine", cfg.Parser.PDFEngine,
			"docx_engine", cfg.Parser.DocxEngine,
			"suppress_linkedin_website", cfg.Parser.SuppressLinkedInWebsite,
			"default_template", cfg.Render.DefaultTemplate,
			"default_format", cfg.Render.DefaultFormat)
	}

	extractors, err := extract.NewRegistry(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	renderer, err := render.NewDefaultRegistry(logger)
	if err != nil {
		return nil, err
	}

	if cfg.Render.DefaultTemplate != "" {
		if _, err := renderer.Catalog().Get(cfg.Render.DefaultTemplate); err != nil {
			return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
				fmt.Sprintf("render.defaultTemplate %q is not in the catalog", cfg.Render.DefaultTemplate), err)
		}
	}

	opts := parser.Options{Contact: parser.ContactOptions{
		SuppressLinkedInWebsite: cfg.Parser.SuppressLinkedInWebsite,
	}}
	defaults := Defaults{TemplateID: cfg.Render.DefaultTemplate, Format: cfg.Render.DefaultFormat}

	return New(extractors, renderer, opts, defaults, metrics, logger), nil
}

// ParseDocument extracts and parses one document.
func (s *Service) ParseDocument(ctx context.Context, source string, data []byte, filename string) (types.ResumeData, error) {
	var resume types.ResumeData
	format, _ := extract.DetectFormat(filename)

	err := s.metrics.TrackParse(ctx, source, string(format), func(ctx context.Context) error {
		var err error
		resume, err = s.Parser.ParseDocument(ctx, data, filename)
		return err
	})
	if err != nil {
		return types.ResumeData{}, err
	}
	return resume, nil
}

// ParseText parses text that was already extracted elsewhere.
func (s *Service) ParseText(ctx context.Context, source, text string) types.ResumeData {
	var resume types.ResumeData
	_ = s.metrics.TrackParse(ctx, source, "text", func(context.Context) error {
		resume = s.Parser.ParseText(text)
		return nil
	})
	return resume
}

// Render produces the document for req, filling an empty template id or
// format from the configured defaults.
func (s *Service) Render(ctx context.Context, source string, req types.RenderRequest) (*render.Output, error) {
	templateID := strings.TrimSpace(req.TemplateID)
	if templateID == "" {
		templateID = s.defaults.TemplateID
	}
	format := strings.TrimSpace(req.Format)
	if format == "" {
		format = s.defaults.Format
	}

	out, err := s.Renderer.Render(templateID, format, req.Resume)
	s.metrics.RecordRender(ctx, templateID, strings.ToLower(format), err == nil)
	if err != nil {
		if s.logger != nil {
			s.logger.LogError(err, "Render failed",
				"source", source,
				"template_id", templateID,
				"format", format)
		}
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("Document rendered",
			"source", source,
			"template_id", out.TemplateID,
			"format", out.Format,
			"bytes", len(out.Data))
	}
	return out, nil
}

// Templates lists the render catalog.
func (s *Service) Templates() types.TemplateList {
	return s.Renderer.Catalog().List()
}

// Engines reports the extraction engine per document format.
func (s *Service) Engines() map[string]string {
	engines := make(map[string]string)
	for format, name := range s.Extractors.Engines() {
		engines[string(format)] = name
	}
	return engines
}
