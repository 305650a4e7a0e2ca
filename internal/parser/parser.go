package parser

import (
	"context"
	"strings"
	"time"

	apperrors "resumeforge/internal/errors"
	"resumeforge/internal/extract"
	"resumeforge/internal/types"
)

// Options tunes the heuristics of a parse
type Options struct {
	Contact ContactOptions
}

// DocumentExtractor turns document bytes into plain text with line breaks.
type DocumentExtractor interface {
	Extract(ctx context.Context, data []byte, filename string) (string, error)
}

// Aggregate runs every field extractor over a segmentation result.
func Aggregate(sections Sections, opts Options) types.ResumeData {
	resume := types.ResumeData{
		Contact:     ExtractContact(sections.Lines(SectionHeader), opts.Contact),
		Experiences: ExtractExperience(sections.Paragraphs(SectionExperience)),
		Educations:  ExtractEducation(sections.Lines(SectionEducation)),
		Skills:      ExtractSkills(sections.Lines(SectionSkills)),
		Projects:    ExtractProjects(sections.Lines(SectionProjects)),
	}
	if summary := sections.Lines(SectionSummary); len(summary) > 0 {
		resume.ProfessionalSummary = types.StringPtr(strings.Join(summary, " "))
	}
	resume.EnsureLists()
	return resume
}

// ParseText runs the text-to-structure pipeline on an already extracted
// text blob. It never fails.
func ParseText(text string, opts Options) types.ResumeData {
	return Aggregate(Segment(Normalize(text)), opts)
}

// Parser binds the pipeline to a document extractor. It holds no per-call
// state and is safe for concurrent use.
type Parser struct {
	source  DocumentExtractor
	options Options
	logger  *apperrors.Logger
}

// New creates a parser reading documents through source
func New(source DocumentExtractor, opts Options, logger *apperrors.Logger) *Parser {
	return &Parser{source: source, options: opts, logger: logger}
}

// Options returns the heuristics configuration of the parser.
func (p *Parser) Options() Options {
	return p.options
}

// ParseText parses an extracted text blob with the parser's options.
func (p *Parser) ParseText(text string) types.ResumeData {
	return ParseText(text, p.options)
}

// ParseDocument extracts text from data according to the filename's
// extension and parses it. Unsupported extensions fail before extraction.
func (p *Parser) ParseDocument(ctx context.Context, data []byte, filename string) (types.ResumeData, error) {
	format, err := extract.DetectFormat(filename)
	if err != nil {
		return types.ResumeData{}, err
	}

	start := time.Now()
	text, err := p.source.Extract(ctx, data, filename)
	if err != nil {
		return types.ResumeData{}, err
	}

	resume := p.ParseText(text)
	if p.logger != nil {
		p.logger.Debug("Document parsed",
			"filename", filename,
			"format", format,
			"text_chars", len(text),
			"experiences", len(resume.Experiences),
			"educations", len(resume.Educations),
			"skills", len(resume.Skills),
			"projects", len(resume.Projects),
			"duration_ms", time.Since(start).Milliseconds())
	}
	return resume, nil
}
