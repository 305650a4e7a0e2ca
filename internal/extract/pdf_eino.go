package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
)

// EinoExtractor reads PDF text through the cloudwego eino document parser.
type EinoExtractor struct {
	parser *pdf.PDFParser
}

// NewEinoExtractor creates a parser that returns the whole document as one
// text rather than one document per page.
func NewEinoExtractor(ctx context.Context) (*EinoExtractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{ToPages: false})
	if err != nil {
		return nil, fmt.Errorf("failed to create eino PDF parser: %w", err)
	}
	return &EinoExtractor{parser: p}, nil
}

func (e *EinoExtractor) Name() string { return "eino" }

func (e *EinoExtractor) Extract(ctx context.Context, data []byte, filename string) (string, error) {
	docs, err := e.parser.Parse(ctx, bytes.NewReader(data),
		einoParser.WithURI(filename),
		einoParser.WithExtraMeta(map[string]any{"source_file": filename}),
	)
	if err != nil {
		return "", fmt.Errorf("eino PDF parser failed for %s: %w", filename, err)
	}

	contents := make([]string, 0, len(docs))
	for _, doc := range docs {
		contents = append(contents, doc.Content)
	}
	return strings.Join(contents, "\n"), nil
}
