package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFCPUExtractor validates the document with pdfcpu and reads the text
// operators of each page content stream.
type PDFCPUExtractor struct{}

// NewPDFCPUExtractor creates a pdfcpu-backed PDF extractor
func NewPDFCPUExtractor() *PDFCPUExtractor {
	return &PDFCPUExtractor{}
}

func (e *PDFCPUExtractor) Name() string { return "pdfcpu" }

// Extract joins the text of every page with a newline. Pages without a
// readable content stream contribute an empty string.
func (e *PDFCPUExtractor) Extract(ctx context.Context, data []byte, _ string) (string, error) {
	conf := model.NewDefaultConfiguration()
	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return "", fmt.Errorf("pdfcpu read: %w", err)
	}

	pages := make([]string, 0, pdfCtx.PageCount)
	for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		pages = append(pages, pdfcpuPageText(pdfCtx, pageNr))
	}
	return strings.Join(pages, "\n"), nil
}

func pdfcpuPageText(pdfCtx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(pdfCtx, pageNr)
	if err != nil || r == nil {
		return ""
	}
	content, err := io.ReadAll(r)
	if err != nil || len(content) == 0 {
		return ""
	}
	return contentStreamText(content)
}
