package render

import (
	"fmt"
	"strings"

	"resumeforge/internal/types"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// MarkdownRenderer converts the sanitized HTML body to Markdown.
type MarkdownRenderer struct {
	html *HTMLRenderer
	conv *converter.Converter
}

// NewMarkdownRenderer creates a Markdown renderer on top of html
func NewMarkdownRenderer(html *HTMLRenderer) *MarkdownRenderer {
	return &MarkdownRenderer{
		html: html,
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

func (r *MarkdownRenderer) ContentType() string { return "text/markdown; charset=utf-8" }
func (r *MarkdownRenderer) Extension() string   { return "md" }

func (r *MarkdownRenderer) Render(data types.ResumeData, tpl Template) ([]byte, error) {
	body, err := r.html.Body(data, tpl)
	if err != nil {
		return nil, err
	}
	md, err := r.conv.ConvertString(body)
	if err != nil {
		return nil, fmt.Errorf("convert to markdown: %w", err)
	}
	return []byte(strings.TrimSpace(md) + "\n"), nil
}
