package extract

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"
)

// LedongthucExtractor reads positioned PDF glyphs with github.com/ledongthuc/pdf
// and rebuilds lines from their baselines.
type LedongthucExtractor struct{}

// NewLedongthucExtractor creates the default PDF extractor
func NewLedongthucExtractor() *LedongthucExtractor {
	return &LedongthucExtractor{}
}

func (e *LedongthucExtractor) Name() string { return "ledongthuc" }

// Extract returns one line per baseline; pages are joined with a newline and
// a page that yields nothing contributes an empty string.
func (e *LedongthucExtractor) Extract(ctx context.Context, data []byte, _ string) (text string, err error) {
	// the reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}

	pages := make([]string, 0, reader.NumPage())
	for pageNr := 1; pageNr <= reader.NumPage(); pageNr++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(pageNr)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, pageText(page))
	}
	return strings.Join(pages, "\n"), nil
}

// Glyph placement thresholds. Baselines closer than lineTolerance points, or
// half the font size, share a line; a drop of more than paragraphGap font
// sizes leaves a blank line; a horizontal jump wider than wordGap font sizes
// past the previous glyph reads as a space.
const (
	lineTolerance = 2.0
	paragraphGap  = 1.6
	wordGap       = 0.2
)

func pageText(page pdf.Page) string {
	if lines := contentLines(page.Content().Text); len(lines) > 0 {
		return strings.Join(lines, "\n")
	}

	rows, err := page.GetTextByRow()
	if err == nil && len(rows) > 1 {
		lines := make([]string, 0, len(rows))
		for _, row := range rows {
			var line strings.Builder
			for _, word := range row.Content {
				line.WriteString(word.S)
			}
			lines = append(lines, line.String())
		}
		return strings.Join(lines, "\n")
	}

	plain, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return plain
}

// contentLines rebuilds text lines from glyphs in content stream order.
func contentLines(glyphs []pdf.Text) []string {
	var (
		lines []string
		line  strings.Builder
		prev  pdf.Text
		seen  bool
	)
	for _, g := range glyphs {
		if g.S == "" {
			continue
		}
		if !seen {
			seen = true
			line.WriteString(g.S)
			prev = g
			continue
		}

		size := max(prev.FontSize, g.FontSize)
		dy := math.Abs(g.Y - prev.Y)
		switch {
		case dy > max(lineTolerance, size/2):
			lines = append(lines, strings.TrimSpace(line.String()))
			if g.Y < prev.Y && dy > paragraphGap*size {
				lines = append(lines, "")
			}
			line.Reset()
		case g.X-(prev.X+prev.W) > wordGap*size:
			if g.S != " " && !strings.HasSuffix(line.String(), " ") {
				line.WriteByte(' ')
			}
		}
		line.WriteString(g.S)
		prev = g
	}
	if seen {
		lines = append(lines, strings.TrimSpace(line.String()))
	}
	return lines
}
