package parser

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Paragraph is a non-empty run of trimmed, non-empty lines that were not
// separated by a blank line in the source text.
type Paragraph []string

// Normalize splits text into paragraphs of trimmed lines. Blank lines are
// dropped but close the paragraph they end. Text is NFC-composed first so
// keyword matching sees precomposed accents regardless of the extractor.
func Normalize(text string) []Paragraph {
	text = norm.NFC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var paragraphs []Paragraph
	var current Paragraph
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			if len(current) > 0 {
				paragraphs = append(paragraphs, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		paragraphs = append(paragraphs, current)
	}
	return paragraphs
}

// Lines flattens paragraphs back into the ordered line sequence.
func Lines(paragraphs []Paragraph) []string {
	lines := []string{}
	for _, p := range paragraphs {
		lines = append(lines, p...)
	}
	return lines
}
