package render

import (
	"bytes"
	"fmt"
	"strings"

	"resumeforge/internal/types"

	"github.com/go-pdf/fpdf"
)

const (
	pageMargin  = 54.0
	bulletInset = 14.0
)

const (
	nameSize    = 20.0
	contactSize = 10.0
	headingSize = 13.0
	bodySize    = 10.5
)

// line height as a multiple of the font size
const leading = 1.35

// PDFRenderer writes a US Letter PDF with the standard Type 1 fonts.
type PDFRenderer struct{}

// NewPDFRenderer creates the PDF renderer
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

func (r *PDFRenderer) ContentType() string { return "application/pdf" }
func (r *PDFRenderer) Extension() string   { return "pdf" }

func (r *PDFRenderer) Render(data types.ResumeData, tpl Template) ([]byte, error) {
	doc := buildDocument(data, tpl)
	family := baseFont(tpl.Font)
	red, green, blue := tpl.AccentRGB()
	accent := [3]int{int(red), int(green), int(blue)}

	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetTitle(doc.name+" - "+tpl.Name, true)
	pdf.SetCreator("resumeforge", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pageWidth, _ := pdf.GetPageSize()
	body := func(style, text string) {
		pdf.SetFont(family, style, bodySize)
		pdf.Write(bodySize*leading, tr(text))
	}

	pdf.SetFont(family, "B", nameSize)
	pdf.SetTextColor(accent[0], accent[1], accent[2])
	pdf.MultiCell(0, nameSize*leading, tr(doc.name), "", "C", false)
	pdf.SetTextColor(0, 0, 0)
	if doc.contact != "" {
		pdf.SetFont(family, "", contactSize)
		pdf.MultiCell(0, contactSize*leading, tr(doc.contact), "", "C", false)
	}

	for _, s := range doc.sections {
		pdf.Ln(headingSize)
		pdf.SetFont(family, "B", headingSize)
		pdf.SetTextColor(accent[0], accent[1], accent[2])
		pdf.CellFormat(0, headingSize*leading, tr(s.title), "", 1, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)

		y := pdf.GetY()
		pdf.SetDrawColor(accent[0], accent[1], accent[2])
		pdf.SetLineWidth(0.75)
		pdf.Line(pageMargin, y, pageWidth-pageMargin, y)
		pdf.Ln(4)

		for _, b := range s.blocks {
			switch b.kind {
			case blockBreak:
				pdf.Ln(bodySize)
				continue
			case blockEntry:
				body("B", b.strong)
				body("", b.text)
			case blockRow:
				body("B", b.strong+":")
				body("", " "+b.text)
			case blockBullet:
				pdf.SetLeftMargin(pageMargin + bulletInset)
				pdf.SetX(pageMargin + bulletInset)
				body("", b.plain())
				pdf.SetLeftMargin(pageMargin)
			default:
				body("", b.text)
			}
			pdf.Ln(bodySize * leading)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// baseFont maps a template font family onto one of the standard Type 1
// families, which need no embedding.
func baseFont(family string) string {
	family = strings.ToLower(family)
	switch {
	case strings.Contains(family, "times"), strings.Contains(family, "serif") && !strings.Contains(family, "sans"):
		return "Times"
	case strings.Contains(family, "courier"), strings.Contains(family, "mono"):
		return "Courier"
	}
	return "Helvetica"
}
