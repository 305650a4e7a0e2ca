package render

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"resumeforge/internal/types"
)

const (
	docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
</Types>`

	docxRootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

	docxDocumentRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
</Relationships>`

	docxStyles = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:docDefaults><w:rPrDefault><w:rPr><w:rFonts w:ascii="%[1]s" w:hAnsi="%[1]s" w:cs="%[1]s"/><w:sz w:val="22"/></w:rPr></w:rPrDefault></w:docDefaults>
<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>
<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:basedOn w:val="Normal"/><w:pPr><w:jc w:val="center"/></w:pPr><w:rPr><w:b/><w:color w:val="%[2]s"/><w:sz w:val="40"/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/><w:basedOn w:val="Normal"/><w:pPr><w:spacing w:before="240" w:after="80"/></w:pPr><w:rPr><w:b/><w:color w:val="%[2]s"/><w:sz w:val="28"/></w:rPr></w:style>
</w:styles>`
)

// DOCXRenderer writes a WordprocessingML package.
type DOCXRenderer struct{}

// NewDOCXRenderer creates the word-processor renderer
func NewDOCXRenderer() *DOCXRenderer {
	return &DOCXRenderer{}
}

func (r *DOCXRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}
func (r *DOCXRenderer) Extension() string { return "docx" }

func (r *DOCXRenderer) Render(data types.ResumeData, tpl Template) ([]byte, error) {
	doc := buildDocument(data, tpl)
	accent := strings.TrimPrefix(tpl.Accent, "#")

	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", docxContentTypes},
		{"_rels/.rels", docxRootRels},
		{"word/_rels/document.xml.rels", docxDocumentRels},
		{"word/styles.xml", fmt.Sprintf(docxStyles, xmlEscape(tpl.Font), accent)},
		{"word/document.xml", documentXML(doc)},
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", part.name, err)
		}
		if _, err := w.Write([]byte(part.content)); err != nil {
			return nil, fmt.Errorf("write %s: %w", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close package: %w", err)
	}
	return buf.Bytes(), nil
}

func xmlEscape(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}

func run(text string, bold bool) string {
	if text == "" {
		return ""
	}
	props := ""
	if bold {
		props = "<w:rPr><w:b/></w:rPr>"
	}
	return `<w:r>` + props + `<w:t xml:space="preserve">` + xmlEscape(text) + `</w:t></w:r>`
}

func paragraph(style, content string) string {
	props := ""
	if style != "" {
		props = `<w:pPr><w:pStyle w:val="` + style + `"/></w:pPr>`
	}
	return `<w:p>` + props + content + `</w:p>`
}

func documentXML(doc document) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	sb.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)

	sb.WriteString(paragraph("Heading1", run(doc.name, false)))
	if doc.contact != "" {
		sb.WriteString(`<w:p><w:pPr><w:jc w:val="center"/></w:pPr>` + run(doc.contact, false) + `</w:p>`)
	}

	for _, s := range doc.sections {
		sb.WriteString(paragraph("Heading2", run(s.title, false)))
		var rows []block
		flushRows := func() {
			if len(rows) > 0 {
				sb.WriteString(tableXML(rows))
				rows = nil
			}
		}
		for _, b := range s.blocks {
			if b.kind == blockRow {
				rows = append(rows, b)
				continue
			}
			flushRows()
			switch b.kind {
			case blockEntry:
				sb.WriteString(paragraph("", run(b.strong, true)+run(b.text, false)))
			case blockBullet:
				sb.WriteString(`<w:p><w:pPr><w:ind w:left="360"/></w:pPr>` + run(b.plain(), false) + `</w:p>`)
			default:
				sb.WriteString(paragraph("", run(b.text, false)))
			}
		}
		flushRows()
	}

	sb.WriteString(`<w:sectPr><w:pgSz w:w="12240" w:h="15840"/><w:pgMar w:top="1080" w:right="1080" w:bottom="1080" w:left="1080"/></w:sectPr>`)
	sb.WriteString(`</w:body></w:document>`)
	return sb.String()
}

func tableXML(rows []block) string {
	cell := func(content string) string {
		return `<w:tc><w:tcPr><w:tcW w:w="4680" w:type="dxa"/></w:tcPr>` + paragraph("", content) + `</w:tc>`
	}
	var sb strings.Builder
	sb.WriteString(`<w:tbl><w:tblPr><w:tblW w:w="0" w:type="auto"/><w:tblBorders>`)
	for _, side := range []string{"top", "left", "bottom", "right", "insideH", "insideV"} {
		sb.WriteString(`<w:` + side + ` w:val="single" w:sz="4" w:space="0" w:color="auto"/>`)
	}
	sb.WriteString(`</w:tblBorders></w:tblPr>`)
	sb.WriteString(`<w:tr>` + cell(run("Item", true)) + cell(run("Detalhes", true)) + `</w:tr>`)
	for _, row := range rows {
		sb.WriteString(`<w:tr>` + cell(run(row.strong, false)) + cell(run(row.text, false)) + `</w:tr>`)
	}
	sb.WriteString(`</w:tbl>`)
	return sb.String()
}
