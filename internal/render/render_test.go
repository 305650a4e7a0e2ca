package render

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"resumeforge/internal/errors"
	"resumeforge/internal/extract"
	"resumeforge/internal/types"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResume() types.ResumeData {
	return types.ResumeData{
		Contact: types.ContactInfo{
			FullName: "Maria Silva",
			Email:    types.StringPtr("maria@email.com"),
			Phone:    types.StringPtr("(11) 98765-4321"),
			Location: types.StringPtr("São Paulo"),
		},
		ProfessionalSummary: types.StringPtr("Engenheira de software com foco em APIs."),
		Experiences: []types.ExperienceItem{
			{
				Role:       "Desenvolvedora",
				Company:    types.StringPtr("Acme"),
				StartDate:  types.StringPtr("2020"),
				Highlights: []string{"Entregou APIs", "Reduziu custos"},
			},
		},
		Educations: []types.EducationItem{
			{Degree: "Bacharel em Computação", Institution: types.StringPtr("USP")},
		},
		Skills: []string{"Go", "SQL"},
		Projects: []types.ProjectItem{
			{Name: "Forge", Description: types.StringPtr("Gerador de currículos"), Link: types.StringPtr("https://example.com/forge")},
		},
	}
}

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	registry, err := NewDefaultRegistry(nil)
	require.NoError(t, err)
	return registry
}

func TestCatalog(t *testing.T) {
	catalog, err := NewCatalog()
	require.NoError(t, err)

	assert.Equal(t, []string{"moderno-azul", "classico-serifado", "minimalista-grade", "executivo-dourado"}, catalog.IDs())

	list := catalog.List()
	require.Len(t, list.Templates, 4)
	assert.Equal(t, "Moderno Azul", list.Templates[0].Name)
	assert.Equal(t, []string{"moderno", "profissional"}, list.Templates[0].Tags)

	tpl, err := catalog.Get("moderno-azul")
	require.NoError(t, err)
	r, g, b := tpl.AccentRGB()
	assert.Equal(t, [3]uint8{0x1F, 0x4E, 0x79}, [3]uint8{r, g, b})

	_, err = catalog.Get("neon")
	assert.ErrorIs(t, err, errors.ErrTemplateNotFound)
	assert.Equal(t, errors.ErrCodeTemplateNotFound, errors.CodeOf(err))
}

func TestLoadCatalogRejectsInvalidTemplates(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad yaml", "templates: [\n"},
		{"bad accent", "templates:\n  - {id: a, name: A, accent: blue, layout: stacked}\n"},
		{"bad layout", "templates:\n  - {id: a, name: A, accent: '#000000', layout: columns}\n"},
		{"missing heading", "templates:\n  - {id: a, name: A, accent: '#000000', layout: stacked, order: [skills]}\n"},
		{"duplicate id", "templates:\n  - {id: a, name: A, accent: '#000000', layout: stacked}\n  - {id: a, name: B, accent: '#000000', layout: stacked}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCatalog([]byte(tt.yaml))
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeInvalidConfig, errors.CodeOf(err))
		})
	}
}

func sectionTitles(doc document) []string {
	titles := make([]string, len(doc.sections))
	for i, s := range doc.sections {
		titles[i] = s.title
	}
	return titles
}

func TestBuildDocument(t *testing.T) {
	catalog, err := NewCatalog()
	require.NoError(t, err)

	t.Run("stacked", func(t *testing.T) {
		tpl, _ := catalog.Get("moderno-azul")
		doc := buildDocument(sampleResume(), tpl)

		assert.Equal(t, "maria@email.com | (11) 98765-4321 | São Paulo", doc.contact)
		assert.Equal(t, []string{"Resumo Profissional", "Experiência", "Formação", "Competências", "Projetos"}, sectionTitles(doc))

		exp := doc.sections[1].blocks
		require.Len(t, exp, 3)
		assert.Equal(t, block{kind: blockEntry, strong: "Acme - Desenvolvedora", text: " (2020 - Atual)"}, exp[0])
		assert.Equal(t, "- Entregou APIs", exp[1].plain())

		assert.Equal(t, "Go, SQL", doc.sections[3].blocks[0].text)
		assert.Equal(t, "Forge - https://example.com/forge: Gerador de currículos", doc.sections[4].blocks[0].plain())
	})

	t.Run("section order and numbering", func(t *testing.T) {
		tpl, _ := catalog.Get("executivo-dourado")
		doc := buildDocument(sampleResume(), tpl)
		assert.Equal(t, []string{"Resumo Executivo", "Trajetória Profissional", "Áreas de Expertise", "Formação Acadêmica", "Resultados Relevantes"}, sectionTitles(doc))
		assert.Equal(t, "Go | SQL", doc.sections[2].blocks[0].text)

		tpl, _ = catalog.Get("classico-serifado")
		doc = buildDocument(sampleResume(), tpl)
		assert.Equal(t, "2. Reduziu custos", doc.sections[1].blocks[2].plain())
	})

	t.Run("entries are kept apart", func(t *testing.T) {
		tpl, _ := catalog.Get("moderno-azul")
		data := sampleResume()
		data.Experiences = append(data.Experiences, types.ExperienceItem{Role: "Estagiária"})
		blocks := buildDocument(data, tpl).sections[1].blocks

		require.Len(t, blocks, 5)
		assert.Equal(t, blockBreak, blocks[3].kind)
		assert.Equal(t, block{kind: blockEntry, strong: "Estagiária"}, blocks[4])
	})

	t.Run("grid", func(t *testing.T) {
		tpl, _ := catalog.Get("minimalista-grade")
		doc := buildDocument(sampleResume(), tpl)

		assert.Equal(t, []block{{kind: blockRow, strong: "Desenvolvedora @ Acme", text: "2020 - Atual | Entregou APIs; Reduziu custos"}}, doc.sections[1].blocks)
		assert.Equal(t, []block{{kind: blockRow, strong: "Bacharel em Computação", text: "USP"}}, doc.sections[2].blocks)
	})

	t.Run("empty sections are omitted", func(t *testing.T) {
		tpl, _ := catalog.Get("moderno-azul")
		doc := buildDocument(types.ResumeData{Contact: types.ContactInfo{FullName: "Ana"}}, tpl)
		assert.Empty(t, doc.sections)
		assert.Empty(t, doc.contact)
		assert.Equal(t, "Ana", doc.name)
	})
}

func TestRegistryRender(t *testing.T) {
	registry := testRegistry(t)
	assert.Equal(t, []string{"docx", "html", "markdown", "pdf"}, registry.Formats())

	tests := []struct {
		format      string
		contentType string
		filename    string
	}{
		{"pdf", "application/pdf", "curriculo-moderno-azul.pdf"},
		{"DOCX", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", "curriculo-moderno-azul.docx"},
		{"html", "text/html; charset=utf-8", "curriculo-moderno-azul.html"},
		{"markdown", "text/markdown; charset=utf-8", "curriculo-moderno-azul.md"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, err := registry.Render("moderno-azul", tt.format, sampleResume())
			require.NoError(t, err)
			assert.Equal(t, tt.contentType, out.ContentType)
			assert.Equal(t, tt.filename, out.Filename)
			assert.Equal(t, strings.ToLower(tt.format), out.Format)
			assert.NotEmpty(t, out.Data)
		})
	}

	_, err := registry.Render("moderno-azul", "rtf", sampleResume())
	assert.Equal(t, errors.ErrCodeInvalidFormat, errors.CodeOf(err))

	_, err = registry.Render("neon", "pdf", sampleResume())
	assert.ErrorIs(t, err, errors.ErrTemplateNotFound)
}

func TestHTMLRenderer(t *testing.T) {
	registry := testRegistry(t)
	data := sampleResume()
	data.Contact.FullName = `Maria <script>alert("x")</script>`

	out, err := registry.Render("moderno-azul", FormatHTML, data)
	require.NoError(t, err)
	page := string(out.Data)

	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
	assert.Contains(t, page, "<h2>Experiência</h2>")
	assert.Contains(t, page, "<strong>Acme - Desenvolvedora</strong> (2020 - Atual)")
	assert.Contains(t, page, "<li>Entregou APIs</li>")
	assert.Contains(t, page, "#1F4E79")
	assert.NotContains(t, page, "<script>")
}

func TestHTMLRendererGridTable(t *testing.T) {
	out, err := testRegistry(t).Render("minimalista-grade", FormatHTML, sampleResume())
	require.NoError(t, err)

	assert.Contains(t, string(out.Data), "<td>Desenvolvedora @ Acme</td>")
	assert.Contains(t, string(out.Data), "<th>Detalhes</th>")
}

func TestMarkdownRenderer(t *testing.T) {
	out, err := testRegistry(t).Render("moderno-azul", FormatMarkdown, sampleResume())
	require.NoError(t, err)
	md := string(out.Data)

	assert.Contains(t, md, "# Maria Silva")
	assert.Contains(t, md, "## Experiência")
	assert.Contains(t, md, "**Acme - Desenvolvedora**")
	assert.Contains(t, md, "Entregou APIs")
	assert.NotContains(t, md, "<h2>")
}

func TestDOCXRendererRoundTrip(t *testing.T) {
	out, err := testRegistry(t).Render("executivo-dourado", FormatDOCX, sampleResume())
	require.NoError(t, err)

	text, err := extract.NewDocxExtractor().Extract(context.Background(), out.Data, out.Filename)
	require.NoError(t, err)

	lines := strings.Split(text, "\n")
	assert.Equal(t, "Maria Silva", lines[0])
	assert.Contains(t, lines, "Trajetória Profissional")
	assert.Contains(t, lines, "Acme - Desenvolvedora (2020 - Atual)")
	assert.Contains(t, lines, "- Entregou APIs")
}

func TestPDFRenderer(t *testing.T) {
	out, err := testRegistry(t).Render("moderno-azul", FormatPDF, sampleResume())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(out.Data), "%PDF-"))
	assert.Contains(t, string(out.Data), "/BaseFont /Helvetica-Bold")

	text, err := extract.NewLedongthucExtractor().Extract(context.Background(), out.Data, out.Filename)
	require.NoError(t, err)
	lines := strings.Split(text, "\n")
	assert.Equal(t, "Maria Silva", lines[0])
	assert.Equal(t, "maria@email.com | (11) 98765-4321 | São Paulo", lines[1])
	assert.Contains(t, lines, "Experiência")
	assert.Contains(t, lines, "Acme - Desenvolvedora (2020 - Atual)")
	assert.Contains(t, lines, "- Entregou APIs")
}

func TestPDFRendererPageBreaks(t *testing.T) {
	data := sampleResume()
	for i := 0; i < 120; i++ {
		data.Experiences[0].Highlights = append(data.Experiences[0].Highlights, "Conquista relevante com impacto mensurável")
	}

	out, err := testRegistry(t).Render("classico-serifado", FormatPDF, data)
	require.NoError(t, err)
	assert.Contains(t, string(out.Data), "/BaseFont /Times-Roman")

	reader, err := pdf.NewReader(bytes.NewReader(out.Data), int64(len(out.Data)))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, reader.NumPage(), 2)

	text, err := extract.NewLedongthucExtractor().Extract(context.Background(), out.Data, out.Filename)
	require.NoError(t, err)
	assert.Equal(t, 120, strings.Count(text, "Conquista relevante com impacto mensurável"))
}

func TestBaseFont(t *testing.T) {
	tests := []struct {
		family   string
		expected string
	}{
		{"Helvetica", "Helvetica"},
		{"Calibri", "Helvetica"},
		{"Times New Roman", "Times"},
		{"Georgia Serif", "Times"},
		{"Open Sans Serif", "Helvetica"},
		{"Courier New", "Courier"},
	}

	for _, tt := range tests {
		t.Run(tt.family, func(t *testing.T) {
			assert.Equal(t, tt.expected, baseFont(tt.family))
		})
	}
}
