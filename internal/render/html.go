package render

import (
	"bytes"
	"fmt"
	"html/template"

	"resumeforge/internal/types"

	"github.com/microcosm-cc/bluemonday"
)

const bodyTemplate = `<div class="resume-header">
<h1>{{.Name}}</h1>
{{with .Contact}}<p class="contact">{{.}}</p>{{end}}
</div>
{{range .Sections}}<section class="section-{{.ID}}">
<h2>{{.Title}}</h2>
{{range .Groups}}{{if eq .Kind "list"}}{{if .Ordered}}<ol>{{else}}<ul>{{end}}
{{range .Items}}<li>{{.Text}}</li>
{{end}}{{if .Ordered}}</ol>{{else}}</ul>{{end}}
{{else if eq .Kind "table"}}<table>
<thead><tr><th>Item</th><th>Detalhes</th></tr></thead>
<tbody>
{{range .Items}}<tr><td>{{.Strong}}</td><td>{{.Text}}</td></tr>
{{end}}</tbody>
</table>
{{else}}{{range .Items}}<p>{{with .Strong}}<strong>{{.}}</strong>{{end}}{{.Text}}</p>
{{end}}{{end}}{{end}}</section>
{{end}}`

const pageTemplate = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<title>{{.Name}} - {{.TemplateName}}</title>
<style>{{.Style}}</style>
</head>
<body class="template-{{.TemplateID}}">
{{.Body}}
</body>
</html>
`

type htmlItem struct {
	Strong string
	Text   string
}

type htmlGroup struct {
	Kind    string
	Ordered bool
	Items   []htmlItem
}

type htmlSection struct {
	ID     string
	Title  string
	Groups []htmlGroup
}

type htmlBody struct {
	Name     string
	Contact  string
	Sections []htmlSection
}

// groupBlocks merges consecutive bullets into lists and rows into tables.
// A break closes the current group and prints nothing.
func groupBlocks(blocks []block) []htmlGroup {
	var groups []htmlGroup
	closed := false
	for _, b := range blocks {
		kind := "paragraph"
		switch b.kind {
		case blockBreak:
			closed = true
			continue
		case blockBullet:
			kind = "list"
		case blockRow:
			kind = "table"
		}
		item := htmlItem{Strong: b.strong, Text: b.text}
		if n := len(groups); n > 0 && !closed && kind != "paragraph" && groups[n-1].Kind == kind {
			groups[n-1].Items = append(groups[n-1].Items, item)
			continue
		}
		groups = append(groups, htmlGroup{Kind: kind, Ordered: b.number > 0, Items: []htmlItem{item}})
		closed = false
	}
	return groups
}

// HTMLRenderer produces a standalone, sanitized HTML page.
type HTMLRenderer struct {
	body   *template.Template
	page   *template.Template
	policy *bluemonday.Policy
}

// NewHTMLRenderer creates the HTML renderer
func NewHTMLRenderer() *HTMLRenderer {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).Globally()
	return &HTMLRenderer{
		body:   template.Must(template.New("body").Parse(bodyTemplate)),
		page:   template.Must(template.New("page").Parse(pageTemplate)),
		policy: policy,
	}
}

func (r *HTMLRenderer) ContentType() string { return "text/html; charset=utf-8" }
func (r *HTMLRenderer) Extension() string   { return "html" }

// Body renders and sanitizes the résumé markup without the page shell.
func (r *HTMLRenderer) Body(data types.ResumeData, tpl Template) (string, error) {
	doc := buildDocument(data, tpl)
	view := htmlBody{Name: doc.name, Contact: doc.contact}
	for _, s := range doc.sections {
		view.Sections = append(view.Sections, htmlSection{ID: s.id, Title: s.title, Groups: groupBlocks(s.blocks)})
	}

	var buf bytes.Buffer
	if err := r.body.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("execute body template: %w", err)
	}
	return r.policy.Sanitize(buf.String()), nil
}

func (r *HTMLRenderer) Render(data types.ResumeData, tpl Template) ([]byte, error) {
	body, err := r.Body(data, tpl)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = r.page.Execute(&buf, map[string]any{
		"Name":         data.Contact.FullName,
		"TemplateName": tpl.Name,
		"TemplateID":   tpl.ID,
		"Style":        stylesheet(tpl),
		"Body":         template.HTML(body),
	})
	if err != nil {
		return nil, fmt.Errorf("execute page template: %w", err)
	}
	return buf.Bytes(), nil
}

func stylesheet(tpl Template) template.CSS {
	css := fmt.Sprintf(`
body { font-family: %q, sans-serif; max-width: 50rem; margin: 2rem auto; color: #222; line-height: 1.45; }
.resume-header { text-align: center; border-bottom: 2px solid %s; margin-bottom: 1rem; }
h1 { color: %s; margin-bottom: 0.25rem; }
h2 { color: %s; border-bottom: 1px solid %s; padding-bottom: 0.15rem; }
.contact { color: #555; }
table { width: 100%%; border-collapse: collapse; }
th { background: %s; color: #fff; text-align: left; }
th, td { border: 1px solid %s; padding: 0.3rem 0.5rem; vertical-align: top; }
`, tpl.Font, tpl.Accent, tpl.Accent, tpl.Accent, tpl.Accent, tpl.Accent, tpl.Accent)
	return template.CSS(css)
}
