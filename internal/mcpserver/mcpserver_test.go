package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"resumeforge/internal/extract"
	"resumeforge/internal/parser"
	"resumeforge/internal/render"
	"resumeforge/internal/service"
	"resumeforge/internal/types"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resumeText = `Carla Mendes
carla@example.com
Experiência
Initech - Engenheira de Dados (2019 - 2024)
- Modelou pipelines
Competências
Python, Spark
`

type stubExtractor struct{}

func (stubExtractor) Name() string { return "stub" }

func (stubExtractor) Extract(context.Context, []byte, string) (string, error) {
	return resumeText, nil
}

var testImpl = &mcp.Implementation{Name: "resumeforge-test", Version: "0.1.0"}

func newSession(t *testing.T, maxSize int64) *mcp.ClientSession {
	t.Helper()
	extractors := extract.NewDefaultRegistry(nil)
	extractors.Register(extract.FormatPDF, stubExtractor{})
	renderer, err := render.NewDefaultRegistry(nil)
	require.NoError(t, err)
	svc := service.New(extractors, renderer, parser.Options{},
		service.Defaults{TemplateID: "moderno-azul", Format: "pdf"}, nil, nil)

	srv := New(svc, "test", maxSize, nil)
	serverT, clientT := mcp.NewInMemoryTransports()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = srv.MCP().Run(ctx, serverT) }()

	session, err := mcp.NewClient(testImpl, nil).Connect(ctx, clientT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func callTool(t *testing.T, session *mcp.ClientSession, name string, args any) (string, bool) {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text, result.IsError
}

func TestListTools(t *testing.T) {
	session := newSession(t, 0)

	res, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"parse_resume", "parse_resume_text", "list_templates", "render_resume"}, names)
}

func TestParseResume(t *testing.T) {
	session := newSession(t, 0)

	text, isError := callTool(t, session, "parse_resume", map[string]any{
		"filename":       "carla.pdf",
		"content_base64": base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 fake")),
	})
	require.False(t, isError, text)

	var resume types.ResumeData
	require.NoError(t, json.Unmarshal([]byte(text), &resume))
	assert.Equal(t, "Carla Mendes", resume.Contact.FullName)
	assert.Equal(t, "carla@example.com", types.Deref(resume.Contact.Email))
	assert.Equal(t, []string{"Python", "Spark"}, resume.Skills)
}

func TestParseResumeErrors(t *testing.T) {
	session := newSession(t, 16)
	encoded := base64.StdEncoding.EncodeToString([]byte("conteúdo"))

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"unsupported format", map[string]any{"filename": "cv.txt", "content_base64": encoded}, "UNSUPPORTED_FORMAT"},
		{"missing filename", map[string]any{"content_base64": encoded}, "filename is required"},
		{"bad base64", map[string]any{"filename": "cv.pdf", "content_base64": "%%%"}, "not valid base64"},
		{"empty document", map[string]any{"filename": "cv.pdf", "content_base64": ""}, "document is empty"},
		{"too large", map[string]any{"filename": "cv.pdf", "content_base64": base64.StdEncoding.EncodeToString([]byte(strings.Repeat("x", 17)))}, "FILE_TOO_LARGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isError := callTool(t, session, "parse_resume", tt.args)
			assert.True(t, isError)
			assert.Contains(t, text, tt.want)
		})
	}
}

func TestParseResumeText(t *testing.T) {
	session := newSession(t, 0)

	text, isError := callTool(t, session, "parse_resume_text", map[string]any{"text": resumeText})
	require.False(t, isError, text)

	var resume types.ResumeData
	require.NoError(t, json.Unmarshal([]byte(text), &resume))
	assert.Equal(t, "Carla Mendes", resume.Contact.FullName)
	require.Len(t, resume.Experiences, 1)
	assert.Equal(t, "Initech", types.Deref(resume.Experiences[0].Company))
}

func TestListTemplates(t *testing.T) {
	session := newSession(t, 0)

	text, isError := callTool(t, session, "list_templates", map[string]any{})
	require.False(t, isError, text)

	var list types.TemplateList
	require.NoError(t, json.Unmarshal([]byte(text), &list))
	require.Len(t, list.Templates, 4)
	assert.Equal(t, "moderno-azul", list.Templates[0].ID)
}

func TestRenderResume(t *testing.T) {
	session := newSession(t, 0)
	resume := map[string]any{
		"contact": map[string]any{"full_name": "Carla Mendes"},
		"skills":  []string{"Python"},
	}

	t.Run("defaults", func(t *testing.T) {
		text, isError := callTool(t, session, "render_resume", map[string]any{"resume": resume})
		require.False(t, isError, text)

		var out renderResult
		require.NoError(t, json.Unmarshal([]byte(text), &out))
		assert.Equal(t, "moderno-azul", out.TemplateID)
		assert.Equal(t, "application/pdf", out.ContentType)
		assert.Equal(t, "curriculo-moderno-azul.pdf", out.Filename)
		data, err := base64.StdEncoding.DecodeString(out.ContentBase64)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "%PDF-"))
	})

	t.Run("portuguese aliases", func(t *testing.T) {
		text, isError := callTool(t, session, "render_resume", map[string]any{
			"layout_id": "classico-serifado",
			"formato":   "html",
			"curriculo": resume,
		})
		require.False(t, isError, text)

		var out renderResult
		require.NoError(t, json.Unmarshal([]byte(text), &out))
		assert.Equal(t, "classico-serifado", out.TemplateID)
		data, err := base64.StdEncoding.DecodeString(out.ContentBase64)
		require.NoError(t, err)
		assert.Contains(t, string(data), "Carla Mendes")
	})

	t.Run("unknown template", func(t *testing.T) {
		text, isError := callTool(t, session, "render_resume", map[string]any{
			"template_id": "neon",
			"resume":      resume,
		})
		assert.True(t, isError)
		assert.Contains(t, text, "TEMPLATE_NOT_FOUND")
	})
}

func TestServeRejectsUnknownTransport(t *testing.T) {
	svc := service.New(extract.NewDefaultRegistry(nil), mustRenderer(t), parser.Options{}, service.Defaults{}, nil, nil)

	err := New(svc, "test", 0, nil).Serve(context.Background(), "websocket", "")

	assert.ErrorContains(t, err, "unknown MCP transport")
}

func mustRenderer(t *testing.T) *render.Registry {
	t.Helper()
	renderer, err := render.NewDefaultRegistry(nil)
	require.NoError(t, err)
	return renderer
}
