// Package mcpserver exposes résumé parsing and rendering as MCP tools.
package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"resumeforge/internal/errors"
	"resumeforge/internal/service"
	"resumeforge/internal/types"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Transports accepted by Serve
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Server wraps an MCP server whose tools call the shared service
type Server struct {
	svc     *service.Service
	mcp     *mcp.Server
	maxSize int64
	logger  *errors.Logger
}

// New creates the MCP server and registers every tool. Decoded documents
// larger than maxSize are rejected; a non-positive maxSize disables the check.
func New(svc *service.Service, version string, maxSize int64, logger *errors.Logger) *Server {
	s := &Server{
		svc:     svc,
		mcp:     mcp.NewServer(&mcp.Implementation{Name: "resumeforge", Version: version}, nil),
		maxSize: maxSize,
		logger:  logger,
	}
	s.registerParseTool()
	s.registerParseTextTool()
	s.registerTemplatesTool()
	s.registerRenderTool()
	return s
}

// MCP returns the underlying SDK server.
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// Serve runs the server on the given transport until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, transport, addr string) error {
	switch transport {
	case "", TransportStdio:
		if s.logger != nil {
			s.logger.Info("Serving MCP over stdio")
		}
		return s.mcp.Run(ctx, &mcp.StdioTransport{})
	case TransportHTTP:
		return s.serveHTTP(ctx, addr)
	default:
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("unknown MCP transport %q (must be 'stdio' or 'http')", transport), nil)
	}
}

func (s *Server) serveHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s.mcp }, nil)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		if s.logger != nil {
			s.logger.Info("Serving MCP over streamable HTTP", "address", addr)
		}
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("MCP server failed to start: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// addTool registers a tool whose handler result is returned as JSON text.
// Handler errors become tool errors rather than protocol errors.
func (s *Server) addTool(tool *mcp.Tool, handle func(ctx context.Context, args json.RawMessage) (any, error)) {
	s.mcp.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		resp, err := handle(ctx, req.Params.Arguments)
		if err != nil {
			if s.logger != nil {
				s.logger.LogError(err, "MCP tool failed", "tool", tool.Name)
			}
			var res mcp.CallToolResult
			res.SetError(err)
			return &res, nil
		}

		data, err := json.Marshal(resp)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(errors.NewInternalError("MARSHAL_FAILED", "failed to encode tool result", err))
			return &res, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil
	})
}

func decodeArgs(args json.RawMessage, target any) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, target); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "invalid arguments", err)
	}
	return nil
}

type parseArgs struct {
	Filename      string `json:"filename"`
	ContentBase64 string `json:"content_base64"`
}

func (s *Server) registerParseTool() {
	tool := &mcp.Tool{
		Name:        "parse_resume",
		Description: "Parse a PDF or Word résumé into structured JSON (contact, summary, experience, education, skills, projects).",
		InputSchema: inputSchema(map[string]any{
			"filename":       map[string]any{"type": "string", "description": "Original file name, used to detect the format (.pdf, .doc, .docx)"},
			"content_base64": map[string]any{"type": "string", "description": "Document bytes, base64 encoded"},
		}, []string{"filename", "content_base64"}),
	}

	s.addTool(tool, func(ctx context.Context, raw json.RawMessage) (any, error) {
		var args parseArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		if strings.TrimSpace(args.Filename) == "" {
			return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "filename is required", nil)
		}
		data, err := base64.StdEncoding.DecodeString(args.ContentBase64)
		if err != nil {
			return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "content_base64 is not valid base64", err)
		}
		if len(data) == 0 {
			return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "document is empty", nil)
		}
		if s.maxSize > 0 && int64(len(data)) > s.maxSize {
			return nil, errors.NewValidationError(errors.ErrCodeFileTooLarge,
				fmt.Sprintf("document exceeds %d bytes", s.maxSize), nil)
		}
		return s.svc.ParseDocument(ctx, service.SourceMCP, data, args.Filename)
	})
}

type parseTextArgs struct {
	Text string `json:"text"`
}

func (s *Server) registerParseTextTool() {
	tool := &mcp.Tool{
		Name:        "parse_resume_text",
		Description: "Parse résumé plain text that was already extracted into structured JSON.",
		InputSchema: inputSchema(map[string]any{
			"text": map[string]any{"type": "string", "description": "Résumé text"},
		}, []string{"text"}),
	}

	s.addTool(tool, func(ctx context.Context, raw json.RawMessage) (any, error) {
		var args parseTextArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		return s.svc.ParseText(ctx, service.SourceMCP, args.Text), nil
	})
}

func (s *Server) registerTemplatesTool() {
	tool := &mcp.Tool{
		Name:        "list_templates",
		Description: "List the résumé templates available for rendering.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	s.addTool(tool, func(context.Context, json.RawMessage) (any, error) {
		return s.svc.Templates(), nil
	})
}

type renderResult struct {
	TemplateID    string `json:"template_id"`
	Format        string `json:"format"`
	Filename      string `json:"filename"`
	ContentType   string `json:"content_type"`
	ContentBase64 string `json:"content_base64"`
}

func (s *Server) registerRenderTool() {
	tool := &mcp.Tool{
		Name:        "render_resume",
		Description: "Render a structured résumé with a catalog template. Returns the document base64 encoded.",
		InputSchema: inputSchema(map[string]any{
			"template_id": map[string]any{"type": "string", "description": "Template id from list_templates (default from configuration)"},
			"format":      map[string]any{"type": "string", "enum": []string{"pdf", "docx", "html", "markdown"}, "description": "Output format (default from configuration)"},
			"resume":      map[string]any{"type": "object", "description": "Résumé in the parse_resume output shape"},
		}, nil),
	}

	s.addTool(tool, func(ctx context.Context, raw json.RawMessage) (any, error) {
		if len(raw) == 0 {
			return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "resume is required", nil)
		}
		req, err := types.DecodeRenderRequest(raw)
		if err != nil {
			return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "invalid render arguments", err)
		}
		out, err := s.svc.Render(ctx, service.SourceMCP, req)
		if err != nil {
			return nil, err
		}
		return renderResult{
			TemplateID:    out.TemplateID,
			Format:        out.Format,
			Filename:      out.Filename,
			ContentType:   out.ContentType,
			ContentBase64: base64.StdEncoding.EncodeToString(out.Data),
		}, nil
	})
}
