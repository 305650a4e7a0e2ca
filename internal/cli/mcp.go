package cli

import (
	"resumeforge/internal/mcpserver"
	"resumeforge/internal/service"

	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the résumé tools over the Model Context Protocol",
	Long: `Expose résumé parsing and rendering as MCP tools:
- parse_resume: parse a base64 encoded PDF or Word document
- parse_resume_text: parse already extracted résumé text
- list_templates: list the render templates
- render_resume: render a structured résumé, returned base64 encoded

The stdio transport is meant to be launched by an MCP client. The http
transport serves the streamable HTTP transport on --addr.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

var mcpFlags struct {
	transport string
	addr      string
}

func init() {
	mcpCmd.Flags().StringVar(&mcpFlags.transport, "transport", mcpserver.TransportStdio, "Transport: stdio or http")
	mcpCmd.Flags().StringVar(&mcpFlags.addr, "addr", "localhost:8081", "Listen address for the http transport")

	_ = mcpCmd.RegisterFlagCompletionFunc("transport", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{mcpserver.TransportStdio, mcpserver.TransportHTTP}, cobra.ShellCompDirectiveNoFileComp
	})
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, logger, err := fromContext(cmd.Context())
	if err != nil {
		return err
	}

	svc, err := service.NewService(cmd.Context(), cfg, nil, logger)
	if err != nil {
		return err
	}

	srv := mcpserver.New(svc, Version, cfg.App.MaxFileSize, logger)
	return srv.Serve(cmd.Context(), mcpFlags.transport, mcpFlags.addr)
}
