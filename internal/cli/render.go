package cli

import (
	"fmt"

	"resumeforge/internal/common"
	"resumeforge/internal/errors"
	"resumeforge/internal/service"
	"resumeforge/internal/types"

	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render [resume.json]",
	Short: "Render a structured résumé with a template",
	Long: `Render a structured résumé (the JSON produced by "parse", English or
Portuguese field names) into a PDF, Word, HTML or Markdown document using one
of the built-in templates. Run "templates" to list them.

Without --output the document is written to the template's default file name,
use "-o -" to write to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

var renderFlags struct {
	templateID string
	format     string
	output     string
}

func init() {
	renderCmd.Flags().StringVarP(&renderFlags.templateID, "template", "t", "", "Template id (default from config)")
	renderCmd.Flags().StringVar(&renderFlags.format, "format", "", "Document format: pdf, docx, html or markdown (default from config)")
	renderCmd.Flags().StringVarP(&renderFlags.output, "output", "o", "", "Output file path, - for stdout")

	_ = renderCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"pdf", "docx", "html", "markdown"}, cobra.ShellCompDirectiveNoFileComp
	})
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, logger, err := fromContext(cmd.Context())
	if err != nil {
		return err
	}

	svc, err := service.NewService(cmd.Context(), cfg, nil, logger)
	if err != nil {
		return err
	}

	content, err := common.NewFileProcessor(logger).ReadFile(args[0])
	if err != nil {
		return err
	}
	resume, err := types.DecodeResume(content)
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("Invalid résumé file: %s", args[0]), err)
	}

	out, err := svc.Render(cmd.Context(), service.SourceCLI, types.RenderRequest{
		TemplateID: renderFlags.templateID,
		Format:     renderFlags.format,
		Resume:     resume,
	})
	if err != nil {
		return err
	}

	outputFile := renderFlags.output
	switch outputFile {
	case "":
		outputFile = out.Filename
	case "-":
		outputFile = ""
	}

	return common.NewOutputHandler(logger).
		WithStdout(cmd.OutOrStdout()).
		WriteDocument(out.Data, common.CommandConfig{OutputFile: outputFile, OutputFormat: out.Format})
}
