package cli

import (
	"context"

	"resumeforge/internal/common"
	"resumeforge/internal/service"
	"resumeforge/internal/types"

	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [resume-file]",
	Short: "Parse a PDF or Word résumé into structured data",
	Long: `Extract the text of a PDF (.pdf) or Word (.doc, .docx) résumé and parse it
into structured data.

The result contains:
- Contact information (name, email, phone, location, LinkedIn, website)
- Professional summary
- Experience with role, company, dates and highlights
- Education, skills and projects`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveOutputFormat(cmd, &parseConfig.OutputFormat)
	},
	RunE: runParse,
}

var (
	parseConfig             common.CommandConfig
	suppressLinkedInWebsite bool
)

func init() {
	parseCmd.Flags().StringVarP(&parseConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	registerOutputFormatFlag(parseCmd, &parseConfig.OutputFormat)
	parseCmd.Flags().BoolVar(&suppressLinkedInWebsite, "suppress-linkedin-website", false,
		"Drop the website when it only repeats the LinkedIn profile (overrides config)")
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, logger, err := fromContext(cmd.Context())
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("suppress-linkedin-website") {
		cfg.Parser.SuppressLinkedInWebsite = suppressLinkedInWebsite
	}

	svc, err := service.NewService(cmd.Context(), cfg, nil, logger)
	if err != nil {
		return err
	}

	parseOperation := func(ctx context.Context, data []byte, filename string) (types.ResumeData, error) {
		return svc.ParseDocument(ctx, service.SourceCLI, data, filename)
	}

	if err := common.RunDocumentCommand(
		cmd.Context(),
		logger,
		parseConfig,
		args[0],
		cfg.App.MaxFileSize,
		parseOperation,
	); err != nil {
		return err
	}
	logger.Info("Résumé parsed successfully", "file", args[0])
	return nil
}
