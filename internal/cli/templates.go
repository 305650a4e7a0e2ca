package cli

import (
	"resumeforge/internal/common"
	"resumeforge/internal/render"

	"github.com/spf13/cobra"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the résumé templates available for rendering",
	Args:  cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveOutputFormat(cmd, &templatesConfig.OutputFormat)
	},
	RunE: runTemplates,
}

var templatesConfig common.CommandConfig

func init() {
	templatesCmd.Flags().StringVarP(&templatesConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	registerOutputFormatFlag(templatesCmd, &templatesConfig.OutputFormat)
}

func runTemplates(cmd *cobra.Command, args []string) error {
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return err
	}

	catalog, err := render.NewCatalog()
	if err != nil {
		return err
	}

	return common.NewOutputHandler(logger).
		WithStdout(cmd.OutOrStdout()).
		HandleOutput(catalog.List(), templatesConfig)
}
