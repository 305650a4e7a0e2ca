package cli

import (
	"resumeforge/internal/common"

	"github.com/spf13/cobra"
)

// registerOutputFormatFlag adds --format with shell completion from the
// configured structured output formats
func registerOutputFormatFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVar(target, "format", "", "Output format: json, yaml, text or markdown (default from config)")

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return []string{}, cobra.ShellCompDirectiveError
		}
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

// resolveOutputFormat applies the configured default and validates the result
func resolveOutputFormat(cmd *cobra.Command, format *string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	if *format == "" {
		*format = cfg.App.DefaultFormat
	}
	return common.ValidateOutputFormat(*format, cfg.App.SupportedFormats)
}
