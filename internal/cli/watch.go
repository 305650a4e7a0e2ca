package cli

import (
	"resumeforge/internal/service"
	"resumeforge/internal/watch"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Parse résumés dropped into an inbox directory",
	Long: `Watch an inbox directory and parse every PDF or Word résumé written to it.
The structured result is written to the output directory as <name>.json
(or the configured watch format). Other files are logged and skipped.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var watchFlags struct {
	dir    string
	out    string
	format string
}

func init() {
	watchCmd.Flags().StringVar(&watchFlags.dir, "dir", "", "Inbox directory (default from config)")
	watchCmd.Flags().StringVar(&watchFlags.out, "out", "", "Output directory (default from config)")
	registerOutputFormatFlag(watchCmd, &watchFlags.format)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := fromContext(cmd.Context())
	if err != nil {
		return err
	}

	watchCfg := watch.Config{
		Dir:           cfg.Watch.Dir,
		OutputDir:     cfg.Watch.OutputDir,
		Format:        cfg.Watch.Format,
		DebounceDelay: cfg.Watch.DebounceDelay,
		MaxFileSize:   cfg.App.MaxFileSize,
	}
	if watchFlags.dir != "" {
		watchCfg.Dir = watchFlags.dir
	}
	if watchFlags.out != "" {
		watchCfg.OutputDir = watchFlags.out
	}
	if watchFlags.format != "" {
		watchCfg.Format = watchFlags.format
	}

	svc, err := service.NewService(cmd.Context(), cfg, nil, logger)
	if err != nil {
		return err
	}

	watcher, err := watch.New(watchCfg, svc, logger)
	if err != nil {
		return err
	}
	return watcher.Run(cmd.Context())
}
