package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stagehand/internal/logging"
	"stagehand/internal/watcher"
)

func newWatchCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Report artifacts as the pipeline writes them",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := cmdCtx.ensureLogger()
			if err != nil {
				return err
			}

			root := cfg.Paths.OutputDir
			if _, err := os.Stat(root); err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("output root %s does not exist yet; start a run first", root)
				}
				return fmt.Errorf("inspect output root: %w", err)
			}

			w, err := watcher.New(root, logger)
			if err != nil {
				return err
			}
			defer w.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Watching %s (Ctrl-C to stop)\n", root)
			err = w.Run(cmd.Context(), func(event watcher.Event) {
				fmt.Fprintf(out, "%s  %-14s %s (%s)\n",
					event.Artifact.ModTime.Format("15:04:05"),
					event.Kind,
					event.Artifact.Path,
					logging.FormatBytes(event.Artifact.Size))
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
