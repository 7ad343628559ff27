package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"stagehand/internal/artifacts"
	"stagehand/internal/config"
	"stagehand/internal/logging"
	"stagehand/internal/logs"
)

const pipelineLogPattern = "run_*.log"

func newLogsCommand(cmdCtx *commandContext) *cobra.Command {
	var (
		lines    int
		follow   bool
		pipeline bool
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Tail stagehand's log or the newest pipeline run log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			path, err := resolveLogPath(cfg, pipeline)
			if err != nil {
				return err
			}
			if path == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No pipeline run logs found")
				return nil
			}

			out := cmd.OutOrStdout()
			result, err := logs.Tail(cmd.Context(), path, logs.TailOptions{Offset: -1, Limit: lines})
			if err != nil {
				return err
			}
			for _, line := range result.Lines {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}

			offset := result.Offset
			for {
				result, err = logs.Tail(cmd.Context(), path, logs.TailOptions{
					Offset: offset,
					Follow: true,
					Wait:   2 * time.Second,
				})
				if err != nil {
					if errors.Is(err, context.Canceled) {
						return nil
					}
					return err
				}
				for _, line := range result.Lines {
					fmt.Fprintln(out, line)
				}
				offset = result.Offset
			}
		},
	}

	cmd.Flags().IntVar(&lines, "lines", 50, "Number of trailing lines to print")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing lines as they are written")
	cmd.Flags().BoolVar(&pipeline, "pipeline", false, "Tail the newest pipeline run log instead")
	return cmd
}

func resolveLogPath(cfg *config.Config, pipeline bool) (string, error) {
	if !pipeline {
		return filepath.Join(cfg.Paths.LogDir, logging.LogFileName), nil
	}
	found, err := artifacts.FindLatest(cfg.PipelineLogsDir(), pipelineLogPattern, false)
	if err != nil {
		return "", err
	}
	if found == nil {
		return "", nil
	}
	return found.Path, nil
}
