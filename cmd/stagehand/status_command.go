package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stagehand/internal/config"
	"stagehand/internal/preflight"
)

func newStatusCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report configuration and external dependency health",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("Stagehand Status", colorize) {
				fmt.Fprintln(out, line)
			}

			_, path, exists, err := config.Load(cmdCtx.configPath())
			if err == nil {
				detail := path
				if !exists {
					detail += " (defaults in use)"
				}
				fmt.Fprintln(out, renderStatusLine("Config", statusInfo, detail, colorize))
			}
			fmt.Fprintln(out, renderStatusLine("Pipeline", statusInfo,
				fmt.Sprintf("%s %s", cfg.Runner.Command, cfg.Runner.Script), colorize))

			failures := 0
			for _, result := range preflight.RunAll(cmd.Context(), cfg) {
				kind := statusOK
				switch {
				case result.Passed && result.Informational:
					kind = statusInfo
				case !result.Passed && result.Informational:
					kind = statusWarn
				case !result.Passed:
					kind = statusError
					failures++
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}

			if failures > 0 {
				return fmt.Errorf("%d preflight check(s) failed", failures)
			}
			return nil
		},
	}
}
