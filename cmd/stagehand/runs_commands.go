package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"stagehand/internal/history"
	"stagehand/internal/subtitles"
)

func newRunsCommand(cmdCtx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Browse the run history ledger",
	}

	runsCmd.AddCommand(newRunsListCommand(cmdCtx))
	runsCmd.AddCommand(newRunsShowCommand(cmdCtx))

	return runsCmd
}

func newRunsListCommand(cmdCtx *commandContext) *cobra.Command {
	var (
		limit   int
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded pipeline launches, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open run history: %w", err)
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOut {
				if runs == nil {
					runs = []*history.Run{}
				}
				return writeJSON(cmd, runs)
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					strconv.FormatInt(run.ID, 10),
					shortRunID(run.RunID),
					string(run.Status),
					run.StartedAt.Format("2006-01-02 15:04:05"),
					formatRunDuration(run),
					strconv.Itoa(run.ArtifactCount),
				})
			}
			table := renderTable(
				[]string{"ID", "Run", "Status", "Started", "Duration", "Artifacts"},
				rows,
				0, 4, 5,
			)
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newRunsShowCommand(cmdCtx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one recorded run by row ID or run UUID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open run history: %w", err)
			}
			defer store.Close()

			run, err := lookupRun(cmd, store, args[0])
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("no run matching %q", args[0])
			}
			if jsonOut {
				return writeJSON(cmd, run)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s\n", run.RunID)
			fmt.Fprintf(out, "  Status:     %s\n", run.Status)
			fmt.Fprintf(out, "  Started:    %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
			if run.FinishedAt != nil {
				fmt.Fprintf(out, "  Finished:   %s (%s)\n",
					run.FinishedAt.Format("2006-01-02 15:04:05"), formatRunDuration(run))
			}
			if run.ExitCode != nil {
				fmt.Fprintf(out, "  Exit code:  %d\n", *run.ExitCode)
			}
			fmt.Fprintf(out, "  Turns:      %d\n", run.Turns)
			fmt.Fprintf(out, "  Backends:   stt=%s tts=%s phonikud=%s mock-stt=%s\n",
				run.STTModel, run.TTSBackend, yesNo(run.Phonikud), yesNo(run.MockSTT))
			fmt.Fprintf(out, "  Artifacts:  %d\n", run.ArtifactCount)
			if run.AudioPath != "" {
				fmt.Fprintf(out, "  Audio:      %s\n", run.AudioPath)
			}
			if run.SubtitlePath != "" {
				fmt.Fprintf(out, "  Subtitles:  %s", run.SubtitlePath)
				if summary, err := subtitles.Summarize(run.SubtitlePath); err == nil {
					fmt.Fprintf(out, " (%s)", summary)
				}
				fmt.Fprintln(out)
			}
			if run.ErrorMessage != "" {
				fmt.Fprintf(out, "  Error:      %s\n", run.ErrorMessage)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of text")
	return cmd
}

func lookupRun(cmd *cobra.Command, store *history.Store, key string) (*history.Run, error) {
	key = strings.TrimSpace(key)
	if id, err := strconv.ParseInt(key, 10, 64); err == nil {
		return store.GetByID(cmd.Context(), id)
	}
	return store.GetByRunID(cmd.Context(), key)
}

func shortRunID(runID string) string {
	if idx := strings.IndexByte(runID, '-'); idx > 0 {
		return runID[:idx]
	}
	return runID
}

func formatRunDuration(run *history.Run) string {
	if run.FinishedAt == nil {
		return "-"
	}
	return run.Duration().Round(time.Second).String()
}
