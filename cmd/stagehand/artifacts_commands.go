package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"stagehand/internal/artifacts"
	"stagehand/internal/config"
	"stagehand/internal/fileutil"
	"stagehand/internal/logging"
	"stagehand/internal/opener"
	"stagehand/internal/subtitles"
)

func newArtifactsCommand(cmdCtx *commandContext) *cobra.Command {
	artifactsCmd := &cobra.Command{
		Use:   "artifacts",
		Short: "Inspect pipeline output artifacts",
	}

	artifactsCmd.AddCommand(newArtifactsListCommand(cmdCtx))
	artifactsCmd.AddCommand(newArtifactsLatestCommand(cmdCtx))
	artifactsCmd.AddCommand(newArtifactsOpenCommand(cmdCtx))
	artifactsCmd.AddCommand(newArtifactsExportCommand(cmdCtx))

	return artifactsCmd
}

func newArtifactsListCommand(cmdCtx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every file under the output root, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			listing, err := artifacts.List(cfg.Paths.OutputDir)
			if err != nil {
				return err
			}
			if jsonOut {
				if listing == nil {
					listing = []artifacts.Artifact{}
				}
				return writeJSON(cmd, listing)
			}
			if len(listing) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No artifacts found")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), artifactTable(listing))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newArtifactsLatestCommand(cmdCtx *commandContext) *cobra.Command {
	var (
		query   latestQuery
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "latest",
		Short: "Resolve the newest artifact for a kind or pattern",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			found, err := resolveLatest(cfg, query)
			if err != nil {
				return err
			}
			if found == nil {
				if jsonOut {
					return writeJSON(cmd, nil)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "No matching artifacts")
				return nil
			}
			if jsonOut {
				return writeJSON(cmd, found)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", found.Path)
			fmt.Fprintf(out, "  %s, %s, modified %s\n",
				artifacts.DisplayTitle(found.Path),
				logging.FormatBytes(found.Size),
				found.ModTime.Format("2006-01-02 15:04:05"))
			if found.Kind() == artifacts.KindSubtitle {
				if summary, err := subtitles.Summarize(found.Path); err == nil {
					fmt.Fprintf(out, "  %s\n", summary)
				}
			}
			return nil
		},
	}

	addLatestFlags(cmd, &query)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of text")
	return cmd
}

func newArtifactsOpenCommand(cmdCtx *commandContext) *cobra.Command {
	var query latestQuery

	cmd := &cobra.Command{
		Use:   "open",
		Short: "Open the newest matching artifact with the host opener",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			found, err := resolveLatest(cfg, query)
			if err != nil {
				return err
			}
			if found == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No matching artifacts")
				return nil
			}
			var opts []opener.Option
			if cfg.Open.Command != "" {
				opts = append(opts, opener.WithCommand(cfg.Open.Command))
			}
			if err := opener.New(opts...).Open(found.Path); err != nil {
				return fmt.Errorf("open %s: %w", found.Path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Opened %s\n", found.Path)
			return nil
		},
	}

	addLatestFlags(cmd, &query)
	return cmd
}

func newArtifactsExportCommand(cmdCtx *commandContext) *cobra.Command {
	var query latestQuery

	cmd := &cobra.Command{
		Use:   "export <directory>",
		Short: "Copy the newest matching artifact into a directory, verified",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			destDir, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve destination: %w", err)
			}
			found, err := resolveLatest(cfg, query)
			if err != nil {
				return err
			}
			if found == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No matching artifacts")
				return nil
			}
			dest := fileutil.UniqueDestination(destDir, filepath.Base(found.Path))
			if err := fileutil.CopyFileVerified(found.Path, dest); err != nil {
				return fmt.Errorf("export %s: %w", found.Path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s (%s)\n", dest, logging.FormatBytes(found.Size))
			return nil
		},
	}

	addLatestFlags(cmd, &query)
	return cmd
}

// latestQuery selects the newest artifact by kind shortcut or raw pattern.
type latestQuery struct {
	kind      string
	pattern   string
	recursive bool
}

func addLatestFlags(cmd *cobra.Command, query *latestQuery) {
	cmd.Flags().StringVar(&query.kind, "kind", "audio", "Artifact kind: audio or subtitle")
	cmd.Flags().StringVar(&query.pattern, "pattern", "", "Basename glob pattern (overrides --kind)")
	cmd.Flags().BoolVar(&query.recursive, "recursive", false, "Search subdirectories (pattern mode only)")
}

func resolveLatest(cfg *config.Config, query latestQuery) (*artifacts.Artifact, error) {
	if query.pattern != "" {
		return artifacts.FindLatest(cfg.Paths.OutputDir, query.pattern, query.recursive)
	}
	switch query.kind {
	case "audio":
		return artifacts.FindLatest(cfg.Paths.OutputDir, artifacts.StitchedAudioPattern, false)
	case "subtitle":
		return artifacts.FindLatest(cfg.TranscriptsDir(), artifacts.SubtitlePattern, false)
	default:
		return nil, fmt.Errorf("unknown artifact kind %q (expected audio or subtitle)", query.kind)
	}
}

func artifactTable(listing []artifacts.Artifact) string {
	rows := make([][]string, 0, len(listing))
	for _, artifact := range listing {
		rows = append(rows, []string{
			artifact.ModTime.Format("2006-01-02 15:04:05"),
			logging.FormatBytes(artifact.Size),
			string(artifact.Kind()),
			artifact.Path,
		})
	}
	return renderTable([]string{"Modified", "Size", "Kind", "Path"}, rows, 1)
}

// printArtifactListing renders the post-run listing and returns it so the
// caller can record the artifact count.
func printArtifactListing(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) []artifacts.Artifact {
	listing, err := artifacts.List(cfg.Paths.OutputDir)
	if err != nil {
		logger.Warn("artifact listing failed", logging.Error(err))
		return nil
	}
	out := cmd.OutOrStdout()
	if len(listing) == 0 {
		fmt.Fprintln(out, "No artifacts found")
		return nil
	}
	fmt.Fprintln(out, artifactTable(listing))
	return listing
}
