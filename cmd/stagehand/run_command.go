package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"stagehand/internal/artifacts"
	"stagehand/internal/config"
	"stagehand/internal/history"
	"stagehand/internal/logging"
	"stagehand/internal/notifications"
	"stagehand/internal/opener"
	"stagehand/internal/preflight"
	"stagehand/internal/runmeta"
	"stagehand/internal/runner"
	"stagehand/internal/subtitles"
)

const lockFileName = ".stagehand.lock"

func newRunCommand(cmdCtx *commandContext) *cobra.Command {
	var (
		turns      int
		sttModel   string
		ttsBackend string
		phonikud   bool
		mockSTT    bool
		noOpen     bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Launch the conversation pipeline and report its artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := cmdCtx.ensureLogger()
			if err != nil {
				return err
			}

			logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, logging.RetentionTarget{
				Dir:     cfg.Paths.LogDir,
				Pattern: "*.log",
				Exclude: []string{filepath.Join(cfg.Paths.LogDir, logging.LogFileName)},
			})

			if err := checkRequiredDeps(cfg); err != nil {
				return err
			}

			opts := runner.Options{
				Turns:      cfg.Runner.Turns,
				STTModel:   cfg.Runner.STTModel,
				TTSBackend: cfg.Runner.TTSBackend,
				Phonikud:   cfg.Runner.Phonikud,
				MockSTT:    cfg.Runner.MockSTT,
				APIKey:     cfg.Runner.APIKey,
				WorkDir:    cfg.Runner.WorkDir,
			}
			if cmd.Flags().Changed("turns") {
				opts.Turns = turns
			}
			if cmd.Flags().Changed("stt-model") {
				opts.STTModel = sttModel
			}
			if cmd.Flags().Changed("tts-backend") {
				opts.TTSBackend = ttsBackend
			}
			if cmd.Flags().Changed("phonikud") {
				opts.Phonikud = phonikud
			}
			if cmd.Flags().Changed("mock-stt") {
				opts.MockSTT = mockSTT
			}

			// The pipeline creates the output root itself, but the run lock
			// lives inside it, so it has to exist before TryLock.
			if err := os.MkdirAll(cfg.Paths.OutputDir, 0o755); err != nil {
				return fmt.Errorf("create output root: %w", err)
			}
			lock := flock.New(filepath.Join(cfg.Paths.OutputDir, lockFileName))
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire run lock: %w", err)
			}
			if !locked {
				return errors.New("another run is already in progress")
			}
			defer func() {
				_ = lock.Unlock()
			}()

			return executeRun(cmd, cfg, logger, opts, noOpen)
		},
	}

	cmd.Flags().IntVar(&turns, "turns", 0, "Number of conversation turns")
	cmd.Flags().StringVar(&sttModel, "stt-model", "", "Speech-recognition model")
	cmd.Flags().StringVar(&ttsBackend, "tts-backend", "", "Text-to-speech backend")
	cmd.Flags().BoolVar(&phonikud, "phonikud", false, "Enable phonikud phonemization")
	cmd.Flags().BoolVar(&mockSTT, "mock-stt", false, "Force the deterministic mock speech-recognition backend")
	cmd.Flags().BoolVar(&noOpen, "no-open", false, "Skip opening artifacts after the run")
	return cmd
}

func executeRun(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, opts runner.Options, noOpen bool) error {
	out := cmd.OutOrStdout()
	runID := uuid.NewString()

	store, err := history.Open(cfg)
	if err != nil {
		return fmt.Errorf("open run history: %w", err)
	}
	defer store.Close()

	if _, err := store.Begin(cmd.Context(), runID, opts.Turns, opts.STTModel, opts.TTSBackend, opts.Phonikud, opts.MockSTT); err != nil {
		return fmt.Errorf("record run start: %w", err)
	}

	fmt.Fprintf(out, "Starting run %s (%d turns, stt=%s, tts=%s)\n",
		runID, opts.Turns, opts.STTModel, opts.TTSBackend)
	logger.Info("pipeline run starting",
		logging.String(logging.FieldRunID, runID),
		logging.Int("turns", opts.Turns))

	client := runner.NewCLI(
		runner.WithCommand(cfg.Runner.Command, cfg.Runner.Script),
		runner.WithLogger(logger),
	)
	result, runErr := client.Run(cmd.Context(), opts)
	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			finishRun(cmd.Context(), store, logger, runID, history.Outcome{
				Status:       history.StatusFailed,
				ErrorMessage: "canceled",
			})
			return runErr
		}
		logger.Error("pipeline run failed",
			logging.String(logging.FieldRunID, runID),
			logging.Int(logging.FieldExitCode, result.ExitCode),
			logging.Error(runErr))
		fmt.Fprintf(out, "Pipeline exited with code %d; scanning for partial artifacts\n", result.ExitCode)
	}

	// Discovery runs regardless of the pipeline's exit status: a partial run
	// still leaves files worth surfacing.
	listing := printArtifactListing(cmd, cfg, logger)
	audio, subtitle := locateRunOutputs(cfg, logger)

	if audio != nil {
		fmt.Fprintf(out, "Stitched audio: %s (%s)\n", audio.Path, logging.FormatBytes(audio.Size))
	}
	if subtitle != nil {
		fmt.Fprintf(out, "Subtitles:      %s", subtitle.Path)
		if summary, err := subtitles.Summarize(subtitle.Path); err == nil {
			fmt.Fprintf(out, " (%s)", summary)
		}
		fmt.Fprintln(out)
	}
	printRunMetaSummary(out, cfg, logger)

	exitCode := result.ExitCode
	outcome := history.Outcome{
		Status:        history.StatusCompleted,
		ExitCode:      &exitCode,
		ArtifactCount: len(listing),
	}
	if audio != nil {
		outcome.AudioPath = audio.Path
	}
	if subtitle != nil {
		outcome.SubtitlePath = subtitle.Path
	}
	if runErr != nil {
		outcome.Status = history.StatusFailed
		outcome.ErrorMessage = runErr.Error()
	}
	finishRun(cmd.Context(), store, logger, runID, outcome)

	notify(cmd.Context(), cfg, logger, runID, runErr, len(listing), result)

	if cfg.Open.Enabled && !noOpen && runErr == nil {
		openArtifacts(logger, cfg, audio, subtitle)
	}

	return runErr
}

func checkRequiredDeps(cfg *config.Config) error {
	for _, status := range preflight.CheckSystemDeps(cfg) {
		if !status.Available && !status.Optional {
			return fmt.Errorf("%s unavailable: %s", status.Name, status.Detail)
		}
	}
	return nil
}

func finishRun(ctx context.Context, store *history.Store, logger *slog.Logger, runID string, outcome history.Outcome) {
	if err := store.Finish(ctx, runID, outcome); err != nil {
		logger.Warn("record run outcome failed",
			logging.String(logging.FieldRunID, runID),
			logging.Error(err))
	}
}

// locateRunOutputs resolves the two artifacts a run surfaces directly. An
// access failure on one pattern must not abort the other.
func locateRunOutputs(cfg *config.Config, logger *slog.Logger) (audio, subtitle *artifacts.Artifact) {
	var err error
	audio, err = artifacts.FindLatest(cfg.Paths.OutputDir, artifacts.StitchedAudioPattern, false)
	if err != nil {
		logger.Warn("stitched audio lookup failed",
			logging.String(logging.FieldPattern, artifacts.StitchedAudioPattern),
			logging.Error(err))
	}
	subtitle, err = artifacts.FindLatest(cfg.TranscriptsDir(), artifacts.SubtitlePattern, false)
	if err != nil {
		logger.Warn("subtitle lookup failed",
			logging.String(logging.FieldPattern, artifacts.SubtitlePattern),
			logging.Error(err))
	}
	return audio, subtitle
}

func printRunMetaSummary(out io.Writer, cfg *config.Config, logger *slog.Logger) {
	meta, path, err := runmeta.FindLatestRunMeta(cfg.MetadataDir())
	if err != nil {
		logger.Warn("run metadata lookup failed", logging.Error(err))
		return
	}
	if meta == nil {
		return
	}
	line := fmt.Sprintf("Run metadata:   %s (%d turns", path, len(meta.Turns))
	if duration, ok := meta.Duration(); ok {
		line += fmt.Sprintf(", %s", duration.Round(time.Second))
	}
	line += ")"
	fmt.Fprintln(out, line)
}

func notify(ctx context.Context, cfg *config.Config, logger *slog.Logger, runID string, runErr error, artifactCount int, result runner.Result) {
	service := notifications.NewService(cfg)
	var err error
	if runErr != nil {
		err = service.NotifyRunFailed(ctx, runID, runErr)
	} else {
		err = service.NotifyRunCompleted(ctx, runID, artifactCount, result.Duration)
	}
	if err != nil {
		logger.Warn("notification failed", logging.Error(err))
	}
}

func openArtifacts(logger *slog.Logger, cfg *config.Config, targets ...*artifacts.Artifact) {
	var opts []opener.Option
	if cfg.Open.Command != "" {
		opts = append(opts, opener.WithCommand(cfg.Open.Command))
	}
	open := opener.New(opts...)
	for _, target := range targets {
		if target == nil {
			continue
		}
		if err := open.Open(target.Path); err != nil {
			logger.Warn("open artifact failed",
				logging.String(logging.FieldArtifact, target.Path),
				logging.Error(err))
		}
	}
}
