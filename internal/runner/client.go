package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"stagehand/internal/logging"
)

var commandContext = exec.CommandContext

// Options describes one pipeline invocation.
type Options struct {
	Turns      int
	STTModel   string
	TTSBackend string
	Phonikud   bool
	// MockSTT forces the pipeline's deterministic offline speech-recognition
	// backend via CW_STT_FORCE_MOCK=1 in the child environment.
	MockSTT bool
	// APIKey enables the pipeline's hosted-LLM conversation agent. Empty
	// leaves the pipeline on its scripted responder.
	APIKey  string
	WorkDir string
}

// Result captures the outcome of a pipeline run.
type Result struct {
	ExitCode int
	Duration time.Duration
}

// Client defines pipeline invocation behaviour.
type Client interface {
	Run(ctx context.Context, opts Options) (Result, error)
}

// Option configures the CLI client.
type Option func(*CLI)

// WithCommand overrides the interpreter and script.
func WithCommand(command, script string) Option {
	return func(c *CLI) {
		if command != "" {
			c.command = command
		}
		if script != "" {
			c.script = script
		}
	}
}

// WithLogger routes pipeline output into the given structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *CLI) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// CLI wraps the crew_main.py conversation pipeline.
type CLI struct {
	command string
	script  string
	logger  *slog.Logger
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{
		command: "python3",
		script:  "crew_main.py",
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Run launches the pipeline and blocks until it terminates. Stdout and
// stderr are streamed line by line into the structured log. A non-zero exit
// is returned as an error alongside a Result carrying the exit code, so the
// caller can still scan for whatever artifacts a partial run produced.
func (c *CLI) Run(ctx context.Context, opts Options) (Result, error) {
	if opts.Turns <= 0 {
		return Result{}, errors.New("turn count must be positive")
	}

	args := buildArgs(c.script, opts)
	cmd := commandContext(ctx, c.command, args...) //nolint:gosec
	cmd.Dir = strings.TrimSpace(opts.WorkDir)
	cmd.Env = buildEnv(opts)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{}, fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	started := time.Now()
	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("start pipeline: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		c.logger.Info(line, logging.String(logging.FieldComponent, "pipeline"))
	}
	if err := scanner.Err(); err != nil {
		_ = cmd.Wait()
		return Result{Duration: time.Since(started)}, fmt.Errorf("read pipeline output: %w", err)
	}

	waitErr := cmd.Wait()
	result := Result{Duration: time.Since(started)}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
		}
		return result, fmt.Errorf("pipeline run failed: %w", waitErr)
	}
	return result, nil
}

// buildArgs constructs the pipeline command line from run options.
func buildArgs(script string, opts Options) []string {
	args := make([]string, 0, 8)
	args = append(args, script,
		"--turns", strconv.Itoa(opts.Turns),
	)
	if model := strings.TrimSpace(opts.STTModel); model != "" {
		args = append(args, "--stt-model", model)
	}
	if backend := strings.TrimSpace(opts.TTSBackend); backend != "" {
		args = append(args, "--tts-backend", backend)
	}
	if opts.Phonikud {
		args = append(args, "--phonikud")
	}
	return args
}

// buildEnv derives the child environment from explicit options. The launcher
// never forwards its own CW_STT_FORCE_MOCK or OPENAI_API_KEY values blindly;
// the Options struct is the single source of truth for a run.
func buildEnv(opts Options) []string {
	env := os.Environ()
	env = append(env, "CW_STT_FORCE_MOCK="+boolEnv(opts.MockSTT))
	if key := strings.TrimSpace(opts.APIKey); key != "" {
		env = append(env, "OPENAI_API_KEY="+key, "CW_CS_USE_OPENAI=1")
	} else {
		env = append(env, "CW_CS_USE_OPENAI=0")
	}
	return env
}

func boolEnv(value bool) string {
	if value {
		return "1"
	}
	return "0"
}

var _ Client = (*CLI)(nil)
