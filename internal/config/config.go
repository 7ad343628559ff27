package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// OutputDir is the pipeline's output root. The pipeline creates and
	// populates it; stagehand only ever reads from it.
	OutputDir string `toml:"output_dir"`
	// LogDir holds stagehand's own log file and the run history database.
	LogDir string `toml:"log_dir"`
}

// Runner contains configuration for the external conversation pipeline.
type Runner struct {
	Command    string `toml:"command"`
	Script     string `toml:"script"`
	WorkDir    string `toml:"work_dir"`
	Turns      int    `toml:"turns"`
	STTModel   string `toml:"stt_model"`
	TTSBackend string `toml:"tts_backend"`
	Phonikud   bool   `toml:"phonikud"`
	// MockSTT forces the pipeline's deterministic mock speech-recognition
	// backend. Passed to the child process as CW_STT_FORCE_MOCK=1.
	MockSTT bool `toml:"mock_stt"`
	// APIKey is the hosted-LLM credential handed to the pipeline. When empty
	// the pipeline falls back to its scripted, non-networked responder.
	APIKey string `toml:"api_key"`
}

// Open contains configuration for opening artifacts after a run.
type Open struct {
	Enabled bool `toml:"enabled"`
	// Command overrides the host default opener (xdg-open, open, ...).
	Command string `toml:"command"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	RunCompleted   bool   `toml:"run_completed"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for stagehand.
//
// Configuration sections by subsystem:
//   - Paths: pipeline output root and stagehand's own log directory
//   - Runner: external conversation pipeline invocation
//   - Open: post-run artifact opening behaviour
//   - Notifications: ntfy push notification settings
//   - Logging: log format, level, and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	Runner        Runner        `toml:"runner"`
	Open          Open          `toml:"open"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/stagehand/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/stagehand/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("stagehand.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories stagehand itself owns. The
// pipeline's output root is deliberately left alone: a missing output
// directory is a valid empty state, and the pipeline creates it on first run.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.LogDir, err)
	}
	return nil
}

// TranscriptsDir returns the subtitle directory under the pipeline output root.
func (c *Config) TranscriptsDir() string {
	return filepath.Join(c.Paths.OutputDir, "transcripts")
}

// MetadataDir returns the run-metadata directory under the pipeline output root.
func (c *Config) MetadataDir() string {
	return filepath.Join(c.Paths.OutputDir, "metadata")
}

// PipelineLogsDir returns the pipeline's own log directory under the output root.
func (c *Config) PipelineLogsDir() string {
	return filepath.Join(c.Paths.OutputDir, "logs")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
