package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeRunner(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeOpen()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		// The pipeline writes outputs/ under its working directory.
		c.Paths.OutputDir = filepath.Join(c.Runner.WorkDir, defaultOutputDirName)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeRunner() error {
	var err error
	c.Runner.Command = strings.TrimSpace(c.Runner.Command)
	if c.Runner.Command == "" {
		c.Runner.Command = defaultRunnerCommand
	}
	c.Runner.Script = strings.TrimSpace(c.Runner.Script)
	if c.Runner.Script == "" {
		c.Runner.Script = defaultRunnerScript
	}
	if strings.TrimSpace(c.Runner.WorkDir) == "" {
		c.Runner.WorkDir = defaultWorkDir
	}
	if c.Runner.WorkDir, err = expandPath(c.Runner.WorkDir); err != nil {
		return fmt.Errorf("runner.work_dir: %w", err)
	}
	if c.Runner.Turns <= 0 {
		c.Runner.Turns = defaultRunnerTurns
	}
	c.Runner.STTModel = strings.ToLower(strings.TrimSpace(c.Runner.STTModel))
	if c.Runner.STTModel == "" {
		c.Runner.STTModel = defaultSTTModel
	}
	c.Runner.TTSBackend = strings.ToLower(strings.TrimSpace(c.Runner.TTSBackend))
	if c.Runner.TTSBackend == "" {
		c.Runner.TTSBackend = defaultTTSBackend
	}
	c.Runner.APIKey = strings.TrimSpace(c.Runner.APIKey)
	if c.Runner.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.Runner.APIKey = strings.TrimSpace(value)
		}
	}
	if !c.Runner.MockSTT {
		if value, ok := os.LookupEnv("CW_STT_FORCE_MOCK"); ok {
			c.Runner.MockSTT = isTruthy(value)
		}
	}
	return nil
}

func (c *Config) normalizeOpen() {
	c.Open.Command = strings.TrimSpace(c.Open.Command)
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

// isTruthy mirrors the pipeline's own env parsing: 1, true, and yes enable.
func isTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
