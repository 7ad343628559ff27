package config

import (
	"errors"
	"fmt"
	"strings"
)

var knownTTSBackends = map[string]struct{}{
	"auto":    {},
	"mock":    {},
	"pyttsx3": {},
	"gtts":    {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateRunner(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateRunner() error {
	if c.Runner.Command == "" {
		return errors.New("runner.command must be set")
	}
	if c.Runner.Script == "" {
		return errors.New("runner.script must be set")
	}
	if c.Runner.Turns <= 0 {
		return errors.New("runner.turns must be positive")
	}
	if c.Runner.STTModel == "" {
		return errors.New("runner.stt_model must be set")
	}
	if _, ok := knownTTSBackends[c.Runner.TTSBackend]; !ok {
		return fmt.Errorf("runner.tts_backend %q is not supported (use auto, mock, pyttsx3, or gtts)", c.Runner.TTSBackend)
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}
