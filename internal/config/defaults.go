package config

const (
	defaultWorkDir             = "."
	defaultLogDir              = "~/.local/share/stagehand/logs"
	defaultLogRetentionDays    = 60
	defaultRunnerCommand       = "python3"
	defaultRunnerScript        = "crew_main.py"
	defaultRunnerTurns         = 3
	defaultSTTModel            = "tiny"
	defaultTTSBackend          = "auto"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultNotifyTimeout       = 10
	defaultOutputDirName       = "outputs"
	defaultOpenEnabled         = true
	defaultNotifyRunCompleted  = true
	defaultNotifyErrorsEnabled = true
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Runner: Runner{
			Command:    defaultRunnerCommand,
			Script:     defaultRunnerScript,
			WorkDir:    defaultWorkDir,
			Turns:      defaultRunnerTurns,
			STTModel:   defaultSTTModel,
			TTSBackend: defaultTTSBackend,
		},
		Open: Open{
			Enabled: defaultOpenEnabled,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			RunCompleted:   defaultNotifyRunCompleted,
			Errors:         defaultNotifyErrorsEnabled,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
