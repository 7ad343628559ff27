package history

import "time"

// Status enumerates run lifecycle states.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Run is one recorded pipeline launch.
type Run struct {
	ID            int64      `json:"id"`
	RunID         string     `json:"run_id"`
	Status        Status     `json:"status"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
	ExitCode      *int       `json:"exit_code,omitempty"`
	Turns         int        `json:"turns"`
	STTModel      string     `json:"stt_model"`
	TTSBackend    string     `json:"tts_backend"`
	Phonikud      bool       `json:"phonikud"`
	MockSTT       bool       `json:"mock_stt"`
	ErrorMessage  string     `json:"error_message,omitempty"`
	AudioPath     string     `json:"audio_path,omitempty"`
	SubtitlePath  string     `json:"subtitle_path,omitempty"`
	ArtifactCount int        `json:"artifact_count"`
}

// Duration returns the recorded wall-clock span, or zero while running.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Outcome describes how a run finished, for Finish.
type Outcome struct {
	Status        Status
	ExitCode      *int
	ErrorMessage  string
	AudioPath     string
	SubtitlePath  string
	ArtifactCount int
}
