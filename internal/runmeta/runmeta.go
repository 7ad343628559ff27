// Package runmeta reads the metadata files the pipeline writes alongside its
// audio and transcript artifacts. Everything here is read-only; the pipeline
// owns these files and their schema.
package runmeta

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"stagehand/internal/artifacts"
)

// RunMetaPattern matches the per-run metadata files under outputs/metadata.
const RunMetaPattern = "run_meta_*.json"

// Turn captures one conversation turn as recorded by the pipeline.
type Turn struct {
	Turn        int    `json:"turn"`
	ClientText  string `json:"client_text"`
	Timestamp   string `json:"ts"`
	ClientAudio string `json:"client_audio"`
	AgentAudio  string `json:"agent_audio"`
	STTText     string `json:"stt_text"`
	CSAction    string `json:"cs_action"`
	EndTS       string `json:"end_ts"`
}

// RunMeta mirrors the pipeline's run_meta_*.json payload.
type RunMeta struct {
	StartedAt       string `json:"started_at"`
	FinishedAt      string `json:"finished_at"`
	MaxTurns        int    `json:"max_turns"`
	STTModel        string `json:"stt_model"`
	TTSBackend      string `json:"tts_backend"`
	UseRealPhonikud bool   `json:"use_real_phonikud"`
	Turns           []Turn `json:"turns"`
}

// Duration returns the wall-clock span of the run when both timestamps parse.
func (m *RunMeta) Duration() (time.Duration, bool) {
	started, err := parseTimestamp(m.StartedAt)
	if err != nil {
		return 0, false
	}
	finished, err := parseTimestamp(m.FinishedAt)
	if err != nil {
		return 0, false
	}
	if finished.Before(started) {
		return 0, false
	}
	return finished.Sub(started), true
}

// ArtifactsIndex mirrors the pipeline's artifacts_index.json. Null entries
// mean the run did not produce that artifact.
type ArtifactsIndex struct {
	TranscriptJSON string  `json:"transcript_json"`
	Logs           string  `json:"logs"`
	RunMeta        string  `json:"run_meta"`
	StitchedAudio  *string `json:"stitched_audio"`
	SRT            *string `json:"srt"`
}

// LoadRunMeta parses a run_meta_*.json file.
func LoadRunMeta(path string) (*RunMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var meta RunMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse run metadata: %w", err)
	}
	return &meta, nil
}

// LoadArtifactsIndex parses an artifacts_index.json file.
func LoadArtifactsIndex(path string) (*ArtifactsIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var index ArtifactsIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("parse artifacts index: %w", err)
	}
	return &index, nil
}

// FindLatestRunMeta locates and parses the newest run metadata file under
// the given metadata directory. Returns (nil, nil) when none exists yet.
func FindLatestRunMeta(metadataDir string) (*RunMeta, string, error) {
	found, err := artifacts.FindLatest(metadataDir, RunMetaPattern, false)
	if err != nil {
		return nil, "", err
	}
	if found == nil {
		return nil, "", nil
	}
	meta, err := LoadRunMeta(found.Path)
	if err != nil {
		return nil, found.Path, err
	}
	return meta, found.Path, nil
}

func parseTimestamp(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}
