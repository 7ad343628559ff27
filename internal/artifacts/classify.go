package artifacts

import (
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind classifies an artifact by the pipeline's output contract.
type Kind string

const (
	KindStitchedAudio Kind = "stitched-audio"
	KindTurnAudio     Kind = "turn-audio"
	KindSubtitle      Kind = "subtitle"
	KindTranscript    Kind = "transcript"
	KindLog           Kind = "log"
	KindMetadata      Kind = "metadata"
	KindOther         Kind = "other"
)

// Naming patterns for the two artifacts a run surfaces directly.
const (
	StitchedAudioPattern = "full_conversation_*.wav"
	SubtitlePattern      = "*.srt"
)

// Classify derives an artifact kind from its path within the output root.
// The pipeline partitions outputs by subdirectory (audio, transcripts, logs,
// metadata) and by naming convention for the stitched session audio.
func Classify(artifactPath string) Kind {
	base := filepath.Base(artifactPath)
	dir := filepath.Base(filepath.Dir(artifactPath))

	if ok, _ := path.Match(StitchedAudioPattern, base); ok {
		return KindStitchedAudio
	}
	if strings.EqualFold(filepath.Ext(base), ".srt") {
		return KindSubtitle
	}

	switch dir {
	case "audio":
		if strings.EqualFold(filepath.Ext(base), ".wav") {
			return KindTurnAudio
		}
	case "transcripts":
		return KindTranscript
	case "logs":
		return KindLog
	case "metadata":
		return KindMetadata
	}
	return KindOther
}

// DisplayTitle renders a human-readable label for an artifact, derived from
// its basename: extension stripped, separators spaced, title-cased.
func DisplayTitle(artifactPath string) string {
	base := filepath.Base(artifactPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = strings.NewReplacer("_", " ", "-", " ").Replace(stem)
	stem = strings.Join(strings.Fields(stem), " ")
	if stem == "" {
		return base
	}
	return cases.Title(language.Und).String(stem)
}
