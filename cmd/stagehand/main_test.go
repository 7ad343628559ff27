package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stagehand/internal/config"
	"stagehand/internal/logging"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	outputDir  string
	logDir     string
	scriptPath string
}

// setupCLITestEnv writes a config pointing at temp directories and a stub
// pipeline script that fabricates the output tree a real run would produce.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		outputDir:  filepath.Join(base, "outputs"),
		logDir:     filepath.Join(base, "logs"),
		scriptPath: filepath.Join(base, "pipeline.sh"),
	}

	script := `mkdir -p outputs/transcripts outputs/audio outputs/metadata outputs/logs
printf 'RIFF' > "outputs/full_conversation_20250101_000000.wav"
printf 'RIFF' > "outputs/audio/client_1.wav"
printf '1\n00:00:01,000 --> 00:00:02,000\nhello there\n\n' > "outputs/transcripts/transcript_1.srt"
printf 'pipeline started\n' > "outputs/logs/run_1.log"
exit ${STAGEHAND_STUB_EXIT:-0}
`
	if err := os.WriteFile(env.scriptPath, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub pipeline: %v", err)
	}

	content := fmt.Sprintf(`[paths]
output_dir = %q
log_dir = %q

[runner]
command = "sh"
script = %q
work_dir = %q
turns = 2
stt_model = "tiny"
tts_backend = "mock"

[open]
enabled = false

[logging]
format = "json"
level = "info"
`, env.outputDir, env.logDir, env.scriptPath, base)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func TestArtifactsListEmpty(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"artifacts", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("artifacts list: %v", err)
	}
	requireContains(t, out, "No artifacts found")
}

func TestArtifactsListAndLatest(t *testing.T) {
	env := setupCLITestEnv(t)
	transcripts := filepath.Join(env.outputDir, "transcripts")
	if err := os.MkdirAll(transcripts, 0o755); err != nil {
		t.Fatalf("create transcripts dir: %v", err)
	}
	audioPath := filepath.Join(env.outputDir, "full_conversation_20250101_120000.wav")
	if err := os.WriteFile(audioPath, []byte("RIFF"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	srtPath := filepath.Join(transcripts, "transcript_1.srt")
	srt := "1\n00:00:01,000 --> 00:00:02,500\nhello\n\n2\n00:00:03,000 --> 00:00:04,000\nworld\n"
	if err := os.WriteFile(srtPath, []byte(srt), 0o644); err != nil {
		t.Fatalf("write srt: %v", err)
	}

	out, _, err := runCLI(t, []string{"artifacts", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("artifacts list: %v", err)
	}
	requireContains(t, out, audioPath)
	requireContains(t, out, srtPath)
	requireContains(t, out, "stitched-audio")

	out, _, err = runCLI(t, []string{"artifacts", "latest", "--kind", "audio"}, env.configPath)
	if err != nil {
		t.Fatalf("artifacts latest audio: %v", err)
	}
	requireContains(t, out, audioPath)

	out, _, err = runCLI(t, []string{"artifacts", "latest", "--kind", "subtitle"}, env.configPath)
	if err != nil {
		t.Fatalf("artifacts latest subtitle: %v", err)
	}
	requireContains(t, out, srtPath)
	requireContains(t, out, "2 cues")

	out, _, err = runCLI(t, []string{"artifacts", "latest", "--pattern", "*.flac"}, env.configPath)
	if err != nil {
		t.Fatalf("artifacts latest no match: %v", err)
	}
	requireContains(t, out, "No matching artifacts")
}

func TestArtifactsExport(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.MkdirAll(env.outputDir, 0o755); err != nil {
		t.Fatalf("create output dir: %v", err)
	}
	audioPath := filepath.Join(env.outputDir, "full_conversation_20250101_120000.wav")
	if err := os.WriteFile(audioPath, []byte("RIFFdata"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	dest := filepath.Join(env.baseDir, "exports")
	if err := os.MkdirAll(dest, 0o755); err != nil {
		t.Fatalf("create export dir: %v", err)
	}

	out, _, err := runCLI(t, []string{"artifacts", "export", dest}, env.configPath)
	if err != nil {
		t.Fatalf("artifacts export: %v", err)
	}
	requireContains(t, out, "Exported")

	exported := filepath.Join(dest, "full_conversation_20250101_120000.wav")
	data, err := os.ReadFile(exported)
	if err != nil {
		t.Fatalf("read exported file: %v", err)
	}
	if string(data) != "RIFFdata" {
		t.Fatalf("exported content mismatch: %q", data)
	}
}

func TestRunsListEmpty(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"runs", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("runs list: %v", err)
	}
	requireContains(t, out, "No runs recorded")
}

func TestRunCommandRecordsHistoryAndDiscovers(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"run"}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v\noutput:\n%s", err, out)
	}
	requireContains(t, out, "Starting run")
	requireContains(t, out, "Stitched audio:")
	requireContains(t, out, "full_conversation_20250101_000000.wav")
	requireContains(t, out, "transcript_1.srt")

	out, _, err = runCLI(t, []string{"runs", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("runs list after run: %v", err)
	}
	requireContains(t, out, "completed")
}

func TestRunSucceedsWithoutADesktopOpener(t *testing.T) {
	env := setupCLITestEnv(t)

	content := fmt.Sprintf(`[paths]
output_dir = %q
log_dir = %q

[runner]
command = "sh"
script = %q
work_dir = %q
turns = 2
stt_model = "tiny"
tts_backend = "mock"

[open]
enabled = true
command = "definitely-not-a-real-opener-binary"

[logging]
format = "json"
level = "info"
`, env.outputDir, env.logDir, env.scriptPath, env.baseDir)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	out, _, err := runCLI(t, []string{"run"}, env.configPath)
	if err != nil {
		t.Fatalf("run must not be gated on the opener: %v\noutput:\n%s", err, out)
	}
	requireContains(t, out, "Stitched audio:")
	requireContains(t, out, "full_conversation_20250101_000000.wav")
}

func TestRunCommandFailureStillDiscovers(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Setenv("STAGEHAND_STUB_EXIT", "3")

	out, _, err := runCLI(t, []string{"run"}, env.configPath)
	if err == nil {
		t.Fatal("expected run to surface the pipeline failure")
	}
	requireContains(t, out, "Pipeline exited with code 3")
	requireContains(t, out, "full_conversation_20250101_000000.wav")

	out, _, err = runCLI(t, []string{"runs", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("runs list after failed run: %v", err)
	}
	requireContains(t, out, "failed")
}

func TestLocateRunOutputsSurvivesUnreadableTranscripts(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions do not bind root")
	}

	cfg := config.Default()
	cfg.Paths.OutputDir = t.TempDir()

	audioPath := filepath.Join(cfg.Paths.OutputDir, "full_conversation_20250101_000000.wav")
	if err := os.WriteFile(audioPath, []byte("RIFF"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	transcripts := cfg.TranscriptsDir()
	if err := os.MkdirAll(transcripts, 0o755); err != nil {
		t.Fatalf("create transcripts dir: %v", err)
	}
	if err := os.Chmod(transcripts, 0o000); err != nil {
		t.Fatalf("chmod transcripts dir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(transcripts, 0o755) })

	audio, subtitle := locateRunOutputs(&cfg, logging.NewNop())
	if audio == nil || audio.Path != audioPath {
		t.Fatalf("expected stitched audio despite unreadable transcripts, got %+v", audio)
	}
	if subtitle != nil {
		t.Fatalf("expected no subtitle from an unreadable directory, got %+v", subtitle)
	}
}

func TestRunsShow(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"run"}, env.configPath); err != nil {
		t.Fatalf("run: %v", err)
	}

	out, _, err := runCLI(t, []string{"runs", "show", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("runs show: %v", err)
	}
	requireContains(t, out, "Status:     completed")
	requireContains(t, out, "Turns:      2")
	requireContains(t, out, "Audio:")
}

func TestLogsCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.MkdirAll(env.logDir, 0o755); err != nil {
		t.Fatalf("create log dir: %v", err)
	}
	logPath := filepath.Join(env.logDir, "stagehand.log")
	if err := os.WriteFile(logPath, []byte("first\nsecond\nthird\n"), 0o644); err != nil {
		t.Fatalf("write log file: %v", err)
	}

	out, _, err := runCLI(t, []string{"logs", "--lines", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "second")
	requireContains(t, out, "third")
	if strings.Contains(out, "first") {
		t.Fatalf("expected only trailing lines, got:\n%s", out)
	}
}

func TestStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v\noutput:\n%s", err, out)
	}
	requireContains(t, out, "Stagehand Status")
	requireContains(t, out, "Output root")
	requireContains(t, out, "Run history")
}
