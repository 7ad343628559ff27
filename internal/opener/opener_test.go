package opener

import (
	"runtime"
	"testing"
)

func setStartRecorder(t *testing.T) *[][]string {
	t.Helper()
	captured := &[][]string{}
	original := startCommand
	startCommand = func(name string, args ...string) error {
		*captured = append(*captured, append([]string{name}, args...))
		return nil
	}
	t.Cleanup(func() { startCommand = original })
	return captured
}

func TestOpenUsesConfiguredCommand(t *testing.T) {
	captured := setStartRecorder(t)

	o := New(WithCommand("mpv"))
	if err := o.Open("/outputs/full_conversation_x.wav"); err != nil {
		t.Fatalf("Open returned error: %v", err)
	}

	calls := *captured
	if len(calls) != 1 {
		t.Fatalf("expected one start call, got %d", len(calls))
	}
	if calls[0][0] != "mpv" || calls[0][1] != "/outputs/full_conversation_x.wav" {
		t.Fatalf("unexpected invocation: %v", calls[0])
	}
}

func TestOpenRequiresPath(t *testing.T) {
	o := New(WithCommand("mpv"))
	if err := o.Open("  "); err == nil {
		t.Fatal("expected error for blank path")
	}
}

func TestNewPicksPlatformDefault(t *testing.T) {
	o := New()
	switch runtime.GOOS {
	case "linux":
		if o.Command() != "xdg-open" {
			t.Fatalf("expected xdg-open on linux, got %q", o.Command())
		}
	case "darwin":
		if o.Command() != "open" {
			t.Fatalf("expected open on darwin, got %q", o.Command())
		}
	}
}

func TestOpenFailsWithoutOpener(t *testing.T) {
	o := &Opener{}
	if err := o.Open("/tmp/x.wav"); err == nil {
		t.Fatal("expected error when no opener is available")
	}
}
