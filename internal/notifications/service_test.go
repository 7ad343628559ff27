package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stagehand/internal/config"
	"stagehand/internal/notifications"
)

type captured struct {
	title    string
	priority string
	body     string
}

func newTestService(t *testing.T, sink *[]captured) notifications.Service {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*sink = append(*sink, captured{
			title:    r.Header.Get("Title"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	return notifications.NewService(&cfg)
}

func TestNotifyRunCompleted(t *testing.T) {
	var sink []captured
	service := newTestService(t, &sink)

	err := service.NotifyRunCompleted(context.Background(), "3f2c1d00-0000-0000-0000-000000000000", 7, 95*time.Second)
	if err != nil {
		t.Fatalf("NotifyRunCompleted returned error: %v", err)
	}
	if len(sink) != 1 {
		t.Fatalf("expected one request, got %d", len(sink))
	}
	if sink[0].title != "Stagehand - Run Complete" {
		t.Fatalf("unexpected title: %q", sink[0].title)
	}
	for _, want := range []string{"3f2c1d00", "7 artifacts", "1m35s"} {
		if !strings.Contains(sink[0].body, want) {
			t.Fatalf("expected body to contain %q, got %q", want, sink[0].body)
		}
	}
}

func TestNotifyRunFailedUsesHighPriority(t *testing.T) {
	var sink []captured
	service := newTestService(t, &sink)

	err := service.NotifyRunFailed(context.Background(), "abc-123", errors.New("exit status 1"))
	if err != nil {
		t.Fatalf("NotifyRunFailed returned error: %v", err)
	}
	if sink[0].priority != "high" {
		t.Fatalf("expected high priority, got %q", sink[0].priority)
	}
	if !strings.Contains(sink[0].body, "exit status 1") {
		t.Fatalf("expected failure detail, got %q", sink[0].body)
	}
}

func TestDisabledEventsAreSkipped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("expected no request for disabled event")
	}))
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.RunCompleted = false
	service := notifications.NewService(&cfg)

	if err := service.NotifyRunCompleted(context.Background(), "x", 1, time.Second); err != nil {
		t.Fatalf("expected silent skip, got %v", err)
	}
}

func TestNoopServiceWithoutTopic(t *testing.T) {
	cfg := config.Default()
	service := notifications.NewService(&cfg)
	if err := service.TestNotification(context.Background()); err != nil {
		t.Fatalf("expected noop service, got %v", err)
	}
}

func TestServerErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic over quota", http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	service := notifications.NewService(&cfg)

	if err := service.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error from 429 response")
	}
}
