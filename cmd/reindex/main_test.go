package main

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/letmevibethatforyou/seal/algolia"
)

func TestLogProgress(t *testing.T) {
	var logs bytes.Buffer
	progress := logProgress(context.Background(), slog.New(slog.NewTextHandler(&logs, nil)), 2)

	for count := 1; count <= 5; count++ {
		progress("complex", count, 5)
	}

	lines := strings.Split(strings.TrimSpace(logs.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 progress lines, got %d: %s", len(lines), logs.String())
	}
	if !strings.Contains(lines[2], "count=5") {
		t.Errorf("Expected final count to be logged, got %s", lines[2])
	}
}

func TestLogProgressEveryDocument(t *testing.T) {
	var logs bytes.Buffer
	progress := logProgress(context.Background(), slog.New(slog.NewTextHandler(&logs, nil)), 0)

	progress("simple", 1, -1)
	progress("simple", 2, -1)

	if got := strings.Count(logs.String(), "Reindex progress"); got != 2 {
		t.Errorf("Expected 2 progress lines, got %d", got)
	}
}

func TestNewBackend(t *testing.T) {
	ctx := context.Background()
	secrets := func() algolia.FetchSecrets { return algolia.StaticSecrets("app", "key") }

	for _, name := range []string{"memory", "algolia"} {
		if _, err := newBackend(ctx, name, secrets); err != nil {
			t.Errorf("Expected %s backend, got %v", name, err)
		}
	}
	if _, err := newBackend(ctx, "elastic", secrets); err == nil {
		t.Error("Expected error for unknown backend")
	}
}
