package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_ConsoleOnly(t *testing.T) {
	var buf bytes.Buffer
	log, closeFn, err := NewWithWriter(&buf, "warn", "")
	if err != nil {
		t.Fatal(err)
	}
	defer closeFn()

	log.Info("hidden")
	log.Warn("shown", "component", "test")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record leaked at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "component=test") {
		t.Errorf("missing warn record: %q", out)
	}
}

func TestNew_FileGetsJSONAtDebug(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "sitewatch.log")
	log, closeFn, err := NewWithWriter(&buf, "info", path)
	if err != nil {
		t.Fatal(err)
	}

	log.With("component", "engine").Debug("tile analyzed", "index", 2)
	log.Info("done")
	if err := closeFn(); err != nil {
		t.Fatal(err)
	}

	if strings.Contains(buf.String(), "tile analyzed") {
		t.Error("debug record should not reach the console at info level")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("log file has %d lines, want 2: %q", len(lines), data)
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("first line is not JSON: %v", err)
	}
	if rec["msg"] != "tile analyzed" || rec["component"] != "engine" || rec["index"] != float64(2) {
		t.Errorf("unexpected record: %v", rec)
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, _, err := New("loud", ""); err == nil {
		t.Error("expected error for unknown level")
	}
}
