package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "screenshots")
	s, err := New(dir)
	require.NoError(t, err)
	require.DirExists(t, dir)
	require.Equal(t, filepath.Join(dir, "a.png"), s.Path("a.png"))

	_, err = New("")
	require.Error(t, err)
}

func TestLoad_MissingMetadataIsEmpty(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	m, err := s.Load()
	require.NoError(t, err)
	require.Empty(t, m)

	names, err := s.Names()
	require.NoError(t, err)
	require.Empty(t, names)
}

func TestPutGet_RoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	b := Baseline{
		URL:       "https://example.com",
		File:      "example.com_baseline_abcd1234.png",
		Path:      s.Path("example.com_baseline_abcd1234.png"),
		Timestamp: "2026-10-15T09:30:00Z",
		Viewport:  Viewport{Width: 1920, Height: 1080},
	}
	require.NoError(t, s.Put("example.com", b))
	require.NoError(t, s.Put("blog.example.com", Baseline{URL: "https://blog.example.com"}))

	got, err := s.Get("example.com")
	require.NoError(t, err)
	require.Equal(t, b, got)

	names, err := s.Names()
	require.NoError(t, err)
	require.Equal(t, []string{"blog.example.com", "example.com"}, names)

	// Replacing keeps a single entry.
	b.File = "example.com_baseline_ffff0000.png"
	require.NoError(t, s.Put("example.com", b))
	got, err = s.Get("example.com")
	require.NoError(t, err)
	require.Equal(t, "example.com_baseline_ffff0000.png", got.File)
}

func TestMetadata_FileFormat(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Put("site", Baseline{
		URL: "https://site", File: "f.png", Path: "/tmp/f.png",
		Timestamp: "t", Viewport: Viewport{Width: 10, Height: 20},
	}))

	data, err := os.ReadFile(s.Path(metadataFile))
	require.NoError(t, err)

	var raw map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	entry := raw["site"]
	require.Equal(t, "https://site", entry["url"])
	require.Equal(t, "f.png", entry["baseline_file"])
	require.Equal(t, "/tmp/f.png", entry["baseline_path"])
	require.Equal(t, map[string]any{"width": float64(10), "height": float64(20)}, entry["viewport"])
}

func TestGet_Missing(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = s.Get("nope")
	require.True(t, errors.Is(err, ErrNoBaseline))
}

func TestLoad_CorruptMetadata(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(s.Path(metadataFile), []byte("{not json"), 0o644))

	_, err = s.Load()
	require.ErrorContains(t, err, metadataFile)
	require.Error(t, s.Put("x", Baseline{}))
}

func TestFilenames(t *testing.T) {
	ts := time.Unix(1760520600, 0)

	require.Regexp(t, regexp.MustCompile(`^example\.com_baseline_[0-9a-f]{8}\.png$`), BaselineFilename("example.com"))
	require.NotEqual(t, BaselineFilename("a"), BaselineFilename("a"))
	require.Equal(t, "example.com_current_1760520600.png", CurrentFilename("example.com", ts))
	require.Equal(t, "example.com_report_1760520600.json", ReportFilename("example.com", ts))
}

func TestSaveReport(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	report := map[string]any{"tool": "sitewatch", "has_changes": true}
	path, err := s.SaveReport("example.com", report, time.Unix(100, 0))
	require.NoError(t, err)
	require.Equal(t, s.Path("example.com_report_100.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, true, got["has_changes"])

	// No temp files left behind.
	entries, err := os.ReadDir(s.Dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
