package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

const yamlCatalog = `default_model: fast
models:
  fast:
    provider: openai
    inference_profile: gpt-4o-mini
    direct: gpt-4o-mini-2024-07-18
    description: Small and quick
    speed: fast
  careful:
    inference_profile: claude-opus-4-0
    direct: claude-opus-4-0
    description: Slow and thorough
metadata:
  version: "2"
`

func TestParseCatalog_YAML(t *testing.T) {
	c, err := ParseCatalog([]byte(yamlCatalog))
	if err != nil {
		t.Fatalf("ParseCatalog error: %v", err)
	}
	if c.DefaultModel != "fast" {
		t.Errorf("DefaultModel = %q", c.DefaultModel)
	}
	if got := c.Names(); !reflect.DeepEqual(got, []string{"careful", "fast"}) {
		t.Errorf("Names = %v", got)
	}
	if c.Models["fast"].Speed != "fast" {
		t.Errorf("Speed = %q", c.Models["fast"].Speed)
	}
	if c.Metadata["version"] != "2" {
		t.Errorf("Metadata = %v", c.Metadata)
	}
}

func TestParseCatalog_JSON(t *testing.T) {
	data := `{"default_model":"m","models":{"m":{"inference_profile":"a","direct":"b","description":"d"}}}`
	c, err := ParseCatalog([]byte(data))
	if err != nil {
		t.Fatalf("ParseCatalog error: %v", err)
	}
	if got := c.Models["m"].IDs(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("IDs = %v", got)
	}
}

func TestParseCatalog_Invalid(t *testing.T) {
	tests := []struct {
		name, data, want string
	}{
		{"no models", "default_model: x\n", "models"},
		{"missing direct", "models:\n  m:\n    inference_profile: a\n    description: d\n", `"direct"`},
		{"missing description", "models:\n  m:\n    inference_profile: a\n    direct: b\n", `"description"`},
		{"unknown default", "default_model: nope\nmodels:\n  m: {inference_profile: a, direct: b, description: d}\n", "nope"},
		{"not yaml", "models: [", "invalid model catalog"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			var ce *CatalogError
			if !errors.As(err, &ce) {
				t.Errorf("error %T is not a *CatalogError", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should contain %q", err, tt.want)
			}
		})
	}
}

func TestCatalog_Resolve(t *testing.T) {
	c, err := ParseCatalog([]byte(yamlCatalog))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name         string
		wantProvider string
		wantIDs      []string
	}{
		{"", "openai", []string{"gpt-4o-mini", "gpt-4o-mini-2024-07-18"}},
		{"fast", "openai", []string{"gpt-4o-mini", "gpt-4o-mini-2024-07-18"}},
		{"careful", "anthropic", []string{"claude-opus-4-0"}},
		{"claude-3-7-sonnet-latest", "anthropic", []string{"claude-3-7-sonnet-latest"}},
	}
	for _, tt := range tests {
		provider, ids := c.Resolve(tt.name, "anthropic")
		if provider != tt.wantProvider || !reflect.DeepEqual(ids, tt.wantIDs) {
			t.Errorf("Resolve(%q) = %q %v, want %q %v", tt.name, provider, ids, tt.wantProvider, tt.wantIDs)
		}
	}
}

func TestDefaultCatalog_Valid(t *testing.T) {
	c := DefaultCatalog()
	if err := c.validate(); err != nil {
		t.Fatalf("default catalog invalid: %v", err)
	}
	if _, ok := c.Models[DefaultModel]; !ok {
		t.Errorf("default catalog lacks %q", DefaultModel)
	}

	data, err := c.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	back, err := ParseCatalog(data)
	if err != nil {
		t.Fatalf("marshalled default catalog does not parse: %v", err)
	}
	if !reflect.DeepEqual(back, c) {
		t.Error("default catalog changed across a YAML round trip")
	}
}

func TestCatalogCache_MissingFileUsesDefault(t *testing.T) {
	cc := NewCatalogCache(filepath.Join(t.TempDir(), "models.yaml"))
	c, err := cc.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if c.DefaultModel != DefaultModel {
		t.Errorf("DefaultModel = %q", c.DefaultModel)
	}

	c, err = NewCatalogCache("").Load()
	if err != nil || c.DefaultModel != DefaultModel {
		t.Errorf("empty path: %v %v", c, err)
	}
}

func TestCatalogCache_ReloadsOnlyWhenModified(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	if err := os.WriteFile(path, []byte(yamlCatalog), 0o644); err != nil {
		t.Fatal(err)
	}
	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	if err := os.Chtimes(path, base, base); err != nil {
		t.Fatal(err)
	}

	cc := NewCatalogCache(path)
	first, err := cc.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	// Rewrite with the same mtime: the cached value is kept.
	changed := strings.Replace(yamlCatalog, "default_model: fast", "default_model: careful", 1)
	if err := os.WriteFile(path, []byte(changed), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, base, base); err != nil {
		t.Fatal(err)
	}
	second, err := cc.Load()
	if err != nil {
		t.Fatal(err)
	}
	if second != first {
		t.Error("unchanged mtime should return the cached catalog")
	}

	// Move the mtime forward: the file is re-read.
	later := base.Add(time.Minute)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}
	third, err := cc.Load()
	if err != nil {
		t.Fatal(err)
	}
	if third.DefaultModel != "careful" {
		t.Errorf("DefaultModel = %q after reload, want careful", third.DefaultModel)
	}
}

func TestCatalogCache_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	if err := os.WriteFile(path, []byte("models: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := NewCatalogCache(path).Load()
	var ce *CatalogError
	if !errors.As(err, &ce) || ce.Path != path {
		t.Fatalf("err = %v, want *CatalogError for %s", err, path)
	}
}

func TestWriteCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "models.yaml")
	if err := WriteCatalog(path, DefaultCatalog()); err != nil {
		t.Fatalf("WriteCatalog error: %v", err)
	}
	c, err := NewCatalogCache(path).Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Models) != len(DefaultCatalog().Models) {
		t.Errorf("models = %d", len(c.Models))
	}
}

func TestDefaultCatalogPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	p, err := DefaultCatalogPath()
	if err != nil {
		t.Fatal(err)
	}
	if p != "/tmp/xdg/sitewatch/models.yaml" {
		t.Errorf("DefaultCatalogPath = %q", p)
	}
}
