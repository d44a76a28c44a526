package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultModel is the catalog name used when no model is configured.
const DefaultModel = "claude-4-sonnet"

// Model is one catalog entry. InferenceProfile is tried first and Direct is
// the fallback when the profile is unavailable.
type Model struct {
	Provider         string `yaml:"provider,omitempty" json:"provider,omitempty"`
	InferenceProfile string `yaml:"inference_profile" json:"inference_profile"`
	Direct           string `yaml:"direct" json:"direct"`
	Description      string `yaml:"description" json:"description"`
	Speed            string `yaml:"speed,omitempty" json:"speed,omitempty"`
	Cost             string `yaml:"cost,omitempty" json:"cost,omitempty"`
	Quality          string `yaml:"quality,omitempty" json:"quality,omitempty"`
}

// IDs returns the model IDs to try in order, without duplicates.
func (m Model) IDs() []string {
	if m.Direct == "" || m.Direct == m.InferenceProfile {
		return []string{m.InferenceProfile}
	}
	return []string{m.InferenceProfile, m.Direct}
}

// Catalog maps short model names to provider model IDs.
type Catalog struct {
	DefaultModel string            `yaml:"default_model" json:"default_model"`
	Models       map[string]Model  `yaml:"models" json:"models"`
	Metadata     map[string]string `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// CatalogError reports an invalid catalog file.
type CatalogError struct {
	Path string
	Err  error
}

func (e *CatalogError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid model catalog: %v", e.Err)
	}
	return fmt.Sprintf("invalid model catalog %s: %v", e.Path, e.Err)
}

func (e *CatalogError) Unwrap() error { return e.Err }

// ParseCatalog decodes a catalog from YAML. JSON is valid YAML, so JSON
// catalogs are accepted as well.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, &CatalogError{Err: err}
	}
	if err := c.validate(); err != nil {
		return nil, &CatalogError{Err: err}
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	if len(c.Models) == 0 {
		return errors.New("catalog must contain a 'models' section")
	}
	for _, name := range c.Names() {
		m := c.Models[name]
		required := []struct{ field, value string }{
			{"inference_profile", m.InferenceProfile},
			{"direct", m.Direct},
			{"description", m.Description},
		}
		for _, r := range required {
			if r.value == "" {
				return fmt.Errorf("model %q missing required field %q", name, r.field)
			}
		}
	}
	if c.DefaultModel != "" {
		if _, ok := c.Models[c.DefaultModel]; !ok {
			return fmt.Errorf("default_model %q is not defined", c.DefaultModel)
		}
	}
	return nil
}

// Names returns the model names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.Models))
	for n := range c.Models {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Resolve maps name to a provider and the model IDs to try. An empty name
// uses the catalog default. A name missing from the catalog is taken as a
// literal model ID for fallbackProvider.
func (c *Catalog) Resolve(name, fallbackProvider string) (string, []string) {
	if name == "" {
		name = c.DefaultModel
	}
	m, ok := c.Models[name]
	if !ok {
		return fallbackProvider, []string{name}
	}
	provider := m.Provider
	if provider == "" {
		provider = fallbackProvider
	}
	return provider, m.IDs()
}

// Marshal encodes the catalog as YAML.
func (c *Catalog) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// DefaultCatalog returns the built-in catalog used when no catalog file exists.
func DefaultCatalog() *Catalog {
	return &Catalog{
		DefaultModel: DefaultModel,
		Models: map[string]Model{
			"claude-4-sonnet": {
				Provider:         "anthropic",
				InferenceProfile: "claude-sonnet-4-0",
				Direct:           "claude-sonnet-4-20250514",
				Description:      "Claude Sonnet 4, balanced accuracy and cost",
				Speed:            "medium", Cost: "medium", Quality: "high",
			},
			"claude-4-opus": {
				Provider:         "anthropic",
				InferenceProfile: "claude-opus-4-0",
				Direct:           "claude-opus-4-20250514",
				Description:      "Claude Opus 4, most thorough analysis",
				Speed:            "slow", Cost: "high", Quality: "highest",
			},
			"claude-3-5-haiku": {
				Provider:         "anthropic",
				InferenceProfile: "claude-3-5-haiku-latest",
				Direct:           "claude-3-5-haiku-20241022",
				Description:      "Claude 3.5 Haiku, fast and cheap",
				Speed:            "fast", Cost: "low", Quality: "good",
			},
			"gpt-4o": {
				Provider:         "openai",
				InferenceProfile: "gpt-4o",
				Direct:           "gpt-4o-2024-11-20",
				Description:      "OpenAI GPT-4o vision",
				Speed:            "fast", Cost: "medium", Quality: "high",
			},
			"gemini-2.5-flash": {
				Provider:         "gemini",
				InferenceProfile: "gemini-2.5-flash",
				Direct:           "gemini-2.5-flash",
				Description:      "Google Gemini 2.5 Flash",
				Speed:            "fast", Cost: "low", Quality: "good",
			},
		},
		Metadata: map[string]string{
			"version":      "1",
			"last_updated": "2025-10-01",
		},
	}
}

// CatalogCache loads a catalog file and keeps the parsed result until the
// file's modification time moves forward.
type CatalogCache struct {
	path string

	mu      sync.Mutex
	catalog *Catalog
	modTime time.Time
}

// NewCatalogCache returns a cache for the catalog at path. An empty path
// always yields the built-in catalog.
func NewCatalogCache(path string) *CatalogCache {
	return &CatalogCache{path: path}
}

// Path returns the catalog file location.
func (c *CatalogCache) Path() string { return c.path }

// Load returns the current catalog, re-reading the file only when it has
// been modified since the last read. A missing file yields DefaultCatalog.
func (c *CatalogCache) Load() (*Catalog, error) {
	if c.path == "" {
		return DefaultCatalog(), nil
	}
	info, err := os.Stat(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultCatalog(), nil
		}
		return nil, fmt.Errorf("checking model catalog: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.catalog != nil && !info.ModTime().After(c.modTime) {
		return c.catalog, nil
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("reading model catalog: %w", err)
	}
	cat, err := ParseCatalog(data)
	if err != nil {
		var ce *CatalogError
		if errors.As(err, &ce) {
			ce.Path = c.path
		}
		return nil, err
	}
	c.catalog = cat
	c.modTime = info.ModTime()
	return cat, nil
}

// DefaultCatalogPath returns the catalog location inside the config directory.
func DefaultCatalogPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "models.yaml"), nil
}

// WriteCatalog writes c to path as YAML, creating parent directories.
func WriteCatalog(path string, c *Catalog) error {
	data, err := c.Marshal()
	if err != nil {
		return fmt.Errorf("encoding model catalog: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating catalog directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
