package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config represents the sitewatch configuration.
type Config struct {
	Provider   string          `json:"provider"`
	Model      string          `json:"model"`
	ModelsFile string          `json:"modelsFile,omitempty"`
	StorageDir string          `json:"storageDir"`
	Format     string          `json:"format"`
	FailOn     string          `json:"failOn"`
	Viewport   ViewportConfig  `json:"viewport"`
	Tiling     TilingConfig    `json:"tiling"`
	Cache      CacheConfig     `json:"cache"`
	Artifacts  ArtifactsConfig `json:"artifacts"`
	Log        LogConfig       `json:"log"`
}

// ViewportConfig is the browser window used for captures.
type ViewportConfig struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// TilingConfig controls how oversized screenshots are split. A zero
// TileHeight picks settings from the image height.
type TilingConfig struct {
	MaxWidth    int    `json:"maxWidth"`
	MaxHeight   int    `json:"maxHeight"`
	TileHeight  int    `json:"tileHeight"`
	Overlap     int    `json:"overlap"`
	Concurrency int    `json:"concurrency"`
	TempDir     string `json:"tempDir,omitempty"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled    bool   `json:"enabled"`
	Dir        string `json:"dir,omitempty"`
	TTLSeconds int    `json:"ttlSeconds"`
}

// ArtifactsConfig configures optional upload of screenshots and reports to
// S3-compatible storage.
type ArtifactsConfig struct {
	Enabled   bool   `json:"enabled"`
	Endpoint  string `json:"endpoint,omitempty"`
	Region    string `json:"region,omitempty"`
	Bucket    string `json:"bucket,omitempty"`
	AccessKey string `json:"accessKey,omitempty"`
	SecretKey string `json:"secretKey,omitempty"`
	UseSSL    bool   `json:"useSSL"`
}

// LogConfig selects the log level and an optional JSON log file.
type LogConfig struct {
	Level string `json:"level"`
	File  string `json:"file,omitempty"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Provider:   "anthropic",
		Model:      DefaultModel,
		StorageDir: "screenshots",
		Format:     "text",
		FailOn:     "none",
		Viewport:   ViewportConfig{Width: 1920, Height: 1080},
		Tiling: TilingConfig{
			MaxWidth:    4096,
			MaxHeight:   4000,
			Concurrency: 4,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 86400,
		},
		Artifacts: ArtifactsConfig{
			Region: "us-east-1",
			Bucket: "sitewatch",
		},
		Log: LogConfig{Level: "info"},
	}
}

// ConfigDir returns the platform-appropriate config directory for sitewatch.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "sitewatch"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "sitewatch"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "sitewatch"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "sitewatch"), nil
	default:
		return filepath.Join(home, ".config", "sitewatch"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile returns the defaults overlaid with the config file. Keys absent
// from the file keep their default, so a file may switch a bool off.
func LoadFile() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

// LoadDotEnv loads KEY=value pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are skipped. With no arguments it reads ./.env.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("checking %s: %w", p, err)
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags and uses the same keys as SetField.
func Load(overrides map[string]string) (Config, error) {
	cfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	if err := mergeEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envKeys maps environment variables to config keys.
var envKeys = []struct{ env, key string }{
	{"SITEWATCH_PROVIDER", "provider"},
	{"SITEWATCH_MODEL", "model"},
	{"SITEWATCH_MODELS_FILE", "modelsFile"},
	{"SITEWATCH_STORAGE_DIR", "storageDir"},
	{"SITEWATCH_FORMAT", "format"},
	{"SITEWATCH_FAIL_ON", "failOn"},
	{"SITEWATCH_VIEWPORT_WIDTH", "viewport.width"},
	{"SITEWATCH_VIEWPORT_HEIGHT", "viewport.height"},
	{"SITEWATCH_TILE_HEIGHT", "tiling.tileHeight"},
	{"SITEWATCH_TILE_OVERLAP", "tiling.overlap"},
	{"SITEWATCH_CONCURRENCY", "tiling.concurrency"},
	{"SITEWATCH_TILE_DIR", "tiling.tempDir"},
	{"SITEWATCH_CACHE_DIR", "cache.dir"},
	{"SITEWATCH_ARTIFACTS_ENDPOINT", "artifacts.endpoint"},
	{"SITEWATCH_ARTIFACTS_BUCKET", "artifacts.bucket"},
	{"SITEWATCH_ARTIFACTS_ACCESS_KEY", "artifacts.accessKey"},
	{"SITEWATCH_ARTIFACTS_SECRET_KEY", "artifacts.secretKey"},
	{"SITEWATCH_LOG_LEVEL", "log.level"},
	{"SITEWATCH_LOG_FILE", "log.file"},
}

func mergeEnv(cfg *Config) error {
	for _, e := range envKeys {
		v := os.Getenv(e.env)
		if v == "" {
			continue
		}
		if err := SetField(cfg, e.key, v); err != nil {
			return fmt.Errorf("%s: %w", e.env, err)
		}
	}
	return nil
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := overrides[k]
		if v == "" {
			continue
		}
		if err := SetField(cfg, k, v); err != nil {
			return err
		}
	}
	return nil
}

// Keys lists every key accepted by SetField.
func Keys() []string {
	return []string{
		"provider", "model", "modelsFile", "storageDir", "format", "failOn",
		"viewport.width", "viewport.height",
		"tiling.maxWidth", "tiling.maxHeight", "tiling.tileHeight", "tiling.overlap",
		"tiling.concurrency", "tiling.tempDir",
		"cache.enabled", "cache.dir", "cache.ttlSeconds",
		"artifacts.enabled", "artifacts.endpoint", "artifacts.region", "artifacts.bucket",
		"artifacts.accessKey", "artifacts.secretKey", "artifacts.useSSL",
		"log.level", "log.file",
	}
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "modelsFile":
		cfg.ModelsFile = value
	case "storageDir":
		cfg.StorageDir = value
	case "format":
		cfg.Format = value
	case "failOn":
		cfg.FailOn = value
	case "viewport.width":
		return setInt(&cfg.Viewport.Width, key, value)
	case "viewport.height":
		return setInt(&cfg.Viewport.Height, key, value)
	case "tiling.maxWidth":
		return setInt(&cfg.Tiling.MaxWidth, key, value)
	case "tiling.maxHeight":
		return setInt(&cfg.Tiling.MaxHeight, key, value)
	case "tiling.tileHeight":
		return setInt(&cfg.Tiling.TileHeight, key, value)
	case "tiling.overlap":
		return setInt(&cfg.Tiling.Overlap, key, value)
	case "tiling.concurrency":
		return setInt(&cfg.Tiling.Concurrency, key, value)
	case "tiling.tempDir":
		cfg.Tiling.TempDir = value
	case "cache.enabled":
		return setBool(&cfg.Cache.Enabled, key, value)
	case "cache.dir":
		cfg.Cache.Dir = value
	case "cache.ttlSeconds":
		return setInt(&cfg.Cache.TTLSeconds, key, value)
	case "artifacts.enabled":
		return setBool(&cfg.Artifacts.Enabled, key, value)
	case "artifacts.endpoint":
		cfg.Artifacts.Endpoint = value
	case "artifacts.region":
		cfg.Artifacts.Region = value
	case "artifacts.bucket":
		cfg.Artifacts.Bucket = value
	case "artifacts.accessKey":
		cfg.Artifacts.AccessKey = value
	case "artifacts.secretKey":
		cfg.Artifacts.SecretKey = value
	case "artifacts.useSSL":
		return setBool(&cfg.Artifacts.UseSSL, key, value)
	case "log.level":
		cfg.Log.Level = value
	case "log.file":
		cfg.Log.File = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func setInt(dst *int, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s must be an integer: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%s must be true or false: %w", key, err)
	}
	*dst = b
	return nil
}

var (
	validFormats = []string{"text", "json", "markdown"}
	validFailOn  = []string{"none", "minor", "moderate", "major", "critical", "unknown"}
	validLevels  = []string{"debug", "info", "warn", "error"}
)

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if !contains(validFormats, c.Format) {
		errs = append(errs, fmt.Errorf("format must be one of %s, got %q", strings.Join(validFormats, ", "), c.Format))
	}
	if !contains(validFailOn, strings.ToLower(c.FailOn)) {
		errs = append(errs, fmt.Errorf("failOn must be one of %s, got %q", strings.Join(validFailOn, ", "), c.FailOn))
	}
	if !contains(validLevels, strings.ToLower(c.Log.Level)) {
		errs = append(errs, fmt.Errorf("log.level must be one of %s, got %q", strings.Join(validLevels, ", "), c.Log.Level))
	}
	if c.StorageDir == "" {
		errs = append(errs, errors.New("storageDir must not be empty"))
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		errs = append(errs, fmt.Errorf("viewport must be positive, got %dx%d", c.Viewport.Width, c.Viewport.Height))
	}
	t := c.Tiling
	if t.MaxWidth <= 0 || t.MaxHeight <= 0 {
		errs = append(errs, fmt.Errorf("tiling limits must be positive, got %dx%d", t.MaxWidth, t.MaxHeight))
	}
	if t.TileHeight < 0 || t.Overlap < 0 {
		errs = append(errs, errors.New("tiling.tileHeight and tiling.overlap must not be negative"))
	}
	if t.TileHeight > 0 && t.Overlap >= t.TileHeight {
		errs = append(errs, fmt.Errorf("tiling.overlap (%d) must be smaller than tiling.tileHeight (%d)", t.Overlap, t.TileHeight))
	}
	if t.TileHeight > 0 && t.MaxHeight > 0 && t.TileHeight+t.Overlap > t.MaxHeight {
		errs = append(errs, fmt.Errorf("tiling.tileHeight plus tiling.overlap (%d) must not exceed tiling.maxHeight (%d)", t.TileHeight+t.Overlap, t.MaxHeight))
	}
	if t.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("tiling.concurrency must be at least 1, got %d", t.Concurrency))
	}
	if c.Artifacts.Enabled && (c.Artifacts.Endpoint == "" || c.Artifacts.Bucket == "") {
		errs = append(errs, errors.New("artifacts.endpoint and artifacts.bucket are required when artifacts are enabled"))
	}
	return errors.Join(errs...)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
