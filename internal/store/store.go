package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

const metadataFile = "metadata.json"

// Viewport is the browser window size a screenshot was taken with.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Baseline describes the reference screenshot stored for a target.
type Baseline struct {
	URL       string   `json:"url"`
	File      string   `json:"baseline_file"`
	Path      string   `json:"baseline_path"`
	Timestamp string   `json:"timestamp"`
	Viewport  Viewport `json:"viewport"`
}

// ErrNoBaseline is returned when a target has no stored baseline.
var ErrNoBaseline = errors.New("no baseline stored")

// Store manages the storage directory.
type Store struct {
	Dir string
	mu  sync.Mutex
}

// New returns a Store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("storage directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &Store{Dir: dir}, nil
}

// Path returns the absolute location of file inside the storage directory.
func (s *Store) Path(file string) string {
	return filepath.Join(s.Dir, file)
}

// Load reads the baseline index. A missing index is empty.
func (s *Store) Load() (map[string]Baseline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (map[string]Baseline, error) {
	data, err := os.ReadFile(s.Path(metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Baseline{}, nil
		}
		return nil, fmt.Errorf("reading metadata: %w", err)
	}
	m := map[string]Baseline{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", metadataFile, err)
	}
	return m, nil
}

func (s *Store) save(m map[string]Baseline) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	return writeFileAtomic(s.Path(metadataFile), append(data, '\n'))
}

// Get returns the baseline stored under name.
func (s *Store) Get(name string) (Baseline, error) {
	m, err := s.Load()
	if err != nil {
		return Baseline{}, err
	}
	b, ok := m[name]
	if !ok {
		return Baseline{}, fmt.Errorf("%w for %q", ErrNoBaseline, name)
	}
	return b, nil
}

// Put records b as the baseline for name, replacing any previous entry.
// The previous screenshot file is left on disk.
func (s *Store) Put(name string, b Baseline) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.load()
	if err != nil {
		return err
	}
	m[name] = b
	return s.save(m)
}

// Names returns the stored target names in sorted order.
func (s *Store) Names() ([]string, error) {
	m, err := s.Load()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

// BaselineFilename returns a fresh file name for a baseline of name.
func BaselineFilename(name string) string {
	return fmt.Sprintf("%s_baseline_%s.png", name, uuid.NewString()[:8])
}

// CurrentFilename returns the file name for a screenshot of name taken at t.
func CurrentFilename(name string, t time.Time) string {
	return fmt.Sprintf("%s_current_%d.png", name, t.Unix())
}

// ReportFilename returns the file name for a report on name written at t.
func ReportFilename(name string, t time.Time) string {
	return fmt.Sprintf("%s_report_%d.json", name, t.Unix())
}

// SaveReport writes report as indented JSON and returns its path.
func (s *Store) SaveReport(name string, report any, t time.Time) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}
	path := s.Path(ReportFilename(name, t))
	if err := writeFileAtomic(path, append(data, '\n')); err != nil {
		return "", err
	}
	return path, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("closing %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("replacing %s: %w", filepath.Base(path), err)
	}
	return nil
}
