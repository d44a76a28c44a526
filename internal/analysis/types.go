package analysis

import "strings"

// Severity is the assessed impact of the changes between two screenshots.
type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeverityMajor    Severity = "major"
	SeverityCritical Severity = "critical"
	// SeverityUnknown outranks critical: an unreadable verdict is treated
	// as the worst case.
	SeverityUnknown Severity = "unknown"
)

// SeverityRank returns a numeric rank for ordering (higher = more severe).
// Unrecognized values rank with none.
func SeverityRank(s Severity) int {
	switch s {
	case SeverityUnknown:
		return 5
	case SeverityCritical:
		return 4
	case SeverityMajor:
		return 3
	case SeverityModerate:
		return 2
	case SeverityMinor:
		return 1
	default:
		return 0
	}
}

// ParseSeverity normalizes a model-supplied severity. Empty and
// unrecognized values become unknown.
func ParseSeverity(s string) Severity {
	switch v := Severity(strings.ToLower(strings.TrimSpace(s))); v {
	case SeverityNone, SeverityMinor, SeverityModerate, SeverityMajor, SeverityCritical:
		return v
	default:
		return SeverityUnknown
	}
}

// MeetsThreshold returns true if severity is at or above the threshold.
// A threshold of "" or "none" never matches.
func MeetsThreshold(s Severity, threshold string) bool {
	t := Severity(strings.ToLower(threshold))
	if t == "" || t == SeverityNone {
		return false
	}
	return SeverityRank(s) >= SeverityRank(t)
}

// Availability describes whether the page appeared to be working.
type Availability string

const (
	AvailabilityAvailable Availability = "available"
	AvailabilityPartial   Availability = "partially_available"
	AvailabilityDown      Availability = "unavailable"
	AvailabilityError     Availability = "error"
	AvailabilityUnknown   Availability = "unknown"
)

// ParseAvailability lower-cases a model-supplied availability status.
// Unrecognized values are kept so that they still count as "seen".
func ParseAvailability(s string) Availability {
	return Availability(strings.ToLower(strings.TrimSpace(s)))
}

// ChangeType classifies a detected change.
type ChangeType string

const (
	ChangeLayout        ChangeType = "layout"
	ChangeContent       ChangeType = "content"
	ChangeStyling       ChangeType = "styling"
	ChangeFunctionality ChangeType = "functionality"
	ChangeError         ChangeType = "error"
	ChangeAvailability  ChangeType = "availability"
)

// Change is one difference reported by the model.
type Change struct {
	Type        ChangeType `json:"type"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	Impact      string     `json:"impact"`
}

// TileInfo ties a per-tile result back to the tile pair it came from.
type TileInfo struct {
	Index        int    `json:"tile_index"`
	BaselinePath string `json:"baseline_path"`
	CurrentPath  string `json:"current_path"`
}

// Result is the verdict for one pair of images.
type Result struct {
	HasChanges      bool         `json:"has_changes"`
	Severity        Severity     `json:"severity"`
	Summary         string       `json:"summary"`
	Changes         []Change     `json:"changes_detected"`
	Availability    Availability `json:"availability_status,omitempty"`
	Recommendations []string     `json:"recommendations"`
	// Error is set when the comparison itself failed, as opposed to
	// finding no changes.
	Error       string    `json:"error,omitempty"`
	RawResponse string    `json:"raw_response,omitempty"`
	Tile        *TileInfo `json:"tile_info,omitempty"`
}

// Failed reports whether the comparison for this result failed.
func (r Result) Failed() bool { return r.Error != "" }

// Combined is the merged verdict over every tile of a comparison.
type Combined struct {
	HasChanges      bool         `json:"has_changes"`
	Severity        Severity     `json:"severity"`
	Summary         string       `json:"summary"`
	Changes         []Change     `json:"changes_detected"`
	Availability    Availability `json:"availability_status"`
	Recommendations []string     `json:"recommendations"`
	TileCount       int          `json:"tile_count"`
	TilesWithErrors int          `json:"tiles_with_errors"`
}

// Dimensions is an image size in pixels.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Analysis is the outcome of Engine.Compare: the combined verdict plus how
// it was obtained.
type Analysis struct {
	Combined
	TilingUsed bool       `json:"tiling_used"`
	Baseline   Dimensions `json:"baseline_dimensions"`
	Current    Dimensions `json:"current_dimensions"`
	TileHeight int        `json:"tile_height,omitempty"`
	Overlap    int        `json:"overlap,omitempty"`
	Tiles      []Result   `json:"tile_results,omitempty"`
}

// Metadata identifies what a report is about.
type Metadata struct {
	Name         string `json:"name"`
	URL          string `json:"url"`
	Timestamp    string `json:"timestamp"`
	BaselineFile string `json:"baseline_file"`
	CurrentFile  string `json:"current_file"`
	Provider     string `json:"provider,omitempty"`
	Model        string `json:"model,omitempty"`
}

// Report is the top-level output structure.
type Report struct {
	Tool     string    `json:"tool"`
	Version  string    `json:"version"`
	RunID    string    `json:"runId"`
	Metadata Metadata  `json:"metadata"`
	Analysis *Analysis `json:"analysis"`
}
