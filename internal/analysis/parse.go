package analysis

import (
	"encoding/json"
	"strings"
)

const (
	summaryNoJSON      = "Analysis completed but format parsing failed"
	summaryInvalidJSON = "Analysis completed but JSON parsing failed"
)

// rawResult is the JSON structure returned by the model.
type rawResult struct {
	HasChanges      bool        `json:"has_changes"`
	Severity        string      `json:"severity"`
	Summary         string      `json:"summary"`
	Changes         []rawChange `json:"changes_detected"`
	Availability    string      `json:"availability_status"`
	Recommendations []string    `json:"recommendations"`
}

type rawChange struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Impact      string `json:"impact"`
}

// ParseResult extracts the verdict from a model reply. The JSON object is
// taken from the first '{' to the last '}', which tolerates prose and code
// fences around it. A reply without a usable object yields a result that
// flags changes with unknown severity and keeps the raw text.
func ParseResult(content string) Result {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return unparsed(content, summaryNoJSON)
	}

	var raw rawResult
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		return unparsed(content, summaryInvalidJSON)
	}

	r := Result{
		HasChanges:      raw.HasChanges,
		Severity:        ParseSeverity(raw.Severity),
		Summary:         raw.Summary,
		Changes:         make([]Change, 0, len(raw.Changes)),
		Availability:    ParseAvailability(raw.Availability),
		Recommendations: []string{},
	}
	for _, c := range raw.Changes {
		r.Changes = append(r.Changes, Change{
			Type:        ChangeType(strings.ToLower(strings.TrimSpace(c.Type))),
			Description: c.Description,
			Location:    c.Location,
			Impact:      c.Impact,
		})
	}
	for _, rec := range raw.Recommendations {
		if rec = strings.TrimSpace(rec); rec != "" {
			r.Recommendations = append(r.Recommendations, rec)
		}
	}
	return r
}

func unparsed(content, summary string) Result {
	return Result{
		HasChanges:      true,
		Severity:        SeverityUnknown,
		Summary:         summary,
		Changes:         []Change{},
		Recommendations: []string{},
		RawResponse:     content,
	}
}
