package output

import (
	"io"
	"strings"

	"github.com/dshills/sitewatch/internal/analysis"
)

// MarkdownWriter outputs a markdown report.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *analysis.Report) error {
	ew := &errWriter{w: w}
	a := analysisOf(report)
	md := report.Metadata

	ew.printf("## sitewatch: %s\n\n", md.Name)
	ew.printf("| | |\n|---|---|\n")
	ew.printf("| URL | %s |\n", md.URL)
	ew.printf("| Timestamp | %s |\n", md.Timestamp)
	ew.printf("| Changes | %s |\n", yesNo(a.HasChanges))
	ew.printf("| Severity | %s %s |\n", mdSeverityIcon(a.Severity), strings.ToUpper(string(a.Severity)))
	ew.printf("| Availability | %s %s |\n", mdAvailabilityIcon(a.Availability), strings.ToUpper(string(a.Availability)))
	ew.printf("| Method | %s |\n", method(a))
	ew.printf("| Dimensions | baseline %s, current %s |\n\n", dims(a.Baseline), dims(a.Current))

	if a.Summary != "" {
		ew.printf("%s\n\n", a.Summary)
	}

	if len(a.Changes) == 0 {
		if !a.HasChanges {
			ew.println("No changes detected. :white_check_mark:")
		}
	} else {
		ew.printf("<details>\n<summary>Changes (%d)</summary>\n\n", len(a.Changes))
		ew.println("| # | Type | Location | Description | Impact |")
		ew.println("|---|------|----------|-------------|--------|")
		for i, c := range a.Changes {
			ew.printf("| %d | %s | %s | %s | %s |\n", i+1,
				cell(string(c.Type)), cell(c.Location), cell(c.Description), cell(c.Impact))
		}
		ew.println("\n</details>")
	}

	if len(a.Recommendations) > 0 {
		ew.println("\n### Recommendations\n")
		for _, r := range a.Recommendations {
			ew.printf("- %s\n", r)
		}
	}

	if a.TilesWithErrors > 0 {
		ew.printf("\n> :warning: %d of %d tiles could not be analyzed.\n", a.TilesWithErrors, a.TileCount)
	}
	return ew.err
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// cell escapes text for use inside a table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func mdSeverityIcon(s analysis.Severity) string {
	switch s {
	case analysis.SeverityNone:
		return ":green_circle:"
	case analysis.SeverityMinor:
		return ":yellow_circle:"
	case analysis.SeverityModerate:
		return ":orange_circle:"
	case analysis.SeverityMajor:
		return ":red_circle:"
	case analysis.SeverityCritical:
		return ":rotating_light:"
	default:
		return ":grey_question:"
	}
}

func mdAvailabilityIcon(a analysis.Availability) string {
	switch a {
	case analysis.AvailabilityAvailable:
		return ":green_circle:"
	case analysis.AvailabilityPartial:
		return ":yellow_circle:"
	case analysis.AvailabilityDown:
		return ":red_circle:"
	case analysis.AvailabilityError:
		return ":rotating_light:"
	default:
		return ":grey_question:"
	}
}
