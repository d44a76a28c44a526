package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/sitewatch/internal/analysis"
)

// TextWriter outputs a human-readable text report.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, report *analysis.Report) error {
	ew := &errWriter{w: w}
	a := analysisOf(report)
	md := report.Metadata

	ew.println("Change Detection Report")
	ew.println(strings.Repeat("─", 60))
	ew.printf("Site:       %s\n", md.Name)
	ew.printf("URL:        %s\n", md.URL)
	ew.printf("Timestamp:  %s\n", md.Timestamp)
	ew.printf("Baseline:   %s\n", md.BaselineFile)
	ew.printf("Current:    %s\n", md.CurrentFile)
	if md.Model != "" {
		ew.printf("Model:      %s (%s)\n", md.Model, md.Provider)
	}
	ew.println(strings.Repeat("─", 60))

	changed := "NO"
	if a.HasChanges {
		changed = "YES"
	}
	ew.printf("Changes:       %s\n", changed)
	ew.printf("Severity:      %s %s\n", severityIcon(a.Severity), strings.ToUpper(string(a.Severity)))
	ew.printf("Availability:  %s %s\n", availabilityIcon(a.Availability), strings.ToUpper(string(a.Availability)))
	ew.printf("Method:        %s\n", method(a))
	ew.printf("Dimensions:    baseline %s, current %s\n", dims(a.Baseline), dims(a.Current))
	if a.TilesWithErrors > 0 {
		ew.printf("Tile errors:   %d of %d\n", a.TilesWithErrors, a.TileCount)
	}

	if a.Summary != "" {
		ew.println("\nSummary:")
		for _, line := range wrapText(a.Summary, 70) {
			ew.printf("  %s\n", line)
		}
	}

	if len(a.Changes) > 0 {
		ew.println("\nChanges found:")
		for i, c := range a.Changes {
			ew.printf("\n  %d. [%s] %s\n", i+1, orNA(string(c.Type)), orNA(c.Location))
			for _, line := range wrapText(orNA(c.Description), 66) {
				ew.printf("     %s\n", line)
			}
			if c.Impact != "" {
				ew.printf("     Impact: %s\n", c.Impact)
			}
		}
	}

	if len(a.Recommendations) > 0 {
		ew.println("\nRecommendations:")
		for _, r := range a.Recommendations {
			ew.printf("  - %s\n", r)
		}
	}

	ew.printf("\n%s\n", strings.Repeat("─", 60))
	return ew.err
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

func severityIcon(s analysis.Severity) string {
	switch s {
	case analysis.SeverityNone:
		return "[ok]"
	case analysis.SeverityMinor:
		return "[-]"
	case analysis.SeverityModerate:
		return "[!]"
	case analysis.SeverityMajor:
		return "[!!]"
	case analysis.SeverityCritical:
		return "[!!!]"
	default:
		return "[?]"
	}
}

func availabilityIcon(a analysis.Availability) string {
	switch a {
	case analysis.AvailabilityAvailable:
		return "[up]"
	case analysis.AvailabilityPartial:
		return "[~]"
	case analysis.AvailabilityDown:
		return "[down]"
	case analysis.AvailabilityError:
		return "[err]"
	default:
		return "[?]"
	}
}

func method(a *analysis.Analysis) string {
	if a.TilingUsed {
		return fmt.Sprintf("tiled (%d tiles of %dpx, %dpx overlap)", a.TileCount, a.TileHeight, a.Overlap)
	}
	return "single image"
}

func dims(d analysis.Dimensions) string {
	if d.Width == 0 && d.Height == 0 {
		return "unknown"
	}
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func wrapText(text string, width int) []string {
	if len(text) <= width {
		return []string{text}
	}
	var lines []string
	var current strings.Builder
	for _, word := range strings.Fields(text) {
		if current.Len()+len(word)+1 > width && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
