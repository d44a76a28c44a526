package output

import (
	"fmt"
	"io"
	"os"

	"github.com/dshills/sitewatch/internal/analysis"
)

// Writer writes a report in a specific format.
type Writer interface {
	Write(w io.Writer, report *analysis.Report) error
}

// GetWriter returns a writer for the specified format.
func GetWriter(format string) (Writer, error) {
	switch format {
	case "text", "":
		return &TextWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	case "markdown", "md":
		return &MarkdownWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteReport writes the report to outPath, or to stdout when outPath is empty.
func WriteReport(stdout io.Writer, report *analysis.Report, format, outPath string) error {
	writer, err := GetWriter(format)
	if err != nil {
		return err
	}
	if outPath == "" {
		return writer.Write(stdout, report)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := writer.Write(f, report); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// analysisOf never returns nil so writers can render a report whose
// comparison did not run.
func analysisOf(r *analysis.Report) *analysis.Analysis {
	if r.Analysis != nil {
		return r.Analysis
	}
	return &analysis.Analysis{Combined: analysis.Combined{
		Severity:     analysis.SeverityUnknown,
		Availability: analysis.AvailabilityUnknown,
	}}
}
