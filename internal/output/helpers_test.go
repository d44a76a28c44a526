package output

import "github.com/dshills/sitewatch/internal/analysis"

func sampleReport() *analysis.Report {
	return &analysis.Report{
		Tool:    "sitewatch",
		Version: "1.0",
		RunID:   "run-1",
		Metadata: analysis.Metadata{
			Name:         "example.com",
			URL:          "https://example.com",
			Timestamp:    "2026-10-15T09:30:00Z",
			BaselineFile: "example.com_baseline_abcd1234.png",
			CurrentFile:  "example.com_current_1760520600.png",
			Provider:     "anthropic",
			Model:        "claude-sonnet-4-0",
		},
		Analysis: &analysis.Analysis{
			Combined: analysis.Combined{
				HasChanges:   true,
				Severity:     analysis.SeverityMajor,
				Summary:      "Analysis of 3 tiles found 2 changes (1 tiles had analysis errors)",
				Availability: analysis.AvailabilityPartial,
				Changes: []analysis.Change{
					{Type: analysis.ChangeContent, Description: "Hero headline replaced", Location: "Tile 1: header", Impact: "Visitors see a new message"},
					{Type: analysis.ChangeError, Description: "Checkout shows a 502 | gateway", Location: "Tile 3: footer"},
				},
				Recommendations: []string{"Check the payment gateway", "Confirm the headline change was intended"},
				TileCount:       3,
				TilesWithErrors: 1,
			},
			TilingUsed: true,
			Baseline:   analysis.Dimensions{Width: 1920, Height: 9168},
			Current:    analysis.Dimensions{Width: 1920, Height: 9168},
			TileHeight: 3000,
			Overlap:    200,
		},
	}
}

func quietReport() *analysis.Report {
	r := sampleReport()
	r.Analysis = &analysis.Analysis{
		Combined: analysis.Combined{
			Severity:        analysis.SeverityNone,
			Summary:         "No visible differences.",
			Availability:    analysis.AvailabilityAvailable,
			Changes:         []analysis.Change{},
			Recommendations: []string{},
			TileCount:       1,
		},
		Baseline: analysis.Dimensions{Width: 1920, Height: 1080},
		Current:  analysis.Dimensions{Width: 1920, Height: 1080},
	}
	return r
}
