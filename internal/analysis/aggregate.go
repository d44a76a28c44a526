package analysis

import "fmt"

// EmptySummary is the summary of a combination over zero tiles.
const EmptySummary = "no tiles to analyze"

// Combine merges per-tile results, in tile order, into one verdict.
//
// The combined severity is the highest-ranked tile severity, with the first
// seen kept on ties; an empty severity counts as unknown. Change locations
// are prefixed with "Tile N: " (1-based) using the tagged tile index, or the
// slice position for untagged results. Recommendations are deduplicated
// keeping first-seen order. Availability resolves as unavailable, then
// partially_available, then error, then available; unknown when no tile
// reported one.
func Combine(results []Result) Combined {
	if len(results) == 0 {
		return Combined{
			Severity:        SeverityNone,
			Summary:         EmptySummary,
			Changes:         []Change{},
			Availability:    AvailabilityUnknown,
			Recommendations: []string{},
		}
	}

	c := Combined{
		Severity:        SeverityNone,
		Changes:         []Change{},
		Recommendations: []string{},
		TileCount:       len(results),
	}
	seenRec := make(map[string]bool)
	seenAvail := make(map[Availability]bool)

	for i, r := range results {
		if r.Failed() {
			c.TilesWithErrors++
		}
		if r.HasChanges {
			c.HasChanges = true
		}

		sev := r.Severity
		if sev == "" {
			sev = SeverityUnknown
		}
		if SeverityRank(sev) > SeverityRank(c.Severity) {
			c.Severity = sev
		}

		idx := i
		if r.Tile != nil {
			idx = r.Tile.Index
		}
		for _, ch := range r.Changes {
			ch.Location = fmt.Sprintf("Tile %d: %s", idx+1, ch.Location)
			c.Changes = append(c.Changes, ch)
		}

		for _, rec := range r.Recommendations {
			if !seenRec[rec] {
				seenRec[rec] = true
				c.Recommendations = append(c.Recommendations, rec)
			}
		}

		if r.Availability != "" {
			seenAvail[r.Availability] = true
		}
	}

	c.Availability = resolveAvailability(seenAvail)
	c.Summary = combinedSummary(c)
	return c
}

func resolveAvailability(seen map[Availability]bool) Availability {
	switch {
	case len(seen) == 0:
		return AvailabilityUnknown
	case seen[AvailabilityDown]:
		return AvailabilityDown
	case seen[AvailabilityPartial]:
		return AvailabilityPartial
	case seen[AvailabilityError]:
		return AvailabilityError
	default:
		return AvailabilityAvailable
	}
}

func combinedSummary(c Combined) string {
	var s string
	if c.HasChanges {
		s = fmt.Sprintf("Analysis of %d tiles found %d changes", c.TileCount, len(c.Changes))
	} else {
		s = fmt.Sprintf("Analysis of %d tiles found no changes", c.TileCount)
	}
	if c.TilesWithErrors > 0 {
		s += fmt.Sprintf(" (%d tiles had analysis errors)", c.TilesWithErrors)
	}
	return s
}

// FromSingle wraps the verdict of an untiled comparison. Locations and the
// model's own summary are kept as reported.
func FromSingle(r Result) Combined {
	c := Combined{
		HasChanges:      r.HasChanges,
		Severity:        r.Severity,
		Summary:         r.Summary,
		Changes:         r.Changes,
		Availability:    r.Availability,
		Recommendations: r.Recommendations,
		TileCount:       1,
	}
	if c.Severity == "" {
		c.Severity = SeverityUnknown
	}
	if c.Availability == "" {
		c.Availability = AvailabilityUnknown
	}
	if c.Changes == nil {
		c.Changes = []Change{}
	}
	if c.Recommendations == nil {
		c.Recommendations = []string{}
	}
	if r.Failed() {
		c.TilesWithErrors = 1
	}
	return c
}
