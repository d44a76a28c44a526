package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func tagged(i int, r Result) Result {
	r.Tile = &TileInfo{Index: i}
	return r
}

func TestCombine_Empty(t *testing.T) {
	c := Combine(nil)
	require.False(t, c.HasChanges)
	require.Equal(t, SeverityNone, c.Severity)
	require.Equal(t, AvailabilityUnknown, c.Availability)
	require.Equal(t, EmptySummary, c.Summary)
	require.Zero(t, c.TileCount)
	require.Empty(t, c.Changes)
	require.Empty(t, c.Recommendations)
}

func TestCombine_AvailabilityPrecedence(t *testing.T) {
	tests := []struct {
		in   []Availability
		want Availability
	}{
		{[]Availability{"available", "unavailable", "partially_available"}, AvailabilityDown},
		{[]Availability{"available", "available", "partially_available"}, AvailabilityPartial},
		{[]Availability{"available", "error"}, AvailabilityError},
		{[]Availability{"error", "partially_available"}, AvailabilityPartial},
		{[]Availability{"available", "available"}, AvailabilityAvailable},
		{[]Availability{"", ""}, AvailabilityUnknown},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.in), func(t *testing.T) {
			var results []Result
			for _, a := range tt.in {
				results = append(results, Result{Severity: SeverityNone, Availability: a})
			}
			require.Equal(t, tt.want, Combine(results).Availability)
		})
	}
}

func TestCombine_SeverityIsOrderIndependent(t *testing.T) {
	sevs := []Severity{SeverityMinor, SeverityCritical, SeverityNone, SeverityModerate}
	perms := [][]int{{0, 1, 2, 3}, {3, 2, 1, 0}, {1, 0, 3, 2}, {2, 3, 0, 1}}
	for _, p := range perms {
		var results []Result
		for _, i := range p {
			results = append(results, Result{Severity: sevs[i]})
		}
		require.Equal(t, SeverityCritical, Combine(results).Severity, "permutation %v", p)
	}
}

func TestCombine_UnknownOutranksCritical(t *testing.T) {
	c := Combine([]Result{{Severity: SeverityCritical}, {Severity: SeverityUnknown}, {Severity: SeverityMajor}})
	require.Equal(t, SeverityUnknown, c.Severity)

	// A result without a severity is treated as unknown.
	c = Combine([]Result{{Severity: SeverityMinor}, {}})
	require.Equal(t, SeverityUnknown, c.Severity)
}

func TestCombine_SeverityNeverBelowInputs(t *testing.T) {
	all := []Severity{SeverityNone, SeverityMinor, SeverityModerate, SeverityMajor, SeverityCritical, SeverityUnknown}
	for _, a := range all {
		for _, b := range all {
			c := Combine([]Result{{Severity: a}, {Severity: b}})
			require.GreaterOrEqual(t, SeverityRank(c.Severity), SeverityRank(a))
			require.GreaterOrEqual(t, SeverityRank(c.Severity), SeverityRank(b))
		}
	}
}

func TestCombine_ChangeLocationsAndConservation(t *testing.T) {
	results := []Result{
		tagged(0, Result{HasChanges: true, Severity: SeverityMinor, Changes: []Change{
			{Type: ChangeContent, Location: "header"},
			{Type: ChangeStyling, Location: "nav bar"},
		}}),
		tagged(1, Result{Severity: SeverityNone}),
		tagged(2, Result{HasChanges: true, Severity: SeverityMajor, Changes: []Change{
			{Type: ChangeLayout, Location: "footer"},
		}}),
	}

	c := Combine(results)
	require.True(t, c.HasChanges)
	require.Equal(t, SeverityMajor, c.Severity)
	require.Len(t, c.Changes, 3)
	require.Equal(t, "Tile 1: header", c.Changes[0].Location)
	require.Equal(t, "Tile 1: nav bar", c.Changes[1].Location)
	require.Equal(t, "Tile 3: footer", c.Changes[2].Location)
	require.Equal(t, "Analysis of 3 tiles found 3 changes", c.Summary)

	// Inputs are not modified.
	require.Equal(t, "header", results[0].Changes[0].Location)
}

func TestCombine_UntaggedResultsUsePosition(t *testing.T) {
	c := Combine([]Result{
		{Severity: SeverityNone},
		{HasChanges: true, Severity: SeverityMinor, Changes: []Change{{Location: "sidebar"}}},
	})
	require.Equal(t, "Tile 2: sidebar", c.Changes[0].Location)
}

func TestCombine_RecommendationDedup(t *testing.T) {
	var results []Result
	for i := 0; i < 5; i++ {
		results = append(results, Result{
			Severity:        SeverityMinor,
			Recommendations: []string{"Check the deployment", fmt.Sprintf("Review tile %d", i)},
		})
	}
	c := Combine(results)

	count := 0
	for _, r := range c.Recommendations {
		if r == "Check the deployment" {
			count++
		}
	}
	require.Equal(t, 1, count)
	require.Len(t, c.Recommendations, 6)
}

func TestCombine_ErrorsInSummary(t *testing.T) {
	c := Combine([]Result{
		{Severity: SeverityNone},
		{HasChanges: true, Severity: SeverityUnknown, Error: "timeout", Summary: "Analysis failed for tile 1"},
		{Severity: SeverityNone, Error: "boom"},
	})
	require.Equal(t, 2, c.TilesWithErrors)
	require.True(t, c.HasChanges)
	require.Equal(t, SeverityUnknown, c.Severity)
	require.Equal(t, "Analysis of 3 tiles found 0 changes (2 tiles had analysis errors)", c.Summary)

	c = Combine([]Result{{Severity: SeverityNone}, {Severity: SeverityNone}})
	require.Equal(t, "Analysis of 2 tiles found no changes", c.Summary)
}

func TestCombined_JSONRoundTrip(t *testing.T) {
	c := Combine([]Result{
		{HasChanges: true, Severity: SeverityModerate, Availability: AvailabilityAvailable,
			Changes:         []Change{{Type: ChangeContent, Description: "price", Location: "hero", Impact: "low"}},
			Recommendations: []string{"verify pricing"}},
		{Severity: SeverityNone, Error: "x"},
	})
	data, err := json.Marshal(c)
	require.NoError(t, err)
	for _, field := range []string{"has_changes", "severity", "summary", "changes_detected", "availability_status", "recommendations", "tile_count", "tiles_with_errors"} {
		require.True(t, strings.Contains(string(data), `"`+field+`"`), "missing %s", field)
	}

	var back Combined
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, c, back)
}

func TestFromSingle(t *testing.T) {
	r := Result{HasChanges: true, Severity: SeverityMinor, Summary: "Banner text changed",
		Changes: []Change{{Location: "top banner"}}}
	c := FromSingle(r)
	require.Equal(t, 1, c.TileCount)
	require.Equal(t, "Banner text changed", c.Summary)
	require.Equal(t, "top banner", c.Changes[0].Location)
	require.Equal(t, AvailabilityUnknown, c.Availability)
	require.NotNil(t, c.Recommendations)

	require.Equal(t, SeverityUnknown, FromSingle(Result{}).Severity)
}

func TestSeverityHelpers(t *testing.T) {
	require.Equal(t, SeverityMajor, ParseSeverity(" MAJOR "))
	require.Equal(t, SeverityUnknown, ParseSeverity("catastrophic"))
	require.Equal(t, SeverityUnknown, ParseSeverity(""))

	require.True(t, MeetsThreshold(SeverityMajor, "moderate"))
	require.True(t, MeetsThreshold(SeverityUnknown, "critical"))
	require.False(t, MeetsThreshold(SeverityMinor, "major"))
	require.False(t, MeetsThreshold(SeverityCritical, "none"))
	require.False(t, MeetsThreshold(SeverityCritical, ""))
}
