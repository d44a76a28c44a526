package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dshills/sitewatch/internal/redact"
	"github.com/dshills/sitewatch/internal/tiling"
)

// DefaultConcurrency limits parallel comparer calls.
const DefaultConcurrency = 4

// Section locates a tile within the full page so the model can be told
// which strip it is looking at.
type Section struct {
	Index int `json:"index"`
	Count int `json:"count"`
	Start int `json:"start"`
	End   int `json:"end"`
}

// Target is the context of a comparison.
type Target struct {
	Name    string
	URL     string
	Section *Section
}

// Comparer compares a baseline image with a current image.
type Comparer interface {
	Compare(ctx context.Context, baselinePath, currentPath string, target Target) (Result, error)
}

// TileCountMismatchError is returned when the baseline and current images
// were split into a different number of tiles.
type TileCountMismatchError struct {
	Baseline int
	Current  int
}

func (e *TileCountMismatchError) Error() string {
	return fmt.Sprintf("tile count mismatch: %d baseline vs %d current", e.Baseline, e.Current)
}

// PairOptions controls how AnalyzePairs runs.
type PairOptions struct {
	// Concurrency bounds parallel comparer calls; 0 means DefaultConcurrency
	// and 1 runs the pairs sequentially.
	Concurrency int
	Logger      *slog.Logger
}

// AnalyzePairs compares baseline[i] with current[i] for every i and returns
// one result per pair in index order.
//
// A comparer error or panic does not abort the batch. It becomes a result
// with changes flagged, unknown severity and the redacted failure in Error.
// AnalyzePairs returns only after every call has finished.
func AnalyzePairs(ctx context.Context, c Comparer, baseline, current []tiling.Tile, target Target, opts PairOptions) ([]Result, error) {
	if len(baseline) != len(current) {
		return nil, &TileCountMismatchError{Baseline: len(baseline), Current: len(current)}
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	n := len(baseline)
	log.Info("analyzing tile pairs", "count", n, "url", target.URL, "concurrency", limit)

	results := make([]Result, n)
	var wg sync.WaitGroup
	sem := make(chan struct{}, limit)

	for i := range baseline {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}        // acquire
			defer func() { <-sem }() // release

			b, cur := baseline[i], current[i]
			t := target
			t.Section = &Section{Index: i, Count: n, Start: cur.Start, End: cur.End}

			log.Debug("analyzing tile", "tile", i+1, "of", n)
			r, err := compareSafely(ctx, c, b.Path, cur.Path, t)
			if err != nil {
				msg := redact.Secrets(err.Error())
				log.Error("tile analysis failed", "tile", i, "error", msg)
				r = Result{
					HasChanges:      true,
					Severity:        SeverityUnknown,
					Summary:         fmt.Sprintf("Analysis failed for tile %d", i),
					Changes:         []Change{},
					Recommendations: []string{},
					Error:           msg,
				}
			}
			r.Tile = &TileInfo{Index: i, BaselinePath: b.Path, CurrentPath: cur.Path}
			results[i] = r
		}(i)
	}

	wg.Wait()
	log.Info("completed tile analysis", "count", n)
	return results, nil
}

func compareSafely(ctx context.Context, c Comparer, baselinePath, currentPath string, t Target) (r Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("comparer panicked: %v", p)
		}
	}()
	return c.Compare(ctx, baselinePath, currentPath, t)
}
