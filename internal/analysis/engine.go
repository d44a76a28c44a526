package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dshills/sitewatch/internal/tiling"
)

// Engine compares two screenshots, tiling them first when either exceeds
// the model's image limits.
type Engine struct {
	Comparer Comparer
	// Splitter writes tiles; nil uses the system temp directory.
	Splitter *tiling.Splitter
	// Limits defaults to tiling.DefaultLimits when zero.
	Limits tiling.Limits
	// TileHeight and Overlap override the recommended settings when
	// TileHeight is positive.
	TileHeight  int
	Overlap     int
	Concurrency int
	Logger      *slog.Logger
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// Compare produces the analysis of currentPath against baselinePath.
//
// Tiled comparisons return an error only when probing, splitting or pairing
// fails; failed tiles are folded into the result. Tile files are removed
// before Compare returns, whatever the outcome. An untiled comparison
// returns the comparer's error as is.
func (e *Engine) Compare(ctx context.Context, baselinePath, currentPath string, target Target) (*Analysis, error) {
	limits := e.Limits
	if limits == (tiling.Limits{}) {
		limits = tiling.DefaultLimits()
	}
	log := e.logger()

	needBaseline := tiling.NeedsTiling(baselinePath, limits, log)
	needCurrent := tiling.NeedsTiling(currentPath, limits, log)
	if needBaseline || needCurrent {
		return e.compareTiled(ctx, baselinePath, currentPath, target)
	}

	a := &Analysis{
		Baseline: probeDimensions(baselinePath, log),
		Current:  probeDimensions(currentPath, log),
	}
	log.Debug("images within size limits",
		"baseline", fmt.Sprintf("%dx%d", a.Baseline.Width, a.Baseline.Height),
		"current", fmt.Sprintf("%dx%d", a.Current.Width, a.Current.Height))

	r, err := e.Comparer.Compare(ctx, baselinePath, currentPath, target)
	if err != nil {
		return nil, fmt.Errorf("comparing screenshots: %w", err)
	}
	a.Combined = FromSingle(r)
	a.Tiles = []Result{r}
	return a, nil
}

func (e *Engine) compareTiled(ctx context.Context, baselinePath, currentPath string, target Target) (*Analysis, error) {
	log := e.logger()

	baseline, err := tiling.Probe(baselinePath)
	if err != nil {
		return nil, err
	}
	current, err := tiling.Probe(currentPath)
	if err != nil {
		return nil, err
	}

	settings := tiling.Settings{TileHeight: e.TileHeight, Overlap: max(e.Overlap, 0)}
	if settings.TileHeight <= 0 {
		settings = tiling.RecommendSettings(max(baseline.Width, current.Width), max(baseline.Height, current.Height))
	}
	log.Info("large images detected, using tiling",
		"baseline", fmt.Sprintf("%dx%d", baseline.Width, baseline.Height),
		"current", fmt.Sprintf("%dx%d", current.Width, current.Height),
		"tileHeight", settings.TileHeight, "overlap", settings.Overlap)

	splitter := e.Splitter
	if splitter == nil {
		splitter = tiling.NewSplitter("", log)
	}

	var artifacts []string
	defer func() {
		tiling.Cleanup(splitter.Store, artifacts, log)
	}()

	baseTiles, err := splitter.Split(ctx, baseline, settings.TileHeight, settings.Overlap)
	artifacts = append(artifacts, tiling.ArtifactPaths(baseTiles)...)
	if err != nil {
		return nil, err
	}
	curTiles, err := splitter.Split(ctx, current, settings.TileHeight, settings.Overlap)
	artifacts = append(artifacts, tiling.ArtifactPaths(curTiles)...)
	if err != nil {
		return nil, err
	}
	log.Info("created tiles", "baseline", len(baseTiles), "current", len(curTiles))

	results, err := AnalyzePairs(ctx, e.Comparer, baseTiles, curTiles, target, PairOptions{
		Concurrency: e.Concurrency,
		Logger:      log,
	})
	if err != nil {
		return nil, err
	}

	combined := Combine(results)
	for i, r := range results {
		if r.Failed() {
			log.Warn("tile had analysis error", "tile", i, "error", r.Error)
		}
	}
	log.Debug("combined tile results", "tiles", combined.TileCount,
		"severity", combined.Severity, "changes", len(combined.Changes))

	return &Analysis{
		Combined:   combined,
		TilingUsed: true,
		Baseline:   Dimensions{Width: baseline.Width, Height: baseline.Height},
		Current:    Dimensions{Width: current.Width, Height: current.Height},
		TileHeight: settings.TileHeight,
		Overlap:    settings.Overlap,
		Tiles:      results,
	}, nil
}

func probeDimensions(path string, log *slog.Logger) Dimensions {
	img, err := tiling.Probe(path)
	if err != nil {
		log.Warn("could not read image dimensions", "path", path, "error", err)
		return Dimensions{}
	}
	return Dimensions{Width: img.Width, Height: img.Height}
}
