package tiling

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

// Span is a half-open row range [Start, End).
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Height returns the number of rows in the span.
func (s Span) Height() int { return s.End - s.Start }

// Tile is one horizontal strip of a source image.
type Tile struct {
	Source string `json:"source"`
	Index  int    `json:"index"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Path   string `json:"path"`
	// Artifact is set when Path is a file written by the splitter. The
	// single-tile passthrough points at the source and is never deleted.
	Artifact bool `json:"artifact"`
}

// Height returns the number of rows in the tile.
func (t Tile) Height() int { return t.End - t.Start }

// TilingError reports a failed split of Source.
type TilingError struct {
	Source string
	Err    error
}

func (e *TilingError) Error() string {
	return fmt.Sprintf("failed to tile image %s: %v", e.Source, e.Err)
}

func (e *TilingError) Unwrap() error { return e.Err }

// Plan computes the row ranges for splitting an image of the given height.
// The stride is always tileHeight, so the count is ceil(height/tileHeight)
// whatever the overlap. Every non-final span is extended downwards by
// overlap, capped at the image height; near the bottom a span may therefore
// lie inside its predecessor.
func Plan(height, tileHeight, overlap int) []Span {
	if height <= 0 {
		return nil
	}
	if tileHeight <= 0 || height <= tileHeight {
		return []Span{{Start: 0, End: height}}
	}
	overlap = max(overlap, 0)

	spans := make([]Span, 0, estimateCount(height, tileHeight))
	for y := 0; y < height; y += tileHeight {
		end := min(y+tileHeight, height)
		if end < height {
			end = min(end+overlap, height)
		}
		spans = append(spans, Span{Start: y, End: end})
	}
	return spans
}

// Splitter cuts images into tiles and persists them through a FileStore.
type Splitter struct {
	Store  *FileStore
	Logger *slog.Logger
}

// NewSplitter returns a Splitter writing tiles into dir. An empty dir uses
// the system temp directory.
func NewSplitter(dir string, logger *slog.Logger) *Splitter {
	return &Splitter{Store: NewFileStore(dir), Logger: logger}
}

func (s *Splitter) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Split cuts src into tiles of tileHeight rows with overlap rows shared
// between neighbours, in top-to-bottom order. An image no taller than
// tileHeight yields one tile pointing at the source file.
//
// On failure the tiles written so far are returned together with a
// *TilingError; the caller must clean them up.
func (s *Splitter) Split(ctx context.Context, src Image, tileHeight, overlap int) ([]Tile, error) {
	if tileHeight <= 0 {
		return nil, &TilingError{Source: src.Path, Err: fmt.Errorf("tile height must be positive, got %d", tileHeight)}
	}
	if overlap < 0 {
		return nil, &TilingError{Source: src.Path, Err: fmt.Errorf("overlap must not be negative, got %d", overlap)}
	}
	if src.Width <= 0 || src.Height <= 0 {
		probed, err := Probe(src.Path)
		if err != nil {
			return nil, &TilingError{Source: src.Path, Err: err}
		}
		src = probed
	}

	spans := Plan(src.Height, tileHeight, overlap)
	if len(spans) == 1 {
		s.logger().Debug("image fits in one tile", "path", src.Path, "height", src.Height, "tileHeight", tileHeight)
		return []Tile{{Source: src.Path, Index: 0, Start: 0, End: src.Height, Path: src.Path}}, nil
	}

	img, err := decode(src.Path)
	if err != nil {
		return nil, &TilingError{Source: src.Path, Err: err}
	}
	if h := img.Bounds().Dy(); h != src.Height {
		return nil, &TilingError{Source: src.Path, Err: fmt.Errorf("decoded height %d does not match %d", h, src.Height)}
	}

	token := uuid.NewString()[:8]
	log := s.logger().With("path", src.Path, "token", token)
	log.Info("tiling image",
		"width", src.Width, "height", src.Height,
		"tileHeight", tileHeight, "overlap", overlap, "tiles", len(spans))

	tiles := make([]Tile, 0, len(spans))
	for i, sp := range spans {
		if err := ctx.Err(); err != nil {
			return tiles, &TilingError{Source: src.Path, Err: err}
		}
		t := Tile{Source: src.Path, Index: i, Start: sp.Start, End: sp.End}
		path, err := s.Store.Write(img, token, t)
		if err != nil {
			return tiles, &TilingError{Source: src.Path, Err: fmt.Errorf("writing tile %d: %w", i, err)}
		}
		t.Path = path
		t.Artifact = true
		tiles = append(tiles, t)
		log.Debug("created tile", "index", i, "start", sp.Start, "end", sp.End, "height", sp.Height())
	}

	log.Info("created tiles", "count", len(tiles))
	return tiles, nil
}

// ArtifactPaths returns the paths of the tiles written by the splitter.
func ArtifactPaths(tiles []Tile) []string {
	var paths []string
	for _, t := range tiles {
		if t.Artifact && t.Path != "" {
			paths = append(paths, t.Path)
		}
	}
	return paths
}

func decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}
