package tiling

import "log/slog"

const (
	// DefaultMaxHeight is the tallest image sent to the vision model untiled.
	DefaultMaxHeight = 4000
	// DefaultMaxWidth is the widest image the vision API accepts.
	DefaultMaxWidth = 4096
)

// Limits holds the maximum image dimensions accepted without tiling.
type Limits struct {
	MaxWidth  int `json:"maxWidth"`
	MaxHeight int `json:"maxHeight"`
}

// DefaultLimits returns the vision API limits.
func DefaultLimits() Limits {
	return Limits{MaxWidth: DefaultMaxWidth, MaxHeight: DefaultMaxHeight}
}

// Exceeded reports whether an image of the given size is over either limit.
func (l Limits) Exceeded(width, height int) bool {
	return height > l.MaxHeight || width > l.MaxWidth
}

// NeedsTiling reports whether the image at path must be split. An unreadable
// image is assumed not to need tiling so the comparison can still proceed.
func NeedsTiling(path string, limits Limits, logger *slog.Logger) bool {
	if logger == nil {
		logger = slog.Default()
	}
	img, err := Probe(path)
	if err != nil {
		logger.Warn("could not check image dimensions, assuming no tiling needed",
			"path", path, "error", err)
		return false
	}
	if limits.Exceeded(img.Width, img.Height) {
		logger.Info("image requires tiling",
			"path", path,
			"width", img.Width, "height", img.Height,
			"maxWidth", limits.MaxWidth, "maxHeight", limits.MaxHeight)
		return true
	}
	return false
}

// Settings are the tile height and overlap used for a split.
type Settings struct {
	TileHeight int `json:"tileHeight"`
	Overlap    int `json:"overlap"`
}

// RecommendSettings picks tile settings for an image of the given size.
// Images up to 4000px tall become a single tile.
func RecommendSettings(width, height int) Settings {
	switch {
	case height <= 4000:
		return Settings{TileHeight: height, Overlap: 0}
	case height <= 8000:
		return Settings{TileHeight: 3500, Overlap: 250}
	default:
		return Settings{TileHeight: 3000, Overlap: 200}
	}
}

// EstimateTileCount returns the number of tiles the image at path is expected
// to produce. It is advisory; [Plan] is authoritative. Unreadable images
// count as one tile.
func EstimateTileCount(path string, tileHeight int) int {
	img, err := Probe(path)
	if err != nil {
		return 1
	}
	return estimateCount(img.Height, tileHeight)
}

func estimateCount(height, tileHeight int) int {
	if tileHeight <= 0 || height <= 0 {
		return 1
	}
	return max(1, (height+tileHeight-1)/tileHeight)
}
