package tiling

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Image references a raster image on disk.
type Image struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// DimensionReadError reports an image whose header could not be read.
type DimensionReadError struct {
	Path string
	Err  error
}

func (e *DimensionReadError) Error() string {
	return fmt.Sprintf("could not read image dimensions from %s: %v", e.Path, e.Err)
}

func (e *DimensionReadError) Unwrap() error { return e.Err }

// Probe returns the image at path with its pixel dimensions. Only the header
// is decoded.
func Probe(path string) (Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return Image{}, &DimensionReadError{Path: path, Err: err}
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return Image{}, &DimensionReadError{Path: path, Err: err}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Image{}, &DimensionReadError{
			Path: path,
			Err:  fmt.Errorf("invalid dimensions %dx%d", cfg.Width, cfg.Height),
		}
	}
	return Image{Path: path, Width: cfg.Width, Height: cfg.Height}, nil
}
