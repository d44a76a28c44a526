package tiling

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
)

// FileStore persists tiles as PNG files in a directory.
type FileStore struct {
	Dir string
}

// NewFileStore returns a store rooted at dir, or the system temp directory
// when dir is empty.
func NewFileStore(dir string) *FileStore {
	if dir == "" {
		dir = os.TempDir()
	}
	return &FileStore{Dir: dir}
}

// Write crops the rows of t out of img and writes them to a new PNG file.
// The file name embeds token and the tile index so concurrent splits never
// collide.
func (s *FileStore) Write(img image.Image, token string, t Tile) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating tile directory: %w", err)
	}
	b := img.Bounds()
	r := image.Rect(b.Min.X, b.Min.Y+t.Start, b.Max.X, b.Min.Y+t.End)
	if !r.In(b) || r.Empty() {
		return "", fmt.Errorf("tile rows %d-%d outside image bounds %v", t.Start, t.End, b)
	}

	name := fmt.Sprintf("tile_%s_%03d_%d_%d.png", token, t.Index, t.Start, t.End)
	path := filepath.Join(s.Dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating tile file: %w", err)
	}
	if err := png.Encode(f, crop(img, r)); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("encoding tile: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("closing tile file: %w", err)
	}
	return path, nil
}

// Delete removes a tile file. It reports false without error when the file
// is already gone.
func (s *FileStore) Delete(path string) (bool, error) {
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func crop(img image.Image, r image.Rectangle) image.Image {
	if si, ok := img.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		return si.SubImage(r)
	}
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst
}
