package tiling

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func TestProbe_PNG(t *testing.T) {
	path := writeBlankPNG(t, t.TempDir(), 1920, 37)
	img, err := Probe(path)
	require.NoError(t, err)
	require.Equal(t, Image{Path: path, Width: 1920, Height: 37}, img)
}

func TestProbe_BMP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot.bmp")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, bmp.Encode(f, image.NewRGBA(image.Rect(0, 0, 12, 34))))
	require.NoError(t, f.Close())

	img, err := Probe(path)
	require.NoError(t, err)
	require.Equal(t, 12, img.Width)
	require.Equal(t, 34, img.Height)
}

func TestProbe_Errors(t *testing.T) {
	junk := filepath.Join(t.TempDir(), "junk.png")
	require.NoError(t, os.WriteFile(junk, []byte("definitely not a png"), 0o644))

	for _, path := range []string{"/nonexistent/shot.png", junk} {
		_, err := Probe(path)
		var de *DimensionReadError
		require.ErrorAs(t, err, &de)
		require.Equal(t, path, de.Path)
		require.NotNil(t, de.Unwrap())
	}
}
