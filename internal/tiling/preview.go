package tiling

import (
	"fmt"
	"math"

	"github.com/fogleman/gg"
)

// RenderPreview writes a PNG to outPath showing src scaled to at most
// maxWidth pixels wide, with each span's top edge marked and the overlap
// bands between neighbouring spans shaded.
func RenderPreview(src Image, spans []Span, outPath string, maxWidth int) error {
	img, err := gg.LoadImage(src.Path)
	if err != nil {
		return fmt.Errorf("loading image: %w", err)
	}
	b := img.Bounds()

	scale := 1.0
	if maxWidth > 0 && b.Dx() > maxWidth {
		scale = float64(maxWidth) / float64(b.Dx())
	}
	w := max(1, int(math.Round(float64(b.Dx())*scale)))
	h := max(1, int(math.Round(float64(b.Dy())*scale)))

	dc := gg.NewContext(w, h)
	dc.Push()
	dc.Scale(scale, scale)
	dc.DrawImage(img, -b.Min.X, -b.Min.Y)
	dc.SetRGBA(1, 0.6, 0, 0.3)
	for i := 0; i+1 < len(spans); i++ {
		next := spans[i+1]
		if next.Start < spans[i].End {
			dc.DrawRectangle(0, float64(next.Start), float64(b.Dx()), float64(spans[i].End-next.Start))
			dc.Fill()
		}
	}
	dc.Pop()

	dc.SetLineWidth(2)
	for i, sp := range spans {
		y := float64(sp.Start) * scale
		dc.SetRGBA(1, 0, 0, 0.9)
		dc.DrawLine(0, y, float64(w), y)
		dc.Stroke()

		label := fmt.Sprintf("Tile %d: rows %d-%d", i+1, sp.Start, sp.End)
		lw, lh := dc.MeasureString(label)
		dc.SetRGB(1, 1, 1)
		dc.DrawRectangle(4, y+4, lw+8, lh+8)
		dc.Fill()
		dc.SetRGB(0.8, 0, 0)
		dc.DrawString(label, 8, y+8+lh)
	}

	if err := dc.SavePNG(outPath); err != nil {
		return fmt.Errorf("writing preview: %w", err)
	}
	return nil
}
