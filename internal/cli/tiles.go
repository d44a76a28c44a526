package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dshills/sitewatch/internal/config"
	"github.com/dshills/sitewatch/internal/tiling"
	"github.com/spf13/cobra"
)

var tilesCmd = &cobra.Command{
	Use:   "tiles",
	Short: "Inspect how a screenshot would be tiled",
}

// tilePlan describes how an image would be split.
type tilePlan struct {
	Path       string        `json:"path"`
	Width      int           `json:"width"`
	Height     int           `json:"height"`
	NeedsTiles bool          `json:"needs_tiling"`
	TileHeight int           `json:"tile_height"`
	Overlap    int           `json:"overlap"`
	Estimated  int           `json:"estimated_tiles"`
	Spans      []tiling.Span `json:"spans"`
}

func planFor(cfg config.Config, path string) (tilePlan, error) {
	img, err := tiling.Probe(path)
	if err != nil {
		return tilePlan{}, err
	}
	limits := tiling.Limits{MaxWidth: cfg.Tiling.MaxWidth, MaxHeight: cfg.Tiling.MaxHeight}
	settings := tiling.RecommendSettings(img.Width, img.Height)
	if cfg.Tiling.TileHeight > 0 {
		settings = tiling.Settings{TileHeight: cfg.Tiling.TileHeight, Overlap: cfg.Tiling.Overlap}
	}
	return tilePlan{
		Path:       path,
		Width:      img.Width,
		Height:     img.Height,
		NeedsTiles: limits.Exceeded(img.Width, img.Height),
		TileHeight: settings.TileHeight,
		Overlap:    settings.Overlap,
		Estimated:  tiling.EstimateTileCount(path, settings.TileHeight),
		Spans:      tiling.Plan(img.Height, settings.TileHeight, settings.Overlap),
	}, nil
}

var tilesPlanCmd = &cobra.Command{
	Use:   "plan <image>",
	Short: "Show the tile layout for an image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		plan, err := planFor(cfg, args[0])
		if err != nil {
			fail(cmd, err)
			return nil
		}

		out := cmd.OutOrStdout()
		if cfg.Format == "json" {
			data, err := json.MarshalIndent(plan, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		fmt.Fprintf(out, "Image:        %s (%dx%d)\n", plan.Path, plan.Width, plan.Height)
		fmt.Fprintf(out, "Needs tiling: %t (limits %dx%d)\n", plan.NeedsTiles, cfg.Tiling.MaxWidth, cfg.Tiling.MaxHeight)
		fmt.Fprintf(out, "Settings:     tile height %d, overlap %d\n", plan.TileHeight, plan.Overlap)
		fmt.Fprintf(out, "Tiles:        %d (estimated %d)\n", len(plan.Spans), plan.Estimated)
		fmt.Fprintln(out, strings.Repeat("─", 40))
		for i, sp := range plan.Spans {
			fmt.Fprintf(out, "  %3d  rows %5d-%-5d  (%d px)\n", i+1, sp.Start, sp.End, sp.Height())
		}
		return nil
	},
}

var flagPreviewWidth int

var tilesPreviewCmd = &cobra.Command{
	Use:   "preview <image>",
	Short: "Render the tile seams and overlap bands onto a scaled copy of the image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		plan, err := planFor(cfg, args[0])
		if err != nil {
			fail(cmd, err)
			return nil
		}
		outPath := flagOut
		if outPath == "" {
			outPath = strings.TrimSuffix(args[0], ".png") + "_tiles.png"
		}
		src := tiling.Image{Path: plan.Path, Width: plan.Width, Height: plan.Height}
		if err := tiling.RenderPreview(src, plan.Spans, outPath, flagPreviewWidth); err != nil {
			fail(cmd, err)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Preview with %d tiles written to %s\n", len(plan.Spans), outPath)
		return nil
	},
}

func init() {
	tilesCmd.AddCommand(tilesPlanCmd)
	tilesCmd.AddCommand(tilesPreviewCmd)
	for _, cmd := range []*cobra.Command{tilesPlanCmd, tilesPreviewCmd} {
		cmd.Flags().IntVar(&flagTileHeight, "tile-height", 0, "Tile height in pixels (default: chosen from image height)")
		cmd.Flags().IntVar(&flagOverlap, "overlap", 0, "Rows shared between neighbouring tiles")
	}
	tilesPlanCmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json)")
	tilesPreviewCmd.Flags().StringVar(&flagOut, "out", "", "Preview file (default: <image>_tiles.png)")
	tilesPreviewCmd.Flags().IntVar(&flagPreviewWidth, "max-width", 400, "Maximum preview width in pixels")
}
