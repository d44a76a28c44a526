package cli

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"strings"
	"time"

	"github.com/dshills/sitewatch/internal/config"
	"github.com/dshills/sitewatch/internal/providers"
	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Model catalog and provider checks",
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List models in the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		defer s.Close()
		cat, err := s.catalog.Load()
		if err != nil {
			fail(cmd, err)
			return nil
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Available models:")
		fmt.Fprintln(out, strings.Repeat("=", 60))
		if v, ok := cat.Metadata["version"]; ok {
			fmt.Fprintf(out, "Catalog version: %s\n", v)
		}
		if v, ok := cat.Metadata["last_updated"]; ok {
			fmt.Fprintf(out, "Last updated:    %s\n", v)
		}
		fmt.Fprintf(out, "Default model:   %s\n", cat.DefaultModel)

		for _, name := range cat.Names() {
			m := cat.Models[name]
			provider := m.Provider
			if provider == "" {
				provider = s.cfg.Provider
			}
			fmt.Fprintln(out, strings.Repeat("-", 60))
			fmt.Fprintf(out, "Model:        %s\n", name)
			fmt.Fprintf(out, "Provider:     %s\n", provider)
			fmt.Fprintf(out, "Description:  %s\n", m.Description)
			for _, kv := range [][2]string{{"Speed", m.Speed}, {"Cost", m.Cost}, {"Quality", m.Quality}} {
				if kv[1] != "" {
					fmt.Fprintf(out, "%-13s %s\n", kv[0]+":", kv[1])
				}
			}
			fmt.Fprintf(out, "Primary ID:   %s\n", m.InferenceProfile)
			fmt.Fprintf(out, "Fallback ID:  %s\n", m.Direct)
		}
		return nil
	},
}

var modelsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the built-in model catalog to a file for editing",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		path := cfg.ModelsFile
		if path == "" {
			if path, err = config.DefaultCatalogPath(); err != nil {
				return err
			}
		}
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Model catalog already exists at %s\n", path)
			return nil
		}
		if err := config.WriteCatalog(path, config.DefaultCatalog()); err != nil {
			return fmt.Errorf("writing model catalog: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Model catalog created at %s\n", path)
		return nil
	},
}

var modelsDoctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Validate provider credentials with a tiny vision request",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		defer s.Close()
		name, provider, ids, err := resolveModel(s.catalog, s.cfg)
		if err != nil {
			fail(cmd, err)
			return nil
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Checking %s (%s: %s)...\n", name, provider, strings.Join(ids, ", "))

		p, err := newVision(provider, ids)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "FAIL: %v\n", err)
			exitCode = ExitAuthError
			return nil
		}

		ctx, cancel := context.WithTimeout(commandContext(cmd), 30*time.Second)
		defer cancel()

		_, err = p.Analyze(ctx, providers.VisionRequest{
			Prompt:    "Reply with the single word ok.",
			Images:    []providers.Image{{MediaType: "image/png", Data: probeImage()}},
			MaxTokens: 10,
		})
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "FAIL: %v\n", err)
			if providers.IsAuthError(err) {
				exitCode = ExitAuthError
			} else {
				exitCode = ExitRuntimeError
			}
			return nil
		}

		fmt.Fprintf(out, "OK: %s is configured and responding\n", p.Name())
		return nil
	},
}

// probeImage is an 8x8 white PNG.
func probeImage() []byte {
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = color.GrayModel.Convert(color.White).(color.Gray).Y
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

func init() {
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsInitCmd)
	modelsCmd.AddCommand(modelsDoctorCmd)
}
