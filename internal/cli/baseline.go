package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dshills/sitewatch/internal/capture"
	"github.com/dshills/sitewatch/internal/store"
	"github.com/spf13/cobra"
)

var baselineCmd = &cobra.Command{
	Use:   "baseline <url>",
	Short: "Capture and store a baseline screenshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		defer s.Close()

		url := capture.NormalizeURL(args[0])
		name := flagName
		if name == "" {
			name = capture.StorageName(url)
		}
		log := s.log.With("component", "baseline", "name", name)

		st, err := store.New(s.cfg.StorageDir)
		if err != nil {
			fail(cmd, err)
			return nil
		}

		file := store.BaselineFilename(name)
		path := st.Path(file)
		ctx := commandContext(cmd)
		if err := newCapturer(log).Capture(ctx, url, path, captureOptions(s)); err != nil {
			fail(cmd, err)
			return nil
		}

		b := store.Baseline{
			URL:       url,
			File:      file,
			Path:      path,
			Timestamp: now().Format(time.RFC3339),
			Viewport:  store.Viewport{Width: s.cfg.Viewport.Width, Height: s.cfg.Viewport.Height},
		}
		if err := st.Put(name, b); err != nil {
			// Do not leave an unreferenced screenshot behind.
			os.Remove(path)
			fail(cmd, err)
			return nil
		}

		uploadArtifacts(ctx, s, name, path)
		fmt.Fprintf(cmd.OutOrStdout(), "Baseline saved for %s: %s\n", name, path)
		return nil
	},
}

func captureOptions(s *session) capture.Options {
	return capture.Options{
		Width:   s.cfg.Viewport.Width,
		Height:  s.cfg.Viewport.Height,
		Timeout: flagTimeout,
	}
}

// lookupBaseline returns the stored baseline for name, with a hint on how to
// create one when it is missing.
func lookupBaseline(st *store.Store, name, url string) (store.Baseline, error) {
	b, err := st.Get(name)
	if errors.Is(err, store.ErrNoBaseline) {
		return b, fmt.Errorf("no baseline found for %s; run 'sitewatch baseline %s' first", name, url)
	}
	if err != nil {
		return b, err
	}
	if _, err := os.Stat(b.Path); err != nil {
		return b, fmt.Errorf("baseline screenshot for %s is missing: %w", name, err)
	}
	return b, nil
}

func init() {
	for _, cmd := range []*cobra.Command{baselineCmd, compareCmd} {
		cmd.Flags().StringVar(&flagName, "name", "", "Storage name (default: derived from the URL host)")
		cmd.Flags().IntVar(&flagWidth, "width", 0, "Viewport width in pixels")
		cmd.Flags().IntVar(&flagHeight, "height", 0, "Viewport height in pixels")
		cmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "Page load timeout (default 30s)")
	}
}
