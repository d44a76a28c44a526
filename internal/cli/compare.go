package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dshills/sitewatch/internal/analysis"
	"github.com/dshills/sitewatch/internal/cache"
	"github.com/dshills/sitewatch/internal/capture"
	"github.com/dshills/sitewatch/internal/config"
	"github.com/dshills/sitewatch/internal/output"
	"github.com/dshills/sitewatch/internal/store"
	"github.com/dshills/sitewatch/internal/tiling"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare <url>",
	Short: "Capture the page again and compare it with its baseline",
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
		st, err := store.New(s.cfg.StorageDir)
		if err != nil {
			fail(cmd, err)
			return nil
		}
		b, err := lookupBaseline(st, name, url)
		if err != nil {
			fail(cmd, err)
			return nil
		}

		ctx := commandContext(cmd)
		ts := now()
		currentPath := st.Path(store.CurrentFilename(name, ts))
		log := s.log.With("component", "compare", "name", name)
		if err := newCapturer(log).Capture(ctx, url, currentPath, captureOptions(s)); err != nil {
			fail(cmd, err)
			return nil
		}

		meta := analysis.Metadata{
			Name:         name,
			URL:          url,
			Timestamp:    ts.Format(time.RFC3339),
			BaselineFile: b.File,
			CurrentFile:  filepath.Base(currentPath),
		}
		report, ok := runAnalysis(ctx, cmd, s, meta, b.Path, currentPath)
		if !ok {
			return nil
		}

		artifacts := []string{currentPath}
		if !flagNoSave {
			path, err := st.SaveReport(name, report, ts)
			if err != nil {
				fail(cmd, err)
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Detailed report saved: %s\n", path)
			artifacts = append(artifacts, path)
		}
		uploadArtifacts(ctx, s, name, artifacts...)
		return nil
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <baseline.png> <current.png>",
	Short: "Compare two existing screenshots",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		defer s.Close()

		name := flagName
		if name == "" {
			name = "adhoc"
		}
		meta := analysis.Metadata{
			Name:         name,
			Timestamp:    now().Format(time.RFC3339),
			BaselineFile: filepath.Base(args[0]),
			CurrentFile:  filepath.Base(args[1]),
		}
		runAnalysis(commandContext(cmd), cmd, s, meta, args[0], args[1])
		return nil
	},
}

// runAnalysis compares the two screenshots, writes the report in the
// configured format and sets the exit code. It returns false when the
// comparison could not be completed.
func runAnalysis(ctx context.Context, cmd *cobra.Command, s *session, meta analysis.Metadata, baselinePath, currentPath string) (*analysis.Report, bool) {
	log := s.log.With("component", "analysis", "name", meta.Name)

	modelName, provider, ids, err := resolveModel(s.catalog, s.cfg)
	if err != nil {
		fail(cmd, err)
		return nil, false
	}
	vision, err := newVision(provider, ids)
	if err != nil {
		fail(cmd, err)
		return nil, false
	}
	c, err := cache.New(s.cfg.Cache.Enabled, s.cfg.Cache.Dir, s.cfg.Cache.TTLSeconds)
	if err != nil {
		log.Warn("response cache unavailable", "error", err)
		c = nil
	}

	engine := &analysis.Engine{
		Comparer: &analysis.VisionComparer{
			Provider: vision,
			Model:    modelName,
			Cache:    c,
			Logger:   log,
		},
		Splitter:    tiling.NewSplitter(s.cfg.Tiling.TempDir, log),
		Limits:      tiling.Limits{MaxWidth: s.cfg.Tiling.MaxWidth, MaxHeight: s.cfg.Tiling.MaxHeight},
		TileHeight:  s.cfg.Tiling.TileHeight,
		Overlap:     s.cfg.Tiling.Overlap,
		Concurrency: s.cfg.Tiling.Concurrency,
		Logger:      log,
	}

	start := time.Now()
	a, err := engine.Compare(ctx, baselinePath, currentPath, analysis.Target{Name: meta.Name, URL: meta.URL})
	if err != nil {
		fail(cmd, err)
		return nil, false
	}
	log.Info("comparison finished",
		"tiles", a.TileCount, "severity", a.Severity, "duration", time.Since(start).Round(time.Millisecond))

	meta.Provider = provider
	meta.Model = modelName
	report := &analysis.Report{
		Tool:     "sitewatch",
		Version:  version,
		RunID:    uuid.NewString(),
		Metadata: meta,
		Analysis: a,
	}

	if err := output.WriteReport(cmd.OutOrStdout(), report, s.cfg.Format, flagOut); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error writing output: %v\n", err)
		exitCode = ExitRuntimeError
		return report, false
	}

	if analysis.MeetsThreshold(a.Severity, s.cfg.FailOn) {
		exitCode = ExitChanges
	}
	return report, true
}

// resolveModel maps the configured model through the session's catalog.
func resolveModel(catalog *config.CatalogCache, cfg config.Config) (name, provider string, ids []string, err error) {
	cat, err := catalog.Load()
	if err != nil {
		return "", "", nil, err
	}
	name = cfg.Model
	if name == "" {
		name = cat.DefaultModel
	}
	provider, ids = cat.Resolve(name, cfg.Provider)
	return name, provider, ids, nil
}

// catalogCache returns the catalog cache for cfg.ModelsFile, or for the
// default location inside the config directory.
func catalogCache(cfg config.Config) *config.CatalogCache {
	path := cfg.ModelsFile
	if path == "" {
		if p, err := config.DefaultCatalogPath(); err == nil {
			path = p
		}
	}
	return config.NewCatalogCache(path)
}

var newArtifactStore = func(ctx context.Context, cfg store.MinIOConfig, log *slog.Logger) (store.ArtifactStore, error) {
	return store.NewMinIO(ctx, cfg, log)
}

// uploadArtifacts copies files to object storage when enabled. Upload
// failures are logged and do not change the exit code.
func uploadArtifacts(ctx context.Context, s *session, name string, paths ...string) {
	a := s.cfg.Artifacts
	if !a.Enabled || len(paths) == 0 {
		return
	}
	log := s.log.With("component", "artifacts")
	as, err := newArtifactStore(ctx, store.MinIOConfig{
		Endpoint:  a.Endpoint,
		Region:    a.Region,
		Bucket:    a.Bucket,
		AccessKey: a.AccessKey,
		SecretKey: a.SecretKey,
		UseSSL:    a.UseSSL,
	}, log)
	if err != nil {
		log.Warn("artifact storage unavailable", "error", err)
		return
	}
	for _, p := range paths {
		u, err := as.Upload(ctx, p, store.ArtifactKey(name, p))
		if err != nil {
			log.Warn("artifact upload failed", "path", p, "error", err)
			continue
		}
		log.Info("artifact uploaded", "url", u)
	}
}

func init() {
	for _, cmd := range []*cobra.Command{compareCmd, analyzeCmd} {
		cmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json, markdown)")
		cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
		cmd.Flags().StringVar(&flagFailOn, "fail-on", "", "Exit 1 at or above this severity (none, minor, moderate, major, critical, unknown)")
		cmd.Flags().IntVar(&flagTileHeight, "tile-height", 0, "Tile height in pixels (default: chosen from image height)")
		cmd.Flags().IntVar(&flagOverlap, "overlap", 0, "Rows shared between neighbouring tiles")
		cmd.Flags().IntVar(&flagConcurrency, "concurrency", 0, "Tiles analyzed in parallel")
		cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Bypass the response cache")
	}
	analyzeCmd.Flags().StringVar(&flagName, "name", "", "Name recorded in the report")
	compareCmd.Flags().BoolVar(&flagNoSave, "no-save", false, "Do not write the JSON report to the storage directory")
}
