package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/dshills/sitewatch/internal/capture"
	"github.com/dshills/sitewatch/internal/config"
	"github.com/dshills/sitewatch/internal/logging"
	"github.com/dshills/sitewatch/internal/providers"
	"github.com/spf13/cobra"
)

const version = "0.3.0"

// Exit codes.
const (
	ExitSuccess      = 0
	ExitChanges      = 1
	ExitUsageError   = 2
	ExitAuthError    = 3
	ExitRuntimeError = 4
)

var rootCmd = &cobra.Command{
	Use:   "sitewatch",
	Short: "Website change monitoring with vision models",
	Long: "sitewatch captures full-page screenshots of websites, keeps baselines, and asks a vision model " +
		"to describe what changed. Oversized screenshots are split into overlapping tiles automatically.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.LoadDotEnv()
	},
}

// Run executes the root command and returns an exit code.
func Run() int {
	exitCode = ExitSuccess
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}
	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

// Seams replaced in tests.
var (
	newCapturer = func(log *slog.Logger) capture.Capturer { return &capture.Chrome{Logger: log} }
	newVision   = providers.New
	now         = time.Now
)

// Persistent flags
var (
	flagProvider   string
	flagModel      string
	flagModelsFile string
	flagStorageDir string
	flagLogLevel   string
	flagLogFile    string
)

// Comparison and capture flags
var (
	flagName        string
	flagFormat      string
	flagOut         string
	flagFailOn      string
	flagWidth       int
	flagHeight      int
	flagTileHeight  int
	flagOverlap     int
	flagConcurrency int
	flagTimeout     time.Duration
	flagNoCache     bool
	flagNoSave      bool
)

func buildOverrides() map[string]string {
	m := make(map[string]string)
	set := func(key, v string) {
		if v != "" {
			m[key] = v
		}
	}
	setInt := func(key string, v int) {
		if v > 0 {
			m[key] = strconv.Itoa(v)
		}
	}
	set("provider", flagProvider)
	set("model", flagModel)
	set("modelsFile", flagModelsFile)
	set("storageDir", flagStorageDir)
	set("log.level", flagLogLevel)
	set("log.file", flagLogFile)
	set("format", flagFormat)
	set("failOn", flagFailOn)
	setInt("viewport.width", flagWidth)
	setInt("viewport.height", flagHeight)
	setInt("tiling.tileHeight", flagTileHeight)
	setInt("tiling.overlap", flagOverlap)
	setInt("tiling.concurrency", flagConcurrency)
	if flagNoCache {
		m["cache.enabled"] = "false"
	}
	return m
}

// session is the per-invocation state shared by the commands that talk to
// the outside world.
type session struct {
	cfg     config.Config
	log     *slog.Logger
	catalog *config.CatalogCache
	close   func() error
}

func newSession() (*session, error) {
	cfg, err := config.Load(buildOverrides())
	if err != nil {
		return nil, err
	}
	log, closeLog, err := logging.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, log: log, catalog: catalogCache(cfg), close: closeLog}, nil
}

func (s *session) Close() {
	if err := s.close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: closing log file: %v\n", err)
	}
}

// fail reports err and records the exit code for it.
func fail(cmd *cobra.Command, err error) {
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	if providers.IsAuthError(err) {
		exitCode = ExitAuthError
		return
	}
	exitCode = ExitRuntimeError
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print sitewatch version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "sitewatch version %s\n", version)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagProvider, "provider", "", "Vision provider (anthropic, openai, gemini, ollama)")
	pf.StringVar(&flagModel, "model", "", "Catalog model name or provider model ID")
	pf.StringVar(&flagModelsFile, "models-file", "", "Model catalog file (YAML or JSON)")
	pf.StringVar(&flagStorageDir, "storage-dir", "", "Directory for screenshots, metadata and reports")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&flagLogFile, "log-file", "", "Append JSON logs to this file")

	rootCmd.AddCommand(baselineCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(tilesCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)
}
