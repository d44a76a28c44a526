package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dshills/sitewatch/internal/cache"
	"github.com/dshills/sitewatch/internal/config"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the vision response cache",
	Long: "Model replies are cached per provider, model, prompt and screenshot pair, so re-running a " +
		"comparison on unchanged screenshots does not call the model again.",
}

// openCache opens the configured response cache. force opens it even when
// caching is disabled, so entries left from earlier runs can be removed.
func openCache(force bool) (*cache.Cache, error) {
	cfg, err := config.Load(buildOverrides())
	if err != nil {
		return nil, err
	}
	c, err := cache.New(force || cfg.Cache.Enabled, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return c, nil
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached model reply",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache(true)
		if err != nil {
			return err
		}
		n, err := c.Clear()
		if err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cache cleared (%d entries removed).\n", n)
		return nil
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove expired and unreadable cached replies",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache(true)
		if err != nil {
			return err
		}
		n, err := c.Prune()
		if err != nil {
			return fmt.Errorf("pruning cache: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cache pruned (%d entries removed).\n", n)
		return nil
	},
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show cache location, size and entry ages",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache(false)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if !c.Enabled() {
			fmt.Fprintln(out, "Cache is disabled.")
			return nil
		}
		stats, err := c.GetStats()
		if err != nil {
			return fmt.Errorf("reading cache stats: %w", err)
		}
		if flagFormat == "json" {
			data, err := json.MarshalIndent(stats, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(data))
			return nil
		}
		writeCacheStats(out, stats, now())
		return nil
	},
}

func writeCacheStats(w io.Writer, s cache.Stats, at time.Time) {
	fmt.Fprintf(w, "Directory:  %s\n", s.Dir)
	ttl := "never expires"
	if s.TTLSeconds > 0 {
		ttl = (time.Duration(s.TTLSeconds) * time.Second).String()
	}
	fmt.Fprintf(w, "TTL:        %s\n", ttl)
	fmt.Fprintf(w, "Replies:    %d (%d expired)\n", s.Entries, s.Expired)
	fmt.Fprintf(w, "Size:       %.1f KiB\n", float64(s.TotalBytes)/1024)
	if s.Oldest != nil {
		fmt.Fprintf(w, "Oldest:     %s ago\n", at.Sub(*s.Oldest).Round(time.Second))
	}
	if s.Newest != nil {
		fmt.Fprintf(w, "Newest:     %s ago\n", at.Sub(*s.Newest).Round(time.Second))
	}
	if s.Expired > 0 {
		fmt.Fprintln(w, "Run 'sitewatch cache prune' to remove expired replies.")
	}
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cachePruneCmd)
	cacheCmd.AddCommand(cacheShowCmd)
	cacheShowCmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json)")
}
