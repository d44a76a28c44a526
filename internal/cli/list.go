package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dshills/sitewatch/internal/store"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored baselines",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		defer s.Close()

		st, err := store.New(s.cfg.StorageDir)
		if err != nil {
			fail(cmd, err)
			return nil
		}
		all, err := st.Load()
		if err != nil {
			fail(cmd, err)
			return nil
		}
		names, err := st.Names()
		if err != nil {
			fail(cmd, err)
			return nil
		}

		out := cmd.OutOrStdout()
		if s.cfg.Format == "json" {
			data, err := json.MarshalIndent(all, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		if len(names) == 0 {
			fmt.Fprintln(out, "No baselines stored yet.")
			return nil
		}
		fmt.Fprintf(out, "Stored baselines (%d):\n", len(names))
		for _, name := range names {
			b := all[name]
			fmt.Fprintln(out, strings.Repeat("─", 40))
			fmt.Fprintf(out, "Name:      %s\n", name)
			fmt.Fprintf(out, "URL:       %s\n", b.URL)
			fmt.Fprintf(out, "Baseline:  %s\n", b.File)
			fmt.Fprintf(out, "Created:   %s\n", b.Timestamp)
			fmt.Fprintf(out, "Viewport:  %dx%d\n", b.Viewport.Width, b.Viewport.Height)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json)")
}
