package main

import (
	"fmt"
	"io"
	"time"

	"github.com/CliForge/remotecli/pkg/cache"
	"github.com/pterm/pterm"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the cache of fetched specifications",
		Long: `Manage the cache of specifications fetched with --spec <url>.

Available subcommands:
  info   - Show the cache directory, entry count and size
  prune  - Remove entries older than a duration
  clear  - Remove every entry`,
	}

	cmd.AddCommand(newCacheInfoCmd())
	cmd.AddCommand(newCachePruneCmd())
	cmd.AddCommand(newCacheClearCmd())

	return cmd
}

func openCache() (*cache.DocumentCache, error) {
	return cache.New(afero.NewOsFs(), cache.DefaultDir())
}

func newCacheInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show cache information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCache()
			if err != nil {
				return err
			}
			stats, err := c.Stats(cmd.Context())
			if err != nil {
				return err
			}
			printCacheInfo(cmd.OutOrStdout(), c.BaseDir, stats)
			return nil
		},
	}
}

func newCachePruneCmd() *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove stale cache entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCache()
			if err != nil {
				return err
			}
			removed, err := c.Prune(cmd.Context(), olderThan)
			if err != nil {
				return err
			}
			pterm.Success.Printfln("Removed %d cache entries older than %s", removed, olderThan)
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 24*time.Hour, "Remove entries fetched longer ago than this")

	return cmd
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCache()
			if err != nil {
				return err
			}
			if err := c.Clear(cmd.Context()); err != nil {
				return err
			}
			pterm.Success.Println("Cache cleared")
			return nil
		},
	}
}

func printCacheInfo(w io.Writer, dir string, stats *cache.Stats) {
	fmt.Fprintln(w, "Cache Information:")
	fmt.Fprintf(w, "  Directory: %s\n", dir)
	fmt.Fprintf(w, "  Entries: %d\n", stats.Entries)
	if stats.Size > 0 {
		fmt.Fprintf(w, "  Size: %s\n", formatSize(stats.Size))
	} else {
		fmt.Fprintln(w, "  Size: Empty")
	}
}

// formatSize formats a byte count with binary units.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
