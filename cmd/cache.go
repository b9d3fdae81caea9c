package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AyushMishra1006/endee-code-assistant/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the analysis cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cached repositories and their sizes",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAnalyzer()
		if err != nil {
			return err
		}
		defer a.Close()

		stats, err := a.Cache().Stats()
		if err != nil {
			return err
		}

		fmt.Printf("Cached repositories: %d (%.1f MB total)\n", stats.Repos, float64(stats.TotalBytes)/(1<<20))
		for _, e := range stats.Records {
			fmt.Printf("  %s  %d chunks  %.1f MB  %s\n",
				e.RepoURL, e.ChunkCount, float64(e.SizeBytes)/(1<<20),
				e.CreatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [github-url]",
	Short: "Remove one cached analysis, or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAnalyzer()
		if err != nil {
			return err
		}
		defer a.Close()

		if len(args) == 0 {
			if err := a.Cache().ClearAll(); err != nil {
				return err
			}
			fmt.Println("Cache cleared.")
			return nil
		}
		if err := a.Cache().Clear(cache.Fingerprint(args[0])); err != nil {
			return err
		}
		fmt.Printf("Cleared cached analysis of %s\n", cache.NormalizeURL(args[0]))
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
