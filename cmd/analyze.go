package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var flagForce bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze <github-url>",
	Short: "Clone a GitHub repository and build its searchable index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAnalyzer()
		if err != nil {
			return err
		}
		defer a.Close()

		stats, err := a.Analyze(cmd.Context(), args[0], flagForce)
		if err != nil {
			return err
		}

		if stats.CacheHit {
			fmt.Printf("Restored from cache: %d chunks (%s)\n", stats.Chunks, stats.Duration.Round(10*time.Millisecond))
			return nil
		}
		fmt.Printf("Analyzed %d files (%d parsed, %d failed): %d chunks in %s\n",
			stats.FilesTotal, stats.FilesParsed, stats.ParseFailures, stats.Chunks,
			stats.Duration.Round(10*time.Millisecond))
		return nil
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&flagForce, "force", false, "re-analyze even when a cached snapshot exists")
	rootCmd.AddCommand(analyzeCmd)
}
