package cmd

import (
	"github.com/spf13/cobra"

	"github.com/AyushMishra1006/endee-code-assistant/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui <github-url>",
	Short: "Interactive terminal UI for exploring a repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAnalyzer()
		if err != nil {
			return err
		}
		defer a.Close()

		return tui.Run(a, args[0], flagForce)
	},
}

func init() {
	tuiCmd.Flags().BoolVar(&flagForce, "force", false, "re-analyze even when a cached snapshot exists")
	rootCmd.AddCommand(tuiCmd)
}
