package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AyushMishra1006/endee-code-assistant/internal/llm"
)

var (
	flagRepo string
	flagK    int
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a single question about an analyzed repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagRepo == "" {
			return fmt.Errorf("--repo is required")
		}

		a, err := newAnalyzer()
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.Analyze(cmd.Context(), flagRepo, false); err != nil {
			return err
		}

		resp, err := a.Ask(cmd.Context(), args[0], flagK)
		if err != nil {
			// Retrieval still worked when the model was just unreachable;
			// show the matched code locations before failing.
			if errors.Is(err, llm.ErrGenerationUnavailable) && resp != nil {
				fmt.Fprintf(os.Stderr, "answer generation failed: %v\n", err)
				printSources(resp.Sources)
				return nil
			}
			return err
		}

		fmt.Println(resp.Answer)
		fmt.Println()
		printSources(resp.Sources)
		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&flagRepo, "repo", "", "GitHub repository URL (required)")
	askCmd.Flags().IntVar(&flagK, "k", 0, "number of chunks to retrieve (default from config)")
	rootCmd.AddCommand(askCmd)
}
