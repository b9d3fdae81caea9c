package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AyushMishra1006/endee-code-assistant/internal/llm"
	"github.com/AyushMishra1006/endee-code-assistant/internal/rag"
)

var chatCmd = &cobra.Command{
	Use:   "chat <github-url>",
	Short: "Interactive question loop against a repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAnalyzer()
		if err != nil {
			return err
		}
		defer a.Close()

		fmt.Println("Analyzing repository...")
		stats, err := a.Analyze(cmd.Context(), args[0], flagForce)
		if err != nil {
			return err
		}
		if stats.CacheHit {
			fmt.Printf("Restored %d chunks from cache.\n", stats.Chunks)
		} else {
			fmt.Printf("Indexed %d chunks from %d files.\n", stats.Chunks, stats.FilesParsed)
		}

		scanner := bufio.NewScanner(os.Stdin)
		fmt.Println("endee chat (type /help for commands, /exit to quit)")
		fmt.Println()

		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			question := strings.TrimSpace(scanner.Text())
			if question == "" {
				continue
			}

			switch question {
			case "/exit", "/quit":
				fmt.Println("Goodbye.")
				return nil
			case "/help":
				fmt.Println("Commands:")
				fmt.Println("  /exit   - quit chat")
				fmt.Println("  /help   - show this help")
				continue
			}

			fmt.Println("[Thinking...]")

			resp, err := a.Ask(cmd.Context(), question, flagK)
			if err != nil {
				if errors.Is(err, llm.ErrGenerationUnavailable) && resp != nil {
					fmt.Fprintf(os.Stderr, "answer generation failed: %v\n", err)
					printSources(resp.Sources)
					continue
				}
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				continue
			}

			fmt.Println()
			fmt.Println(resp.Answer)
			fmt.Println()
			printSources(resp.Sources)
		}

		return scanner.Err()
	},
}

func printSources(sources []rag.Source) {
	if len(sources) == 0 {
		return
	}
	fmt.Println("Sources:")
	for _, s := range sources {
		fmt.Printf("  %s:%s (lines %s, similarity %.3f)\n", s.File, s.Symbol, s.Lines, s.Similarity)
	}
	fmt.Println()
}

func init() {
	chatCmd.Flags().BoolVar(&flagForce, "force", false, "re-analyze even when a cached snapshot exists")
	chatCmd.Flags().IntVar(&flagK, "k", 0, "number of chunks to retrieve per question (default from config)")
	rootCmd.AddCommand(chatCmd)
}
