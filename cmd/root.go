package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AyushMishra1006/endee-code-assistant/internal/analyzer"
	"github.com/AyushMishra1006/endee-code-assistant/internal/config"
)

var (
	flagConfig     string
	flagOllama     string
	flagEmbedModel string
	flagChatModel  string
	flagCache      string
)

var rootCmd = &cobra.Command{
	Use:   "endee",
	Short: "Ask questions about any GitHub repository, powered by RAG",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file path (YAML)")
	rootCmd.PersistentFlags().StringVar(&flagOllama, "ollama", "", "ollama base URL (default "+config.DefaultOllamaURL+")")
	rootCmd.PersistentFlags().StringVar(&flagEmbedModel, "embed-model", "", "embedding model (default "+config.DefaultEmbedModel+")")
	rootCmd.PersistentFlags().StringVar(&flagChatModel, "chat-model", "", "generative model for answers (default "+config.DefaultChatModel+")")
	rootCmd.PersistentFlags().StringVar(&flagCache, "cache", "", "analysis cache path (default ~/.endee/cache.db)")
}

// loadConfig layers flag overrides over the config file and defaults.
// Without --config the default location is tried; its absence is fine.
func loadConfig() (config.Config, error) {
	path := flagConfig
	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, ".endee", "config.yaml")
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if flagOllama != "" {
		cfg.OllamaURL = flagOllama
	}
	if flagEmbedModel != "" {
		cfg.EmbedModel = flagEmbedModel
	}
	if flagChatModel != "" {
		cfg.ChatModel = flagChatModel
	}
	if flagCache != "" {
		cfg.CachePath = flagCache
	}
	return cfg, nil
}

func newAnalyzer() (*analyzer.Analyzer, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return analyzer.New(analyzer.Config{
		OllamaURL:  cfg.OllamaURL,
		EmbedModel: cfg.EmbedModel,
		ChatModel:  cfg.ChatModel,
		CachePath:  cfg.CachePath,
		TopK:       cfg.TopK,
	})
}
