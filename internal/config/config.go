// Package config loads the assistant configuration from a YAML file,
// falling back to defaults when the file or individual keys are absent.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Defaults used when no config file or flag overrides them.
const (
	DefaultOllamaURL  = "http://localhost:11434"
	DefaultEmbedModel = "nomic-embed-text"
	DefaultChatModel  = "qwen3:8b"
	DefaultTopK       = 5
	DefaultListenAddr = ":8080"
)

// Config holds all user-tunable settings.
type Config struct {
	OllamaURL  string `yaml:"ollama_url"`
	EmbedModel string `yaml:"embed_model"`
	ChatModel  string `yaml:"chat_model"`
	CachePath  string `yaml:"cache_path"`
	TopK       int    `yaml:"top_k"`
	ListenAddr string `yaml:"listen_addr"`
}

// Default returns the built-in configuration. The cache lives under the
// user's home directory; if that cannot be resolved, the current
// directory is used.
func Default() Config {
	cachePath := filepath.Join(".endee", "cache.db")
	if home, err := os.UserHomeDir(); err == nil {
		cachePath = filepath.Join(home, ".endee", "cache.db")
	}
	return Config{
		OllamaURL:  DefaultOllamaURL,
		EmbedModel: DefaultEmbedModel,
		ChatModel:  DefaultChatModel,
		CachePath:  cachePath,
		TopK:       DefaultTopK,
		ListenAddr: DefaultListenAddr,
	}
}

// Load reads the YAML file at path, layering it over the defaults. A
// missing file is not an error; a present but unparsable file is.
// An empty path loads pure defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if file.OllamaURL != "" {
		cfg.OllamaURL = file.OllamaURL
	}
	if file.EmbedModel != "" {
		cfg.EmbedModel = file.EmbedModel
	}
	if file.ChatModel != "" {
		cfg.ChatModel = file.ChatModel
	}
	if file.CachePath != "" {
		cfg.CachePath = file.CachePath
	}
	if file.TopK > 0 {
		cfg.TopK = file.TopK
	}
	if file.ListenAddr != "" {
		cfg.ListenAddr = file.ListenAddr
	}
	return cfg, nil
}
