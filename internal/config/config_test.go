package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OllamaURL != DefaultOllamaURL {
		t.Errorf("ollama_url = %q, want default", cfg.OllamaURL)
	}
	if cfg.TopK != DefaultTopK {
		t.Errorf("top_k = %d, want %d", cfg.TopK, DefaultTopK)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "ollama_url: http://remote:11434\nchat_model: llama3\ntop_k: 8\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OllamaURL != "http://remote:11434" {
		t.Errorf("ollama_url = %q", cfg.OllamaURL)
	}
	if cfg.ChatModel != "llama3" {
		t.Errorf("chat_model = %q", cfg.ChatModel)
	}
	if cfg.TopK != 8 {
		t.Errorf("top_k = %d", cfg.TopK)
	}
	// Keys absent from the file keep their defaults.
	if cfg.EmbedModel != DefaultEmbedModel {
		t.Errorf("embed_model = %q, want default", cfg.EmbedModel)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("ollama_url: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted malformed YAML")
	}
}
