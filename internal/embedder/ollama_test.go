package embedder

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEmbedPreservesOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("model = %q", req.Model)
		}
		// One distinguishable vector per input, in order.
		out := make([][]float32, len(req.Input))
		for i := range req.Input {
			out[i] = []float32{float32(i), 0, 0}
		}
		json.NewEncoder(w).Encode(map[string]any{"embeddings": out})
	}))
	defer srv.Close()

	e := NewOllamaEmbedder(srv.URL, "test-model")
	got, err := e.Embed(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d embeddings, want 3", len(got))
	}
	for i, v := range got {
		if v[0] != float32(i) {
			t.Errorf("embedding %d out of order: %v", i, v)
		}
	}
}

func TestEmbedEmptyInput(t *testing.T) {
	e := NewOllamaEmbedder("http://localhost:0", "test-model")
	got, err := e.Embed(context.Background(), nil)
	if err != nil || got != nil {
		t.Errorf("Embed(nil) = (%v, %v), want (nil, nil)", got, err)
	}
}

func TestEmbedServerErrorIsModelUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `model "test-model" not found`, http.StatusNotFound)
	}))
	defer srv.Close()

	e := NewOllamaEmbedder(srv.URL, "test-model")
	_, err := e.Embed(context.Background(), []string{"a"})
	if !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("err = %v, want ErrModelUnavailable", err)
	}
}

func TestEmbedConnectionRefusedIsModelUnavailable(t *testing.T) {
	// Port 0 is never listening.
	e := NewOllamaEmbedder("http://127.0.0.1:0", "test-model")
	_, err := e.Embed(context.Background(), []string{"a"})
	if !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("err = %v, want ErrModelUnavailable", err)
	}
}

func TestEmbedCountMismatchIsModelUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"embeddings": [][]float32{{1}}})
	}))
	defer srv.Close()

	e := NewOllamaEmbedder(srv.URL, "test-model")
	_, err := e.Embed(context.Background(), []string{"a", "b"})
	if !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("err = %v, want ErrModelUnavailable", err)
	}
}

func TestEmbedSingle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"embeddings": [][]float32{{0.5, 0.5}}})
	}))
	defer srv.Close()

	e := NewOllamaEmbedder(srv.URL, "test-model")
	got, err := e.EmbedSingle(context.Background(), "question")
	if err != nil {
		t.Fatalf("EmbedSingle: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got vector of length %d, want 2", len(got))
	}
}
