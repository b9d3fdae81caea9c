// Package analyzer drives repository analysis and question answering: it
// resolves the cache, clones, extracts chunks, embeds them, fills the
// vector store, and snapshots the result for the next run.
package analyzer

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/AyushMishra1006/endee-code-assistant/internal/cache"
	"github.com/AyushMishra1006/endee-code-assistant/internal/chunker"
	"github.com/AyushMishra1006/endee-code-assistant/internal/chunker/languages"
	"github.com/AyushMishra1006/endee-code-assistant/internal/embedder"
	"github.com/AyushMishra1006/endee-code-assistant/internal/gitrepo"
	"github.com/AyushMishra1006/endee-code-assistant/internal/llm"
	"github.com/AyushMishra1006/endee-code-assistant/internal/rag"
	"github.com/AyushMishra1006/endee-code-assistant/internal/vectorstore"
	"github.com/AyushMishra1006/endee-code-assistant/internal/walker"
)

const embedBatchSize = 32

// Status is the coarse analysis state surfaced to callers.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusCloning   Status = "cloning"
	StatusParsing   Status = "parsing"
	StatusEmbedding Status = "embedding"
	StatusIndexing  Status = "indexing"
	StatusReady     Status = "ready"
	StatusError     Status = "error"
)

// Embedder is the embedding collaborator. Satisfied by
// *embedder.OllamaEmbedder.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedSingle(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// Cloner acquires a repository as a local directory. Satisfied by
// gitrepo.Clone; swapped for a local copy in tests.
type Cloner func(ctx context.Context, repoURL string) (dir string, cleanup func(), err error)

// Config holds the analyzer configuration.
type Config struct {
	OllamaURL  string
	EmbedModel string
	ChatModel  string
	CachePath  string
	TopK       int
}

// Stats reports the outcome of one analysis.
type Stats struct {
	FilesTotal    int           `json:"files_total"`
	FilesParsed   int           `json:"files_parsed"`
	ParseFailures int           `json:"parse_failures"`
	Chunks        int           `json:"chunks"`
	CacheHit      bool          `json:"cache_hit"`
	Duration      time.Duration `json:"-"`
}

// StatusInfo is the current state reported to callers of Status.
type StatusInfo struct {
	Status  Status `json:"status"`
	RepoURL string `json:"repo_url,omitempty"`
	Chunks  int    `json:"chunks"`
}

// Analyzer analyzes one repository at a time and answers questions against
// the resulting vector store. Callers construct one per process or per
// tenant; there is no global instance.
type Analyzer struct {
	embedder  Embedder
	generator rag.Generator
	chunker   *chunker.ASTChunker
	registry  *chunker.Registry
	cache     *cache.Manager
	clone     Cloner
	topK      int

	mu      sync.Mutex
	status  Status
	repoURL string
	store   *vectorstore.Store
}

// New creates an Analyzer with Ollama collaborators and a SQLite-backed
// snapshot cache at cfg.CachePath.
func New(cfg Config) (*Analyzer, error) {
	blobs, err := cache.OpenSQLite(cfg.CachePath)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	reg := chunker.NewRegistry()
	languages.RegisterPython(reg)

	topK := cfg.TopK
	if topK <= 0 {
		topK = 5
	}

	return &Analyzer{
		embedder:  embedder.NewOllamaEmbedder(cfg.OllamaURL, cfg.EmbedModel),
		generator: llm.NewOllamaChat(cfg.OllamaURL, cfg.ChatModel),
		chunker:   chunker.NewASTChunker(reg),
		registry:  reg,
		cache:     cache.NewManager(blobs),
		clone:     gitrepo.Clone,
		topK:      topK,
		status:    StatusIdle,
	}, nil
}

// Analyze prepares a repository for questioning. A cached snapshot is
// restored when available (unless force is set); otherwise the repository
// is cloned, parsed, embedded, indexed, and the snapshot saved.
func (a *Analyzer) Analyze(ctx context.Context, repoURL string, force bool) (*Stats, error) {
	start := time.Now()
	fp := cache.Fingerprint(repoURL)

	if !force {
		store, ok, err := a.cache.Load(fp)
		if err != nil {
			return nil, fmt.Errorf("cache stage: %w", err)
		}
		if ok {
			a.setCurrent(repoURL, store, StatusReady)
			return &Stats{Chunks: store.Len(), CacheHit: true, Duration: time.Since(start)}, nil
		}
	}

	a.setStatus(repoURL, StatusCloning)
	dir, cleanup, err := a.clone(ctx, repoURL)
	if err != nil {
		a.setStatus(repoURL, StatusError)
		return nil, fmt.Errorf("clone stage: %w", err)
	}
	defer cleanup()

	stats, store, err := a.index(ctx, repoURL, dir)
	if err != nil {
		a.setStatus(repoURL, StatusError)
		return nil, err
	}

	if err := a.cache.Save(fp, cache.NormalizeURL(repoURL), store); err != nil {
		// A failed snapshot write costs a re-analysis next time, nothing more.
		fmt.Fprintf(os.Stderr, "warning: could not cache analysis of %s: %v\n", repoURL, err)
	}

	a.setCurrent(repoURL, store, StatusReady)
	stats.Duration = time.Since(start)
	return stats, nil
}

// index runs the sequential extraction, embedding, and insertion stages
// over a local directory. Each stage consumes the prior stage's complete
// output; per-file parse failures are counted, never fatal.
func (a *Analyzer) index(ctx context.Context, repoURL, dir string) (*Stats, *vectorstore.Store, error) {
	a.setStatus(repoURL, StatusParsing)
	files, err := walker.Walk(dir, a.registry.Extensions())
	if err != nil {
		return nil, nil, fmt.Errorf("walk stage: %w", err)
	}

	stats := &Stats{FilesTotal: len(files)}
	var chunks []vectorstore.Chunk
	for _, fi := range files {
		src, err := os.ReadFile(fi.Path)
		if err != nil {
			stats.ParseFailures++
			fmt.Fprintf(os.Stderr, "warning: read %s: %v\n", fi.RelPath, err)
			continue
		}
		raw, err := a.chunker.Chunk(fi.RelPath, src)
		if err != nil {
			stats.ParseFailures++
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			continue
		}
		stats.FilesParsed++
		for _, rc := range raw {
			chunks = append(chunks, vectorstore.Chunk{
				ID:         fmt.Sprintf("%s:%s:%d", fi.RelPath, rc.Name, rc.StartLine),
				FilePath:   fi.RelPath,
				SymbolName: rc.Name,
				Kind:       rc.Kind,
				Docstring:  rc.Docstring,
				StartLine:  rc.StartLine,
				EndLine:    rc.EndLine,
				SourceCode: rc.Source,
			})
		}
	}
	stats.Chunks = len(chunks)

	a.setStatus(repoURL, StatusEmbedding)
	embeddings := make([][]float32, 0, len(chunks))
	for i := 0; i < len(chunks); i += embedBatchSize {
		end := i + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		texts := make([]string, 0, end-i)
		for _, c := range chunks[i:end] {
			texts = append(texts, c.EmbeddingText())
		}
		batch, err := a.embedder.Embed(ctx, texts)
		if err != nil {
			return nil, nil, fmt.Errorf("embed stage: %w", err)
		}
		embeddings = append(embeddings, batch...)
	}

	a.setStatus(repoURL, StatusIndexing)
	store := vectorstore.New()
	if err := store.Insert(chunks, embeddings); err != nil {
		return nil, nil, fmt.Errorf("index stage: %w", err)
	}
	return stats, store, nil
}

// Ask embeds the question, retrieves the top-k chunks from the current
// store, and asks the generator for an answer.
func (a *Analyzer) Ask(ctx context.Context, question string, k int) (*rag.Response, error) {
	results, err := a.Search(ctx, question, k)
	if err != nil {
		return nil, err
	}
	return rag.Answer(ctx, a.generator, question, results)
}

// Search retrieves the top-k chunks most similar to the query text.
func (a *Analyzer) Search(ctx context.Context, query string, k int) ([]vectorstore.Result, error) {
	store := a.currentStore()
	if store == nil {
		return nil, fmt.Errorf("no repository analyzed yet")
	}
	if k <= 0 {
		k = a.topK
	}
	vec, err := a.embedder.EmbedSingle(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	results, err := store.Search(vec, k)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return results, nil
}

// Status reports the current analysis state.
func (a *Analyzer) Status() StatusInfo {
	a.mu.Lock()
	defer a.mu.Unlock()
	info := StatusInfo{Status: a.status, RepoURL: a.repoURL}
	if a.store != nil {
		info.Chunks = a.store.Len()
	}
	return info
}

// Cache exposes the snapshot cache for stats and clearing.
func (a *Analyzer) Cache() *cache.Manager { return a.cache }

// TopK returns the default retrieval depth.
func (a *Analyzer) TopK() int { return a.topK }

// Close releases the snapshot cache.
func (a *Analyzer) Close() error {
	if a.cache == nil {
		return nil
	}
	return a.cache.Close()
}

func (a *Analyzer) setStatus(repoURL string, s Status) {
	a.mu.Lock()
	a.repoURL = repoURL
	a.status = s
	a.mu.Unlock()
}

func (a *Analyzer) setCurrent(repoURL string, store *vectorstore.Store, s Status) {
	a.mu.Lock()
	a.repoURL = repoURL
	a.store = store
	a.status = s
	a.mu.Unlock()
}

func (a *Analyzer) currentStore() *vectorstore.Store {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store
}
