package vectorstore

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrDimensionMismatch is returned when a vector's length differs from the
// dimensionality established by the store's first insert. Mixing vector
// spaces (e.g. after an embedding model change) is never allowed.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Chunk is one indexed unit of code: a single function or method.
type Chunk struct {
	ID         string `json:"id"`
	FilePath   string `json:"file_path"`
	SymbolName string `json:"symbol_name"`
	Kind       string `json:"kind"`
	Docstring  string `json:"docstring,omitempty"`
	StartLine  int    `json:"start_line"`
	EndLine    int    `json:"end_line"`
	SourceCode string `json:"source_code"`
}

// EmbeddingText is the text that gets embedded for a chunk: the symbol name
// and docstring carry intent that the raw source alone may not.
func (c Chunk) EmbeddingText() string {
	s := c.SymbolName
	if c.Docstring != "" {
		s += " " + c.Docstring
	}
	return s + " " + c.SourceCode
}

// Entry pairs a chunk with its embedding. The store is the single writer.
type Entry struct {
	Chunk     Chunk     `json:"chunk"`
	Embedding []float32 `json:"embedding"`
}

// Result is a chunk returned from Search with its cosine similarity score.
type Result struct {
	Chunk Chunk
	Score float64
}

// Store holds chunk embeddings in memory and ranks them by cosine
// similarity with a linear scan. It is not safe for concurrent writers;
// concurrent Searches against a store that is not being written are fine.
type Store struct {
	entries []Entry
	byID    map[string]int // chunk ID → index into entries
	dim     int            // fixed by the first inserted embedding
}

// New creates an empty store. Dimensionality is fixed by the first Insert.
func New() *Store {
	return &Store{byID: make(map[string]int)}
}

// Len returns the number of stored entries.
func (s *Store) Len() int { return len(s.entries) }

// Dim returns the store's embedding dimensionality, or 0 if empty.
func (s *Store) Dim() int { return s.dim }

// Insert adds chunks with their embeddings. Lengths must match. The first
// embedding fixes the store's dimensionality; vectors of a different
// length, including empty ones, are rejected with ErrDimensionMismatch.
// A batch that fails validation leaves the store untouched. Re-inserting
// an existing chunk ID replaces the entry in place, keeping its original
// insertion position so tie-breaking stays deterministic.
func (s *Store) Insert(chunks []Chunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("mismatched chunks (%d) and embeddings (%d)", len(chunks), len(embeddings))
	}
	dim := s.dim
	for i, emb := range embeddings {
		if len(emb) == 0 {
			return fmt.Errorf("%w: chunk %q has an empty embedding", ErrDimensionMismatch, chunks[i].ID)
		}
		if dim == 0 {
			dim = len(emb)
		}
		if len(emb) != dim {
			return fmt.Errorf("%w: chunk %q has %d, store has %d",
				ErrDimensionMismatch, chunks[i].ID, len(emb), dim)
		}
	}
	s.dim = dim
	for i, c := range chunks {
		if at, ok := s.byID[c.ID]; ok {
			s.entries[at] = Entry{Chunk: c, Embedding: embeddings[i]}
			continue
		}
		s.byID[c.ID] = len(s.entries)
		s.entries = append(s.entries, Entry{Chunk: c, Embedding: embeddings[i]})
	}
	return nil
}

// Search computes cosine similarity between the query and every stored
// entry, then returns the topK highest-scoring chunks in descending order.
// Ties are broken by insertion order (earlier wins). An empty store yields
// an empty result; a query of the wrong dimensionality is an error.
func (s *Store) Search(query []float32, topK int) ([]Result, error) {
	if len(s.entries) == 0 || topK <= 0 {
		return nil, nil
	}
	if len(query) != s.dim {
		return nil, fmt.Errorf("%w: query has %d, store has %d", ErrDimensionMismatch, len(query), s.dim)
	}

	results := make([]Result, len(s.entries))
	for i, e := range s.entries {
		results[i] = Result{Chunk: e.Chunk, Score: Cosine(query, e.Embedding)}
	}
	// Stable sort keeps insertion order for equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Cosine returns the cosine similarity dot(a,b)/(|a||b|) of two vectors.
// If either vector has zero norm the score is 0, not NaN. Accumulation is
// done in float64 to keep scores stable across snapshot round trips.
func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
