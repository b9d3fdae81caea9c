// Package rag builds prompts from retrieved code chunks and shapes the
// generated answer with source attribution.
package rag

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/AyushMishra1006/endee-code-assistant/internal/llm"
	"github.com/AyushMishra1006/endee-code-assistant/internal/vectorstore"
)

const systemPrompt = `You are a code documentation assistant. You answer questions about a repository using only the retrieved source code context provided below.

Reference specific file paths, function names, and line numbers when relevant. Keep answers concise and grounded in the provided context. If the context doesn't contain enough information to answer, say so.`

const maxSources = 3

// Generator produces a chat completion. Satisfied by *llm.OllamaChat.
type Generator interface {
	Generate(ctx context.Context, messages []llm.Message) (string, error)
}

// Source attributes part of an answer to a retrieved chunk.
type Source struct {
	File       string  `json:"file"`
	Symbol     string  `json:"symbol"`
	Lines      string  `json:"lines"`
	Similarity float64 `json:"similarity"`
}

// Response is a generated answer plus the chunks that grounded it.
type Response struct {
	Answer    string   `json:"answer"`
	Sources   []Source `json:"sources"`
	Relevance string   `json:"relevance"` // "high" when chunks were retrieved, else "low"
}

// BuildMessages constructs the chat messages for the LLM: the system
// prompt, a context block carrying each ranked chunk's full source with
// file path and line range (never truncated), and the question.
func BuildMessages(question string, results []vectorstore.Result) []llm.Message {
	msgs := []llm.Message{{Role: "system", Content: systemPrompt}}

	if len(results) > 0 {
		var ctx strings.Builder
		ctx.WriteString("Here is the relevant source code context:\n\n")
		for i, r := range results {
			fmt.Fprintf(&ctx, "--- Chunk %d: %s [%s %s] (lines %d-%d, score %.3f) ---\n",
				i+1, r.Chunk.FilePath, r.Chunk.Kind, r.Chunk.SymbolName,
				r.Chunk.StartLine, r.Chunk.EndLine, r.Score)
			ctx.WriteString("```python\n")
			ctx.WriteString(r.Chunk.SourceCode)
			ctx.WriteString("\n```\n\n")
		}
		msgs = append(msgs, llm.Message{Role: "user", Content: ctx.String()})
		msgs = append(msgs, llm.Message{Role: "assistant", Content: "I've reviewed the code context. What would you like to know?"})
	}

	msgs = append(msgs, llm.Message{Role: "user", Content: question})
	return msgs
}

// Answer generates a response for the question from the ranked chunks.
// When generation fails the returned Response still carries the sources,
// so callers can show the top matches without narrative; the error (which
// wraps llm.ErrGenerationUnavailable) is returned alongside.
func Answer(ctx context.Context, gen Generator, question string, results []vectorstore.Result) (*Response, error) {
	resp := &Response{
		Sources:   Sources(results),
		Relevance: "low",
	}
	if len(results) == 0 {
		resp.Answer = "No relevant code found for your question."
		return resp, nil
	}
	resp.Relevance = "high"

	answer, err := gen.Generate(ctx, BuildMessages(question, results))
	if err != nil {
		return resp, fmt.Errorf("generate answer: %w", err)
	}
	resp.Answer = answer
	return resp, nil
}

// Sources converts the top ranked chunks into attribution records.
func Sources(results []vectorstore.Result) []Source {
	n := len(results)
	if n > maxSources {
		n = maxSources
	}
	sources := make([]Source, 0, n)
	for _, r := range results[:n] {
		sources = append(sources, Source{
			File:       r.Chunk.FilePath,
			Symbol:     r.Chunk.SymbolName,
			Lines:      fmt.Sprintf("%d-%d", r.Chunk.StartLine, r.Chunk.EndLine),
			Similarity: math.Round(r.Score*1000) / 1000,
		})
	}
	return sources
}
