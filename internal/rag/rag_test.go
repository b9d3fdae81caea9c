package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/AyushMishra1006/endee-code-assistant/internal/llm"
	"github.com/AyushMishra1006/endee-code-assistant/internal/vectorstore"
)

type fakeGenerator struct {
	answer string
	err    error
	msgs   []llm.Message
}

func (f *fakeGenerator) Generate(ctx context.Context, messages []llm.Message) (string, error) {
	f.msgs = messages
	return f.answer, f.err
}

func results() []vectorstore.Result {
	return []vectorstore.Result{
		{Chunk: vectorstore.Chunk{ID: "a.py:f:1", FilePath: "src/a.py", SymbolName: "f", Kind: "function",
			StartLine: 1, EndLine: 4, SourceCode: "def f():\n    return 1"}, Score: 0.91234},
		{Chunk: vectorstore.Chunk{ID: "b.py:C.g:10", FilePath: "src/b.py", SymbolName: "C.g", Kind: "method",
			StartLine: 10, EndLine: 14, SourceCode: "def g(self):\n    return 2"}, Score: 0.85},
		{Chunk: vectorstore.Chunk{ID: "c.py:h:3", FilePath: "src/c.py", SymbolName: "h", Kind: "function",
			StartLine: 3, EndLine: 5, SourceCode: "def h():\n    pass"}, Score: 0.5},
		{Chunk: vectorstore.Chunk{ID: "d.py:i:7", FilePath: "src/d.py", SymbolName: "i", Kind: "function",
			StartLine: 7, EndLine: 9, SourceCode: "def i():\n    pass"}, Score: 0.2},
	}
}

func TestBuildMessagesIncludesContext(t *testing.T) {
	msgs := BuildMessages("what does f do?", results())
	if msgs[0].Role != "system" {
		t.Fatalf("first message role = %s, want system", msgs[0].Role)
	}
	contextMsg := msgs[1].Content
	for _, want := range []string{"src/a.py", "lines 1-4", "def f():", "src/b.py", "C.g"} {
		if !strings.Contains(contextMsg, want) {
			t.Errorf("context block missing %q", want)
		}
	}
	last := msgs[len(msgs)-1]
	if last.Role != "user" || last.Content != "what does f do?" {
		t.Errorf("last message = %s/%q, want the question", last.Role, last.Content)
	}
}

func TestBuildMessagesNoResults(t *testing.T) {
	msgs := BuildMessages("anything", nil)
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2 (system + question)", len(msgs))
	}
}

func TestAnswer(t *testing.T) {
	gen := &fakeGenerator{answer: "f returns 1"}
	resp, err := Answer(context.Background(), gen, "what does f do?", results())
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if resp.Answer != "f returns 1" {
		t.Errorf("answer = %q", resp.Answer)
	}
	if resp.Relevance != "high" {
		t.Errorf("relevance = %q, want high", resp.Relevance)
	}
	if len(resp.Sources) != 3 {
		t.Fatalf("got %d sources, want top 3", len(resp.Sources))
	}
	if resp.Sources[0].File != "src/a.py" || resp.Sources[0].Lines != "1-4" {
		t.Errorf("first source = %+v", resp.Sources[0])
	}
	if resp.Sources[0].Similarity != 0.912 {
		t.Errorf("similarity = %v, want 0.912 (rounded to 3 decimals)", resp.Sources[0].Similarity)
	}
	if len(gen.msgs) == 0 {
		t.Error("generator never received messages")
	}
}

func TestAnswerNoResults(t *testing.T) {
	gen := &fakeGenerator{answer: "should not be called"}
	resp, err := Answer(context.Background(), gen, "anything", nil)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if resp.Relevance != "low" {
		t.Errorf("relevance = %q, want low", resp.Relevance)
	}
	if len(gen.msgs) != 0 {
		t.Error("generator was called with no retrieved chunks")
	}
}

func TestAnswerDegradedOnGenerationFailure(t *testing.T) {
	gen := &fakeGenerator{err: llm.ErrGenerationUnavailable}
	resp, err := Answer(context.Background(), gen, "q", results())
	if !errors.Is(err, llm.ErrGenerationUnavailable) {
		t.Fatalf("err = %v, want ErrGenerationUnavailable", err)
	}
	// The degraded response still carries sources so callers can show
	// the top matches without narrative.
	if resp == nil || len(resp.Sources) == 0 {
		t.Fatal("degraded response lost its sources")
	}
}
