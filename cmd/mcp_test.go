package cmd

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/AyushMishra1006/endee-code-assistant/internal/llm"
	"github.com/AyushMishra1006/endee-code-assistant/internal/rag"
)

type fakeAsker struct {
	resp *rag.Response
	err  error
}

func (f *fakeAsker) Ask(context.Context, string, int) (*rag.Response, error) {
	return f.resp, f.err
}

func askRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("result has no content")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content[0] is %T, want TextContent", res.Content[0])
	}
	return tc.Text
}

func TestAskHandlerReturnsAnswerWithSources(t *testing.T) {
	h := makeAskHandler(&fakeAsker{
		resp: &rag.Response{
			Answer:    "It parses files.",
			Sources:   []rag.Source{{File: "a.py", Symbol: "parse", Lines: "1-4", Similarity: 0.91}},
			Relevance: "high",
		},
	})

	res, err := h(context.Background(), askRequest(map[string]any{"question": "what does it do?"}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if res.IsError {
		t.Fatalf("result reported an error: %v", res.Content)
	}
	text := resultText(t, res)
	if !strings.Contains(text, "It parses files.") {
		t.Errorf("answer missing from result: %q", text)
	}
	if !strings.Contains(text, "a.py:parse (lines 1-4, similarity 0.910)") {
		t.Errorf("source attribution missing from result: %q", text)
	}
}

func TestAskHandlerGenerationFailureStillReturnsSources(t *testing.T) {
	h := makeAskHandler(&fakeAsker{
		resp: &rag.Response{
			Sources:   []rag.Source{{File: "a.py", Symbol: "parse", Lines: "1-4", Similarity: 0.91}},
			Relevance: "high",
		},
		err: fmt.Errorf("generate answer: %w", llm.ErrGenerationUnavailable),
	})

	res, err := h(context.Background(), askRequest(map[string]any{"question": "what does it do?"}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if res.IsError {
		t.Fatal("degraded response reported as a tool error")
	}
	text := resultText(t, res)
	if !strings.Contains(text, "Answer generation failed") {
		t.Errorf("failure note missing from result: %q", text)
	}
	if !strings.Contains(text, "a.py:parse") {
		t.Errorf("retrieved sources dropped from degraded result: %q", text)
	}
}

func TestAskHandlerRequiresQuestion(t *testing.T) {
	h := makeAskHandler(&fakeAsker{})
	res, err := h(context.Background(), askRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !res.IsError {
		t.Error("missing question did not produce a tool error")
	}
}
