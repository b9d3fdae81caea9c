package chunker_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/AyushMishra1006/endee-code-assistant/internal/chunker"
	"github.com/AyushMishra1006/endee-code-assistant/internal/chunker/languages"
)

func newChunker() *chunker.ASTChunker {
	reg := chunker.NewRegistry()
	languages.RegisterPython(reg)
	return chunker.NewASTChunker(reg)
}

func TestClassMethodsAreFlattened(t *testing.T) {
	var b strings.Builder
	b.WriteString("class Service:\n")
	b.WriteString("    \"\"\"A class docstring, not a chunk.\"\"\"\n\n")
	b.WriteString("    VERSION = 1\n\n")
	for _, name := range []string{"m1", "m2", "m3", "m4", "m5", "m6", "m7", "m8", "m9"} {
		b.WriteString("    def " + name + "(self):\n")
		b.WriteString("        return \"" + name + "\"\n\n")
	}

	chunks, err := newChunker().Chunk("service.py", []byte(b.String()))
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}
	if len(chunks) != 9 {
		t.Fatalf("got %d chunks for a class with 9 methods, want 9", len(chunks))
	}
	for i, c := range chunks {
		want := "Service.m" + string(rune('1'+i))
		if c.Name != want {
			t.Errorf("chunk %d name = %q, want %q", i, c.Name, want)
		}
		if c.Kind != "method" {
			t.Errorf("chunk %d kind = %q, want method", i, c.Kind)
		}
		if strings.Contains(c.Source, "VERSION") {
			t.Errorf("chunk %d contains class-body code outside the method: %q", i, c.Source)
		}
		if c.StartLine > c.EndLine {
			t.Errorf("chunk %d has start_line %d > end_line %d", i, c.StartLine, c.EndLine)
		}
	}
}

func TestDecoratorsAndDocstringIncluded(t *testing.T) {
	src := `@retry(times=3)
@log_calls
def fetch(url):
    """Fetch a URL with retries."""
    return get(url)
`
	chunks, err := newChunker().Chunk("fetch.py", []byte(src))
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	c := chunks[0]
	if c.Name != "fetch" || c.Kind != "function" {
		t.Errorf("chunk = %s/%s, want fetch/function", c.Name, c.Kind)
	}
	if !strings.Contains(c.Source, "@retry(times=3)") || !strings.Contains(c.Source, "@log_calls") {
		t.Errorf("decorators missing from source: %q", c.Source)
	}
	if !strings.Contains(c.Source, `"""Fetch a URL with retries."""`) {
		t.Errorf("docstring missing from source: %q", c.Source)
	}
	if c.Docstring != "Fetch a URL with retries." {
		t.Errorf("docstring = %q", c.Docstring)
	}
	if c.StartLine != 1 {
		t.Errorf("start_line = %d, want 1 (decorator line)", c.StartLine)
	}
}

func TestNestedFunctionStaysInOwner(t *testing.T) {
	src := `def outer():
    def inner():
        return 1
    return inner
`
	chunks, err := newChunker().Chunk("nested.py", []byte(src))
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1 (inner stays inside outer)", len(chunks))
	}
	if chunks[0].Name != "outer" {
		t.Errorf("chunk name = %q, want outer", chunks[0].Name)
	}
	if !strings.Contains(chunks[0].Source, "def inner") {
		t.Errorf("inner function missing from outer's source: %q", chunks[0].Source)
	}
}

func TestModuleLevelCodeNotChunked(t *testing.T) {
	src := `import os

CONFIG = {"a": 1}

print("side effect")
`
	chunks, err := newChunker().Chunk("mod.py", []byte(src))
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("got %d chunks for a file with no functions, want 0", len(chunks))
	}
}

func TestSyntaxErrorIsParseError(t *testing.T) {
	src := "def broken(:\n    return 1\n"
	_, err := newChunker().Chunk("broken.py", []byte(src))
	var perr *chunker.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
	if perr.Path != "broken.py" {
		t.Errorf("ParseError path = %q, want broken.py", perr.Path)
	}
}

func TestUnregisteredExtensionSkipped(t *testing.T) {
	chunks, err := newChunker().Chunk("main.go", []byte("package main"))
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}
	if chunks != nil {
		t.Errorf("got chunks for an unregistered extension: %v", chunks)
	}
}

func TestMixedModuleAndClass(t *testing.T) {
	src := `def helper(x):
    return x * 2


class Box:
    def __init__(self, v):
        self.v = v

    def get(self):
        '''Return the value.'''
        return self.v
`
	chunks, err := newChunker().Chunk("box.py", []byte(src))
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	names := []string{chunks[0].Name, chunks[1].Name, chunks[2].Name}
	want := []string{"helper", "Box.__init__", "Box.get"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("chunk %d name = %q, want %q", i, names[i], want[i])
		}
	}
	if chunks[0].Kind != "function" {
		t.Errorf("helper kind = %q, want function", chunks[0].Kind)
	}
	if chunks[2].Docstring != "Return the value." {
		t.Errorf("Box.get docstring = %q", chunks[2].Docstring)
	}
}
