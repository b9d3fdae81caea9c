// Package chunker extracts function- and method-level chunks from source
// files using tree-sitter. Parsing is a pure function of the input text:
// the same (path, source) pair always yields the same chunks.
package chunker

import (
	"context"
	"fmt"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Chunk is a function or method extracted from a source file, before it is
// assigned an ID and embedded. Decorators and the docstring are part of
// Source; large functions are kept whole, never re-sliced.
type Chunk struct {
	Name      string // qualified, e.g. "Repo.clone"
	Kind      string // "function" or "method"
	Docstring string
	StartLine int // 1-based
	EndLine   int
	Source    string
}

// ParseError marks a file whose syntax tree contains errors. Callers skip
// the file and count the failure; it is never fatal for a whole analysis.
type ParseError struct {
	Path string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: source contains syntax errors", e.Path)
}

// ASTChunker parses source files with the grammars in its registry.
type ASTChunker struct {
	registry *Registry
}

// NewASTChunker creates a chunker backed by the given registry.
func NewASTChunker(r *Registry) *ASTChunker {
	return &ASTChunker{registry: r}
}

// Chunk parses the source and returns one chunk per function or method
// definition. Methods inside classes become individual chunks with
// qualified names; functions nested inside functions stay in the owning
// chunk's source. If no grammar is registered for the file it returns
// (nil, nil). A file that yields zero chunks is valid output.
func (c *ASTChunker) Chunk(path string, src []byte) ([]Chunk, error) {
	spec, _ := c.registry.Lookup(path)
	if spec == nil {
		return nil, nil
	}

	parser := sitter.NewParser()
	parser.SetLanguage(spec.Language)
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	if tree.RootNode().HasError() {
		return nil, &ParseError{Path: path}
	}

	q, err := sitter.NewQuery([]byte(spec.Query), spec.Language)
	if err != nil {
		return nil, fmt.Errorf("compile query for %s: %w", path, err)
	}
	defer q.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, tree.RootNode())

	var captures []capture
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		var chunkNode, defNode *sitter.Node
		for _, cap := range m.Captures {
			switch q.CaptureNameForId(cap.Index) {
			case "chunk":
				chunkNode = cap.Node
			case "def":
				defNode = cap.Node
			}
		}
		if chunkNode == nil {
			continue
		}
		if defNode == nil {
			defNode = chunkNode
		}
		captures = append(captures, capture{
			name:      qualifiedName(defNode, src),
			kind:      defKind(defNode),
			docstring: docstring(defNode, src),
			startLine: int(chunkNode.StartPoint().Row) + 1,
			endLine:   int(chunkNode.EndPoint().Row) + 1,
			startByte: chunkNode.StartByte(),
			endByte:   chunkNode.EndByte(),
		})
	}

	// When captures overlap (decorated definitions, nested functions),
	// keep only the outer node so each line of code belongs to one chunk.
	captures = dedup(captures)

	chunks := make([]Chunk, 0, len(captures))
	for _, cap := range captures {
		chunks = append(chunks, Chunk{
			Name:      cap.name,
			Kind:      cap.kind,
			Docstring: cap.docstring,
			StartLine: cap.startLine,
			EndLine:   cap.endLine,
			Source:    string(src[cap.startByte:cap.endByte]),
		})
	}
	return chunks, nil
}

type capture struct {
	name      string
	kind      string
	docstring string
	startLine int
	endLine   int
	startByte uint32
	endByte   uint32
}

// dedup removes captures that are fully contained within a larger capture.
func dedup(caps []capture) []capture {
	if len(caps) <= 1 {
		return caps
	}
	// Sort by start byte ascending, then by size descending (larger first).
	sort.Slice(caps, func(i, j int) bool {
		if caps[i].startByte != caps[j].startByte {
			return caps[i].startByte < caps[j].startByte
		}
		return (caps[i].endByte - caps[i].startByte) > (caps[j].endByte - caps[j].startByte)
	})

	var result []capture
	var lastEnd uint32
	for _, c := range caps {
		if c.startByte >= lastEnd || lastEnd == 0 {
			result = append(result, c)
			if c.endByte > lastEnd {
				lastEnd = c.endByte
			}
		}
	}
	return result
}

// qualifiedName builds "Outer.Inner.name" from the definition node's class
// ancestry, so a method's name carries every enclosing class.
func qualifiedName(def *sitter.Node, src []byte) string {
	parts := []string{nodeName(def, src)}
	for n := def.Parent(); n != nil; n = n.Parent() {
		if n.Type() == "class_definition" {
			parts = append([]string{nodeName(n, src)}, parts...)
		}
	}
	return strings.Join(parts, ".")
}

// defKind reports "method" for definitions inside a class body, else
// "function".
func defKind(def *sitter.Node) string {
	for n := def.Parent(); n != nil; n = n.Parent() {
		switch n.Type() {
		case "class_definition":
			return "method"
		case "function_definition":
			return "function"
		}
	}
	return "function"
}

func nodeName(n *sitter.Node, src []byte) string {
	name := n.ChildByFieldName("name")
	if name == nil {
		return ""
	}
	return name.Content(src)
}

// docstring extracts the leading string literal of a definition's body, if
// present, with quotes stripped.
func docstring(def *sitter.Node, src []byte) string {
	body := def.ChildByFieldName("body")
	if body == nil || body.NamedChildCount() == 0 {
		return ""
	}
	first := body.NamedChild(0)
	if first.Type() != "expression_statement" || first.NamedChildCount() == 0 {
		return ""
	}
	str := first.NamedChild(0)
	if str.Type() != "string" {
		return ""
	}
	return stripQuotes(str.Content(src))
}

func stripQuotes(s string) string {
	// String prefixes (r, b, u, f and combinations) precede the quotes.
	s = strings.TrimLeft(s, "rbufRBUF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			return strings.TrimSpace(s[len(q) : len(s)-len(q)])
		}
	}
	return strings.TrimSpace(s)
}
