// Package languages registers tree-sitter grammars with a chunker registry.
// Only Python is registered today; the registry keeps the chunker itself
// grammar-agnostic.
package languages

import (
	"github.com/AyushMishra1006/endee-code-assistant/internal/chunker"

	"github.com/smacker/go-tree-sitter/python"
)

func RegisterPython(r *chunker.Registry) {
	r.Register("python", &chunker.LanguageSpec{
		Language: python.GetLanguage(),
		// Functions and methods only: classes are containers, not chunks,
		// and module-level statements are never chunked. The decorated
		// form captures the decorated_definition as @chunk so decorator
		// lines land inside the chunk's source.
		Query: `
			(function_definition) @chunk @def
			(decorated_definition definition: (function_definition) @def) @chunk
		`,
		Extensions: []string{"py", "pyi"},
	})
}
