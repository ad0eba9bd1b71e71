// Package pyimports extracts module-import declarations from Python source
// text without building a syntax tree or executing any code.
//
// A single lexical pass distinguishes import statements from everything else
// in the file, including strings, comments, nested brackets, and line
// continuations; all non-import code is skipped opaquely. Each imported name
// is reported with the line its statement starts on and whether it sits
// inside an `if TYPE_CHECKING:` block that only static type checkers
// evaluate.
package pyimports

// Import is one imported name. Relative imports keep their leading dots and
// wildcard imports end in `.*`:
//
//	import a              -> a
//	from b.c import d, e  -> b.c.d, b.c.e
//	from ..f import *     -> ..f.*
//	from . import g       -> .g
type Import struct {
	// ImportedObject is the dot-joined qualified name.
	ImportedObject string
	// LineNumber is the 1-based line of the statement's `import` or `from`
	// keyword, also for names introduced on continuation lines.
	LineNumber int
	// LineContents is the statement text as written, spanning continuation
	// lines for multi-line forms.
	LineContents string
	// TypecheckingOnly marks imports guarded by a TYPE_CHECKING conditional,
	// at any block nesting depth below it.
	TypecheckingOnly bool
}

// Parse scans source and returns every import in order of appearance. Names
// from one statement appear left to right with identical line numbers.
//
// Parse is a pure function over the full source text: it allocates all state
// per call and is safe to invoke concurrently from multiple goroutines. On
// malformed input it returns a *LexError (untokenizable text) or *ParseError
// (unrecognizable import statement) and no partial results.
func Parse(source string) ([]Import, error) {
	toks, err := scan(source)
	if err != nil {
		return nil, err
	}
	r := &recognizer{src: source, toks: toks}
	return r.run()
}
