package pyimports

import "fmt"

// LexError reports source text that could not be tokenized: an unterminated
// string literal, a bracket left open at end of input, or indentation that
// mixes tabs and spaces in a way that cannot be compared consistently.
type LexError struct {
	Line   int
	Reason string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at line %d: %s", e.Line, e.Reason)
}

// ParseError reports a token stream that does not match any recognized
// import-statement form, e.g. `from` without a following `import`.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d: %s", e.Line, e.Reason)
}
