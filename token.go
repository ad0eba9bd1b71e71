package pyimports

// tokenKind enumerates the lexical units the recognizer cares about.
// Anything that is not import-relevant is collapsed into tokOther and
// carries no further structure.
type tokenKind int

const (
	tokOther tokenKind = iota
	tokImport
	tokFrom
	tokAs
	tokIf
	tokIdent
	tokDot
	tokComma
	tokStar
	tokLParen
	tokRParen
	tokColon
	tokSemicolon
	tokNewline
	tokIndent
	tokDedent
	tokBackslash
)

var tokenKindNames = map[tokenKind]string{
	tokOther:     "other",
	tokImport:    "import",
	tokFrom:      "from",
	tokAs:        "as",
	tokIf:        "if",
	tokIdent:     "identifier",
	tokDot:       ".",
	tokComma:     ",",
	tokStar:      "*",
	tokLParen:    "(",
	tokRParen:    ")",
	tokColon:     ":",
	tokSemicolon: ";",
	tokNewline:   "newline",
	tokIndent:    "indent",
	tokDedent:    "dedent",
	tokBackslash: `\`,
}

func (k tokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// token is a single lexical unit. line is 1-based and refers to the line the
// token starts on. pos/end are byte offsets into the source, used to recover
// the raw statement text. width is only set on tokIndent/tokDedent and holds
// the indentation width of the logical line that triggered the change.
type token struct {
	kind  tokenKind
	text  string
	line  int
	pos   int
	end   int
	width int
}
