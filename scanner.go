package pyimports

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tabs expand to the next multiple of 8 columns, matching the tokenizer rule
// CPython documents for indentation comparison.
const tabWidth = 8

// indentLevel records one entry of the indentation stack. width is the
// tab-expanded column; alt is the same prefix measured with a tab width of 1.
// A change is only accepted when both measures agree on its direction, which
// rejects tab/space mixtures that cannot be compared consistently.
type indentLevel struct {
	width int
	alt   int
}

// scanner performs the single forward pass over the source text. It emits
// only tokens the import recognizer needs; string literals and comments are
// consumed without surfacing, and physical newlines inside open brackets or
// after a trailing backslash are suppressed so a logical line arrives as one
// flat token run.
type scanner struct {
	src  string
	off  int
	line int

	toks []token

	// Bracket nesting depth across ( [ {. openLines remembers where each
	// still-open bracket started for error reporting.
	depth     int
	openLines []int

	indents     []indentLevel
	atLineStart bool
}

func scan(src string) ([]token, error) {
	s := &scanner{
		src:         src,
		line:        1,
		atLineStart: true,
		indents:     []indentLevel{{0, 0}},
	}
	if err := s.run(); err != nil {
		return nil, err
	}
	return s.toks, nil
}

func (s *scanner) run() error {
	for s.off < len(s.src) {
		if s.atLineStart && s.depth == 0 {
			s.atLineStart = false
			if err := s.scanLineStart(); err != nil {
				return err
			}
			continue
		}

		c := s.src[s.off]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			s.off++

		case c == '\n':
			line := s.line
			s.off++
			s.line++
			if s.depth == 0 {
				s.emit(token{kind: tokNewline, line: line, pos: s.off - 1, end: s.off})
				s.atLineStart = true
			}

		case c == '#':
			s.skipComment()

		case c == '\\':
			if s.continuation() {
				continue
			}
			s.emit(token{kind: tokBackslash, line: s.line, pos: s.off, end: s.off + 1})
			s.off++

		case c == '\'' || c == '"':
			if err := s.scanString(c); err != nil {
				return err
			}

		case isIdentStart(c):
			if err := s.scanWord(); err != nil {
				return err
			}

		case c >= '0' && c <= '9':
			s.scanNumber()

		default:
			s.scanPunct(c)
		}
	}

	if s.depth > 0 {
		return &LexError{Line: s.openLines[len(s.openLines)-1], Reason: "unbalanced bracket at end of input"}
	}
	if n := len(s.toks); n > 0 && s.toks[n-1].kind != tokNewline {
		s.emit(token{kind: tokNewline, line: s.line, pos: s.off, end: s.off})
	}
	return nil
}

// scanLineStart measures the indentation of the next significant logical
// line, skipping blank and comment-only lines entirely: they neither carry
// tokens nor participate in the block structure.
func (s *scanner) scanLineStart() error {
	for {
		width, alt := 0, 0
	whitespace:
		for s.off < len(s.src) {
			switch s.src[s.off] {
			case ' ':
				width++
				alt++
			case '\t':
				width = width - width%tabWidth + tabWidth
				alt++
			case '\r':
			default:
				break whitespace
			}
			s.off++
		}

		if s.off >= len(s.src) {
			return nil
		}

		switch s.src[s.off] {
		case '\n':
			s.off++
			s.line++
			continue
		case '#':
			s.skipComment()
			if s.off < len(s.src) {
				s.off++
				s.line++
			}
			continue
		}

		return s.applyIndent(width, alt)
	}
}

func (s *scanner) applyIndent(width, alt int) error {
	top := s.indents[len(s.indents)-1]
	switch {
	case width == top.width:
		if alt != top.alt {
			return s.indentError()
		}

	case width > top.width:
		if alt <= top.alt {
			return s.indentError()
		}
		s.indents = append(s.indents, indentLevel{width, alt})
		s.emit(token{kind: tokIndent, line: s.line, pos: s.off, end: s.off, width: width})

	default:
		for len(s.indents) > 1 && s.indents[len(s.indents)-1].width > width {
			s.indents = s.indents[:len(s.indents)-1]
			s.emit(token{kind: tokDedent, line: s.line, pos: s.off, end: s.off, width: width})
		}
		top = s.indents[len(s.indents)-1]
		if width > top.width {
			// Dedent to a level that was never pushed. Resync on the new
			// width rather than rejecting the surrounding code: only the
			// import statements have to be understood.
			s.indents = append(s.indents, indentLevel{width, alt})
			s.emit(token{kind: tokIndent, line: s.line, pos: s.off, end: s.off, width: width})
		} else if alt != top.alt {
			return s.indentError()
		}
	}
	return nil
}

func (s *scanner) indentError() error {
	return &LexError{Line: s.line, Reason: "inconsistent use of tabs and spaces in indentation"}
}

// skipComment consumes up to, but not including, the terminating newline.
func (s *scanner) skipComment() {
	for s.off < len(s.src) && s.src[s.off] != '\n' {
		s.off++
	}
}

// continuation consumes a backslash-newline pair. The line counter advances
// but no Newline token is emitted, so the logical line continues.
func (s *scanner) continuation() bool {
	rest := s.src[s.off+1:]
	switch {
	case strings.HasPrefix(rest, "\n"):
		s.off += 2
	case strings.HasPrefix(rest, "\r\n"):
		s.off += 3
	default:
		return false
	}
	s.line++
	return true
}

// scanWord reads an identifier-shaped run. String prefixes (r"", f'', rb"" and
// friends) hand off to the string scanner; the import-relevant keywords get
// their own kinds and everything else surfaces as an identifier token.
func (s *scanner) scanWord() error {
	start := s.off
	startLine := s.line
	for s.off < len(s.src) {
		r, size := utf8.DecodeRuneInString(s.src[s.off:])
		if !isIdentPart(r) {
			break
		}
		s.off += size
	}
	if s.off == start {
		// A multibyte rune that does not start an identifier.
		_, size := utf8.DecodeRuneInString(s.src[s.off:])
		s.off += size
		s.emit(token{kind: tokOther, line: startLine, pos: start, end: s.off})
		return nil
	}
	word := s.src[start:s.off]

	if s.off < len(s.src) && (s.src[s.off] == '"' || s.src[s.off] == '\'') && isStringPrefix(word) {
		return s.scanString(s.src[s.off])
	}

	kind := tokIdent
	switch word {
	case "import":
		kind = tokImport
	case "from":
		kind = tokFrom
	case "as":
		kind = tokAs
	case "if":
		kind = tokIf
	}
	s.emit(token{kind: kind, text: word, line: startLine, pos: start, end: s.off})
	return nil
}

// scanNumber consumes a numeric literal as an opaque unit. The exact shape
// does not matter; numbers cannot occur inside an import statement.
func (s *scanner) scanNumber() {
	start := s.off
	for s.off < len(s.src) {
		c := s.src[s.off]
		switch {
		case isDigit(c), c == '_',
			c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
			s.off++
		case c == '.' && s.off+1 < len(s.src) && isDigit(s.src[s.off+1]):
			s.off++
		default:
			goto done
		}
	}
done:
	s.emit(token{kind: tokOther, line: s.line, pos: start, end: s.off})
}

// scanString consumes a complete string literal, including triple-quoted
// forms, without emitting a token. Embedded newlines still advance the line
// counter so later tokens keep correct positions. A backslash always shields
// the following character from terminating the literal; this holds for raw
// strings too, where r"\" is unterminated.
func (s *scanner) scanString(quote byte) error {
	startLine := s.line
	triple := strings.HasPrefix(s.src[s.off:], strings.Repeat(string(quote), 3))

	if triple {
		s.off += 3
		closing := strings.Repeat(string(quote), 3)
		for s.off < len(s.src) {
			if strings.HasPrefix(s.src[s.off:], closing) {
				s.off += 3
				return nil
			}
			if s.src[s.off] == '\\' {
				s.off++
				if s.off < len(s.src) {
					if s.src[s.off] == '\n' {
						s.line++
					}
					s.off++
				}
				continue
			}
			if s.src[s.off] == '\n' {
				s.line++
			}
			s.off++
		}
		return &LexError{Line: startLine, Reason: "unterminated string literal"}
	}

	s.off++
	for s.off < len(s.src) {
		switch s.src[s.off] {
		case '\\':
			s.off++
			if s.off < len(s.src) {
				if s.src[s.off] == '\n' {
					s.line++
				}
				s.off++
			}
		case '\n':
			return &LexError{Line: startLine, Reason: "unterminated string literal"}
		case quote:
			s.off++
			return nil
		default:
			s.off++
		}
	}
	return &LexError{Line: startLine, Reason: "unterminated string literal"}
}

func (s *scanner) scanPunct(c byte) {
	start := s.off
	var kind tokenKind

	switch c {
	case '.':
		kind = tokDot
	case ',':
		kind = tokComma
	case '*':
		kind = tokStar
	case ':':
		// A colon inside brackets (slices, dict literals, annotations in a
		// call) can never close an if-header or belong to an import.
		if s.depth > 0 {
			kind = tokOther
		} else {
			kind = tokColon
		}
	case ';':
		kind = tokSemicolon
	case '(':
		kind = tokLParen
		s.openBracket()
	case ')':
		kind = tokRParen
		s.closeBracket()
	case '[', '{':
		kind = tokOther
		s.openBracket()
	case ']', '}':
		kind = tokOther
		s.closeBracket()
	default:
		kind = tokOther
	}

	_, size := utf8.DecodeRuneInString(s.src[s.off:])
	s.off += size
	s.emit(token{kind: kind, line: s.line, pos: start, end: s.off})
}

func (s *scanner) openBracket() {
	s.depth++
	s.openLines = append(s.openLines, s.line)
}

func (s *scanner) closeBracket() {
	// A stray closer outside any bracket is left to the recognizer's Other
	// handling; depth never goes negative.
	if s.depth > 0 {
		s.depth--
		s.openLines = s.openLines[:len(s.openLines)-1]
	}
}

func (s *scanner) emit(t token) {
	s.toks = append(s.toks, t)
}

func isIdentStart(c byte) bool {
	if c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' {
		return true
	}
	return c >= utf8.RuneSelf
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// isStringPrefix reports whether word is one of Python's string literal
// prefixes (r, b, f, u and the two-letter raw combinations, any case).
func isStringPrefix(word string) bool {
	if len(word) == 0 || len(word) > 2 {
		return false
	}
	for i := 0; i < len(word); i++ {
		switch word[i] {
		case 'r', 'R', 'b', 'B', 'f', 'F', 'u', 'U':
		default:
			return false
		}
	}
	return true
}
