package pyimports

import "strings"

// blockFrame is one entry of the indentation-block stack. width is the
// indentation of the block body; flagged marks a TYPE_CHECKING conditional
// or any block nested inside one.
type blockFrame struct {
	width   int
	flagged bool
}

// recognizer drives a small state machine over the token stream. Only
// statements led by `import` or `from` are interpreted; an `if` header is
// inspected for the TYPE_CHECKING pattern and everything else is skipped to
// the end of its logical line.
type recognizer struct {
	src  string
	toks []token
	i    int

	stack []blockFrame
	// pendingFlag is set after an `if ... TYPE_CHECKING ... :` header whose
	// body is an indented block; the next Indent pushes a flagged frame.
	pendingFlag bool

	imports []Import
}

func (r *recognizer) run() ([]Import, error) {
	for r.i < len(r.toks) {
		t := r.toks[r.i]
		switch t.kind {
		case tokIndent:
			r.stack = append(r.stack, blockFrame{width: t.width, flagged: r.pendingFlag || r.flagged()})
			r.pendingFlag = false
			r.i++

		case tokDedent:
			for len(r.stack) > 0 && r.stack[len(r.stack)-1].width > t.width {
				r.stack = r.stack[:len(r.stack)-1]
			}
			r.pendingFlag = false
			r.i++

		case tokNewline, tokSemicolon:
			r.i++

		case tokImport:
			if err := r.scanPlainImport(r.flagged()); err != nil {
				return nil, err
			}

		case tokFrom:
			if err := r.scanFromImport(r.flagged()); err != nil {
				return nil, err
			}

		case tokIf:
			if err := r.scanIfHeader(); err != nil {
				return nil, err
			}

		default:
			r.pendingFlag = false
			r.skipStatement()
		}
	}
	return r.imports, nil
}

// flagged reports whether the current position is inside a TYPE_CHECKING
// block, directly or through any number of nested blocks.
func (r *recognizer) flagged() bool {
	return len(r.stack) > 0 && r.stack[len(r.stack)-1].flagged
}

func (r *recognizer) peek() tokenKind {
	if r.i < len(r.toks) {
		return r.toks[r.i].kind
	}
	return tokNewline
}

// skipStatement advances up to, but not past, the next Newline. Indent and
// Dedent tokens only ever occur at the start of a logical line, so none are
// skipped here.
func (r *recognizer) skipStatement() {
	for r.i < len(r.toks) && r.toks[r.i].kind != tokNewline {
		r.i++
	}
}

// endStatement checks the terminator after a recognized import. The Newline
// itself is left for the main loop. A semicolon may chain another import
// statement; junk after a final semicolon is tolerated, matching the
// permissive handling of non-import code elsewhere on the line. Anything
// else is a parse error.
func (r *recognizer) endStatement(line int) error {
	switch r.peek() {
	case tokNewline:
		return nil
	case tokSemicolon:
		r.i++
		if k := r.peek(); k != tokImport && k != tokFrom {
			r.skipStatement()
		}
		return nil
	default:
		return &ParseError{Line: line, Reason: "unexpected " + r.toks[r.i].kind.String() + " in import statement"}
	}
}

// record appends one result per imported name, all sharing the statement's
// starting line and raw text.
func (r *recognizer) record(names []string, line, start, end int, flagged bool) {
	contents := strings.TrimRight(r.src[start:end], " \t")
	for _, name := range names {
		r.imports = append(r.imports, Import{
			ImportedObject:   name,
			LineNumber:       line,
			LineContents:     contents,
			TypecheckingOnly: flagged,
		})
	}
}

// scanPlainImport handles `import a.b, c as d, ...`. Aliases are consumed
// and discarded: only the canonical module path is reported.
func (r *recognizer) scanPlainImport(flagged bool) error {
	stmt := r.toks[r.i]
	r.i++

	var names []string
	end := stmt.end
	for {
		name, nameEnd, err := r.dottedName(stmt.line)
		if err != nil {
			return err
		}
		end = nameEnd
		if r.peek() == tokAs {
			r.i++
			if r.peek() != tokIdent {
				return &ParseError{Line: stmt.line, Reason: "expected alias after `as`"}
			}
			end = r.toks[r.i].end
			r.i++
		}
		names = append(names, name)
		if r.peek() != tokComma {
			break
		}
		r.i++
	}

	r.record(names, stmt.line, stmt.pos, end, flagged)
	return r.endStatement(stmt.line)
}

// scanFromImport handles the `from ... import ...` forms: leading relative
// dots, a wildcard target, and flat or parenthesized name lists with optional
// aliases and a tolerated trailing comma.
func (r *recognizer) scanFromImport(flagged bool) error {
	stmt := r.toks[r.i]
	r.i++

	var module strings.Builder
	for r.peek() == tokDot {
		module.WriteByte('.')
		r.i++
	}
	if r.peek() == tokIdent {
		module.WriteString(r.toks[r.i].text)
		r.i++
		for r.peek() == tokDot {
			r.i++
			if r.peek() != tokIdent {
				return &ParseError{Line: stmt.line, Reason: "expected identifier after `.` in module path"}
			}
			module.WriteByte('.')
			module.WriteString(r.toks[r.i].text)
			r.i++
		}
	}
	if module.Len() == 0 {
		return &ParseError{Line: stmt.line, Reason: "expected module path after `from`"}
	}

	if r.peek() != tokImport {
		return &ParseError{Line: stmt.line, Reason: "expected `import` after `from " + module.String() + "`"}
	}
	r.i++

	base := module.String()
	if !strings.HasSuffix(base, ".") {
		base += "."
	}

	if r.peek() == tokStar {
		end := r.toks[r.i].end
		r.i++
		r.record([]string{base + "*"}, stmt.line, stmt.pos, end, flagged)
		return r.endStatement(stmt.line)
	}

	paren := false
	if r.peek() == tokLParen {
		paren = true
		r.i++
	}

	var names []string
	end := stmt.end
	for {
		if paren && r.peek() == tokRParen {
			end = r.toks[r.i].end
			r.i++
			break
		}
		if r.peek() != tokIdent {
			return &ParseError{Line: stmt.line, Reason: "expected imported name after `import`"}
		}
		end = r.toks[r.i].end
		names = append(names, base+r.toks[r.i].text)
		r.i++
		if r.peek() == tokAs {
			r.i++
			if r.peek() != tokIdent {
				return &ParseError{Line: stmt.line, Reason: "expected alias after `as`"}
			}
			end = r.toks[r.i].end
			r.i++
		}
		if r.peek() == tokComma {
			r.i++
			continue
		}
		if paren {
			if r.peek() != tokRParen {
				return &ParseError{Line: stmt.line, Reason: "expected `)` to close import list"}
			}
			end = r.toks[r.i].end
			r.i++
		}
		break
	}
	if len(names) == 0 {
		return &ParseError{Line: stmt.line, Reason: "empty import list"}
	}

	r.record(names, stmt.line, stmt.pos, end, flagged)
	return r.endStatement(stmt.line)
}

// dottedName reads `ident(.ident)*` and returns the joined path plus the byte
// offset just past its last token.
func (r *recognizer) dottedName(line int) (string, int, error) {
	if r.peek() != tokIdent {
		return "", 0, &ParseError{Line: line, Reason: "expected module name after `import`"}
	}
	var b strings.Builder
	b.WriteString(r.toks[r.i].text)
	end := r.toks[r.i].end
	r.i++
	for r.peek() == tokDot {
		r.i++
		if r.peek() != tokIdent {
			return "", 0, &ParseError{Line: line, Reason: "expected identifier after `.` in module path"}
		}
		b.WriteString(".")
		b.WriteString(r.toks[r.i].text)
		end = r.toks[r.i].end
		r.i++
	}
	return b.String(), end, nil
}

// scanIfHeader inspects an `if` statement header up to its colon. When the
// condition mentions the identifier TYPE_CHECKING (bare or as the attribute
// in typing.TYPE_CHECKING), the block it guards is flagged: an indented body
// via pendingFlag, an inline body by parsing the rest of the line here.
// This is a textual approximation, not an evaluation of the condition.
func (r *recognizer) scanIfHeader() error {
	r.i++

	sawColon := false
	containsTC := false
	for r.i < len(r.toks) && r.toks[r.i].kind != tokNewline {
		t := r.toks[r.i]
		if t.kind == tokColon {
			sawColon = true
			r.i++
			break
		}
		if t.kind == tokIdent && t.text == "TYPE_CHECKING" {
			containsTC = true
		}
		r.i++
	}

	if !sawColon {
		// Header never closed on this logical line; nothing to guard.
		r.skipStatement()
		return nil
	}

	if r.peek() == tokNewline {
		r.pendingFlag = containsTC
		return nil
	}

	// Inline body: `if TYPE_CHECKING: import x; from y import z`. The flag
	// must survive semicolon chaining, so the whole rest of the logical line
	// is handled here instead of the main loop.
	flag := containsTC || r.flagged()
	for r.peek() != tokNewline {
		switch r.toks[r.i].kind {
		case tokSemicolon:
			r.i++
		case tokImport:
			if err := r.scanPlainImport(flag); err != nil {
				return err
			}
		case tokFrom:
			if err := r.scanFromImport(flag); err != nil {
				return err
			}
		default:
			r.skipStatement()
		}
	}
	return nil
}
