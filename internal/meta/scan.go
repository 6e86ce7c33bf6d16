package meta

import (
	"fmt"
	"strings"

	"traitnote/internal/diag"
	"traitnote/internal/source"
)

type tokKind uint8

const (
	tokEOF tokKind = iota
	tokIdent
	tokString
	tokEq
	tokLParen
	tokRParen
	tokComma
	tokBad
)

func (k tokKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "identifier"
	case tokString:
		return "string"
	case tokEq:
		return "'='"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokComma:
		return "','"
	}
	return "bad token"
}

type token struct {
	kind tokKind
	text string // idents verbatim, strings unescaped
	span source.Span
	// esc holds the offset in text of each character that was written
	// by an escape sequence; the source form is one byte longer per
	// entry. Only string tokens carry it.
	esc []uint32
}

// scanner tokenizes attribute argument text. Offsets are byte positions
// shifted by base so spans land inside the hosting file.
type scanner struct {
	file source.FileID
	src  string
	base uint32
	pos  uint32
	rep  diag.Reporter
}

func (s *scanner) spanFrom(start uint32) source.Span {
	return source.Span{File: s.file, Start: s.base + start, End: s.base + s.pos}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func (s *scanner) next() token {
	for s.pos < uint32(len(s.src)) {
		c := s.src[s.pos]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			s.pos++
			continue
		}
		break
	}
	start := s.pos
	if s.pos >= uint32(len(s.src)) {
		return token{kind: tokEOF, span: s.spanFrom(start)}
	}

	c := s.src[s.pos]
	switch {
	case c == '=':
		s.pos++
		return token{kind: tokEq, span: s.spanFrom(start)}
	case c == '(':
		s.pos++
		return token{kind: tokLParen, span: s.spanFrom(start)}
	case c == ')':
		s.pos++
		return token{kind: tokRParen, span: s.spanFrom(start)}
	case c == ',':
		s.pos++
		return token{kind: tokComma, span: s.spanFrom(start)}
	case c == '"':
		return s.scanString()
	case isIdentStart(c):
		s.pos++
		for s.pos < uint32(len(s.src)) && isIdentCont(s.src[s.pos]) {
			s.pos++
		}
		return token{kind: tokIdent, text: s.src[start:s.pos], span: s.spanFrom(start)}
	default:
		s.pos++
		sp := s.spanFrom(start)
		diag.ReportError(s.rep, diag.MetaUnexpectedToken, sp,
			fmt.Sprintf("unexpected character %q in attribute", c))
		return token{kind: tokBad, span: sp}
	}
}

// scanString consumes a double-quoted literal with \" and \\ escapes.
// The returned token span includes the quotes; text holds the unescaped
// content.
func (s *scanner) scanString() token {
	start := s.pos
	s.pos++ // opening quote
	var b strings.Builder
	var escapes []uint32
	for s.pos < uint32(len(s.src)) {
		c := s.src[s.pos]
		switch c {
		case '"':
			s.pos++
			return token{kind: tokString, text: b.String(), span: s.spanFrom(start), esc: escapes}
		case '\\':
			if s.pos+1 >= uint32(len(s.src)) {
				s.pos++
				continue
			}
			esc := s.src[s.pos+1]
			if esc != '"' && esc != '\\' {
				escSpan := source.Span{File: s.file, Start: s.base + s.pos, End: s.base + s.pos + 2}
				diag.ReportError(s.rep, diag.MetaBadEscape, escSpan,
					fmt.Sprintf("unknown escape sequence \\%c", esc))
			}
			escapes = append(escapes, uint32(b.Len()))
			b.WriteByte(esc)
			s.pos += 2
		default:
			b.WriteByte(c)
			s.pos++
		}
	}
	sp := s.spanFrom(start)
	diag.ReportError(s.rep, diag.MetaUnterminatedString, sp, "unterminated string literal")
	return token{kind: tokBad, text: b.String(), span: sp, esc: escapes}
}

func scanAll(file source.FileID, text string, base uint32, rep diag.Reporter) []token {
	s := scanner{file: file, src: text, base: base, rep: rep}
	var toks []token
	for {
		t := s.next()
		toks = append(toks, t)
		if t.kind == tokEOF {
			return toks
		}
	}
}
