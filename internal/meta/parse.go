package meta

import (
	"fmt"

	"traitnote/internal/diag"
	"traitnote/internal/source"
)

// ParseItems parses attribute argument text into a flat item list.
// base is the byte offset of text inside file, so every span points at
// real source. Syntax errors go to rep; the second result is false when
// any were reported. Parsing recovers at commas, so one bad item does
// not hide errors in the rest of the list.
func ParseItems(file source.FileID, text string, base uint32, in *source.Interner, rep diag.Reporter) ([]Item, bool) {
	tracked := &trackingReporter{inner: rep}
	toks := scanAll(file, text, base, tracked)

	p := parser{toks: toks, in: in, rep: tracked}
	items := p.itemList(tokEOF)
	if t := p.peek(); t.kind != tokEOF {
		diag.ReportError(p.rep, diag.MetaTrailingTokens, t.span,
			fmt.Sprintf("expected end of attribute, found %s", t.kind))
	}
	return items, !tracked.sawError
}

// trackingReporter forwards to the caller's reporter and remembers
// whether any error went through.
type trackingReporter struct {
	inner    diag.Reporter
	sawError bool
}

func (t *trackingReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note) {
	if sev >= diag.SevError {
		t.sawError = true
	}
	if t.inner != nil {
		t.inner.Report(code, sev, primary, msg, notes)
	}
}

type parser struct {
	toks []token
	pos  int
	in   *source.Interner
	rep  diag.Reporter
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

// itemList parses comma-separated items until the closing token.
// A trailing comma before the close is allowed.
func (p *parser) itemList(close tokKind) []Item {
	items := make([]Item, 0, 4)
	for {
		t := p.peek()
		if t.kind == close || t.kind == tokEOF {
			return items
		}
		it, ok := p.item()
		if ok {
			items = append(items, it)
		} else {
			p.recover(close)
		}
		t = p.peek()
		switch t.kind {
		case tokComma:
			p.advance()
		case close, tokEOF:
			return items
		default:
			diag.ReportError(p.rep, diag.MetaUnexpectedToken, t.span,
				fmt.Sprintf("expected %s or %s, found %s", tokComma, close, t.kind))
			p.recover(close)
			if p.peek().kind == tokComma {
				p.advance()
			}
		}
	}
}

// recover skips forward to the next comma at the current nesting depth,
// or to the closing token, so the item list keeps yielding diagnostics.
func (p *parser) recover(close tokKind) {
	depth := 0
	for {
		t := p.peek()
		switch t.kind {
		case tokEOF:
			return
		case tokComma:
			if depth == 0 {
				return
			}
		case tokLParen:
			depth++
		case tokRParen:
			if depth == 0 {
				if close == tokRParen {
					return
				}
			} else {
				depth--
			}
		}
		p.advance()
	}
}

func (p *parser) item() (Item, bool) {
	t := p.peek()
	switch t.kind {
	case tokString:
		p.advance()
		return Item{
			Kind:      ItemLiteral,
			Value:     p.in.Intern(t.text),
			Span:      t.span,
			ValueSpan: contentSpan(t.span),
			ValueEsc:  t.esc,
		}, true

	case tokIdent:
		name := p.advance()
		switch p.peek().kind {
		case tokEq:
			p.advance()
			val := p.peek()
			if val.kind != tokString {
				diag.ReportError(p.rep, diag.MetaExpectValue, val.span,
					fmt.Sprintf("expected string value after '=', found %s", val.kind))
				return Item{}, false
			}
			p.advance()
			return Item{
				Kind:      ItemNameValue,
				Name:      p.in.Intern(name.text),
				Value:     p.in.Intern(val.text),
				Span:      name.span.Cover(val.span),
				NameSpan:  name.span,
				ValueSpan: contentSpan(val.span),
				ValueEsc:  val.esc,
			}, true

		case tokLParen:
			p.advance()
			inner := p.itemList(tokRParen)
			closeTok := p.peek()
			if closeTok.kind != tokRParen {
				diag.ReportError(p.rep, diag.MetaUnclosedParen, name.span.Cover(closeTok.span),
					fmt.Sprintf("missing ')' to close %s(...)", name.text))
				return Item{}, false
			}
			p.advance()
			return Item{
				Kind:     ItemList,
				Name:     p.in.Intern(name.text),
				Items:    inner,
				Span:     name.span.Cover(closeTok.span),
				NameSpan: name.span,
			}, true

		default:
			return Item{
				Kind:     ItemWord,
				Name:     p.in.Intern(name.text),
				Span:     name.span,
				NameSpan: name.span,
			}, true
		}

	default:
		diag.ReportError(p.rep, diag.MetaExpectItem, t.span,
			fmt.Sprintf("expected attribute item, found %s", t.kind))
		if t.kind == tokBad {
			p.advance()
		}
		return Item{}, false
	}
}

// contentSpan trims the quotes off a string token's span.
func contentSpan(sp source.Span) source.Span {
	if sp.End-sp.Start >= 2 {
		return source.Span{File: sp.File, Start: sp.Start + 1, End: sp.End - 1}
	}
	return sp
}
