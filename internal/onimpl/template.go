package onimpl

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"traitnote/internal/diag"
	"traitnote/internal/source"
	"traitnote/internal/typesys"
)

type bindKind uint8

const (
	bindLiteral bindKind = iota
	bindSelf
	bindTraitName
	bindParam
)

// piece is one run of a parsed template: literal text or a placeholder
// already resolved to its binding. Param bindings store the declaration
// index, so rendering never does a string lookup.
type piece struct {
	lit   string
	bind  bindKind
	param int
}

// FormatTemplate is a validated message or label string. Immutable after
// construction; safe for concurrent readers.
type FormatTemplate struct {
	raw    string
	pieces []piece
}

func (t *FormatTemplate) Raw() string { return t.raw }

// NewTemplate parses and validates raw against the owning trait's
// vocabulary: {Self}, the trait's own name, and its declared generic
// parameter names. sp locates the string content inside its file and
// esc marks which bytes of raw came from escape sequences, so each
// violation points at the offending placeholder in the source text.
// All violations in the string are reported before the construction
// fails.
func NewTemplate(raw string, sp source.Span, esc []uint32, traitName string, params []string, rep diag.Reporter) (*FormatTemplate, bool) {
	t := &FormatTemplate{raw: raw}
	ok := true

	// Offsets into raw shift right by one source byte per escape
	// sequence that sits before them.
	srcOff := func(off int) uint32 {
		u, err := safecast.Conv[uint32](off)
		if err != nil {
			panic(fmt.Errorf("format string offset overflow: %w", err))
		}
		shifted := u
		for _, e := range esc {
			if e < u {
				shifted++
			}
		}
		return shifted
	}
	sub := func(start, end int) source.Span {
		s := source.Span{File: sp.File, Start: sp.Start + srcOff(start), End: sp.Start + srcOff(end)}
		if s.End > sp.End {
			s.End = sp.End
		}
		return s
	}

	lit := 0
	for i := 0; i < len(raw); {
		switch raw[i] {
		case '{':
			close := strings.IndexByte(raw[i+1:], '}')
			if close < 0 {
				diag.ReportError(rep, diag.TmplUnclosedBrace, sub(i, len(raw)),
					"expected '}' to close the substitution")
				ok = false
				i = len(raw)
				continue
			}
			if lit < i {
				t.pieces = append(t.pieces, piece{lit: raw[lit:i]})
			}
			name := raw[i+1 : i+1+close]
			nameSpan := sub(i, i+close+2)
			if p, valid := resolvePlaceholder(name, traitName, params, nameSpan, rep); valid {
				t.pieces = append(t.pieces, p)
			} else {
				ok = false
			}
			i += close + 2
			lit = i

		case '}':
			diag.ReportError(rep, diag.TmplStrayBrace, sub(i, i+1),
				"unmatched '}' in format string")
			ok = false
			i++

		default:
			i++
		}
	}
	if lit < len(raw) {
		t.pieces = append(t.pieces, piece{lit: raw[lit:]})
	}
	if !ok {
		return nil, false
	}
	return t, true
}

func resolvePlaceholder(name, traitName string, params []string, sp source.Span, rep diag.Reporter) (piece, bool) {
	if name == "" || isAllDigits(name) {
		diag.ReportError(rep, diag.TmplPositionalArg, sp,
			"only named substitution parameters are allowed")
		return piece{}, false
	}
	if name == "Self" {
		return piece{bind: bindSelf}, true
	}
	if name == traitName {
		return piece{bind: bindTraitName}, true
	}
	for i, p := range params {
		if p == name {
			return piece{bind: bindParam, param: i}, true
		}
	}
	diag.ReportError(rep, diag.TmplUnknownParam, sp,
		fmt.Sprintf("there is no parameter %s on trait %s", name, traitName))
	return piece{}, false
}

func isAllDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Render substitutes the template against a concrete trait reference.
// Validation already proved every binding; a reference with too few
// arguments is an internal defect and panics.
func (t *FormatTemplate) Render(sys typesys.System, ref typesys.TraitRef) string {
	var b strings.Builder
	b.Grow(len(t.raw))
	for _, p := range t.pieces {
		switch p.bind {
		case bindLiteral:
			b.WriteString(p.lit)
		case bindSelf:
			b.WriteString(sys.PrintType(ref.Self))
		case bindTraitName:
			b.WriteString(sys.TraitPath(ref.Trait))
		case bindParam:
			if p.param >= len(ref.Args) {
				panic(fmt.Errorf("format template %q: trait reference has %d arguments, parameter index %d is out of range",
					t.raw, len(ref.Args), p.param))
			}
			b.WriteString(sys.PrintType(ref.Args[p.param]))
		}
	}
	return b.String()
}
