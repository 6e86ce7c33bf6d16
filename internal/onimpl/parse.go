package onimpl

import (
	"errors"
	"fmt"
	"strings"

	"traitnote/internal/diag"
	"traitnote/internal/meta"
	"traitnote/internal/source"
	"traitnote/internal/typesys"
)

// AttrName is the one attribute this subsystem recognizes.
const AttrName = "on_unimplemented"

// ErrDirectiveReported means the directive could not be used and the
// reasons were already emitted as diagnostics. Callers fall back to the
// generic trait-not-satisfied message and do not report again.
var ErrDirectiveReported = errors.New("on_unimplemented directive had errors")

// parseCtx threads the owning trait's vocabulary through one parse and
// tracks whether any error was reported. It doubles as the reporter so
// template and matches validation feed the same error flag.
type parseCtx struct {
	trait     typesys.DefID
	traitName string
	params    []string
	in        *source.Interner
	rep       diag.Reporter
	errCount  int
}

func newParseCtx(sys typesys.System, trait typesys.DefID, in *source.Interner, rep diag.Reporter) *parseCtx {
	return &parseCtx{
		trait:     trait,
		traitName: simpleName(sys.TraitPath(trait)),
		params:    sys.GenericParams(trait),
		in:        in,
		rep:       rep,
	}
}

func (c *parseCtx) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note) {
	if sev >= diag.SevError {
		c.errCount++
	}
	if c.rep != nil {
		c.rep.Report(code, sev, primary, msg, notes)
	}
}

// simpleName trims a fully qualified path down to the trait's own name,
// the form placeholders use.
func simpleName(path string) string {
	if i := strings.LastIndex(path, "::"); i >= 0 {
		return path[i+2:]
	}
	return path
}

// Parse builds the directive tree from a root attribute item list.
// Errors across the whole list are batched: every offending item is
// reported before the parse fails with ErrDirectiveReported.
func Parse(sys typesys.System, trait typesys.DefID, items []meta.Item, span source.Span, in *source.Interner, rep diag.Reporter) (*Directive, error) {
	c := newParseCtx(sys, trait, in, rep)
	d := &Directive{Trait: trait, Span: span}

	for _, it := range items {
		name := it.NameStr(c.in)
		switch {
		case it.Kind == meta.ItemNameValue && name == "message" && d.Message == nil:
			d.Message = c.template(it)

		case it.Kind == meta.ItemNameValue && name == "label" && d.Label == nil:
			d.Label = c.template(it)

		case it.Kind == meta.ItemList && name == "on" && d.Message == nil && d.Label == nil:
			if rule, ok := c.parseRule(it); ok {
				d.Subcommands = append(d.Subcommands, rule)
			}

		default:
			c.errorItem(it)
		}
	}

	if c.errCount > 0 {
		return nil, ErrDirectiveReported
	}
	return d, nil
}

// parseRule parses one on(...) subcommand: the first inner item is the
// condition, the rest are message/label pairs.
func (c *parseCtx) parseRule(on meta.Item) (Rule, bool) {
	before := c.errCount
	inner := on.Items
	if len(inner) == 0 {
		diag.ReportError(c, diag.DirEmptyOnClause, on.Span,
			"empty on-clause in on_unimplemented directive")
		return Rule{}, false
	}
	cond := inner[0]
	if cond.Kind == meta.ItemLiteral {
		diag.ReportError(c, diag.DirInvalidOnClause, cond.Span,
			"invalid on-clause in on_unimplemented directive")
		return Rule{}, false
	}
	c.validateCondition(cond)

	rule := Rule{Condition: cond, Span: on.Span}
	for _, it := range inner[1:] {
		name := it.NameStr(c.in)
		switch {
		case it.Kind == meta.ItemNameValue && name == "message" && rule.Message == nil:
			rule.Message = c.template(it)
		case it.Kind == meta.ItemNameValue && name == "label" && rule.Label == nil:
			rule.Label = c.template(it)
		default:
			// Nested on(...) lands here too: subcommands exist only at
			// the root.
			c.errorItem(it)
		}
	}
	return rule, c.errCount == before
}

// validateCondition walks a condition eagerly so shape errors surface at
// parse time instead of at diagnostic-emission time.
func (c *parseCtx) validateCondition(it meta.Item) {
	switch it.Kind {
	case meta.ItemList:
		switch name := it.NameStr(c.in); name {
		case "all", "any":
			for _, sub := range it.Items {
				c.validateCondition(sub)
			}
		case "not":
			if len(it.Items) != 1 {
				diag.ReportError(c, diag.DirNotArity, it.Span,
					fmt.Sprintf("not() takes exactly one condition, found %d", len(it.Items)))
				return
			}
			c.validateCondition(it.Items[0])
		case "matches":
			matchesNames(it.Items, it.Span, c.in, c)
		default:
			// Open vocabulary: unknown list clauses evaluate as plain
			// leaves, nothing to check here.
		}

	case meta.ItemLiteral:
		diag.ReportError(c, diag.DirInvalidOnClause, it.Span,
			"a bare literal is not a valid condition")

	default:
		// Words and name = "value" pairs are always well formed.
	}
}

// template validates one message/label value. A failed validation still
// lets the scan continue over the remaining items.
func (c *parseCtx) template(it meta.Item) *FormatTemplate {
	value, _ := it.ValueStr(c.in)
	tmpl, ok := NewTemplate(value, it.ValueSpan, it.ValueEsc, c.traitName, c.params, c)
	if !ok {
		return nil
	}
	return tmpl
}

func (c *parseCtx) errorItem(it meta.Item) {
	diag.ReportErrorNote(c, diag.DirExpectValue, it.Span,
		"this attribute item must have a valid value",
		`eg on_unimplemented(message = "the message")`)
}
