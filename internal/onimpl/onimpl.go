package onimpl

import (
	"traitnote/internal/diag"
	"traitnote/internal/meta"
	"traitnote/internal/source"
	"traitnote/internal/typesys"
)

// DirectiveForItem finds the on_unimplemented attribute on an
// implementing item and turns it into a directive.
//
// The three outcomes callers must distinguish: (directive, nil) when a
// usable directive exists, (nil, nil) when the attribute is absent, and
// (nil, ErrDirectiveReported) when the attribute is present but
// unusable. Diagnostics were already emitted for the last case; both
// nil outcomes fall back to the generic message.
func DirectiveForItem(sys typesys.System, trait, item typesys.DefID, in *source.Interner, rep diag.Reporter) (*Directive, error) {
	var attr *meta.Attr
	attrs := sys.Attrs(item)
	for i := range attrs {
		if attrs[i].Name == AttrName {
			attr = &attrs[i]
			break
		}
	}
	if attr == nil {
		return nil, nil
	}

	switch attr.Form {
	case meta.AttrList:
		return Parse(sys, trait, attr.Items, attr.Span, in, rep)

	case meta.AttrString:
		// A bare string is a label-only directive, never a message.
		c := newParseCtx(sys, trait, in, rep)
		// Attr.Value arrives already unescaped with ValueSpan covering
		// its literal source text, so there is no escape shift.
		tmpl, ok := NewTemplate(attr.Value, attr.ValueSpan, nil, c.traitName, c.params, c)
		if !ok {
			return nil, ErrDirectiveReported
		}
		return &Directive{Trait: trait, Label: tmpl, Span: attr.Span}, nil

	default:
		diag.ReportErrorNote(rep, diag.DirRequiresValue, attr.Span,
			"on_unimplemented attribute requires a value",
			`eg on_unimplemented = "the message"`)
		return nil, ErrDirectiveReported
	}
}
