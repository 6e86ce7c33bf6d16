package onimpl

import (
	"traitnote/internal/meta"
	"traitnote/internal/source"
	"traitnote/internal/typesys"
)

// Directive is the root of a trait's on_unimplemented tree: the
// unconditional fallback message/label plus the conditional rules tried
// before it. Immutable once parsed.
type Directive struct {
	Trait       typesys.DefID
	Subcommands []Rule
	Message     *FormatTemplate
	Label       *FormatTemplate
	Span        source.Span
}

// Rule is one on(...) subcommand: a condition gating a message/label
// override. Rules never nest.
type Rule struct {
	Condition meta.Item
	Message   *FormatTemplate
	Label     *FormatTemplate
	Span      source.Span
}

// Note is the evaluated result: the rendered message and label, each
// absent when no applicable rule (or the root) supplied one.
type Note struct {
	Message *string
	Label   *string
}
