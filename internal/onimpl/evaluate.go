package onimpl

import (
	"traitnote/internal/meta"
	"traitnote/internal/source"
	"traitnote/internal/typesys"
)

// Evaluate picks the message and label that apply to one concrete trait
// reference. Candidates are processed root first, then the rules from
// last-declared to first-declared, each passing rule overwriting the
// slots it carries. The slots are independent: one rule can win the
// label while another keeps the message. The first rule in declaration
// order whose condition holds therefore ends up winning each slot, with
// the unconditional root as the fallback.
func (d *Directive) Evaluate(sys typesys.System, ref typesys.TraitRef, opts typesys.Options, in *source.Interner) Note {
	leaf := func(name string, value *string) bool {
		return opts.Has(name, value)
	}
	custom := matchesHandler(sys, ref.Trait, in)

	message := d.Message
	label := d.Label
	for i := len(d.Subcommands) - 1; i >= 0; i-- {
		rule := &d.Subcommands[i]
		if !meta.EvalCondition(rule.Condition, in, leaf, custom) {
			continue
		}
		if rule.Message != nil {
			message = rule.Message
		}
		if rule.Label != nil {
			label = rule.Label
		}
	}

	var out Note
	if message != nil {
		s := message.Render(sys, ref)
		out.Message = &s
	}
	if label != nil {
		s := label.Render(sys, ref)
		out.Label = &s
	}
	return out
}
