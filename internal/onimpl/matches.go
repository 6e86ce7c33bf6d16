package onimpl

import (
	"traitnote/internal/diag"
	"traitnote/internal/meta"
	"traitnote/internal/source"
	"traitnote/internal/typesys"
)

// matchesNames pulls the (bound, self) name pair out of a
// matches(...) argument list. The shape is exactly one bare string
// literal naming the bound and exactly one Self = "..." pair; anything
// else is reported and ok is false. Parsing runs this eagerly, so
// evaluation can assume the shape holds.
func matchesNames(items []meta.Item, sp source.Span, in *source.Interner, rep diag.Reporter) (bound, self string, ok bool) {
	ok = true
	haveBound, haveSelf := false, false
	for _, it := range items {
		switch {
		case it.Kind == meta.ItemLiteral:
			if haveBound {
				diag.ReportError(rep, diag.DirMatchesMultipleBounds, it.Span,
					"matches clause already names a bound")
				ok = false
				continue
			}
			bound, _ = it.ValueStr(in)
			haveBound = true

		case it.Kind == meta.ItemNameValue && it.NameStr(in) == "Self":
			if haveSelf {
				diag.ReportError(rep, diag.DirMatchesMultipleSelf, it.Span,
					"matches clause already names a Self type")
				ok = false
				continue
			}
			self, _ = it.ValueStr(in)
			haveSelf = true

		default:
			diag.ReportError(rep, diag.DirInvalidOnClause, it.Span,
				"matches takes one bound literal and one Self = \"...\" pair")
			ok = false
		}
	}
	if !haveBound {
		diag.ReportError(rep, diag.DirMatchesMissingBound, sp,
			"matches clause is missing its bound literal")
		ok = false
	}
	if !haveSelf {
		diag.ReportError(rep, diag.DirMatchesMissingSelf, sp,
			"matches clause is missing its Self = \"...\" pair")
		ok = false
	}
	return bound, self, ok
}

// matchesHandler wires the matches clause into condition evaluation:
// both names resolve through the trait's resolutions table, then the
// satisfiability oracle answers. A name the table cannot resolve makes
// the clause false rather than an error; the directive stays usable.
func matchesHandler(sys typesys.System, trait typesys.DefID, in *source.Interner) meta.CustomHandler {
	return func(name string, items []meta.Item) (bool, bool) {
		if name != "matches" {
			return false, false
		}
		bound, self, ok := matchesNames(items, source.Span{}, in, diag.NopReporter{})
		if !ok {
			return false, true
		}
		res, has := sys.Resolutions(trait)
		if !has {
			return false, true
		}
		boundDef, okBound := res[bound]
		selfDef, okSelf := res[self]
		if !okBound || !okSelf {
			return false, true
		}
		ty, okTy := sys.TypeOf(selfDef)
		if !okTy {
			return false, true
		}
		return sys.Satisfies(ty, boundDef), true
	}
}
