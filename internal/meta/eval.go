package meta

import (
	"traitnote/internal/source"
)

// LeafTester decides simple named conditions: name membership in the
// caller's option set, with an exact value match when the leaf carries
// one.
type LeafTester func(name string, value *string) bool

// CustomHandler gets first refusal on list clauses. It returns the
// clause's truth value and true when it recognized the clause name, or
// (false, false) to fall through to normal handling.
type CustomHandler func(name string, items []Item) (value, handled bool)

// EvalCondition evaluates one condition item. all(...)/any(...) short
// circuit, not(...) inverts its single operand. List clauses with any
// other name go to custom first; unrecognized ones degrade to a simple
// leaf test on the name alone, so the clause vocabulary stays open.
func EvalCondition(it Item, in *source.Interner, leaf LeafTester, custom CustomHandler) bool {
	switch it.Kind {
	case ItemList:
		name := it.NameStr(in)
		switch name {
		case "all":
			for _, sub := range it.Items {
				if !EvalCondition(sub, in, leaf, custom) {
					return false
				}
			}
			return true
		case "any":
			for _, sub := range it.Items {
				if EvalCondition(sub, in, leaf, custom) {
					return true
				}
			}
			return false
		case "not":
			// Arity is enforced when the directive is parsed.
			if len(it.Items) != 1 {
				return false
			}
			return !EvalCondition(it.Items[0], in, leaf, custom)
		default:
			if custom != nil {
				if value, handled := custom(name, it.Items); handled {
					return value
				}
			}
			return testLeaf(leaf, name, nil)
		}

	case ItemNameValue:
		value := in.MustLookup(it.Value)
		return testLeaf(leaf, it.NameStr(in), &value)

	case ItemLiteral:
		// A bare literal in condition position tests as a plain name.
		name := in.MustLookup(it.Value)
		return testLeaf(leaf, name, nil)

	default: // ItemWord
		return testLeaf(leaf, it.NameStr(in), nil)
	}
}

func testLeaf(leaf LeafTester, name string, value *string) bool {
	if leaf == nil {
		return false
	}
	return leaf(name, value)
}
