// Package typesys is the narrow surface the diagnostic machinery needs
// from a type system: name and parameter lookups, a per-trait
// resolutions table, and the trait-satisfiability oracle. Implementations
// live elsewhere (internal/world for self-contained worlds, a real
// front end in production use).
package typesys

import (
	"traitnote/internal/meta"
)

// DefID identifies a definition (trait, type, impl item) within one
// type-system instance. IDs are stable for the instance's lifetime.
type DefID uint32

// NoDef is the zero DefID; no real definition uses it.
const NoDef DefID = 0

// TypeID identifies a concrete type within one type-system instance.
type TypeID uint32

// System is everything directive parsing and rendering consume.
// Satisfies is the oracle: a synchronous, isolated query that may be
// expensive. It must not recurse into a check that is currently
// evaluating this same directive.
type System interface {
	// GenericParams returns the trait's declared type parameter names in
	// declaration order, excluding the implicit Self.
	GenericParams(trait DefID) []string

	// TraitPath returns the trait's fully qualified printed name.
	TraitPath(trait DefID) string

	// PrintType returns the display form of a type.
	PrintType(ty TypeID) string

	// Resolutions returns the trait's symbolic-name table used by
	// matches clauses, or false when the trait has none.
	Resolutions(trait DefID) (map[string]DefID, bool)

	// TypeOf maps a definition to the type it denotes, when it denotes
	// one.
	TypeOf(def DefID) (TypeID, bool)

	// Satisfies reports whether ty satisfies trait with no further
	// generic arguments, under an empty assumption environment.
	Satisfies(ty TypeID, trait DefID) bool

	// Attrs returns the attributes attached to a definition.
	Attrs(item DefID) []meta.Attr
}

// TraitRef is an instantiated trait reference: the trait plus the
// concrete types bound to Self and to each declared parameter. Args is
// aligned with GenericParams order.
type TraitRef struct {
	Trait DefID
	Self  TypeID
	Args  []TypeID
}

// Option is one (name, optional value) entry of the evaluation context.
type Option struct {
	Name  string
	Value *string
}

// Options is the flat context simple named conditions test against.
type Options []Option

// Has reports membership by exact name and, when want is non-nil, exact
// value match.
func (o Options) Has(name string, want *string) bool {
	for _, opt := range o {
		if opt.Name != name {
			continue
		}
		if want == nil {
			return true
		}
		if opt.Value != nil && *opt.Value == *want {
			return true
		}
	}
	return false
}

// Set appends a valueless option.
func (o Options) Set(name string) Options {
	return append(o, Option{Name: name})
}

// SetValue appends an option with a value.
func (o Options) SetValue(name, value string) Options {
	return append(o, Option{Name: name, Value: &value})
}
