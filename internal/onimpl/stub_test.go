package onimpl

import (
	"testing"

	"traitnote/internal/diag"
	"traitnote/internal/meta"
	"traitnote/internal/source"
	"traitnote/internal/typesys"
)

// stubSystem is a hand-wired type system for tests: fixed names, a
// fixed resolutions table, and a table-driven satisfiability oracle.
type stubSystem struct {
	params      map[typesys.DefID][]string
	paths       map[typesys.DefID]string
	typeNames   map[typesys.TypeID]string
	resolutions map[typesys.DefID]map[string]typesys.DefID
	typeOf      map[typesys.DefID]typesys.TypeID
	satisfies   map[satKey]bool
	attrs       map[typesys.DefID][]meta.Attr

	oracleCalls int
}

type satKey struct {
	ty    typesys.TypeID
	trait typesys.DefID
}

func (s *stubSystem) GenericParams(trait typesys.DefID) []string { return s.params[trait] }
func (s *stubSystem) TraitPath(trait typesys.DefID) string       { return s.paths[trait] }
func (s *stubSystem) PrintType(ty typesys.TypeID) string         { return s.typeNames[ty] }

func (s *stubSystem) Resolutions(trait typesys.DefID) (map[string]typesys.DefID, bool) {
	r, ok := s.resolutions[trait]
	return r, ok
}

func (s *stubSystem) TypeOf(def typesys.DefID) (typesys.TypeID, bool) {
	ty, ok := s.typeOf[def]
	return ty, ok
}

func (s *stubSystem) Satisfies(ty typesys.TypeID, trait typesys.DefID) bool {
	s.oracleCalls++
	return s.satisfies[satKey{ty: ty, trait: trait}]
}

func (s *stubSystem) Attrs(item typesys.DefID) []meta.Attr { return s.attrs[item] }

// Fixed identities used across the tests.
const (
	traitFoo typesys.DefID = 1
	traitBar typesys.DefID = 2
	defTypeY typesys.DefID = 3
	itemFoo  typesys.DefID = 10

	tyString typesys.TypeID = 1
	tyVec    typesys.TypeID = 2
	tyTypeY  typesys.TypeID = 3
)

// newStub builds the standing fixture: trait Foo<T, U> at demo::Foo
// with resolutions {Bar -> traitBar, T -> defTypeY}, where defTypeY
// denotes tyTypeY.
func newStub() *stubSystem {
	return &stubSystem{
		params: map[typesys.DefID][]string{
			traitFoo: {"T", "U"},
			traitBar: nil,
		},
		paths: map[typesys.DefID]string{
			traitFoo: "demo::Foo",
			traitBar: "demo::Bar",
		},
		typeNames: map[typesys.TypeID]string{
			tyString: "String",
			tyVec:    "Vec<u8>",
			tyTypeY:  "TypeY",
		},
		resolutions: map[typesys.DefID]map[string]typesys.DefID{
			traitFoo: {"Bar": traitBar, "T": defTypeY},
		},
		typeOf: map[typesys.DefID]typesys.TypeID{
			defTypeY: tyTypeY,
		},
		satisfies: map[satKey]bool{},
		attrs:     map[typesys.DefID][]meta.Attr{},
	}
}

type testEnv struct {
	fs  *source.FileSet
	in  *source.Interner
	bag *diag.Bag
	rep diag.Reporter
	sys *stubSystem
}

func newTestEnv() *testEnv {
	bag := diag.NewBag(32)
	return &testEnv{
		fs:  source.NewFileSet(),
		in:  source.NewInterner(),
		bag: bag,
		rep: diag.BagReporter{Bag: bag},
		sys: newStub(),
	}
}

// items parses attribute argument text into meta items, failing the
// test on syntax errors.
func (e *testEnv) items(t *testing.T, text string) []meta.Item {
	t.Helper()
	id := e.fs.AddVirtual("attr", []byte(text))
	items, ok := meta.ParseItems(id, text, 0, e.in, e.rep)
	if !ok {
		t.Fatalf("attribute text %q failed to parse: %v", text, e.bag.Items())
	}
	return items
}

// parse runs the directive parser over attribute text for trait Foo.
func (e *testEnv) parse(t *testing.T, text string) (*Directive, error) {
	t.Helper()
	items := e.items(t, text)
	return Parse(e.sys, traitFoo, items, source.Span{}, e.in, e.rep)
}

// codes collects the diagnostic codes accumulated so far.
func (e *testEnv) codes() []diag.Code {
	out := make([]diag.Code, 0, e.bag.Len())
	for _, d := range e.bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func hasCode(codes []diag.Code, want diag.Code) bool {
	for _, c := range codes {
		if c == want {
			return true
		}
	}
	return false
}

// fooRef builds a trait reference Foo<T=argT, U=argU> with the given
// receiver.
func fooRef(self, argT, argU typesys.TypeID) typesys.TraitRef {
	return typesys.TraitRef{Trait: traitFoo, Self: self, Args: []typesys.TypeID{argT, argU}}
}
