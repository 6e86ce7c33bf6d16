package world

import (
	"os"
	"path/filepath"
	"testing"

	"traitnote/internal/diag"
	"traitnote/internal/meta"
	"traitnote/internal/source"
)

const demoWorld = `
name = "demo"

[[traits]]
name = "Foo"
path = "demo::Foo"
params = ["T", "U"]
directive = 'on(matches("Bar", Self = "T"), message = "{T} must impl Bar"), message = "{Self} fails {Foo}"'

[traits.resolutions]
Bar = "Bar"
T = "TypeY"

[[traits]]
name = "Bar"

[[traits]]
name = "Quiet"
label = "no way"

[[types]]
name = "String"

[[types]]
name = "TypeY"

[[impls]]
type = "TypeY"
trait = "Bar"
`

type loadEnv struct {
	fs  *source.FileSet
	in  *source.Interner
	bag *diag.Bag
	rep diag.Reporter
}

func newLoadEnv() *loadEnv {
	bag := diag.NewBag(32)
	return &loadEnv{
		fs:  source.NewFileSet(),
		in:  source.NewInterner(),
		bag: bag,
		rep: diag.BagReporter{Bag: bag},
	}
}

func writeWorld(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "world.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func loadDemo(t *testing.T) (*World, *loadEnv) {
	t.Helper()
	e := newLoadEnv()
	w, err := Load(e.fs, e.in, writeWorld(t, demoWorld), e.rep)
	if err != nil {
		t.Fatalf("load failed: %v / %v", err, e.bag.Items())
	}
	return w, e
}

func TestLoadDemoWorld(t *testing.T) {
	w, _ := loadDemo(t)
	if w.Name != "demo" {
		t.Errorf("world name %q", w.Name)
	}
	if got := len(w.Traits()); got != 3 {
		t.Fatalf("expected 3 traits, got %d", got)
	}

	foo, ok := w.TraitByName("Foo")
	if !ok {
		t.Fatal("Foo not found")
	}
	if got := w.GenericParams(foo); len(got) != 2 || got[0] != "T" {
		t.Errorf("params: %v", got)
	}
	if w.TraitPath(foo) != "demo::Foo" {
		t.Errorf("path: %q", w.TraitPath(foo))
	}
	bar, _ := w.TraitByName("Bar")
	if w.TraitPath(bar) != "Bar" {
		t.Errorf("path defaults to the name, got %q", w.TraitPath(bar))
	}

	typeY, ok := w.TypeByName("TypeY")
	if !ok {
		t.Fatal("TypeY not found")
	}
	if w.PrintType(typeY) != "TypeY" {
		t.Errorf("PrintType: %q", w.PrintType(typeY))
	}
	if !w.Satisfies(typeY, bar) {
		t.Error("TypeY must satisfy Bar")
	}
	str, _ := w.TypeByName("String")
	if w.Satisfies(str, bar) {
		t.Error("String must not satisfy Bar")
	}
}

func TestLoadResolutions(t *testing.T) {
	w, _ := loadDemo(t)
	foo, _ := w.TraitByName("Foo")
	res, ok := w.Resolutions(foo)
	if !ok {
		t.Fatal("Foo has a resolutions table")
	}
	barDef := res["Bar"]
	if w.DefName(barDef) != "Bar" {
		t.Errorf("Bar resolves to %q", w.DefName(barDef))
	}
	tDef := res["T"]
	ty, ok := w.TypeOf(tDef)
	if !ok || w.PrintType(ty) != "TypeY" {
		t.Errorf("T resolves to def %d, type ok=%v", tDef, ok)
	}
	// Traits do not denote a type.
	if _, ok := w.TypeOf(barDef); ok {
		t.Error("TypeOf on a trait must report false")
	}
}

func TestLoadAttrs(t *testing.T) {
	w, _ := loadDemo(t)
	foo, _ := w.TraitByName("Foo")
	attrs := w.Attrs(foo)
	if len(attrs) != 1 || attrs[0].Form != meta.AttrList || attrs[0].Name != "on_unimplemented" {
		t.Fatalf("Foo attrs: %+v", attrs)
	}
	if len(attrs[0].Items) != 2 {
		t.Errorf("expected 2 root items, got %d", len(attrs[0].Items))
	}

	quiet, _ := w.TraitByName("Quiet")
	qa := w.Attrs(quiet)
	if len(qa) != 1 || qa[0].Form != meta.AttrString || qa[0].Value != "no way" {
		t.Errorf("Quiet attrs: %+v", qa)
	}

	bar, _ := w.TraitByName("Bar")
	if len(w.Attrs(bar)) != 0 {
		t.Error("Bar carries no attribute")
	}
}

func TestLoadDirectiveSpansResolve(t *testing.T) {
	w, e := loadDemo(t)
	foo, _ := w.TraitByName("Foo")
	attr := w.Attrs(foo)[0]
	first := attr.Items[0]
	f := e.fs.Get(first.Span.File)
	if f.Flags&source.FileVirtual == 0 {
		t.Error("directive text must live in a virtual file")
	}
	got := string(f.Content[first.NameSpan.Start:first.NameSpan.End])
	if got != "on" {
		t.Errorf("first item name span resolves to %q", got)
	}
}

func TestLoadDuplicateTrait(t *testing.T) {
	e := newLoadEnv()
	_, err := Load(e.fs, e.in, writeWorld(t, `
[[traits]]
name = "Foo"
[[traits]]
name = "Foo"
`), e.rep)
	if err == nil {
		t.Fatal("expected failure")
	}
	if e.bag.Items()[0].Code != diag.WorldDuplicateTrait {
		t.Errorf("got %v", e.bag.Items())
	}
}

func TestLoadDuplicateParam(t *testing.T) {
	e := newLoadEnv()
	_, err := Load(e.fs, e.in, writeWorld(t, `
[[traits]]
name = "Foo"
params = ["T", "T"]
`), e.rep)
	if err == nil || e.bag.Items()[0].Code != diag.WorldDuplicateParam {
		t.Errorf("err=%v diags=%v", err, e.bag.Items())
	}
}

func TestLoadUnknownImplTargets(t *testing.T) {
	e := newLoadEnv()
	_, err := Load(e.fs, e.in, writeWorld(t, `
[[traits]]
name = "Foo"
[[impls]]
type = "Ghost"
trait = "Foo"
[[impls]]
type = "Ghost"
trait = "Phantom"
`), e.rep)
	if err == nil {
		t.Fatal("expected failure")
	}
	codes := make(map[diag.Code]bool)
	for _, d := range e.bag.Items() {
		codes[d.Code] = true
	}
	if !codes[diag.WorldUnknownType] || !codes[diag.WorldUnknownTrait] {
		t.Errorf("got %v", e.bag.Items())
	}
}

func TestLoadBadResolutionTarget(t *testing.T) {
	e := newLoadEnv()
	_, err := Load(e.fs, e.in, writeWorld(t, `
[[traits]]
name = "Foo"
[traits.resolutions]
X = "Nowhere"
`), e.rep)
	if err == nil || e.bag.Items()[0].Code != diag.WorldBadResolution {
		t.Errorf("err=%v diags=%v", err, e.bag.Items())
	}
}

func TestLoadBothDirectiveForms(t *testing.T) {
	e := newLoadEnv()
	_, err := Load(e.fs, e.in, writeWorld(t, `
[[traits]]
name = "Foo"
directive = 'message = "m"'
label = "l"
`), e.rep)
	if err == nil || e.bag.Items()[0].Code != diag.WorldDirectiveForms {
		t.Errorf("err=%v diags=%v", err, e.bag.Items())
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	e := newLoadEnv()
	_, err := Load(e.fs, e.in, writeWorld(t, `this is = not toml = at all`), e.rep)
	if err == nil || e.bag.Items()[0].Code != diag.IOLoadFileError {
		t.Errorf("err=%v diags=%v", err, e.bag.Items())
	}
}

func TestLoadMissingFile(t *testing.T) {
	e := newLoadEnv()
	_, err := Load(e.fs, e.in, filepath.Join(t.TempDir(), "absent.toml"), e.rep)
	if err == nil || e.bag.Items()[0].Code != diag.IOLoadFileError {
		t.Errorf("err=%v diags=%v", err, e.bag.Items())
	}
}

func TestLoadBrokenDirectiveSyntax(t *testing.T) {
	e := newLoadEnv()
	_, err := Load(e.fs, e.in, writeWorld(t, `
[[traits]]
name = "Foo"
directive = 'message = '
`), e.rep)
	if err == nil {
		t.Fatal("expected failure")
	}
	if e.bag.Items()[0].Code != diag.MetaExpectValue {
		t.Errorf("got %v", e.bag.Items())
	}
}
