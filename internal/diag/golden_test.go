package diag

import (
	"strings"
	"testing"

	"traitnote/internal/source"
)

func TestFormatShortDiagnostics(t *testing.T) {
	fs := source.NewFileSetWithBase("/base")
	id := fs.AddVirtual("world.toml#Foo", []byte("message = \"hi\"\nlabel = {Bad}"))

	diags := []Diagnostic{
		NewError(TmplUnknownParam, source.Span{File: id, Start: 24, End: 27}, "no parameter Bad"),
		NewError(DirExpectValue, source.Span{File: id, Start: 0, End: 7}, "bad item"),
	}

	out := FormatShortDiagnostics(diags, fs, false)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), out)
	}
	// Sorted by position: the item error on line 1 precedes the template
	// error on line 2.
	if !strings.Contains(lines[0], "DIR2003") || !strings.Contains(lines[0], ":1:1:") {
		t.Errorf("unexpected first line %q", lines[0])
	}
	if !strings.Contains(lines[1], "TPL3001") || !strings.Contains(lines[1], "no parameter Bad") {
		t.Errorf("unexpected second line %q", lines[1])
	}
}

func TestFormatShortDiagnosticsStable(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("t", []byte("abc"))
	diags := []Diagnostic{
		NewError(TmplStrayBrace, source.Span{File: id, Start: 1, End: 2}, "x"),
		NewError(TmplUnclosedBrace, source.Span{File: id, Start: 0, End: 1}, "y"),
	}
	first := FormatShortDiagnostics(diags, fs, false)
	second := FormatShortDiagnostics(diags, fs, false)
	if first != second {
		t.Error("formatting must be deterministic")
	}
}

func TestFormatShortDiagnosticsEmpty(t *testing.T) {
	if FormatShortDiagnostics(nil, source.NewFileSet(), true) != "" {
		t.Error("no diagnostics must format to empty string")
	}
}

func TestFormatShortDiagnosticsNotes(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("t", []byte("abc"))
	d := NewError(DirRequiresValue, source.Span{File: id, Start: 0, End: 3}, "requires a value").
		WithNote(source.Span{File: id, Start: 0, End: 3}, `eg on_unimplemented = "foo"`)

	withNotes := FormatShortDiagnostics([]Diagnostic{d}, fs, true)
	if !strings.Contains(withNotes, "NOTE") {
		t.Errorf("expected a NOTE line, got %q", withNotes)
	}
	withoutNotes := FormatShortDiagnostics([]Diagnostic{d}, fs, false)
	if strings.Contains(withoutNotes, "NOTE") {
		t.Errorf("unexpected NOTE line, got %q", withoutNotes)
	}
}
