package source

import (
	"os"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("world.toml", []byte("hello world"), 0)
	if id1 != 0 {
		t.Errorf("expected first FileID to be 0, got %d", id1)
	}

	id2 := fs.Add("world.toml", []byte("hello universe"), 0)
	if id2 == id1 {
		t.Error("expected a fresh FileID for the second Add")
	}

	latest, ok := fs.GetLatest("world.toml")
	if !ok || latest != id2 {
		t.Errorf("expected latest ID %d, got %d (ok=%v)", id2, latest, ok)
	}

	if string(fs.Get(id1).Content) != "hello world" {
		t.Error("old version must stay reachable")
	}
	if string(fs.Get(id2).Content) != "hello universe" {
		t.Error("new version has wrong content")
	}
}

func TestAddVirtual(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("world.toml#Foo", []byte("a\nb\n"))
	file := fs.Get(id)

	want := []uint32{1, 3}
	if len(file.LineIdx) != len(want) || file.LineIdx[0] != want[0] || file.LineIdx[1] != want[1] {
		t.Errorf("expected LineIdx %v, got %v", want, file.LineIdx)
	}
	if file.Flags&FileVirtual == 0 {
		t.Error("expected FileVirtual flag to be set")
	}
}

func TestResolveMultiLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("t", []byte("ab\ncd"))

	start, end := fs.Resolve(Span{File: id, Start: 3, End: 5})
	if start != (LineCol{Line: 2, Col: 1}) {
		t.Errorf("expected start 2:1, got %+v", start)
	}
	if end != (LineCol{Line: 2, Col: 3}) {
		t.Errorf("expected end 2:3, got %+v", end)
	}
}

func TestResolveWithoutFiles(t *testing.T) {
	// A load failure reports its diagnostic before any file exists; the
	// zero span must still resolve instead of indexing out of range.
	fs := NewFileSet()

	start, end := fs.Resolve(Span{})
	if start != (LineCol{Line: 1, Col: 1}) || end != (LineCol{Line: 1, Col: 1}) {
		t.Errorf("expected 1:1..1:1, got %+v..%+v", start, end)
	}

	f := fs.Get(0)
	if f.Path != "" || len(f.Content) != 0 {
		t.Errorf("expected a pathless placeholder, got %+v", f)
	}
	if got := f.FormatPath("relative", fs.BaseDir()); got != "<unknown>" {
		t.Errorf("expected <unknown>, got %q", got)
	}
	if got := f.FormatPath("absolute", ""); got != "<unknown>" {
		t.Errorf("expected <unknown>, got %q", got)
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("t", []byte("first\nsecond\nthird"))
	f := fs.Get(id)

	cases := []struct {
		line uint32
		want string
	}{
		{1, "first"},
		{2, "second"},
		{3, "third"},
		{4, ""},
		{0, ""},
	}
	for _, tc := range cases {
		if got := f.GetLine(tc.line); got != tc.want {
			t.Errorf("GetLine(%d) = %q, want %q", tc.line, got, tc.want)
		}
	}
}

func TestLoadNormalizes(t *testing.T) {
	fs := NewFileSet()

	tmp, err := os.CreateTemp(t.TempDir(), "testdata")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	if _, err = tmp.WriteString("\xEF\xBB\xBFa\r\nb\r\n"); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	if err = tmp.Close(); err != nil {
		t.Fatalf("failed to close temp file: %v", err)
	}

	id, err := fs.Load(tmp.Name())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	file := fs.Get(id)
	if string(file.Content) != "a\nb\n" {
		t.Errorf("expected normalized content, got %q", string(file.Content))
	}
	if file.Flags&FileHadBOM == 0 {
		t.Error("expected FileHadBOM flag")
	}
	if file.Flags&FileNormalizedCRLF == 0 {
		t.Error("expected FileNormalizedCRLF flag")
	}
}
