package diag

import (
	"testing"

	"traitnote/internal/source"
)

func span(file source.FileID, start, end uint32) source.Span {
	return source.Span{File: file, Start: start, End: end}
}

func TestBagLimit(t *testing.T) {
	b := NewBag(2)
	if !b.Add(NewError(DirExpectValue, span(0, 0, 1), "one")) {
		t.Fatal("first add must succeed")
	}
	if !b.Add(NewError(DirExpectValue, span(0, 1, 2), "two")) {
		t.Fatal("second add must succeed")
	}
	if b.Add(NewError(DirExpectValue, span(0, 2, 3), "three")) {
		t.Fatal("third add must be rejected at cap")
	}
	if b.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", b.Len())
	}
}

func TestBagHasErrorsAndWarnings(t *testing.T) {
	b := NewBag(10)
	b.Add(New(SevInfo, MetaInfo, span(0, 0, 1), "fyi"))
	if b.HasErrors() || b.HasWarnings() {
		t.Error("info-only bag must report no errors or warnings")
	}
	b.Add(New(SevWarning, DirInfo, span(0, 0, 1), "hm"))
	if b.HasErrors() {
		t.Error("warning must not count as error")
	}
	if !b.HasWarnings() {
		t.Error("expected HasWarnings")
	}
	b.Add(NewError(TmplUnknownParam, span(0, 0, 1), "bad"))
	if !b.HasErrors() {
		t.Error("expected HasErrors")
	}
}

func TestBagSortDeterministic(t *testing.T) {
	b := NewBag(10)
	b.Add(NewError(TmplUnknownParam, span(1, 5, 6), "late"))
	b.Add(NewError(TmplUnknownParam, span(0, 9, 10), "mid"))
	b.Add(NewError(TmplUnknownParam, span(0, 2, 3), "early"))
	b.Sort()

	items := b.Items()
	if items[0].Message != "early" || items[1].Message != "mid" || items[2].Message != "late" {
		t.Errorf("unexpected order: %q %q %q", items[0].Message, items[1].Message, items[2].Message)
	}
}

func TestBagDedup(t *testing.T) {
	b := NewBag(10)
	b.Add(NewError(TmplUnknownParam, span(0, 2, 3), "dup"))
	b.Add(NewError(TmplUnknownParam, span(0, 2, 3), "dup again"))
	b.Add(NewError(TmplPositionalArg, span(0, 2, 3), "kept"))
	b.Dedup()
	if b.Len() != 2 {
		t.Fatalf("expected 2 after dedup, got %d", b.Len())
	}
}

func TestBagMergeGrows(t *testing.T) {
	a := NewBag(1)
	a.Add(NewError(DirExpectValue, span(0, 0, 1), "a"))
	b := NewBag(2)
	b.Add(NewError(DirExpectValue, span(0, 1, 2), "b"))
	b.Add(NewError(DirExpectValue, span(0, 2, 3), "c"))

	a.Merge(b)
	if a.Len() != 3 {
		t.Fatalf("expected 3 after merge, got %d", a.Len())
	}
}

func TestCodeIDs(t *testing.T) {
	cases := []struct {
		code Code
		want string
	}{
		{MetaUnexpectedToken, "ATR1001"},
		{DirEmptyOnClause, "DIR2001"},
		{TmplPositionalArg, "TPL3002"},
		{WorldDuplicateTrait, "WLD4001"},
		{IOLoadFileError, "IO5001"},
		{UnknownCode, "E0000"},
	}
	for _, tc := range cases {
		if got := tc.code.ID(); got != tc.want {
			t.Errorf("ID(%d) = %q, want %q", tc.code, got, tc.want)
		}
	}
}
