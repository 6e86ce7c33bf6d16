package driver

import (
	"context"
	"strings"
	"testing"
)

func TestRenderMatchingRule(t *testing.T) {
	path := writeFile(t, t.TempDir(), "good.toml", goodWorld)
	out, _, err := Render(context.Background(), path, RenderRequest{
		Trait: "Foo",
		Self:  "String",
		Args:  map[string]string{"T": "TypeY"},
	}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	// TypeY implements Bar, so the specific rule fires.
	if out.Note.Message == nil || *out.Note.Message != "TypeY must impl Bar" {
		t.Errorf("message: %v", out.Note.Message)
	}
}

func TestRenderFallbackRule(t *testing.T) {
	path := writeFile(t, t.TempDir(), "good.toml", goodWorld)
	out, _, err := Render(context.Background(), path, RenderRequest{
		Trait: "Foo",
		Self:  "String",
		Args:  map[string]string{"T": "String"},
	}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	// String does not implement Bar; the root message applies.
	if out.Note.Message == nil || *out.Note.Message != "String fails" {
		t.Errorf("message: %v", out.Note.Message)
	}
}

func TestRenderNoDirective(t *testing.T) {
	path := writeFile(t, t.TempDir(), "good.toml", goodWorld)
	out, _, err := Render(context.Background(), path, RenderRequest{
		Trait: "Plain",
		Self:  "String",
	}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if out.Note.Message != nil || out.Note.Label != nil {
		t.Errorf("note must be empty: %+v", out.Note)
	}
	if !strings.Contains(out.Fallback, "Plain") || !strings.Contains(out.Fallback, "String") {
		t.Errorf("fallback: %q", out.Fallback)
	}
}

func TestRenderBadRequests(t *testing.T) {
	path := writeFile(t, t.TempDir(), "good.toml", goodWorld)
	cases := []RenderRequest{
		{Trait: "Ghost", Self: "String"},
		{Trait: "Foo"},
		{Trait: "Foo", Self: "Ghost", Args: map[string]string{"T": "TypeY"}},
		{Trait: "Foo", Self: "String"},
		{Trait: "Foo", Self: "String", Args: map[string]string{"T": "TypeY", "X": "TypeY"}},
	}
	for _, req := range cases {
		if _, _, err := Render(context.Background(), path, req, Options{}); err == nil {
			t.Errorf("request %+v must fail", req)
		}
	}
}

func TestRenderBrokenDirectiveFallsBack(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.toml", brokenWorld)
	out, res, err := Render(context.Background(), path, RenderRequest{
		Trait: "Foo",
		Self:  "String",
	}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	// Unusable directive: empty note, diagnostics in the bag, callers
	// print the fallback.
	if out.Note.Message != nil || out.Note.Label != nil {
		t.Errorf("note must be empty: %+v", out.Note)
	}
	if !res.HasErrors() {
		t.Error("directive errors must be reported")
	}
	if out.Fallback == "" {
		t.Error("fallback missing")
	}
}
