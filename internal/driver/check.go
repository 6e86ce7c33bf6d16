// Package driver orchestrates whole-world checks: loading a world
// file, parsing and validating every trait's directive, and fanning out
// over directories of worlds. It is what the CLI calls into.
package driver

import (
	"context"
	"path/filepath"

	"traitnote/internal/diag"
	"traitnote/internal/onimpl"
	"traitnote/internal/source"
	"traitnote/internal/world"
)

// Options configures a check run.
type Options struct {
	MaxDiagnostics int
	// Cache, when set, skips re-checking worlds whose content hash has
	// a clean cached outcome.
	Cache *DiskCache
}

const defaultMaxDiagnostics = 100

// TraitStatus classifies one trait's directive after a check.
type TraitStatus uint8

const (
	// StatusNoDirective means the trait carries no on_unimplemented
	// attribute; callers fall back to the generic message.
	StatusNoDirective TraitStatus = iota
	// StatusOK means the directive parsed and validated.
	StatusOK
	// StatusBroken means the attribute is present but unusable; the
	// reasons are in the result bag.
	StatusBroken
)

func (s TraitStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusBroken:
		return "broken"
	default:
		return "no directive"
	}
}

// TraitOutcome is the per-trait summary of a check.
type TraitOutcome struct {
	Trait  string
	Status TraitStatus
	// Rules counts the directive's on(...) subcommands.
	Rules int
}

// Result is everything one world check produced. FS backs the spans in
// Bag; the World is nil when loading failed or the result came from
// the disk cache.
type Result struct {
	Path     string
	World    *world.World
	FS       *source.FileSet
	Interner *source.Interner
	Bag      *diag.Bag
	Outcomes []TraitOutcome
	CacheHit bool
}

// HasErrors reports whether the check found any error.
func (r *Result) HasErrors() bool {
	return r.Bag.HasErrors()
}

// Check loads and validates one world file. Problems with the world or
// its directives come back as diagnostics in the result, not as the
// error; the error is reserved for context cancellation.
func Check(ctx context.Context, path string, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	maxDiags := opts.MaxDiagnostics
	if maxDiags <= 0 {
		maxDiags = defaultMaxDiagnostics
	}

	fs := source.NewFileSetWithBase(filepath.Dir(path))
	in := source.NewInterner()
	bag := diag.NewBag(maxDiags)
	res := &Result{Path: path, FS: fs, Interner: in, Bag: bag}

	if opts.Cache != nil {
		if outcomes, ok := opts.Cache.lookup(path); ok {
			res.Outcomes = outcomes
			res.CacheHit = true
			return res, nil
		}
	}

	rep := diag.BagReporter{Bag: bag}
	w, err := world.Load(fs, in, path, rep)
	if err != nil {
		bag.Sort()
		return res, nil
	}
	res.World = w

	cache := onimpl.NewCache()
	for _, trait := range w.Traits() {
		// The trait is its own implementing item in a world file.
		dir, err := cache.DirectiveForItem(w, trait, trait, in, rep)
		outcome := TraitOutcome{Trait: w.DefName(trait)}
		switch {
		case err != nil:
			outcome.Status = StatusBroken
		case dir != nil:
			outcome.Status = StatusOK
			outcome.Rules = len(dir.Subcommands)
		}
		res.Outcomes = append(res.Outcomes, outcome)
	}

	bag.Sort()
	if opts.Cache != nil && !bag.HasErrors() {
		opts.Cache.store(path, res.Outcomes)
	}
	return res, nil
}
