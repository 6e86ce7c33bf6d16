package driver

import (
	"context"
	"fmt"

	"traitnote/internal/diag"
	"traitnote/internal/onimpl"
	"traitnote/internal/source"
	"traitnote/internal/typesys"
	"traitnote/internal/world"
)

// RenderRequest describes one diagnostic to render: which trait failed,
// the concrete types bound to Self and the trait's parameters, and the
// context options for condition evaluation.
type RenderRequest struct {
	Trait string
	Self  string
	// Args maps declared parameter names to type names. Every declared
	// parameter must be bound.
	Args    map[string]string
	Options typesys.Options
}

// RenderResult carries the evaluated note plus the generic fallback
// used when no custom message applies.
type RenderResult struct {
	Note     onimpl.Note
	Fallback string
}

// Render loads a world and evaluates one trait's directive against a
// concrete reference. A trait without a usable directive yields an
// empty note and callers print the fallback.
func Render(ctx context.Context, path string, req RenderRequest, opts Options) (*RenderResult, *Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	maxDiags := opts.MaxDiagnostics
	if maxDiags <= 0 {
		maxDiags = defaultMaxDiagnostics
	}

	fs := source.NewFileSet()
	in := source.NewInterner()
	bag := diag.NewBag(maxDiags)
	rep := diag.BagReporter{Bag: bag}
	res := &Result{Path: path, FS: fs, Interner: in, Bag: bag}

	w, err := world.Load(fs, in, path, rep)
	if err != nil {
		bag.Sort()
		return nil, res, fmt.Errorf("world %s is not usable", path)
	}
	res.World = w

	trait, ok := w.TraitByName(req.Trait)
	if !ok {
		return nil, res, fmt.Errorf("world %s declares no trait %s", path, req.Trait)
	}
	ref, err := buildRef(w, trait, req, rep)
	if err != nil {
		bag.Sort()
		return nil, res, err
	}

	fallback := fmt.Sprintf("the trait %s is not implemented for %s",
		w.TraitPath(trait), w.PrintType(ref.Self))
	out := &RenderResult{Fallback: fallback}

	dir, err := onimpl.DirectiveForItem(w, trait, trait, in, rep)
	bag.Sort()
	if err != nil || dir == nil {
		// Unusable and absent directives both fall back.
		return out, res, nil
	}
	out.Note = dir.Evaluate(w, ref, req.Options, in)
	return out, res, nil
}

// buildRef assembles the trait reference, checking the instantiation
// is complete: a Self type and one argument per declared parameter.
func buildRef(w *world.World, trait typesys.DefID, req RenderRequest, rep diag.Reporter) (typesys.TraitRef, error) {
	var ref typesys.TraitRef
	ref.Trait = trait

	if req.Self == "" {
		diag.ReportError(rep, diag.WorldMissingSelfArg, source.Span{},
			fmt.Sprintf("rendering %s needs a Self type", req.Trait))
		return ref, fmt.Errorf("missing Self type")
	}
	self, ok := w.TypeByName(req.Self)
	if !ok {
		diag.ReportError(rep, diag.WorldUnknownType, source.Span{},
			fmt.Sprintf("unknown Self type %s", req.Self))
		return ref, fmt.Errorf("unknown type %s", req.Self)
	}
	ref.Self = self

	params := w.GenericParams(trait)
	ref.Args = make([]typesys.TypeID, len(params))
	for i, p := range params {
		name, ok := req.Args[p]
		if !ok {
			diag.ReportError(rep, diag.WorldUnknownParamArg, source.Span{},
				fmt.Sprintf("parameter %s of %s is not bound", p, req.Trait))
			return ref, fmt.Errorf("parameter %s is not bound", p)
		}
		ty, ok := w.TypeByName(name)
		if !ok {
			diag.ReportError(rep, diag.WorldUnknownType, source.Span{},
				fmt.Sprintf("unknown type %s for parameter %s", name, p))
			return ref, fmt.Errorf("unknown type %s", name)
		}
		ref.Args[i] = ty
	}
	for name := range req.Args {
		known := false
		for _, p := range params {
			if p == name {
				known = true
				break
			}
		}
		if !known {
			diag.ReportError(rep, diag.WorldUnknownParamArg, source.Span{},
				fmt.Sprintf("trait %s declares no parameter %s", req.Trait, name))
			return ref, fmt.Errorf("no parameter %s", name)
		}
	}
	return ref, nil
}
