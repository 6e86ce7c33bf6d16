// Package world builds a self-contained typesys.System from a TOML
// description: trait declarations with their on_unimplemented
// directives, type declarations, and the impl facts that answer
// satisfiability queries. Worlds are what the CLI checks and renders
// against; a real compiler front end would supply its own System
// instead.
package world

import (
	"errors"
	"fmt"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"

	"traitnote/internal/diag"
	"traitnote/internal/meta"
	"traitnote/internal/onimpl"
	"traitnote/internal/source"
	"traitnote/internal/typesys"
)

type defKind uint8

const (
	defTrait defKind = iota
	defType
)

type def struct {
	kind        defKind
	name        string
	path        string
	params      []string
	resolutions map[string]typesys.DefID
	attr        *meta.Attr
	ty          typesys.TypeID // defType only
}

type implKey struct {
	ty    typesys.TypeID
	trait typesys.DefID
}

// World is an immutable in-memory type system loaded from one TOML
// file. It implements typesys.System.
type World struct {
	Name string
	File source.FileID

	defs      []def // DefID - 1 indexes this
	typeNames []string
	byName    map[string]typesys.DefID
	impls     map[implKey]bool
}

type worldTOML struct {
	Name   string      `toml:"name"`
	Traits []traitTOML `toml:"traits"`
	Types  []typeTOML  `toml:"types"`
	Impls  []implTOML  `toml:"impls"`
}

type traitTOML struct {
	Name      string   `toml:"name"`
	Path      string   `toml:"path"`
	Params    []string `toml:"params"`
	Directive string   `toml:"directive"`
	// Label is a pointer so a bare-string directive can be an empty
	// string and still be distinguishable from "no label".
	Label       *string           `toml:"label"`
	Resolutions map[string]string `toml:"resolutions"`
}

type typeTOML struct {
	Name string `toml:"name"`
}

type implTOML struct {
	Type  string `toml:"type"`
	Trait string `toml:"trait"`
}

// Load reads and validates a world file. The file content, and each
// trait's directive text as its own virtual file, are registered in fs
// so every diagnostic span points at real text. Malformed worlds return
// an error after reporting; the World is nil in that case.
func Load(fs *source.FileSet, in *source.Interner, path string, rep diag.Reporter) (*World, error) {
	id, err := fs.Load(path)
	if err != nil {
		diag.ReportError(rep, diag.IOLoadFileError, source.Span{},
			fmt.Sprintf("cannot read world file %s: %v", path, err))
		return nil, err
	}
	file := fs.Get(id)

	var raw worldTOML
	if _, err := toml.Decode(string(file.Content), &raw); err != nil {
		sp := source.Span{File: id}
		var pe toml.ParseError
		if errors.As(err, &pe) && pe.Position.Start >= 0 {
			if start, cerr := safecast.Conv[uint32](pe.Position.Start); cerr == nil {
				sp.Start = start
				sp.End = start
				if end, cerr := safecast.Conv[uint32](pe.Position.Start + pe.Position.Len); cerr == nil {
					sp.End = end
				}
			}
		}
		diag.ReportError(rep, diag.IOLoadFileError, sp,
			fmt.Sprintf("invalid world file: %v", err))
		return nil, err
	}

	tracked := &trackingReporter{inner: rep}
	w := build(fs, in, id, path, &raw, tracked)
	if tracked.sawError {
		return nil, fmt.Errorf("world %s had errors", path)
	}
	return w, nil
}

type trackingReporter struct {
	inner    diag.Reporter
	sawError bool
}

func (t *trackingReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note) {
	if sev >= diag.SevError {
		t.sawError = true
	}
	if t.inner != nil {
		t.inner.Report(code, sev, primary, msg, notes)
	}
}

func build(fs *source.FileSet, in *source.Interner, id source.FileID, path string, raw *worldTOML, rep diag.Reporter) *World {
	w := &World{
		Name:   raw.Name,
		File:   id,
		byName: make(map[string]typesys.DefID),
		impls:  make(map[implKey]bool),
	}
	fileSpan := source.Span{File: id}

	// Pass one: declare every name so resolutions and impls can refer
	// to traits and types in any order.
	for i := range raw.Traits {
		t := &raw.Traits[i]
		if _, dup := w.byName[t.Name]; dup {
			diag.ReportError(rep, diag.WorldDuplicateTrait, fileSpan,
				fmt.Sprintf("trait %s is declared twice", t.Name))
			continue
		}
		traitPath := t.Path
		if traitPath == "" {
			traitPath = t.Name
		}
		seen := make(map[string]bool, len(t.Params))
		for _, p := range t.Params {
			if seen[p] {
				diag.ReportError(rep, diag.WorldDuplicateParam, fileSpan,
					fmt.Sprintf("trait %s declares parameter %s twice", t.Name, p))
			}
			seen[p] = true
		}
		w.defs = append(w.defs, def{
			kind:   defTrait,
			name:   t.Name,
			path:   traitPath,
			params: t.Params,
		})
		w.byName[t.Name] = typesys.DefID(len(w.defs))
	}
	for i := range raw.Types {
		ty := &raw.Types[i]
		if _, dup := w.byName[ty.Name]; dup {
			diag.ReportError(rep, diag.WorldDuplicateType, fileSpan,
				fmt.Sprintf("type %s is declared twice", ty.Name))
			continue
		}
		w.typeNames = append(w.typeNames, ty.Name)
		w.defs = append(w.defs, def{
			kind: defType,
			name: ty.Name,
			ty:   typesys.TypeID(len(w.typeNames)),
		})
		w.byName[ty.Name] = typesys.DefID(len(w.defs))
	}

	// Pass two: resolutions, directives, impl facts.
	for i := range raw.Traits {
		t := &raw.Traits[i]
		defID, ok := w.byName[t.Name]
		if !ok || w.def(defID).kind != defTrait {
			continue // duplicate, already reported
		}
		d := &w.defs[defID-1]
		if len(t.Resolutions) > 0 {
			d.resolutions = make(map[string]typesys.DefID, len(t.Resolutions))
			for sym, target := range t.Resolutions {
				targetID, ok := w.byName[target]
				if !ok {
					diag.ReportError(rep, diag.WorldBadResolution, fileSpan,
						fmt.Sprintf("trait %s resolves %s to unknown name %s", t.Name, sym, target))
					continue
				}
				d.resolutions[sym] = targetID
			}
		}
		d.attr = buildAttr(fs, in, path, t, rep)
	}
	for _, imp := range raw.Impls {
		traitID, ok := w.byName[imp.Trait]
		if !ok || w.def(traitID).kind != defTrait {
			diag.ReportError(rep, diag.WorldUnknownTrait, fileSpan,
				fmt.Sprintf("impl references unknown trait %s", imp.Trait))
			continue
		}
		typeDef, ok := w.byName[imp.Type]
		if !ok || w.def(typeDef).kind != defType {
			diag.ReportError(rep, diag.WorldUnknownType, fileSpan,
				fmt.Sprintf("impl references unknown type %s", imp.Type))
			continue
		}
		w.impls[implKey{ty: w.def(typeDef).ty, trait: traitID}] = true
	}
	return w
}

// buildAttr turns a trait's directive or label field into an attribute
// occurrence, backing the text with a virtual file so item and template
// spans resolve. Returns nil when the trait carries neither.
func buildAttr(fs *source.FileSet, in *source.Interner, path string, t *traitTOML, rep diag.Reporter) *meta.Attr {
	if t.Directive != "" && t.Label != nil {
		diag.ReportError(rep, diag.WorldDirectiveForms, source.Span{},
			fmt.Sprintf("trait %s declares both directive and label", t.Name))
		return nil
	}
	switch {
	case t.Directive != "":
		virt := fs.AddVirtual(path+"#"+t.Name, []byte(t.Directive))
		items, ok := meta.ParseItems(virt, t.Directive, 0, in, rep)
		if !ok {
			return nil
		}
		return &meta.Attr{
			Form:  meta.AttrList,
			Name:  onimpl.AttrName,
			Items: items,
			Span:  source.Span{File: virt, Start: 0, End: textLen(t.Directive)},
		}
	case t.Label != nil:
		virt := fs.AddVirtual(path+"#"+t.Name, []byte(*t.Label))
		sp := source.Span{File: virt, Start: 0, End: textLen(*t.Label)}
		return &meta.Attr{
			Form:      meta.AttrString,
			Name:      onimpl.AttrName,
			Value:     *t.Label,
			Span:      sp,
			ValueSpan: sp,
		}
	default:
		return nil
	}
}

func textLen(s string) uint32 {
	n, err := safecast.Conv[uint32](len(s))
	if err != nil {
		panic(fmt.Errorf("attribute text length overflow: %w", err))
	}
	return n
}

func (w *World) def(id typesys.DefID) *def {
	return &w.defs[id-1]
}

// Traits lists the world's trait definitions in declaration order.
func (w *World) Traits() []typesys.DefID {
	out := make([]typesys.DefID, 0, len(w.defs))
	for i := range w.defs {
		if w.defs[i].kind == defTrait {
			out = append(out, typesys.DefID(i+1))
		}
	}
	return out
}

// TraitByName finds a trait definition by its declared name.
func (w *World) TraitByName(name string) (typesys.DefID, bool) {
	id, ok := w.byName[name]
	if !ok || w.def(id).kind != defTrait {
		return typesys.NoDef, false
	}
	return id, true
}

// TypeByName finds a type by its declared name.
func (w *World) TypeByName(name string) (typesys.TypeID, bool) {
	id, ok := w.byName[name]
	if !ok || w.def(id).kind != defType {
		return 0, false
	}
	return w.def(id).ty, true
}

// DefName returns the declared name behind a definition.
func (w *World) DefName(id typesys.DefID) string {
	return w.def(id).name
}

func (w *World) GenericParams(trait typesys.DefID) []string {
	return w.def(trait).params
}

func (w *World) TraitPath(trait typesys.DefID) string {
	return w.def(trait).path
}

func (w *World) PrintType(ty typesys.TypeID) string {
	return w.typeNames[ty-1]
}

func (w *World) Resolutions(trait typesys.DefID) (map[string]typesys.DefID, bool) {
	r := w.def(trait).resolutions
	return r, r != nil
}

func (w *World) TypeOf(defID typesys.DefID) (typesys.TypeID, bool) {
	d := w.def(defID)
	if d.kind != defType {
		return 0, false
	}
	return d.ty, true
}

func (w *World) Satisfies(ty typesys.TypeID, trait typesys.DefID) bool {
	return w.impls[implKey{ty: ty, trait: trait}]
}

func (w *World) Attrs(item typesys.DefID) []meta.Attr {
	d := w.def(item)
	if d.attr == nil {
		return nil
	}
	return []meta.Attr{*d.attr}
}

var _ typesys.System = (*World)(nil)
