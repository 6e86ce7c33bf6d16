package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"traitnote/internal/diag"
	"traitnote/internal/source"
)

type palette struct {
	err   *color.Color
	warn  *color.Color
	info  *color.Color
	code  *color.Color
	caret *color.Color
	note  *color.Color
}

func newPalette(enabled bool) *palette {
	p := &palette{
		err:   color.New(color.FgRed, color.Bold),
		warn:  color.New(color.FgYellow, color.Bold),
		info:  color.New(color.FgCyan, color.Bold),
		code:  color.New(color.Bold),
		caret: color.New(color.FgGreen),
		note:  color.New(color.FgBlue),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.caret, p.note} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *palette) severity(sev diag.Severity) string {
	switch sev {
	case diag.SevError:
		return p.err.Sprint(sev.String())
	case diag.SevWarning:
		return p.warn.Sprint(sev.String())
	default:
		return p.info.Sprint(sev.String())
	}
}

// Pretty renders diagnostics for humans, one entry per diagnostic:
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message>
//	    <source line>
//	    ^~~~~
//
// followed by the notes when ShowNotes is set. Expects bag.Sort() to
// have run beforehand.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		writeHeading(w, fs, p, opts, d.Primary,
			fmt.Sprintf("%s %s: %s", p.severity(d.Severity), p.code.Sprint(d.Code.ID()), d.Message))
		writeContext(w, fs, p, opts, d.Primary)
		if opts.ShowNotes {
			for _, n := range d.Notes {
				writeHeading(w, fs, p, opts, n.Span,
					fmt.Sprintf("%s: %s", p.note.Sprint("note"), n.Msg))
				writeContext(w, fs, p, opts, n.Span)
			}
		}
	}
}

func writeHeading(w io.Writer, fs *source.FileSet, _ *palette, opts PrettyOpts, sp source.Span, rest string) {
	f := fs.Get(sp.File)
	start, _ := fs.Resolve(sp)
	path := f.FormatPath(opts.PathMode.format(), fs.BaseDir())
	fmt.Fprintf(w, "%s:%d:%d: %s\n", path, start.Line, start.Col, rest)
}

// writeContext prints the spanned source line with a caret run under
// the span, plus Context surrounding lines.
func writeContext(w io.Writer, fs *source.FileSet, p *palette, opts PrettyOpts, sp source.Span) {
	// Empty spans (end-of-input errors, whole-file diagnostics) get no
	// caret line.
	if sp.Empty() {
		return
	}
	f := fs.Get(sp.File)
	start, end := fs.Resolve(sp)

	first := int64(start.Line) - int64(opts.Context)
	if first < 1 {
		first = 1
	}
	for line := uint32(first); line < start.Line; line++ {
		writeSourceLine(w, f, line, opts)
	}

	lineText := f.GetLine(start.Line)
	writeSourceLine(w, f, start.Line, opts)

	// Caret run under the spanned part of the first line, aligned by
	// display width so wide runes do not skew it.
	startCol := int(start.Col) - 1
	if startCol > len(lineText) {
		startCol = len(lineText)
	}
	endCol := len(lineText)
	if end.Line == start.Line && int(end.Col)-1 < endCol {
		endCol = int(end.Col) - 1
	}
	pad := runewidth.StringWidth(lineText[:startCol])
	width := runewidth.StringWidth(lineText[startCol:endCol])
	if width < 1 {
		width = 1
	}
	carets := "^" + strings.Repeat("~", width-1)
	fmt.Fprintf(w, "    %s%s\n", strings.Repeat(" ", pad), p.caret.Sprint(carets))

	for line := start.Line + 1; line <= start.Line+uint32(opts.Context); line++ {
		if f.GetLine(line) == "" {
			break
		}
		writeSourceLine(w, f, line, opts)
	}
}

func writeSourceLine(w io.Writer, f *source.File, line uint32, opts PrettyOpts) {
	text := f.GetLine(line)
	if opts.Width > 0 {
		text = runewidth.Truncate(text, int(opts.Width), "…")
	}
	fmt.Fprintf(w, "    %s\n", text)
}
