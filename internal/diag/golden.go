package diag

import (
	"fmt"
	"sort"
	"strings"

	"traitnote/internal/source"
)

type goldenDiagnostic struct {
	Severity string
	Code     string
	Path     string
	Line     uint32
	Column   uint32
	Message  string
}

// FormatShortDiagnostics renders diagnostics into a stable,
// single-line-per-entry representation used by golden tests and the CLI
// short output format. The result is "" when there is nothing to show.
func FormatShortDiagnostics(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}

	rendered := make([]goldenDiagnostic, 0, len(diags))
	for _, d := range diags {
		start, _ := fs.Resolve(d.Primary)
		file := fs.Get(d.Primary.File)
		rendered = append(rendered, goldenDiagnostic{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Path:     file.FormatPath("relative", fs.BaseDir()),
			Line:     start.Line,
			Column:   start.Col,
			Message:  d.Message,
		})
		if includeNotes {
			for _, n := range d.Notes {
				nStart, _ := fs.Resolve(n.Span)
				nFile := fs.Get(n.Span.File)
				rendered = append(rendered, goldenDiagnostic{
					Severity: "NOTE",
					Code:     d.Code.ID(),
					Path:     nFile.FormatPath("relative", fs.BaseDir()),
					Line:     nStart.Line,
					Column:   nStart.Col,
					Message:  n.Msg,
				})
			}
		}
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		if di.Column != dj.Column {
			return di.Column < dj.Column
		}
		return di.Code < dj.Code
	})

	var b strings.Builder
	for i, g := range rendered {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s:%d:%d: %s %s: %s", g.Path, g.Line, g.Column, g.Severity, g.Code, g.Message)
	}
	return b.String()
}
