// Package render prints reports for humans.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/podhmo/cslit/internal/metadata"
)

type Options struct {
	Color bool
	// Quiet hides diagnostics and lists values only.
	Quiet bool
}

type palette struct {
	path, class, name, unresolved, warning, errorC, faint *color.Color
}

func newPalette(enabled bool) *palette {
	p := &palette{
		path:       color.New(color.Bold),
		class:      color.New(color.FgCyan, color.Bold),
		name:       color.New(color.FgGreen),
		unresolved: color.New(color.FgYellow),
		warning:    color.New(color.FgYellow),
		errorC:     color.New(color.FgRed, color.Bold),
		faint:      color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.path, p.class, p.name, p.unresolved, p.warning, p.errorC, p.faint} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Text writes every file report as an indented tree.
func Text(w io.Writer, files []*metadata.FileReport, opts Options) {
	p := newPalette(opts.Color)
	for i, f := range files {
		if i > 0 {
			fmt.Fprintln(w)
		}
		writeFile(w, p, f, opts)
	}
}

// String is Text into a string, without color.
func String(files []*metadata.FileReport) string {
	var sb strings.Builder
	Text(&sb, files, Options{})
	return sb.String()
}

func writeFile(w io.Writer, p *palette, f *metadata.FileReport, opts Options) {
	p.path.Fprint(w, f.Path)
	fmt.Fprintln(w)
	if f.Error != "" {
		fmt.Fprintf(w, "  %s %s\n", p.errorC.Sprint("error:"), f.Error)
		return
	}

	writeValues(w, p, "  ", f.Values)
	for _, m := range f.Methods {
		writeMethod(w, p, "  ", m)
	}
	for _, c := range f.Classes {
		header := "class " + c.Name
		if c.Super != "" {
			header += " : " + c.Super
		}
		fmt.Fprintf(w, "  %s\n", p.class.Sprint(header))
		writeValues(w, p, "    ", c.Values)
		for _, m := range c.Methods {
			writeMethod(w, p, "    ", m)
		}
	}

	if opts.Quiet {
		return
	}
	for _, d := range f.Diagnostics {
		sev := p.warning.Sprint(d.Severity)
		if d.Severity == "error" {
			sev = p.errorC.Sprint(d.Severity)
		}
		scope := ""
		if d.Scope != "" {
			scope = d.Scope + ": "
		}
		fmt.Fprintf(w, "  %s[%s] %s%s %s\n", sev, d.Code, scope, d.Message,
			p.faint.Sprintf("@%d-%d", d.Span.Start, d.Span.End))
	}
}

func writeValues(w io.Writer, p *palette, indent string, values []*metadata.Value) {
	width := 0
	for _, v := range values {
		width = max(width, len(v.Name))
	}
	for _, v := range values {
		text := v.Text
		if !v.Resolved() {
			text = p.unresolved.Sprint(text) + p.faint.Sprint(" (unresolved)")
		}
		fmt.Fprintf(w, "%s%s = %s\n", indent, p.name.Sprintf("%-*s", width, v.Name), text)
	}
}

func writeMethod(w io.Writer, p *palette, indent string, m *metadata.Method) {
	sig := fmt.Sprintf("%s(%s)", m.Name, strings.Join(m.Params, ", "))
	if m.Body != "" {
		fmt.Fprintf(w, "%s%s %s => %s\n", indent, p.faint.Sprint("method"), sig, m.Body)
	} else {
		fmt.Fprintf(w, "%s%s %s\n", indent, p.faint.Sprint("method"), sig)
	}
	var locals []*metadata.Value
	for _, v := range m.Locals {
		if !isParam(m, v.Name) {
			locals = append(locals, v)
		}
	}
	writeValues(w, p, indent+"  ", locals)
	for _, fn := range m.Methods {
		writeMethod(w, p, indent+"  ", fn)
	}
}

func isParam(m *metadata.Method, name string) bool {
	for _, p := range m.Params {
		if p == name {
			return true
		}
	}
	return false
}
