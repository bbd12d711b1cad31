package codegen

import (
	"fmt"
	"strings"

	"github.com/podhmo/cslit/internal/metadata"
	"github.com/podhmo/cslit/internal/utils/stringutils"
)

type Options struct {
	Package string
	// IncludeUnresolved lists placeholders as comments instead of dropping them silently.
	IncludeUnresolved bool
}

// GenerateConstants creates the Go source of a file declaring one constant
// per resolved literal: file-level values first, then one block per class.
// Names are PascalCase of class and member; clashes get a numeric suffix.
func GenerateConstants(files []*metadata.FileReport, opts Options) (string, error) {
	pkg := opts.Package
	if pkg == "" {
		pkg = "constants"
	}
	if !isGoPackageName(pkg) {
		return "", fmt.Errorf("invalid package name %q", pkg)
	}

	g := &generator{opts: opts, used: map[string]int{}}
	fmt.Fprintf(&g.sb, "// Code generated by cslit; DO NOT EDIT.\n\npackage %s\n", pkg)
	for _, f := range files {
		if f.Error != "" {
			continue
		}
		g.block(f.Path, "", f.Values)
		for _, c := range f.Classes {
			g.block(f.Path, c.Name, c.Values)
		}
	}
	return g.sb.String(), nil
}

type generator struct {
	opts Options
	sb   strings.Builder
	used map[string]int
}

func (g *generator) block(path, class string, values []*metadata.Value) {
	var lines []string
	for _, v := range values {
		h := GetLiteralHandler(v)
		if h == nil {
			if g.opts.IncludeUnresolved {
				lines = append(lines, fmt.Sprintf("\t// %s: unresolved %s", v.Name, oneLine(v.Text)))
			}
			continue
		}
		lit, ok := h.GoLiteral(v.Text)
		if !ok {
			lines = append(lines, fmt.Sprintf("\t// %s: %s is not a Go constant", v.Name, oneLine(v.Text)))
			continue
		}
		lines = append(lines, fmt.Sprintf("\t%s = %s", g.name(class, v.Name), lit))
	}
	if len(lines) == 0 {
		return
	}

	origin := path
	if class != "" {
		origin = class + " (" + path + ")"
	}
	fmt.Fprintf(&g.sb, "\n// %s\nconst (\n%s\n)\n", origin, strings.Join(lines, "\n"))
}

func (g *generator) name(class, member string) string {
	id := stringutils.GoIdentifier(class, member)
	g.used[id]++
	if n := g.used[id]; n > 1 {
		id = fmt.Sprintf("%s%d", id, n)
	}
	return id
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func isGoPackageName(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return s != ""
}
