package metadata

import (
	"github.com/podhmo/cslit/internal/diag"
	"github.com/podhmo/cslit/internal/loader"
	"github.com/podhmo/cslit/internal/object"
)

// FromFileScope converts a loaded file. A nil scope with a non-nil err gives
// a report carrying only the error.
func FromFileScope(path string, scope *loader.FileScope, err error) *FileReport {
	r := &FileReport{Path: path}
	if err != nil {
		r.Error = err.Error()
		return r
	}
	if scope == nil {
		return r
	}
	r.Values = values(scope.Env().Bindings())
	r.Methods = methods(scope.Methods())
	for _, c := range scope.Classes() {
		r.Classes = append(r.Classes, fromClass(c))
	}
	r.Diagnostics = diagnostics(scope.Diagnostics())
	return r
}

func fromClass(c *object.Class) *Class {
	return &Class{
		Name:        c.Name,
		Super:       c.Super,
		Attributes:  c.Attributes,
		Values:      values(c.Values()),
		Methods:     methods(c.Methods),
		Diagnostics: diagnostics(c.Diagnostics),
		Span:        span(c.Span),
	}
}

func methods(ms []*object.Method) []*Method {
	var r []*Method
	for _, m := range ms {
		r = append(r, &Method{
			Name:       m.Name,
			Params:     m.Params,
			Attributes: m.Attributes,
			Body:       m.Body,
			Locals:     values(m.Locals()),
			Methods:    methods(m.Methods),
			Span:       span(m.Span),
		})
	}
	return r
}

// values skips method and class references.
func values(bindings []object.Binding) []*Value {
	var r []*Value
	for _, b := range bindings {
		if b.Value.IsRef() {
			continue
		}
		r = append(r, &Value{Name: b.Name, Kind: string(b.Value.Kind), Text: b.Value.Text})
	}
	return r
}

func diagnostics(ds []diag.Diagnostic) []*Diagnostic {
	var r []*Diagnostic
	for _, d := range ds {
		r = append(r, &Diagnostic{
			Severity: d.Severity.String(),
			Code:     d.Code.String(),
			Message:  d.Message,
			Scope:    d.Scope,
			Span:     span(d.Span),
		})
	}
	return r
}

func span(s diag.Span) Span {
	return Span{Start: s.Start, End: s.End}
}
