package object

import "github.com/podhmo/cslit/internal/diag"

// Method describes a method, expression-bodied method or local function.
type Method struct {
	Name       string
	Attributes []string
	Params     []string

	// Closure is the environment the method was declared in. Calls resolve
	// free names against it, never against the call site.
	Closure *Environment
	// Env holds parameters, locals and local functions. Its parent is Closure.
	Env *Environment

	// Body is the text of the single expression body; empty for block bodies.
	Body        string
	HasExprBody bool

	// Methods are the local functions declared in the body, in source order.
	Methods []*Method
	Span    diag.Span
}

// NewMethod creates a method declared in closure with its own enclosed environment.
func NewMethod(name string, closure *Environment) *Method {
	return &Method{
		Name:    name,
		Closure: closure,
		Env:     NewEnclosedEnvironment(closure),
	}
}

// Class describes a class-like container.
type Class struct {
	Name       string
	Super      string
	Attributes []string
	Env        *Environment
	Methods    []*Method
	Span       diag.Span

	// Diagnostics recorded while loading this class.
	Diagnostics []diag.Diagnostic
}

// NewClass creates a class whose environment is enclosed by parent.
func NewClass(name string, parent *Environment) *Class {
	return &Class{
		Name: name,
		Env:  NewEnclosedEnvironment(parent),
	}
}

// Values returns the resolved field and property values in declaration order.
func (c *Class) Values() []Binding {
	return literalBindings(c.Env)
}

// Method returns the method named name, if any.
func (c *Class) Method(name string) (*Method, bool) {
	for _, m := range c.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// Locals returns the parameter and local values of the method in declaration order.
func (m *Method) Locals() []Binding {
	return literalBindings(m.Env)
}

func literalBindings(env *Environment) []Binding {
	var r []Binding
	for _, b := range env.Bindings() {
		if b.Value.IsRef() {
			continue
		}
		r = append(r, b)
	}
	return r
}
