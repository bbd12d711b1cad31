package object

import "fmt"

// Environment holds the bindings of one lexical scope.
type Environment struct {
	store  map[string]Value
	names  []string
	outer  *Environment
	sealed bool
}

// Binding is a name/value pair in definition order.
type Binding struct {
	Name  string
	Value Value
}

// NewEnvironment creates a new, top-level environment.
func NewEnvironment() *Environment {
	return &Environment{store: make(map[string]Value)}
}

// NewEnclosedEnvironment creates a new environment that is enclosed by an outer one.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.outer = outer
	return env
}

// Outer returns the enclosing environment, or nil for a root.
func (e *Environment) Outer() *Environment {
	return e.outer
}

// Define creates or overwrites name in this environment only.
func (e *Environment) Define(name string, val Value) {
	if e.sealed {
		panic(fmt.Sprintf("object: define %q on a sealed environment", name))
	}
	if _, ok := e.store[name]; !ok {
		e.names = append(e.names, name)
	}
	e.store[name] = val
}

// Lookup retrieves a value by name, checking outer scopes if necessary.
func (e *Environment) Lookup(name string) (Value, bool) {
	for cur := e; cur != nil; cur = cur.outer {
		if v, ok := cur.store[name]; ok {
			return v, true
		}
	}
	return Value{}, false
}

// Local retrieves a value bound in this environment, ignoring outer scopes.
func (e *Environment) Local(name string) (Value, bool) {
	v, ok := e.store[name]
	return v, ok
}

// Assign updates the nearest existing binding of name.
// It returns false without mutating anything when name is unbound, or when the
// nearest binding lives in a sealed environment.
func (e *Environment) Assign(name string, val Value) bool {
	for cur := e; cur != nil; cur = cur.outer {
		if _, ok := cur.store[name]; ok {
			if cur.sealed {
				return false
			}
			cur.store[name] = val
			return true
		}
	}
	return false
}

// Seal makes the environment read-only. A sealed environment can be shared
// as the parent of environments used from several goroutines.
func (e *Environment) Seal() {
	e.sealed = true
}

func (e *Environment) Sealed() bool {
	return e.sealed
}

// Names returns the local names in first-definition order.
func (e *Environment) Names() []string {
	names := make([]string, len(e.names))
	copy(names, e.names)
	return names
}

// Bindings returns the local bindings in first-definition order.
func (e *Environment) Bindings() []Binding {
	bindings := make([]Binding, 0, len(e.names))
	for _, name := range e.names {
		bindings = append(bindings, Binding{Name: name, Value: e.store[name]})
	}
	return bindings
}

func (e *Environment) Len() int {
	return len(e.store)
}
