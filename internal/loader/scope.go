package loader

import (
	"github.com/podhmo/cslit/internal/diag"
	"github.com/podhmo/cslit/internal/object"
)

// FileScope is the result of loading one source file.
type FileScope struct {
	path    string
	env     *object.Environment
	classes []*object.Class
	methods []*object.Method
	diags   *diag.Bag
}

// Env is the file environment. It holds file-level declarations and every
// top-level class; its parent is the bootstrap environment.
func (f *FileScope) Env() *object.Environment { return f.env }

// Classes returns every loaded class in discovery order, nested ones included.
func (f *FileScope) Classes() []*object.Class { return f.classes }

// Class returns the first class with the given name.
func (f *FileScope) Class(name string) (*object.Class, bool) {
	for _, c := range f.classes {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Methods returns the file-level local functions.
func (f *FileScope) Methods() []*object.Method { return f.methods }

func (f *FileScope) Diagnostics() []diag.Diagnostic { return f.diags.Items() }

// HasErrors reports whether any error-severity diagnostic was recorded.
func (f *FileScope) HasErrors() bool { return f.diags.HasErrors() }

// Path is the file the scope was loaded from; empty for LoadFile.
func (f *FileScope) Path() string { return f.path }
