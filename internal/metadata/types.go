package metadata

import "github.com/podhmo/cslit/internal/object"

// SchemaVersion is bumped whenever the encoded report layout changes.
const SchemaVersion uint16 = 1

// Report holds everything recovered from a set of source files.
type Report struct {
	Schema uint16        `json:"schema" msgpack:"schema"`
	Files  []*FileReport `json:"files" msgpack:"files"`
}

// FileReport describes one loaded source file.
type FileReport struct {
	Path        string        `json:"path" msgpack:"path"`
	Error       string        `json:"error,omitempty" msgpack:"error,omitempty"` // hard failure; nothing else is set
	Values      []*Value      `json:"values,omitempty" msgpack:"values,omitempty"` // file-level declarations
	Methods     []*Method     `json:"methods,omitempty" msgpack:"methods,omitempty"`
	Classes     []*Class      `json:"classes,omitempty" msgpack:"classes,omitempty"`
	Diagnostics []*Diagnostic `json:"diagnostics,omitempty" msgpack:"diagnostics,omitempty"`
}

// Class describes a class-like container and its resolved members.
type Class struct {
	Name        string        `json:"name" msgpack:"name"`
	Super       string        `json:"super,omitempty" msgpack:"super,omitempty"`
	Attributes  []string      `json:"attributes,omitempty" msgpack:"attributes,omitempty"`
	Values      []*Value      `json:"values,omitempty" msgpack:"values,omitempty"`
	Methods     []*Method     `json:"methods,omitempty" msgpack:"methods,omitempty"`
	Diagnostics []*Diagnostic `json:"diagnostics,omitempty" msgpack:"diagnostics,omitempty"`
	Span        Span          `json:"span" msgpack:"span"`
}

// Method describes a method or local function.
type Method struct {
	Name       string    `json:"name" msgpack:"name"`
	Params     []string  `json:"params,omitempty" msgpack:"params,omitempty"`
	Attributes []string  `json:"attributes,omitempty" msgpack:"attributes,omitempty"`
	Body       string    `json:"body,omitempty" msgpack:"body,omitempty"` // expression body only
	Locals     []*Value  `json:"locals,omitempty" msgpack:"locals,omitempty"`
	Methods    []*Method `json:"methods,omitempty" msgpack:"methods,omitempty"` // local functions
	Span       Span      `json:"span" msgpack:"span"`
}

// Value is one resolved binding.
type Value struct {
	Name string `json:"name" msgpack:"name"`
	Kind string `json:"kind" msgpack:"kind"` // object.Kind
	Text string `json:"text" msgpack:"text"`
}

type Diagnostic struct {
	Severity string `json:"severity" msgpack:"severity"`
	Code     string `json:"code" msgpack:"code"`
	Message  string `json:"message" msgpack:"message"`
	Scope    string `json:"scope,omitempty" msgpack:"scope,omitempty"`
	Span     Span   `json:"span" msgpack:"span"`
}

// Span is a byte range, End exclusive.
type Span struct {
	Start uint32 `json:"start" msgpack:"start"`
	End   uint32 `json:"end" msgpack:"end"`
}

// Resolved reports whether the value is a literal rather than a placeholder.
func (v *Value) Resolved() bool {
	return v.Kind != string(object.Unknown)
}
