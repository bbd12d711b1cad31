// Package diag defines the diagnostics recorded while loading and evaluating
// a source file. Diagnostics never abort processing; they let callers tell a
// fully resolved result from a partially resolved one.
package diag

import "fmt"

// Code identifies the kind of problem a diagnostic reports.
type Code uint16

const (
	UnknownCode Code = 0

	// UnresolvedReference: an identifier is absent from the entire scope chain.
	UnresolvedReference Code = 1001
	// UnresolvedCall: the callee is absent, has only a block body, or the
	// call could not be bound (including the recursion ceiling).
	UnresolvedCall Code = 1002
	// MalformedExpression: unbalanced quotes, parentheses or interpolation braces.
	MalformedExpression Code = 1003
	// MissingContainerBody: a class-like node lacks its member list.
	MissingContainerBody Code = 2001
)

func (c Code) String() string {
	switch c {
	case UnresolvedReference:
		return "UnresolvedReference"
	case UnresolvedCall:
		return "UnresolvedCall"
	case MalformedExpression:
		return "MalformedExpression"
	case MissingContainerBody:
		return "MissingContainerBody"
	default:
		return fmt.Sprintf("Code(%d)", uint16(c))
	}
}

// Severity returns the default severity of the code.
func (c Code) Severity() Severity {
	if c == MissingContainerBody {
		return SevError
	}
	return SevWarning
}

type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "info"
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	default:
		return "unknown"
	}
}

// Span is a byte range in the source file, End exclusive.
type Span struct {
	Start uint32
	End   uint32
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Span     Span
	// Scope is the name of the class the diagnostic belongs to; empty at file level.
	Scope string
}

func (d Diagnostic) String() string {
	if d.Scope == "" {
		return fmt.Sprintf("%s[%s] %s", d.Severity, d.Code, d.Message)
	}
	return fmt.Sprintf("%s[%s] %s: %s", d.Severity, d.Code, d.Scope, d.Message)
}

// New builds a diagnostic with the default severity of the code.
func New(code Code, format string, args ...any) Diagnostic {
	return Diagnostic{
		Severity: code.Severity(),
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
	}
}
