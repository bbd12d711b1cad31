package loader

import (
	"fmt"

	"github.com/podhmo/cslit/internal/diag"
)

// SourceError indicates that a source file could not be read or parsed.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Path, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// MissingContainerBodyError indicates a class-like declaration without a
// member list. Only that declaration is dropped.
type MissingContainerBodyError struct {
	Kind string
	Name string
	Span diag.Span
}

func (e *MissingContainerBodyError) Error() string {
	return fmt.Sprintf("%s %q has no member list", e.Kind, e.Name)
}
