// Package cslit recovers the compile-time values of fields, properties and
// locals declared in C# source files without executing them.
//
// A file is loaded top to bottom against a bootstrap environment of
// externally supplied names. String, number and boolean literals,
// concatenation, interpolation and calls to single-expression methods are
// resolved; anything else degrades to an unresolved placeholder and a
// diagnostic.
package cslit

import (
	"context"

	"github.com/podhmo/cslit/internal/bootstrap"
	"github.com/podhmo/cslit/internal/diag"
	"github.com/podhmo/cslit/internal/driver"
	"github.com/podhmo/cslit/internal/evaluator"
	"github.com/podhmo/cslit/internal/loader"
	"github.com/podhmo/cslit/internal/object"
	"github.com/podhmo/cslit/internal/syntax/csharp"
)

type (
	Environment = object.Environment
	Value       = object.Value
	Class       = object.Class
	Method      = object.Method
	FileScope   = loader.FileScope
	Diagnostic  = diag.Diagnostic
	Result      = driver.Result
	Option      = loader.Option
)

var (
	WithLogger   = loader.WithLogger
	WithMaxDepth = loader.WithMaxDepth
	WithKindMap  = loader.WithKindMap
)

// NewBootstrap returns a sealed environment holding pairs as string values.
func NewBootstrap(pairs map[string]string) *Environment {
	return bootstrap.FromPairs(pairs)
}

// LoadBootstrap reads bootstrap files (key=value, TOML or YAML by extension);
// later files overwrite earlier keys.
func LoadBootstrap(paths ...string) (*Environment, error) {
	return bootstrap.LoadAll(paths)
}

// LoadFile loads one C# source. bootstrap may be nil. The error is non-nil
// only when the source cannot be parsed at all.
func LoadFile(ctx context.Context, src []byte, bootstrap *Environment, opts ...Option) (*FileScope, error) {
	return loader.New(csharp.NewProvider(), opts...).LoadFile(ctx, src, bootstrap)
}

// LoadFiles loads files concurrently, at most jobs at a time (0 means
// GOMAXPROCS), and returns one Result per path in input order.
func LoadFiles(ctx context.Context, paths []string, bootstrap *Environment, jobs int, opts ...Option) ([]Result, error) {
	l := loader.New(csharp.NewProvider(), opts...)
	return driver.New(l, jobs, nil).LoadFiles(ctx, paths, bootstrap)
}

// Eval resolves a single expression in env and returns the diagnostics it raised.
func Eval(ctx context.Context, expr string, env *Environment) (Value, []Diagnostic) {
	bag := diag.NewBag()
	v := evaluator.New(evaluator.WithReporter(bag)).Eval(ctx, expr, env)
	return v, bag.Items()
}
