// Package loader walks a syntax tree top to bottom and builds the environment
// chain of one source file: file-level declarations first, then every class
// with its fields, properties, methods and nested classes.
package loader

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/podhmo/cslit/internal/diag"
	"github.com/podhmo/cslit/internal/evaluator"
	"github.com/podhmo/cslit/internal/object"
	"github.com/podhmo/cslit/internal/syntax"
)

type Loader struct {
	provider syntax.Provider
	kinds    syntax.KindMap
	logger   *slog.Logger
	maxDepth int
}

type Option func(*Loader)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// WithKindMap replaces syntax.DefaultKindMap, for providers that name their
// nodes differently.
func WithKindMap(m syntax.KindMap) Option {
	return func(l *Loader) { l.kinds = m }
}

func WithMaxDepth(n int) Option {
	return func(l *Loader) { l.maxDepth = n }
}

func New(provider syntax.Provider, opts ...Option) *Loader {
	l := &Loader{
		provider: provider,
		kinds:    syntax.DefaultKindMap(),
		maxDepth: evaluator.DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return l
}

// LoadFile builds the FileScope of src. bootstrap becomes the parent of the
// file environment and is never mutated; nil means an empty one. The error is
// non-nil only when the provider cannot produce a tree.
func (l *Loader) LoadFile(ctx context.Context, src []byte, bootstrap *object.Environment) (*FileScope, error) {
	l.logger.DebugContext(ctx, "LoadFile: start", "bytes", len(src))
	root, err := l.provider.Parse(ctx, src)
	if err != nil {
		l.logger.DebugContext(ctx, "LoadFile: end (error)", "error", err)
		return nil, err
	}

	if bootstrap == nil {
		bootstrap = object.NewEnvironment()
		bootstrap.Seal()
	}
	s := &session{
		Loader: l,
		ctx:    ctx,
		scope: &FileScope{
			env:   object.NewEnclosedEnvironment(bootstrap),
			diags: diag.NewBag(),
		},
	}
	s.eval = evaluator.New(
		evaluator.WithLogger(l.logger),
		evaluator.WithReporter(s),
		evaluator.WithMaxDepth(l.maxDepth),
	)
	s.loadFile(root)

	l.logger.DebugContext(ctx, "LoadFile: end",
		"classes", len(s.scope.classes),
		"methods", len(s.scope.methods),
		"diagnostics", s.scope.diags.Len())
	return s.scope, nil
}

// LoadPath reads and loads one file. Errors are wrapped in *SourceError.
func (l *Loader) LoadPath(ctx context.Context, path string, bootstrap *object.Environment) (*FileScope, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &SourceError{Path: path, Err: err}
	}
	scope, err := l.LoadFile(ctx, src, bootstrap)
	if err != nil {
		return nil, &SourceError{Path: path, Err: err}
	}
	scope.path = path
	return scope, nil
}

// session is the state of one LoadFile call.
type session struct {
	*Loader
	ctx   context.Context
	scope *FileScope
	eval  *evaluator.Evaluator

	// position used for diagnostics raised while evaluating
	span      diag.Span
	scopeName string
	class     *object.Class
}

// Report implements diag.Reporter, attaching the current position and scope.
func (s *session) Report(d diag.Diagnostic) {
	if d.Span == (diag.Span{}) {
		d.Span = s.span
	}
	if d.Scope == "" {
		d.Scope = s.scopeName
	}
	s.scope.diags.Report(d)
	if s.class != nil {
		s.class.Diagnostics = append(s.class.Diagnostics, d)
	}
}

func (s *session) evalAt(n syntax.Node, text string, env *object.Environment) object.Value {
	s.span = n.Span()
	return s.eval.Eval(s.ctx, text, env)
}

func (s *session) loadFile(root syntax.Node) {
	items := s.flatten(root, nil)
	env := s.scope.env

	for _, n := range items {
		switch {
		case s.kinds.Is(n, syntax.RoleField):
			s.loadField(n, env)
		case s.kinds.Is(n, syntax.RoleMethod):
			s.scope.methods = append(s.scope.methods, s.loadMethod(n, env))
		case s.kinds.Is(n, syntax.RoleClass):
		default:
			s.walkStatement(n, env, nil)
		}
	}

	for _, n := range items {
		if !s.kinds.Is(n, syntax.RoleClass) {
			continue
		}
		s.loadClassOrReport(n, env, "")
	}
}

// flatten lists the file-level items, looking through namespaces.
func (s *session) flatten(n syntax.Node, items []syntax.Node) []syntax.Node {
	for _, c := range n.Children() {
		if !s.kinds.Is(c, syntax.RoleNamespace) {
			items = append(items, c)
			continue
		}
		if body := s.kinds.First(c, syntax.RoleMemberList); body != nil {
			items = s.flatten(body, items)
		} else {
			items = s.flatten(c, items)
		}
	}
	return items
}

func (s *session) loadClassOrReport(n syntax.Node, parent *object.Environment, outer string) {
	err := s.loadClass(n, parent, outer)
	var missing *MissingContainerBodyError
	if errors.As(err, &missing) {
		s.logger.DebugContext(s.ctx, "skip class without body", "name", missing.Name)
		d := diag.New(diag.MissingContainerBody, "%s", missing.Error())
		d.Span = missing.Span
		s.Report(d)
	}
}
