// Package evaluator resolves expressions of the small sublanguage to
// object.Values against an environment chain, without executing anything.
package evaluator

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/podhmo/cslit/internal/diag"
	"github.com/podhmo/cslit/internal/expr"
	"github.com/podhmo/cslit/internal/object"
)

// DefaultMaxDepth is the default ceiling of the depth counter threaded through
// calls. Mutually recursive expression-bodied methods hit it instead of
// overflowing the stack; after the first hit the rest of the evaluation
// degrades to placeholders.
const DefaultMaxDepth = 64

type Evaluator struct {
	logger   *slog.Logger
	reporter diag.Reporter
	maxDepth int

	parsed map[string]expr.Node

	// exhausted is set once the depth ceiling trips and cleared by Eval.
	// Every later call in the same evaluation returns its placeholder at once.
	exhausted bool
}

type Option func(*Evaluator)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) { e.logger = logger }
}

// WithReporter sets where diagnostics go. The default discards them.
func WithReporter(r diag.Reporter) Option {
	return func(e *Evaluator) { e.reporter = r }
}

func WithMaxDepth(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.maxDepth = n
		}
	}
}

// New creates a new Evaluator. An Evaluator caches parsed expressions and is
// not safe for concurrent use; use one per file.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		maxDepth: DefaultMaxDepth,
		reporter: diag.Discard,
		parsed:   make(map[string]expr.Node),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return e
}

// Eval resolves the expression text in env.
func (e *Evaluator) Eval(ctx context.Context, src string, env *object.Environment) object.Value {
	e.exhausted = false
	return e.evalText(ctx, src, env, 0)
}

func (e *Evaluator) evalText(ctx context.Context, src string, env *object.Environment, depth int) object.Value {
	return e.evalNode(ctx, e.parse(src), env, depth)
}

func (e *Evaluator) parse(src string) expr.Node {
	if n, ok := e.parsed[src]; ok {
		return n
	}
	n := expr.Parse(src)
	e.parsed[src] = n
	return n
}

func (e *Evaluator) evalNode(ctx context.Context, node expr.Node, env *object.Environment, depth int) object.Value {
	switch n := node.(type) {
	case *expr.Blank:
		return object.Quote("")
	case *expr.Interp:
		return e.evalInterp(ctx, n, env, depth)
	case *expr.Call:
		return e.evalCall(ctx, n, env, depth)
	case *expr.Concat:
		return e.evalConcat(ctx, n, env, depth)
	case *expr.Ident:
		return e.evalIdent(ctx, n, env)
	case *expr.Member:
		return e.evalMember(ctx, n, env)
	case *expr.Paren:
		return e.evalNode(ctx, n.Inner, env, depth+1)
	case *expr.Str:
		return object.String(n.Raw)
	case *expr.Number:
		if n.Double {
			return object.Double(n.Raw)
		}
		return object.Int(n.Raw)
	case *expr.Opaque:
		return object.Unresolved(n.Raw)
	case *expr.Malformed:
		e.logger.DebugContext(ctx, "malformed expression", "expr", n.Raw, "reason", n.Reason)
		e.report(diag.New(diag.MalformedExpression, "malformed expression %q: %s", n.Raw, n.Reason))
		return object.Unresolved(n.Raw)
	default:
		return object.Unresolved(node.Text())
	}
}

func (e *Evaluator) evalInterp(ctx context.Context, n *expr.Interp, env *object.Environment, depth int) object.Value {
	var sb strings.Builder
	for _, part := range n.Parts {
		if part.Hole == nil {
			sb.WriteString(part.Lit)
			continue
		}
		sb.WriteString(e.evalNode(ctx, part.Hole, env, depth+1).SpliceText())
	}
	return object.Quote(sb.String())
}

// evalConcat joins the operands as text. Digit operands concatenate too: no arithmetic.
func (e *Evaluator) evalConcat(ctx context.Context, n *expr.Concat, env *object.Environment, depth int) object.Value {
	var sb strings.Builder
	for _, op := range n.Operands {
		sb.WriteString(e.evalNode(ctx, op, env, depth+1).SpliceText())
	}
	return object.Quote(sb.String())
}

func (e *Evaluator) evalIdent(ctx context.Context, n *expr.Ident, env *object.Environment) object.Value {
	if v, ok := env.Lookup(n.Name); ok {
		if v.IsRef() {
			return object.Quote(v.Name())
		}
		return v
	}
	if isBool(n.Name) {
		return object.Bool(n.Name)
	}
	e.logger.DebugContext(ctx, "unresolved reference", "name", n.Name)
	e.report(diag.New(diag.UnresolvedReference, "unresolved reference %q", n.Name))
	return object.UnresolvedQuoted(n.Name)
}

// evalMember resolves Class.member through a ClassRef. Anything else stays opaque.
func (e *Evaluator) evalMember(ctx context.Context, n *expr.Member, env *object.Environment) object.Value {
	recv, ok := env.Lookup(n.Recv)
	if !ok || recv.Kind != object.ClassRef || recv.Class == nil {
		return object.Unresolved(n.Text())
	}
	v, ok := recv.Class.Env.Local(n.Name)
	if !ok {
		e.logger.DebugContext(ctx, "unresolved member", "class", n.Recv, "name", n.Name)
		e.report(diag.New(diag.UnresolvedReference, "unresolved reference %q", n.Text()))
		return object.UnresolvedQuoted(n.Text())
	}
	if v.IsRef() {
		return object.Quote(v.Name())
	}
	return v
}

func (e *Evaluator) report(d diag.Diagnostic) {
	e.reporter.Report(d)
}

func isBool(name string) bool {
	switch strings.ToLower(name) {
	case "true", "false":
		return true
	}
	return false
}
