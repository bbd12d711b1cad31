package evaluator

import (
	"context"
	"strings"

	"github.com/podhmo/cslit/internal/diag"
	"github.com/podhmo/cslit/internal/expr"
	"github.com/podhmo/cslit/internal/object"
)

func (e *Evaluator) evalCall(ctx context.Context, n *expr.Call, env *object.Environment, depth int) object.Value {
	// a method call on something other than a class, like token.User.Get(),
	// stays opaque the same way a member access does
	if m, ok := n.Callee.(*expr.Member); ok {
		if recv, found := env.Lookup(m.Recv); !found || recv.Kind != object.ClassRef || recv.Class == nil {
			return object.Unresolved(n.Raw)
		}
	}
	callee, ok := e.resolveCallee(n, env)
	if !ok || callee.Kind != object.MethodRef || callee.Method == nil {
		if v, ok := builtin(n, env); ok {
			return v
		}
		e.logger.DebugContext(ctx, "unresolved call", "callee", n.CalleeName())
		e.report(diag.New(diag.UnresolvedCall, "unresolved call %q", n.Signature()))
		return object.UnresolvedQuoted(n.Signature())
	}
	return e.apply(ctx, callee.Method, n, env, depth+1)
}

func (e *Evaluator) resolveCallee(n *expr.Call, env *object.Environment) (object.Value, bool) {
	switch c := n.Callee.(type) {
	case *expr.Ident:
		return env.Lookup(c.Name)
	case *expr.Member:
		recv, ok := env.Lookup(c.Recv)
		if !ok || recv.Kind != object.ClassRef || recv.Class == nil {
			return object.Value{}, false
		}
		return recv.Class.Env.Local(c.Name)
	}
	return object.Value{}, false
}

// apply binds the call's arguments to m's parameters and evaluates m's
// expression body. The call environment is enclosed by m.Closure, so the
// body never sees the caller's locals. Every argument is evaluated in
// callerEnv; extra ones are then dropped and missing ones leave the parameter
// unbound.
func (e *Evaluator) apply(ctx context.Context, m *object.Method, n *expr.Call, callerEnv *object.Environment, depth int) object.Value {
	if e.exhausted {
		return object.UnresolvedQuoted(n.Signature())
	}
	if depth > e.maxDepth {
		e.exhausted = true
		e.logger.WarnContext(ctx, "call depth exceeded, aborting recursion", "method", m.Name, "depth", depth)
		e.report(diag.New(diag.UnresolvedCall, "recursion limit (%d) exceeded while resolving %q", e.maxDepth, n.Signature()))
		return object.UnresolvedQuoted(n.Signature())
	}
	if !m.HasExprBody {
		e.logger.DebugContext(ctx, "callee has a block body", "method", m.Name)
		e.report(diag.New(diag.UnresolvedCall, "cannot resolve call %q: %s has a block body", n.Signature(), m.Name))
		return object.UnresolvedQuoted(n.Signature())
	}

	callEnv := object.NewEnclosedEnvironment(m.Closure)
	for i, arg := range n.Args {
		v := e.evalNode(ctx, arg, callerEnv, depth+1)
		if i < len(m.Params) {
			callEnv.Define(m.Params[i], v)
		}
	}

	e.logger.DebugContext(ctx, "apply method", "method", m.Name, "args", len(n.Args), "depth", depth)
	return e.evalText(ctx, m.Body, callEnv, depth+1)
}

// builtin handles nameof(x), which resolves to the last segment of its argument.
func builtin(n *expr.Call, env *object.Environment) (object.Value, bool) {
	id, ok := n.Callee.(*expr.Ident)
	if !ok || id.Name != "nameof" || len(n.Args) != 1 {
		return object.Value{}, false
	}
	if _, bound := env.Lookup("nameof"); bound {
		return object.Value{}, false
	}
	text := n.Args[0].Text()
	if i := strings.LastIndexByte(text, '.'); i >= 0 {
		text = text[i+1:]
	}
	if !expr.IsIdent(text) {
		return object.Value{}, false
	}
	return object.Quote(text), true
}
