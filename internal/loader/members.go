package loader

import (
	"strings"

	"github.com/podhmo/cslit/internal/diag"
	"github.com/podhmo/cslit/internal/object"
	"github.com/podhmo/cslit/internal/syntax"
)

func (s *session) loadClass(n syntax.Node, parent *object.Environment, outer string) error {
	k := s.kinds
	name := identText(k.First(n, syntax.RoleIdentifier))
	body := k.First(n, syntax.RoleMemberList)
	if body == nil {
		return &MissingContainerBodyError{Kind: n.Kind(), Name: name, Span: n.Span()}
	}

	class := object.NewClass(name, parent)
	class.Span = n.Span()
	class.Attributes = texts(k.Children(n, syntax.RoleAttributeList))
	if supers := k.First(n, syntax.RoleSuperList); supers != nil && len(supers.Children()) > 0 {
		class.Super = baseName(supers.Children()[0].Text())
	}
	parent.Define(name, object.ClassValue(class))
	s.scope.classes = append(s.scope.classes, class)

	qualified := name
	if outer != "" {
		qualified = outer + "." + name
	}
	prevClass, prevScope := s.class, s.scopeName
	s.class, s.scopeName = class, qualified
	defer func() { s.class, s.scopeName = prevClass, prevScope }()

	s.logger.DebugContext(s.ctx, "load class", "name", qualified, "super", class.Super)
	for _, m := range body.Children() {
		switch {
		case k.Is(m, syntax.RoleField):
			s.loadField(m, class.Env)
		case k.Is(m, syntax.RoleProperty):
			s.loadProperty(m, class.Env)
		case k.Is(m, syntax.RoleMethod):
			class.Methods = append(class.Methods, s.loadMethod(m, class.Env))
		case k.Is(m, syntax.RoleClass):
			s.loadClassOrReport(m, class.Env, qualified)
		}
	}
	return nil
}

func (s *session) loadField(n syntax.Node, env *object.Environment) {
	if decl := s.kinds.First(n, syntax.RoleVarDecl); decl != nil {
		s.loadVarDecl(decl, env)
	}
}

// loadVarDecl defines every declarator of a typed declaration, evaluating
// initializers in env and falling back to the zero value of the type.
func (s *session) loadVarDecl(decl syntax.Node, env *object.Environment) {
	k := s.kinds
	typ := ""
	if cs := decl.Children(); len(cs) > 0 && !k.Is(cs[0], syntax.RoleDeclarator) {
		typ = cs[0].Text()
	}
	for _, d := range k.Children(decl, syntax.RoleDeclarator) {
		name := identText(k.First(d, syntax.RoleIdentifier))
		if name == "" {
			continue
		}
		if init := k.First(d, syntax.RoleInitializer); init != nil {
			env.Define(name, s.evalClause(init, env))
			continue
		}
		env.Define(name, zeroValue(typ))
	}
}

// loadProperty evaluates a property eagerly: its initializer, its arrow body
// or an arrow-bodied getter, in that order. Anything else gets the zero
// value of the property type.
func (s *session) loadProperty(n syntax.Node, env *object.Environment) {
	k := s.kinds
	nameNode, typ := s.declName(n)
	name := identText(nameNode)
	if name == "" {
		return
	}

	var v object.Value
	switch init, arrow := k.First(n, syntax.RoleInitializer), k.First(n, syntax.RoleExprBody); {
	case init != nil:
		v = s.evalClause(init, env)
	case arrow != nil:
		v = s.evalClause(arrow, env)
	default:
		if getter := s.getterBody(n); getter != nil {
			v = s.evalClause(getter, env)
		} else {
			v = zeroValue(typ)
		}
	}
	env.Define(name, v)
}

func (s *session) getterBody(n syntax.Node) syntax.Node {
	k := s.kinds
	list := k.First(n, syntax.RoleAccessorList)
	if list == nil {
		return nil
	}
	for _, acc := range k.Children(list, syntax.RoleAccessor) {
		if kw := k.First(acc, syntax.RoleIdentifier); kw != nil && kw.Text() == "get" {
			return k.First(acc, syntax.RoleExprBody)
		}
	}
	return nil
}

// loadMethod declares a method or local function in closure. Parameters are
// bound in the method's own environment as "{name}" placeholders so that a
// block body can be walked; expression bodies are kept for the call binder.
func (s *session) loadMethod(n syntax.Node, closure *object.Environment) *object.Method {
	k := s.kinds
	nameNode, _ := s.declName(n)
	name := identText(nameNode)

	m := object.NewMethod(name, closure)
	m.Span = n.Span()
	m.Attributes = texts(k.Children(n, syntax.RoleAttributeList))
	if params := k.First(n, syntax.RoleParamList); params != nil {
		for _, p := range k.Children(params, syntax.RoleParam) {
			if pn := k.Last(p, syntax.RoleIdentifier); pn != nil {
				m.Params = append(m.Params, identText(pn))
			}
		}
	}
	if name != "" {
		closure.Define(name, object.MethodValue(m))
	}
	for _, p := range m.Params {
		m.Env.Define(p, object.Quote("{"+p+"}"))
	}

	if body := k.First(n, syntax.RoleExprBody); body != nil {
		m.Body = clauseText(body)
		m.HasExprBody = true
		return m
	}
	if block := k.First(n, syntax.RoleBlock); block != nil {
		s.walkStatement(block, m.Env, m)
	}
	return m
}

// walkStatement handles one statement of a body in source order. Nested
// blocks and control-flow statements are flattened into env.
func (s *session) walkStatement(n syntax.Node, env *object.Environment, owner *object.Method) {
	k := s.kinds
	switch {
	case k.Is(n, syntax.RoleLocalDecl):
		if decl := k.First(n, syntax.RoleVarDecl); decl != nil {
			s.loadVarDecl(decl, env)
		}
	case k.Is(n, syntax.RoleLocalFunc):
		fn := s.loadMethod(n, env)
		if owner != nil {
			owner.Methods = append(owner.Methods, fn)
		} else {
			s.scope.methods = append(s.scope.methods, fn)
		}
	case k.Is(n, syntax.RoleExprStmt):
		if asg := k.First(n, syntax.RoleAssignment); asg != nil {
			s.assign(asg, env)
		}
	case k.Is(n, syntax.RoleAssignment):
		s.assign(n, env)
	case k.Is(n, syntax.RoleClass):
	default:
		for _, c := range n.Children() {
			s.walkStatement(c, env, owner)
		}
	}
}

func (s *session) assign(n syntax.Node, env *object.Environment) {
	cs := n.Children()
	if len(cs) < 2 || !s.kinds.Is(cs[0], syntax.RoleIdentifier) {
		return
	}
	name := identText(cs[0])
	rhs := cs[len(cs)-1]
	v := s.evalAt(rhs, rhs.Text(), env)
	if env.Assign(name, v) {
		return
	}

	s.span = n.Span()
	if _, ok := env.Lookup(name); ok {
		s.Report(diag.New(diag.UnresolvedReference, "cannot assign to %q: bootstrap values are read-only", name))
		return
	}
	s.Report(diag.New(diag.UnresolvedReference, "assignment to undeclared name %q", name))
}

// declName returns the name of a property, method or local function (its
// last identifier) and the text of the type written before it.
func (s *session) declName(n syntax.Node) (syntax.Node, string) {
	cs := n.Children()
	for i := len(cs) - 1; i >= 0; i-- {
		if !s.kinds.Is(cs[i], syntax.RoleIdentifier) {
			continue
		}
		typ := ""
		if i > 0 && !s.kinds.Is(cs[i-1], syntax.RoleAttributeList) && !s.kinds.Is(cs[i-1], syntax.RoleModifier) {
			typ = cs[i-1].Text()
		}
		return cs[i], typ
	}
	return nil, ""
}

func identText(n syntax.Node) string {
	if n == nil {
		return ""
	}
	return strings.TrimPrefix(strings.TrimSpace(n.Text()), "@")
}

func texts(nodes []syntax.Node) []string {
	var r []string
	for _, n := range nodes {
		r = append(r, n.Text())
	}
	return r
}

// evalClause evaluates the expression of an "= e" or "=> e" clause, so that
// diagnostics point at the expression itself.
func (s *session) evalClause(n syntax.Node, env *object.Environment) object.Value {
	if cs := n.Children(); len(cs) > 0 {
		e := cs[len(cs)-1]
		return s.evalAt(e, e.Text(), env)
	}
	return s.evalAt(n, clauseText(n), env)
}

// clauseText is the expression of an "= e" or "=> e" clause.
func clauseText(n syntax.Node) string {
	if cs := n.Children(); len(cs) > 0 {
		return cs[len(cs)-1].Text()
	}
	t := strings.TrimSpace(n.Text())
	if rest, ok := strings.CutPrefix(t, "=>"); ok {
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(strings.TrimPrefix(t, "="))
}

// baseName strips type arguments and constructor arguments from a supertype.
func baseName(text string) string {
	if i := strings.IndexAny(text, "<("); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}

// zeroValue is the value of a declaration without initializer.
func zeroValue(typ string) object.Value {
	t := strings.TrimSpace(typ)
	if strings.HasSuffix(t, "?") {
		return object.Unresolved("null")
	}
	switch strings.TrimPrefix(t, "System.") {
	case "string", "String", "char", "Char":
		return object.Quote("")
	case "int", "uint", "long", "ulong", "short", "ushort", "byte", "sbyte", "nint", "nuint",
		"Int16", "Int32", "Int64", "UInt16", "UInt32", "UInt64", "Byte", "SByte":
		return object.Int("0")
	case "float", "double", "decimal", "Single", "Double", "Decimal":
		return object.Double("0")
	case "bool", "Boolean":
		return object.Bool("false")
	}
	return object.Unresolved("null")
}
