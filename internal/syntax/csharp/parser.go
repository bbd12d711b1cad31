// Package csharp is a tolerant C# syntax provider. It builds a member-level
// tree (types, fields, properties, methods and the statements inside their
// bodies) whose node kinds follow tree-sitter-c-sharp. Expressions are kept
// as opaque "expression" spans.
package csharp

import (
	"context"

	"github.com/podhmo/cslit/internal/syntax"
)

// Provider implements syntax.Provider for C#.
type Provider struct{}

var _ syntax.Provider = (*Provider)(nil)

// NewProvider returns a C# provider.
func NewProvider() *Provider { return &Provider{} }

// Parse builds a compilation_unit tree. It fails only on lexical errors
// (unterminated strings or comments).
func (*Provider) Parse(ctx context.Context, src []byte) (syntax.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	toks, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, toks: toks}
	return p.parseCompilationUnit(), nil
}

var reserved = setOf(
	"abstract", "as", "base", "bool", "break", "byte", "case", "catch", "char",
	"checked", "class", "const", "continue", "decimal", "default", "delegate",
	"do", "double", "else", "enum", "event", "explicit", "extern", "false",
	"finally", "fixed", "float", "for", "foreach", "goto", "if", "implicit",
	"in", "int", "interface", "internal", "is", "lock", "long", "namespace",
	"new", "null", "object", "operator", "out", "override", "params",
	"private", "protected", "public", "readonly", "ref", "return", "sbyte",
	"sealed", "short", "sizeof", "stackalloc", "static", "string", "struct",
	"switch", "this", "throw", "true", "try", "typeof", "uint", "ulong",
	"unchecked", "unsafe", "ushort", "using", "virtual", "void", "volatile",
	"while",
)

var predefined = setOf(
	"bool", "byte", "char", "decimal", "double", "float", "int", "long",
	"object", "sbyte", "short", "string", "uint", "ulong", "ushort", "void",
	"nint", "nuint",
)

var memberModifiers = setOf(
	"public", "private", "protected", "internal", "static", "readonly",
	"const", "volatile", "new", "override", "virtual", "abstract", "sealed",
	"extern", "unsafe", "ref",
)

// contextual modifiers count only when another word follows.
var contextualModifiers = setOf("async", "partial", "required", "file", "scoped")

func setOf(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

type parser struct {
	src  []byte
	toks []Token
	pos  int
}

func (p *parser) at(n int) Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *parser) peek() Token { return p.at(0) }

func (p *parser) next() Token {
	t := p.toks[p.pos]
	if t.Kind != EOF {
		p.pos++
	}
	return t
}

func (p *parser) eof() bool { return p.peek().Kind == EOF }

func isTok(t Token, text string) bool {
	return (t.Kind == Punct || t.Kind == Ident) && t.Text == text
}

func isName(t Token) bool { return t.Kind == Ident && !reserved[t.Text] }

func (p *parser) is(text string) bool { return isTok(p.peek(), text) }

func (p *parser) accept(text string) bool {
	if p.is(text) {
		p.next()
		return true
	}
	return false
}

func (p *parser) start() uint32 { return p.peek().Span.Start }

// end is the end offset of the last consumed token.
func (p *parser) end() uint32 {
	if p.pos == 0 {
		return 0
	}
	return p.toks[p.pos-1].Span.End
}

func (p *parser) node(kind string, start uint32, children ...syntax.Node) *syntax.Basic {
	end := p.end()
	if end < start {
		end = start
	}
	return syntax.NewNode(kind, syntax.Span{Start: start, End: end}, p.src, children...)
}

func (p *parser) leaf(kind string, t Token) *syntax.Basic {
	return syntax.NewNode(kind, t.Span, p.src)
}

func nonNil(nodes ...syntax.Node) []syntax.Node {
	r := nodes[:0:0]
	for _, n := range nodes {
		if n != nil {
			r = append(r, n)
		}
	}
	return r
}

func (p *parser) parseCompilationUnit() syntax.Node {
	var items []syntax.Node
	for !p.eof() {
		before := p.pos
		if n := p.parseTopLevel(); n != nil {
			items = append(items, n)
		}
		if p.pos == before {
			p.next()
		}
	}
	end := p.toks[len(p.toks)-1].Span.End
	return syntax.NewNode("compilation_unit", syntax.Span{Start: 0, End: end}, p.src, items...)
}

func (p *parser) parseTopLevel() syntax.Node {
	if p.isDeclarationStart() {
		return p.parseMember()
	}
	start := p.start()
	stmt := p.parseStatement()
	if stmt == nil {
		return nil
	}
	return p.node("global_statement", start, stmt)
}

// isDeclarationStart looks ahead for a type, namespace or using directive.
func (p *parser) isDeclarationStart() bool {
	save := p.pos
	defer func() { p.pos = save }()

	if p.is("extern") && isTok(p.at(1), "alias") {
		return true
	}
	if p.is("global") && isTok(p.at(1), "using") {
		return true
	}
	p.parseAttributes()
	p.parseModifiers()
	t := p.peek()
	switch {
	case isTok(t, "namespace"), isTok(t, "class"), isTok(t, "struct"), isTok(t, "interface"),
		isTok(t, "enum"), isTok(t, "delegate"):
		return true
	case isTok(t, "record"):
		return p.at(1).Kind == Ident
	case isTok(t, "using"):
		return p.isUsingDirective()
	}
	return false
}

func (p *parser) isUsingDirective() bool {
	save := p.pos
	defer func() { p.pos = save }()

	p.next() // using
	if p.is("(") {
		return false
	}
	if p.is("static") {
		return true
	}
	if _, ok := p.parseType(); !ok {
		return false
	}
	return p.is(";") || p.is("=")
}

// parseMember parses one declaration inside a type body, a namespace or the
// compilation unit. It returns nil when nothing was recognized.
func (p *parser) parseMember() syntax.Node {
	start := p.start()
	switch {
	case p.is("extern") && isTok(p.at(1), "alias"):
		p.skipTo(";")
		return p.node("extern_alias_directive", start)
	case p.is("global") && isTok(p.at(1), "using"), p.is("using"):
		p.skipTo(";")
		return p.node("using_directive", start)
	case p.is("namespace"):
		return p.parseNamespace(start)
	}

	var head []syntax.Node
	head = append(head, p.parseAttributes()...)
	head = append(head, p.parseModifiers()...)

	switch t := p.peek(); {
	case isTok(t, "class"):
		return p.parseTypeDecl(start, "class_declaration", head)
	case isTok(t, "struct"):
		return p.parseTypeDecl(start, "struct_declaration", head)
	case isTok(t, "interface"):
		return p.parseTypeDecl(start, "interface_declaration", head)
	case isTok(t, "record") && p.at(1).Kind == Ident:
		return p.parseTypeDecl(start, "record_declaration", head)
	case isTok(t, "enum"):
		p.next()
		for !p.eof() && !p.is("{") && !p.is(";") && !p.is("}") {
			p.next()
		}
		if p.is("{") {
			p.skipBalanced()
		}
		p.accept(";")
		return p.node("enum_declaration", start, head...)
	case isTok(t, "delegate"):
		p.skipTo(";")
		return p.node("delegate_declaration", start, head...)
	case isTok(t, "event"):
		p.next()
		for !p.eof() && !p.is(";") && !p.is("{") && !p.is("}") {
			p.skipOne()
		}
		if p.is("{") {
			p.skipBalanced()
		} else {
			p.accept(";")
		}
		return p.node("event_declaration", start, head...)
	case isTok(t, "~"):
		p.next()
		if isName(p.peek()) {
			p.next()
		}
		p.skipParens()
		p.skipBody()
		return p.node("destructor_declaration", start, head...)
	case isTok(t, "implicit"), isTok(t, "explicit"):
		p.next()
		p.accept("operator")
		p.parseType()
		p.skipParens()
		p.skipBody()
		return p.node("conversion_operator_declaration", start, head...)
	}
	return p.parseTypedMember(start, head)
}

func (p *parser) parseNamespace(start uint32) syntax.Node {
	p.next() // namespace
	var children []syntax.Node
	if isName(p.peek()) {
		children = append(children, p.parseQualifiedName())
	}
	if p.is("{") {
		children = append(children, p.parseDeclList())
		p.accept(";")
		return p.node("namespace_declaration", start, children...)
	}
	p.accept(";")
	for !p.eof() {
		before := p.pos
		if m := p.parseMember(); m != nil {
			children = append(children, m)
		}
		if p.pos == before {
			p.next()
		}
	}
	return p.node("file_scoped_namespace_declaration", start, children...)
}

func (p *parser) parseQualifiedName() syntax.Node {
	start := p.start()
	p.next()
	kind := "identifier"
	for (p.is(".") || p.is("::")) && isName(p.at(1)) {
		p.pos += 2
		kind = "qualified_name"
	}
	return p.node(kind, start)
}

func (p *parser) parseTypeDecl(start uint32, kind string, head []syntax.Node) syntax.Node {
	keyword := p.next()
	if isTok(keyword, "record") && (p.is("class") || p.is("struct")) {
		p.next()
	}
	children := head
	if isName(p.peek()) {
		children = append(children, p.leaf("identifier", p.next()))
	}
	if tp := p.parseTypeParams(); tp != nil {
		children = append(children, tp)
	}
	if p.is("(") {
		children = append(children, p.parseParamList())
	}
	if p.is(":") {
		bstart := p.start()
		p.next()
		var bases []syntax.Node
		for {
			typ, ok := p.parseType()
			if !ok {
				break
			}
			bases = append(bases, typ)
			if p.is("(") {
				p.skipBalanced()
			}
			if !p.accept(",") {
				break
			}
		}
		children = append(children, p.node("base_list", bstart, bases...))
	}
	children = append(children, p.parseConstraints()...)
	if p.is("{") {
		children = append(children, p.parseDeclList())
	}
	p.accept(";")
	return p.node(kind, start, children...)
}

func (p *parser) parseDeclList() syntax.Node {
	start := p.start()
	p.next() // {
	var members []syntax.Node
	for !p.is("}") && !p.eof() {
		before := p.pos
		if m := p.parseMember(); m != nil {
			members = append(members, m)
		}
		if p.pos == before {
			p.next()
		}
	}
	p.accept("}")
	return p.node("declaration_list", start, members...)
}

// parseTypedMember parses a member that starts with a type: fields,
// properties, methods, constructors, operators and indexers.
func (p *parser) parseTypedMember(start uint32, head []syntax.Node) syntax.Node {
	typ, ok := p.parseType()
	if !ok {
		return nil
	}
	switch {
	case p.is("("):
		p.skipBalanced()
		if p.accept(":") {
			p.next() // base or this
			p.skipParens()
		}
		p.skipBody()
		return p.node("constructor_declaration", start, head...)
	case p.is("operator"):
		for !p.eof() && !p.is("(") && !p.is("{") && !p.is(";") {
			p.next()
		}
		p.skipParens()
		p.skipBody()
		return p.node("operator_declaration", start, head...)
	case p.is("this"):
		return p.skipIndexer(start, head)
	case !isName(p.peek()):
		return nil
	}

	nameTok := p.next()
	for p.is(".") && isName(p.at(1)) {
		p.next()
		nameTok = p.next()
	}
	if p.is(".") && isTok(p.at(1), "this") {
		p.next()
		return p.skipIndexer(start, head)
	}
	name := p.leaf("identifier", nameTok)
	children := append(head, typ, name)

	switch {
	case p.is("<") || p.is("("):
		if tp := p.parseTypeParams(); tp != nil {
			children = append(children, tp)
		}
		if p.is("(") {
			children = append(children, p.parseParamList())
		}
		children = append(children, p.parseConstraints()...)
		switch {
		case p.is("{"):
			children = append(children, p.parseBlock())
		case p.is("=>"):
			children = append(children, p.parseArrow())
			p.accept(";")
		default:
			p.accept(";")
		}
		return p.node("method_declaration", start, children...)
	case p.is("{"):
		children = append(children, p.parseAccessorList())
		if p.is("=") {
			children = append(children, p.parseEquals())
		}
		p.accept(";")
		return p.node("property_declaration", start, children...)
	case p.is("=>"):
		children = append(children, p.parseArrow())
		p.accept(";")
		return p.node("property_declaration", start, children...)
	}

	decl := p.parseVariableDeclaration(typ, name)
	p.accept(";")
	return p.node("field_declaration", start, append(head, decl)...)
}

func (p *parser) skipIndexer(start uint32, head []syntax.Node) syntax.Node {
	p.next() // this
	if p.is("[") {
		p.skipBalanced()
	}
	switch {
	case p.is("{"):
		p.skipBalanced()
	case p.accept("=>"):
		p.parseExpr(false)
		p.accept(";")
	}
	return p.node("indexer_declaration", start, head...)
}

func (p *parser) parseVariableDeclaration(typ, first syntax.Node) syntax.Node {
	start := typ.Span().Start
	children := []syntax.Node{typ, p.parseDeclaratorRest(first)}
	for p.is(",") && isName(p.at(1)) {
		p.next()
		children = append(children, p.parseDeclaratorRest(p.leaf("identifier", p.next())))
	}
	return p.node("variable_declaration", start, children...)
}

func (p *parser) parseDeclaratorRest(name syntax.Node) syntax.Node {
	children := []syntax.Node{name}
	if p.is("[") {
		p.skipBalanced()
	}
	if p.is("=") {
		children = append(children, p.parseEquals())
	}
	return p.node("variable_declarator", name.Span().Start, children...)
}

func (p *parser) parseEquals() syntax.Node {
	start := p.start()
	p.next() // =
	return p.node("equals_value_clause", start, nonNil(p.parseExpr(true))...)
}

func (p *parser) parseArrow() syntax.Node {
	start := p.start()
	p.next() // =>
	return p.node("arrow_expression_clause", start, nonNil(p.parseExpr(false))...)
}

func (p *parser) parseAccessorList() syntax.Node {
	start := p.start()
	p.next() // {
	var accessors []syntax.Node
	for !p.is("}") && !p.eof() {
		before := p.pos
		astart := p.start()
		var children []syntax.Node
		children = append(children, p.parseAttributes()...)
		children = append(children, p.parseModifiers()...)
		if isName(p.peek()) {
			children = append(children, p.leaf("identifier", p.next()))
		}
		switch {
		case p.is("=>"):
			children = append(children, p.parseArrow())
			p.accept(";")
		case p.is("{"):
			children = append(children, p.parseBlock())
		default:
			p.accept(";")
		}
		if p.pos == before {
			p.next()
			continue
		}
		accessors = append(accessors, p.node("accessor_declaration", astart, children...))
	}
	p.accept("}")
	return p.node("accessor_list", start, accessors...)
}

func (p *parser) parseParamList() syntax.Node {
	start := p.start()
	p.next() // (
	var params []syntax.Node
	for !p.is(")") && !p.eof() {
		if prm := p.parseParam(); prm != nil {
			params = append(params, prm)
		}
		for !p.eof() && !p.is(",") && !p.is(")") && !p.is("}") && !p.is(";") {
			p.skipOne()
		}
		if !p.accept(",") {
			break
		}
	}
	p.accept(")")
	return p.node("parameter_list", start, params...)
}

var paramModifiers = setOf("ref", "out", "in", "params", "this", "readonly")

func (p *parser) parseParam() syntax.Node {
	start := p.start()
	var children []syntax.Node
	children = append(children, p.parseAttributes()...)
	for {
		t := p.peek()
		if t.Kind == Ident && (paramModifiers[t.Text] || (t.Text == "scoped" && p.at(1).Kind == Ident)) {
			children = append(children, p.leaf("modifier", p.next()))
			continue
		}
		break
	}
	if typ, ok := p.parseType(); ok {
		children = append(children, typ)
		if isName(p.peek()) {
			children = append(children, p.leaf("identifier", p.next()))
		}
	}
	if p.is("=") {
		children = append(children, p.parseEquals())
	}
	if len(children) == 0 {
		return nil
	}
	return p.node("parameter", start, children...)
}

func (p *parser) parseTypeParams() syntax.Node {
	if !p.is("<") {
		return nil
	}
	end := p.genericArgsEnd(p.pos)
	if end < 0 {
		return nil
	}
	start := p.start()
	p.pos = end
	return p.node("type_parameter_list", start)
}

func (p *parser) parseConstraints() []syntax.Node {
	var clauses []syntax.Node
	for p.is("where") {
		start := p.start()
		p.next()
		for !p.eof() && !p.is("{") && !p.is("=>") && !p.is(";") && !p.is("where") && !p.is("}") {
			p.skipOne()
		}
		clauses = append(clauses, p.node("type_parameter_constraints_clause", start))
	}
	return clauses
}

func (p *parser) parseAttributes() []syntax.Node {
	var attrs []syntax.Node
	for p.is("[") {
		start := p.start()
		p.skipBalanced()
		attrs = append(attrs, p.node("attribute_list", start))
	}
	return attrs
}

func (p *parser) parseModifiers() []syntax.Node {
	var mods []syntax.Node
	for {
		t := p.peek()
		if t.Kind != Ident {
			return mods
		}
		if !memberModifiers[t.Text] && !(contextualModifiers[t.Text] && p.at(1).Kind == Ident) {
			return mods
		}
		mods = append(mods, p.leaf("modifier", p.next()))
	}
}

// parseType parses a type and restores the position when there is none.
// The node kind is predefined_type or identifier for single-word types and
// generic_name, qualified_name, nullable_type, array_type, pointer_type or
// tuple_type otherwise.
func (p *parser) parseType() (syntax.Node, bool) {
	save := p.pos
	start := p.start()
	kind, ok := p.parseTypeKind()
	if !ok {
		p.pos = save
		return nil, false
	}
	return p.node(kind, start), true
}

func (p *parser) parseTypeKind() (string, bool) {
	var kind string
	switch t := p.peek(); {
	case t.Kind == Ident && predefined[t.Text]:
		p.next()
		kind = "predefined_type"
	case isName(t):
		p.next()
		kind = "identifier"
		for {
			if p.is("<") {
				end := p.genericArgsEnd(p.pos)
				if end < 0 {
					break
				}
				p.pos = end
				kind = "generic_name"
				continue
			}
			if (p.is(".") || p.is("::")) && isName(p.at(1)) {
				p.pos += 2
				kind = "qualified_name"
				continue
			}
			break
		}
	case isTok(t, "("):
		p.next()
		for {
			if _, ok := p.parseTypeKind(); !ok {
				return "", false
			}
			if isName(p.peek()) {
				p.next()
			}
			if p.accept(",") {
				continue
			}
			if p.accept(")") {
				break
			}
			return "", false
		}
		kind = "tuple_type"
	default:
		return "", false
	}

	for {
		switch {
		case p.is("?"):
			p.next()
			kind = "nullable_type"
		case p.is("[") && (isTok(p.at(1), "]") || isTok(p.at(1), ",")):
			p.next()
			for p.accept(",") {
			}
			if !p.accept("]") {
				return "", false
			}
			kind = "array_type"
		case p.is("*"):
			p.next()
			kind = "pointer_type"
		default:
			return kind, true
		}
	}
}

// genericArgsEnd returns the index just past the '>' closing the type
// argument list opened at toks[i], or -1 when the tokens cannot form one.
func (p *parser) genericArgsEnd(i int) int {
	depth := 0
	for j := i; j < len(p.toks); j++ {
		t := p.toks[j]
		switch {
		case isTok(t, "<"):
			depth++
		case isTok(t, ">"):
			depth--
			if depth == 0 {
				return j + 1
			}
		case t.Kind == Ident && (!reserved[t.Text] || predefined[t.Text]):
		case t.Kind == Punct && typeArgPunct[t.Text]:
		default:
			return -1
		}
	}
	return -1
}

var typeArgPunct = setOf(",", ".", "::", "?", "[", "]", "(", ")", "*")

// genericFollowers may follow a type argument list inside an expression.
var genericFollowers = setOf("(", ")", "]", "}", ":", ";", ",", ".", "?", "==", "!=", "|", "^", "&&", "||", "&", "[", ">")

// parseExpr consumes an expression up to a top-level ';', closing bracket or,
// when stopComma is set, ','. It returns nil when nothing was consumed.
func (p *parser) parseExpr(stopComma bool) syntax.Node {
	start := p.start()
	from := p.pos
	for !p.eof() {
		t := p.peek()
		if isTok(t, ";") || isTok(t, ")") || isTok(t, "]") || isTok(t, "}") || (stopComma && isTok(t, ",")) {
			break
		}
		if t.Kind == Ident && isTok(p.at(1), "<") {
			if end := p.genericArgsEnd(p.pos + 1); end > 0 && (p.toks[end].Kind == EOF || genericFollowers[p.toks[end].Text]) {
				p.pos = end
				continue
			}
		}
		p.skipOne()
	}
	if p.pos == from {
		return nil
	}
	return p.node("expression", start)
}

// skipOne consumes a token, or a whole bracketed group.
func (p *parser) skipOne() {
	if p.is("(") || p.is("[") || p.is("{") {
		p.skipBalanced()
		return
	}
	p.next()
}

// skipBalanced consumes a bracketed group starting at the current token.
func (p *parser) skipBalanced() {
	depth := 0
	for !p.eof() {
		t := p.next()
		switch {
		case isTok(t, "("), isTok(t, "["), isTok(t, "{"):
			depth++
		case isTok(t, ")"), isTok(t, "]"), isTok(t, "}"):
			depth--
		}
		if depth <= 0 {
			return
		}
	}
}

func (p *parser) skipParens() {
	if p.is("(") {
		p.skipBalanced()
	}
}

// skipTo consumes tokens through the next top-level text, stopping early
// before a closing bracket.
func (p *parser) skipTo(text string) {
	for !p.eof() {
		switch {
		case p.is(text):
			p.next()
			return
		case p.is(")"), p.is("]"), p.is("}"):
			return
		default:
			p.skipOne()
		}
	}
}

// skipBody consumes a block, an arrow body or a ';'.
func (p *parser) skipBody() {
	p.parseConstraints()
	switch {
	case p.is("{"):
		p.skipBalanced()
	case p.accept("=>"):
		p.parseExpr(false)
		p.accept(";")
	default:
		p.accept(";")
	}
}
