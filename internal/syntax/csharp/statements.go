package csharp

import (
	"github.com/podhmo/cslit/internal/syntax"
)

func (p *parser) parseBlock() syntax.Node {
	start := p.start()
	p.next() // {
	var stmts []syntax.Node
	for !p.is("}") && !p.eof() {
		before := p.pos
		if s := p.parseStatement(); s != nil {
			stmts = append(stmts, s)
		}
		if p.pos == before {
			p.next()
		}
	}
	p.accept("}")
	return p.node("block", start, stmts...)
}

// parseStatement parses one statement. Control-flow statements keep their
// nested statements as children; their headers are skipped.
func (p *parser) parseStatement() syntax.Node {
	start := p.start()
	t := p.peek()
	switch {
	case isTok(t, "{"):
		return p.parseBlock()
	case isTok(t, ";"):
		p.next()
		return p.node("empty_statement", start)
	case t.Kind != Ident:
		return p.parseExpressionStatement(start)
	}

	switch t.Text {
	case "if":
		p.next()
		p.skipParens()
		children := nonNil(p.parseStatement())
		if p.accept("else") {
			children = append(children, nonNil(p.parseStatement())...)
		}
		return p.node("if_statement", start, children...)
	case "while", "for", "foreach", "lock", "fixed":
		p.next()
		p.skipParens()
		return p.node(t.Text+"_statement", start, nonNil(p.parseStatement())...)
	case "do":
		p.next()
		body := p.parseStatement()
		if p.accept("while") {
			p.skipParens()
		}
		p.accept(";")
		return p.node("do_statement", start, nonNil(body)...)
	case "switch":
		p.next()
		p.skipParens()
		if !p.is("{") {
			return p.node("switch_statement", start)
		}
		return p.node("switch_statement", start, p.parseSwitchBody())
	case "try":
		p.next()
		var blocks []syntax.Node
		if p.is("{") {
			blocks = append(blocks, p.parseBlock())
		}
		for p.accept("catch") {
			p.skipParens()
			if p.accept("when") {
				p.skipParens()
			}
			if p.is("{") {
				blocks = append(blocks, p.parseBlock())
			}
		}
		if p.accept("finally") && p.is("{") {
			blocks = append(blocks, p.parseBlock())
		}
		return p.node("try_statement", start, blocks...)
	case "checked", "unchecked", "unsafe":
		if isTok(p.at(1), "{") {
			p.next()
			return p.node(t.Text+"_statement", start, p.parseBlock())
		}
	case "using":
		if isTok(p.at(1), "(") {
			p.next()
			p.skipParens()
			return p.node("using_statement", start, nonNil(p.parseStatement())...)
		}
	case "return", "throw", "break", "continue", "goto", "yield":
		p.skipTo(";")
		return p.node(t.Text+"_statement", start)
	case "else", "catch", "finally":
		p.next()
		return nil
	}

	if d := p.parseDeclarationStatement(start); d != nil {
		return d
	}
	return p.parseExpressionStatement(start)
}

func (p *parser) parseSwitchBody() syntax.Node {
	start := p.start()
	p.next() // {
	var stmts []syntax.Node
	for !p.is("}") && !p.eof() {
		before := p.pos
		if p.is("case") || (p.is("default") && isTok(p.at(1), ":")) {
			p.skipTo(":")
		} else if s := p.parseStatement(); s != nil {
			stmts = append(stmts, s)
		}
		if p.pos == before {
			p.next()
		}
	}
	p.accept("}")
	return p.node("switch_body", start, stmts...)
}

// parseDeclarationStatement parses a local declaration or a local function,
// restoring the position and returning nil when the statement is neither.
func (p *parser) parseDeclarationStatement(start uint32) syntax.Node {
	save := p.pos
	var mods []syntax.Node
	for {
		t := p.peek()
		if t.Kind == Ident && (memberModifiers[t.Text] ||
			(t.Text == "using" && !isTok(p.at(1), "(")) ||
			(contextualModifiers[t.Text] && p.at(1).Kind == Ident)) {
			mods = append(mods, p.leaf("modifier", p.next()))
			continue
		}
		break
	}

	typ, ok := p.parseType()
	if !ok || !isName(p.peek()) || typ.Text() == "await" {
		p.pos = save
		return nil
	}
	name := p.leaf("identifier", p.next())

	switch {
	case p.is("(") || p.is("<"):
		if fn := p.parseLocalFunctionRest(start, mods, typ, name); fn != nil {
			return fn
		}
	case p.is("=") || p.is(";") || p.is(","):
		decl := p.parseVariableDeclaration(typ, name)
		p.accept(";")
		return p.node("local_declaration_statement", start, append(mods, decl)...)
	}
	p.pos = save
	return nil
}

func (p *parser) parseLocalFunctionRest(start uint32, mods []syntax.Node, typ, name syntax.Node) syntax.Node {
	children := append(mods, typ, name)
	if p.is("<") {
		tp := p.parseTypeParams()
		if tp == nil {
			return nil
		}
		children = append(children, tp)
	}
	if !p.is("(") {
		return nil
	}
	children = append(children, p.parseParamList())
	children = append(children, p.parseConstraints()...)
	switch {
	case p.is("{"):
		children = append(children, p.parseBlock())
	case p.is("=>"):
		children = append(children, p.parseArrow())
		p.accept(";")
	default:
		return nil
	}
	return p.node("local_function_statement", start, children...)
}

// parseExpressionStatement wraps the expression in an assignment_expression
// when it is a simple assignment to a name.
func (p *parser) parseExpressionStatement(start uint32) syntax.Node {
	from := p.pos
	e := p.parseExpr(false)
	if e == nil {
		if p.is(")") || p.is("]") {
			p.next()
		}
		return nil
	}
	to := p.pos
	p.accept(";")
	if asg := p.assignment(p.toks[from:to]); asg != nil {
		return p.node("expression_statement", start, asg)
	}
	return p.node("expression_statement", start, e)
}

func (p *parser) assignment(toks []Token) syntax.Node {
	eq, depth := -1, 0
	for i, t := range toks {
		switch {
		case isTok(t, "("), isTok(t, "["), isTok(t, "{"):
			depth++
		case isTok(t, ")"), isTok(t, "]"), isTok(t, "}"):
			depth--
		case depth == 0 && isTok(t, "="):
			eq = i
		}
		if eq >= 0 {
			break
		}
	}
	if eq <= 0 || eq == len(toks)-1 {
		return nil
	}

	var target Token
	switch lhs := toks[:eq]; {
	case len(lhs) == 1 && isName(lhs[0]):
		target = lhs[0]
	case len(lhs) == 3 && isTok(lhs[0], "this") && isTok(lhs[1], ".") && isName(lhs[2]):
		target = lhs[2]
	default:
		return nil
	}
	rhs := toks[eq+1:]
	value := syntax.NewNode("expression", syntax.Span{Start: rhs[0].Span.Start, End: rhs[len(rhs)-1].Span.End}, p.src)
	span := syntax.Span{Start: toks[0].Span.Start, End: value.Span().End}
	return syntax.NewNode("assignment_expression", span, p.src, p.leaf("identifier", target), value)
}
