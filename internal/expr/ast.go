// Package expr parses the small expression sublanguage resolved by the
// evaluator: literals, identifiers, calls, concatenation and interpolated
// templates. Everything outside that grammar is kept as opaque text.
package expr

import "strings"

// Node is a parsed expression.
type Node interface {
	// Text returns the source text of the node, trimmed.
	Text() string
	exprNode()
}

// Blank is an empty or whitespace-only expression.
type Blank struct{}

// Str is a regular ("..."), verbatim (@"...") or raw ("""...""") string
// literal, delimiters included.
type Str struct {
	Raw string
}

// Number is a digit sequence, optionally with a fractional part.
type Number struct {
	Raw    string
	Double bool
}

// Ident is a bare identifier. true/false are parsed as identifiers too; the
// evaluator decides between a binding and the boolean literal.
type Ident struct {
	Name string
}

// Member is a qualified name such as Settings.Host.
type Member struct {
	Recv string
	Name string
}

// Call is name(args) or Recv.name(args).
type Call struct {
	Callee Node // *Ident or *Member
	Args   []Node
	Raw    string
}

// Concat is a chain of operands joined by top-level '+'.
type Concat struct {
	Operands []Node
	Raw      string
}

// Interp is an interpolated template $"...".
type Interp struct {
	Parts []Part
	Raw   string
}

// Part is either literal template text or an embedded hole. Lit is written
// the way it would appear inside a regular "..." literal, so verbatim
// templates have their backslashes, quotes and line breaks escaped.
type Part struct {
	Lit  string
	Hole Node // nil for literal text
}

// Paren is a parenthesized expression.
type Paren struct {
	Inner Node
	Raw   string
}

// Opaque is balanced text outside the grammar.
type Opaque struct {
	Raw string
}

// Malformed is text with unbalanced quotes, parentheses or interpolation braces.
type Malformed struct {
	Raw    string
	Reason string
}

func (*Blank) Text() string      { return "" }
func (n *Str) Text() string      { return n.Raw }
func (n *Number) Text() string   { return n.Raw }
func (n *Ident) Text() string    { return n.Name }
func (n *Member) Text() string   { return n.Recv + "." + n.Name }
func (n *Call) Text() string     { return n.Raw }
func (n *Concat) Text() string   { return n.Raw }
func (n *Interp) Text() string   { return n.Raw }
func (n *Paren) Text() string    { return n.Raw }
func (n *Opaque) Text() string   { return n.Raw }
func (n *Malformed) Text() string { return n.Raw }

func (*Blank) exprNode()     {}
func (*Str) exprNode()       {}
func (*Number) exprNode()    {}
func (*Ident) exprNode()     {}
func (*Member) exprNode()    {}
func (*Call) exprNode()      {}
func (*Concat) exprNode()    {}
func (*Interp) exprNode()    {}
func (*Paren) exprNode()     {}
func (*Opaque) exprNode()    {}
func (*Malformed) exprNode() {}

// CalleeName returns the callee as written, e.g. "Greet" or "Paths.Join".
func (n *Call) CalleeName() string {
	return n.Callee.Text()
}

// Signature renders the call as name(arg1,...,argN) with trimmed argument texts.
func (n *Call) Signature() string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.Text()
	}
	return n.CalleeName() + "(" + strings.Join(args, ",") + ")"
}
