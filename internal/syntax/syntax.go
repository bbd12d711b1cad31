// Package syntax is the contract between the declaration loader and a
// syntax-tree provider: a generic node abstraction plus a configurable mapping
// from the loader's logical roles to the provider's kind tags.
package syntax

import (
	"context"
	"fmt"

	"github.com/podhmo/cslit/internal/diag"
)

// Span is a byte range in the source, End exclusive.
type Span = diag.Span

// Node is a node of a concrete syntax tree.
type Node interface {
	Kind() string
	Children() []Node
	Span() Span
	// Text returns the source text covered by the node.
	Text() string
}

// Provider builds a syntax tree from source text.
type Provider interface {
	Parse(ctx context.Context, src []byte) (Node, error)
}

// ParseError is returned when a provider cannot build a tree at all.
type ParseError struct {
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Offset, e.Msg)
}

// Basic is a plain Node implementation for providers.
type Basic struct {
	kind     string
	span     Span
	src      []byte
	children []Node
}

// NewNode creates a node of kind covering span of src.
func NewNode(kind string, span Span, src []byte, children ...Node) *Basic {
	return &Basic{kind: kind, span: span, src: src, children: children}
}

func (n *Basic) Kind() string      { return n.kind }
func (n *Basic) Children() []Node  { return n.children }
func (n *Basic) Span() Span        { return n.span }
func (n *Basic) Append(c ...Node)  { n.children = append(n.children, c...) }
func (n *Basic) SetEnd(end uint32) { n.span.End = end }

func (n *Basic) Text() string {
	if int(n.span.End) > len(n.src) || n.span.Start > n.span.End {
		return ""
	}
	return string(n.src[n.span.Start:n.span.End])
}

// Walk calls fn for n and its descendants in depth-first pre-order.
// Returning false from fn skips the node's children.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children() {
		Walk(c, fn)
	}
}
