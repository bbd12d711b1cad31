// Package object holds the values produced by static resolution, the
// environments they are bound in, and the method and class descriptors
// captured while loading a source file.
package object

import (
	"fmt"
	"strings"
)

// Kind tags a resolved Value.
type Kind string

const (
	StringLit Kind = "STRING"
	IntLit    Kind = "INT"
	BoolLit   Kind = "BOOL"
	DoubleLit Kind = "DOUBLE"
	MethodRef Kind = "METHOD"
	ClassRef  Kind = "CLASS"
	Unknown   Kind = "UNKNOWN"
)

// Value is the result of resolving an expression.
//
// Literal kinds carry their source-level text in Text: strings keep their
// quotes ("abc"), numbers and booleans are bare. MethodRef and ClassRef carry
// the descriptor instead and never produce literal text.
type Value struct {
	Kind   Kind
	Text   string
	Method *Method
	Class  *Class
}

// String returns a StringLit for already quoted text.
func String(quoted string) Value { return Value{Kind: StringLit, Text: quoted} }

// Quote wraps raw text in quotes and returns it as a StringLit.
func Quote(raw string) Value { return Value{Kind: StringLit, Text: `"` + raw + `"`} }

func Int(text string) Value    { return Value{Kind: IntLit, Text: text} }
func Double(text string) Value { return Value{Kind: DoubleLit, Text: text} }

// Bool normalizes text to lowercase.
func Bool(text string) Value { return Value{Kind: BoolLit, Text: strings.ToLower(text)} }

func Unresolved(text string) Value { return Value{Kind: Unknown, Text: text} }

// UnresolvedQuoted is the placeholder used for unresolved references and calls.
func UnresolvedQuoted(raw string) Value { return Value{Kind: Unknown, Text: `"` + raw + `"`} }

func MethodValue(m *Method) Value { return Value{Kind: MethodRef, Method: m} }
func ClassValue(c *Class) Value   { return Value{Kind: ClassRef, Class: c} }

// IsRef reports whether the value refers to a descriptor rather than literal text.
func (v Value) IsRef() bool {
	return v.Kind == MethodRef || v.Kind == ClassRef
}

// Name returns the bare name of a MethodRef or ClassRef, and "" otherwise.
func (v Value) Name() string {
	switch v.Kind {
	case MethodRef:
		if v.Method != nil {
			return v.Method.Name
		}
	case ClassRef:
		if v.Class != nil {
			return v.Class.Name
		}
	}
	return ""
}

// IsQuoted reports whether Text is a quoted or verbatim string literal.
func (v Value) IsQuoted() bool {
	_, ok := Unquote(v.Text)
	return ok && !v.IsRef()
}

// Unquoted returns Text without its surrounding quotes, or Text itself when
// it is not quoted.
func (v Value) Unquoted() string {
	if s, ok := Unquote(v.Text); ok {
		return s
	}
	return v.Text
}

// SpliceText is the text the value contributes when used as an operand of a
// concatenation or an interpolation hole. References contribute their bare name.
func (v Value) SpliceText() string {
	if v.IsRef() {
		return v.Name()
	}
	return v.Unquoted()
}

func (v Value) String() string {
	switch v.Kind {
	case MethodRef:
		return fmt.Sprintf("<method %s>", v.Name())
	case ClassRef:
		return fmt.Sprintf("<class %s>", v.Name())
	default:
		return v.Text
	}
}

// Unquote strips the delimiters of a "...", @"..." or """...""" literal and
// returns the content as it would be written inside a regular "..." literal,
// so Quote(content) denotes the same string. Verbatim and raw content is
// re-escaped: "" becomes \", a backslash becomes \\ and line breaks become \n.
func Unquote(text string) (string, bool) {
	switch {
	case strings.HasPrefix(text, `"""`):
		content, ok := rawContent(text)
		if !ok {
			return text, false
		}
		return escapeRegular(content), true
	case len(text) >= 3 && text[0] == '@' && text[1] == '"' && text[len(text)-1] == '"':
		return escapeRegular(strings.ReplaceAll(text[2:len(text)-1], `""`, `"`)), true
	case len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"':
		return text[1 : len(text)-1], true
	}
	return text, false
}

var regularEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`)

func escapeRegular(s string) string {
	return regularEscaper.Replace(s)
}

// rawContent decodes a raw string literal. On a single line the content sits
// between the quote runs; otherwise the opening and closing lines are dropped
// and the closing line's indentation is removed from every content line.
func rawContent(text string) (string, bool) {
	q := 0
	for q < len(text) && text[q] == '"' {
		q++
	}
	if len(text) < 2*q || strings.Repeat(`"`, q) != text[len(text)-q:] {
		return "", false
	}
	body := text[q : len(text)-q]
	if !strings.ContainsAny(body, "\n") {
		return body, true
	}

	lines := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")
	if strings.TrimSpace(lines[0]) != "" {
		return "", false
	}
	indent := lines[len(lines)-1]
	if strings.TrimLeft(indent, " \t") != "" {
		return "", false
	}
	lines = lines[1 : len(lines)-1]
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, indent)
	}
	return strings.Join(lines, "\n"), true
}
