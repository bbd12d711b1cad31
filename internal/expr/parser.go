package expr

import (
	"strings"
)

// MaxNesting bounds how deeply templates, parentheses and call arguments may
// nest before the text is reported as malformed.
const MaxNesting = 128

var opaqueKeywords = map[string]bool{
	"null":    true,
	"this":    true,
	"base":    true,
	"default": true,
	"new":     true,
}

// Parse parses an expression. It never fails: text outside the grammar becomes
// *Opaque and unbalanced text becomes *Malformed.
func Parse(src string) Node {
	return parse(src, 0)
}

func parse(src string, level int) Node {
	s := strings.TrimSpace(src)
	if s == "" {
		return &Blank{}
	}
	if level > MaxNesting {
		return &Malformed{Raw: s, Reason: "expression nested too deeply"}
	}

	parts, err := splitTop(s, '+')
	if err != nil {
		return &Malformed{Raw: s, Reason: err.Error()}
	}
	if len(parts) == 1 {
		return operand(s, level+1)
	}

	operands := make([]Node, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			// unary plus or a dangling operator
			return &Opaque{Raw: s}
		}
		operands = append(operands, operand(part, level+1))
	}
	return &Concat{Operands: operands, Raw: s}
}

// operand parses s as a single operand; s is trimmed, non-empty and balanced.
func operand(s string, level int) Node {
	if k, _ := literalAt(s, 0); k != litNone {
		end := skipLiteral(s, 0)
		if end < 0 {
			return &Malformed{Raw: s, Reason: errUnterminated.Error()}
		}
		if end != len(s) {
			return &Opaque{Raw: s}
		}
		switch k {
		case litInterp, litInterpVerbatim:
			return interp(s, k, level)
		case litChar, litInterpRaw:
			return &Opaque{Raw: s}
		default:
			return &Str{Raw: s}
		}
	}

	if s[0] == '(' {
		if closeIndex(s, 0) == len(s)-1 {
			return &Paren{Inner: parse(s[1:len(s)-1], level+1), Raw: s}
		}
		return &Opaque{Raw: s}
	}

	if isDigit(s[0]) {
		if n, ok := number(s); ok {
			return n
		}
		return &Opaque{Raw: s}
	}

	callee, rest := qualifiedName(s)
	if callee == nil {
		return &Opaque{Raw: s}
	}
	if rest == "" {
		if id, ok := callee.(*Ident); ok && opaqueKeywords[id.Name] {
			return &Opaque{Raw: s}
		}
		return callee
	}

	rest = strings.TrimLeft(rest, " \t")
	if rest == "" || rest[0] != '(' || closeIndex(rest, 0) != len(rest)-1 {
		return &Opaque{Raw: s}
	}
	args, ok := arguments(rest[1:len(rest)-1], level)
	if !ok {
		return &Opaque{Raw: s}
	}
	return &Call{Callee: callee, Args: args, Raw: s}
}

// arguments splits a call's argument text on top-level commas.
func arguments(text string, level int) ([]Node, bool) {
	if strings.TrimSpace(text) == "" {
		return nil, true
	}
	parts, err := splitTop(text, ',')
	if err != nil {
		return nil, false
	}
	args := make([]Node, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			return nil, false
		}
		args = append(args, parse(part, level+1))
	}
	return args, true
}

func interp(s string, k litKind, level int) Node {
	_, n := literalAt(s, 0)
	body := s[n : len(s)-1]
	verbatim := k == litInterpVerbatim

	var parts []Part
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			parts = append(parts, Part{Lit: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(body); {
		c := body[i]
		var next byte
		if i+1 < len(body) {
			next = body[i+1]
		}
		switch {
		case !verbatim && c == '\\' && i+1 < len(body):
			lit.WriteString(body[i : i+2])
			i += 2
		case verbatim && c == '"' && next == '"':
			lit.WriteString(`\"`)
			i += 2
		case verbatim && c == '\\':
			lit.WriteString(`\\`)
			i++
		case verbatim && c == '\n':
			lit.WriteString(`\n`)
			i++
		case verbatim && c == '\r':
			lit.WriteString(`\r`)
			i++
		case c == '{' && next == '{':
			lit.WriteByte('{')
			i += 2
		case c == '}' && next == '}':
			lit.WriteByte('}')
			i += 2
		case c == '{':
			end := holeEnd(body, i+1)
			if end < 0 {
				return &Malformed{Raw: s, Reason: "unterminated interpolation hole"}
			}
			hole := body[i+1 : end]
			hole = hole[:formatCut(hole)]
			if strings.TrimSpace(hole) == "" {
				return &Malformed{Raw: s, Reason: "empty interpolation hole"}
			}
			flush()
			parts = append(parts, Part{Hole: parse(hole, level+1)})
			i = end + 1
		case c == '}':
			return &Malformed{Raw: s, Reason: "unmatched '}' in interpolation"}
		default:
			lit.WriteByte(c)
			i++
		}
	}
	flush()
	return &Interp{Parts: parts, Raw: s}
}

func number(s string) (*Number, bool) {
	dot := -1
	for i := 0; i < len(s); i++ {
		switch {
		case isDigit(s[i]):
		case s[i] == '.' && dot < 0 && i > 0 && i < len(s)-1:
			dot = i
		default:
			return nil, false
		}
	}
	return &Number{Raw: s, Double: dot >= 0}, true
}

// qualifiedName scans Ident or Ident.Ident at the start of s and returns the
// remaining text.
func qualifiedName(s string) (Node, string) {
	first := identLen(s)
	if first == 0 {
		return nil, s
	}
	name := s[:first]
	rest := s[first:]
	if len(rest) > 1 && rest[0] == '.' {
		second := identLen(rest[1:])
		if second == 0 {
			return nil, s
		}
		member := rest[1 : 1+second]
		rest = rest[1+second:]
		if len(rest) > 0 && rest[0] == '.' {
			return nil, s
		}
		return &Member{Recv: name, Name: member}, rest
	}
	return &Ident{Name: name}, rest
}

func identLen(s string) int {
	if s == "" || !isIdentStart(s[0]) {
		return 0
	}
	i := 1
	for i < len(s) && isIdentContinue(s[i]) {
		i++
	}
	return i
}

// IsIdent reports whether s is a bare identifier.
func IsIdent(s string) bool {
	return s != "" && identLen(s) == len(s)
}

func isIdentStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isIdentContinue(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
