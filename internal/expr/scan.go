package expr

import (
	"errors"
	"strings"
)

var (
	errUnterminated = errors.New("unterminated string literal or interpolation")
	errUnbalanced   = errors.New("unbalanced parentheses or braces")
)

type litKind int

const (
	litNone litKind = iota
	litRegular
	litVerbatim
	litInterp
	litInterpVerbatim
	litChar
	litRaw       // """..."""
	litInterpRaw // $"""...""", $$"""..."""
)

// literalAt reports whether s[i:] starts a string or character literal and
// returns its kind and the length of its opening delimiter.
func literalAt(s string, i int) (litKind, int) {
	if i >= len(s) {
		return litNone, 0
	}
	switch s[i] {
	case '"':
		if q := quoteRun(s, i); q >= 3 {
			return litRaw, q
		}
		return litRegular, 1
	case '\'':
		return litChar, 1
	case '@':
		if i+1 < len(s) && s[i+1] == '"' {
			return litVerbatim, 2
		}
		if i+2 < len(s) && s[i+1] == '$' && s[i+2] == '"' {
			return litInterpVerbatim, 3
		}
	case '$':
		d := i
		for d < len(s) && s[d] == '$' {
			d++
		}
		if q := quoteRun(s, d); q >= 3 {
			return litInterpRaw, d - i + q
		}
		if d > i+1 {
			return litNone, 0
		}
		if i+1 < len(s) && s[i+1] == '"' {
			return litInterp, 2
		}
		if i+2 < len(s) && s[i+1] == '@' && s[i+2] == '"' {
			return litInterpVerbatim, 3
		}
	}
	return litNone, 0
}

// quoteRun counts the '"' bytes starting at i.
func quoteRun(s string, i int) int {
	n := 0
	for i+n < len(s) && s[i+n] == '"' {
		n++
	}
	return n
}

// skipLiteral returns the index just after the literal starting at i, or -1
// when the literal is unterminated.
func skipLiteral(s string, i int) int {
	kind, n := literalAt(s, i)
	j := i + n
	switch kind {
	case litRegular, litChar:
		quote := s[i]
		for j < len(s) {
			switch s[j] {
			case '\\':
				j += 2
				continue
			case quote:
				return j + 1
			case '\n':
				return -1
			}
			j++
		}
		return -1
	case litRaw, litInterpRaw:
		// the closing delimiter repeats the opening quote run
		q := 0
		for k := j - 1; k >= i && s[k] == '"'; k-- {
			q++
		}
		end := strings.Index(s[j:], strings.Repeat(`"`, q))
		if end < 0 {
			return -1
		}
		return j + end + q
	case litVerbatim:
		for j < len(s) {
			if s[j] == '"' {
				if j+1 < len(s) && s[j+1] == '"' {
					j += 2
					continue
				}
				return j + 1
			}
			j++
		}
		return -1
	case litInterp, litInterpVerbatim:
		verbatim := kind == litInterpVerbatim
		for j < len(s) {
			c := s[j]
			switch {
			case !verbatim && c == '\\':
				j += 2
			case c == '"':
				if verbatim && j+1 < len(s) && s[j+1] == '"' {
					j += 2
					continue
				}
				return j + 1
			case c == '{':
				if j+1 < len(s) && s[j+1] == '{' {
					j += 2
					continue
				}
				end := holeEnd(s, j+1)
				if end < 0 {
					return -1
				}
				j = end + 1
			case c == '}':
				if j+1 < len(s) && s[j+1] == '}' {
					j += 2
					continue
				}
				return -1
			default:
				j++
			}
		}
		return -1
	}
	return i
}

// holeEnd returns the index of the '}' closing an interpolation hole whose
// content starts at i. Holes do not nest; only string literals inside the
// hole are skipped.
func holeEnd(s string, i int) int {
	for j := i; j < len(s); {
		if k, _ := literalAt(s, j); k != litNone {
			end := skipLiteral(s, j)
			if end < 0 {
				return -1
			}
			j = end
			continue
		}
		if s[j] == '}' {
			return j
		}
		j++
	}
	return -1
}

// splitTop splits s on sep occurring outside literals and outside any
// (...), [...] or {...} group. For '+', the operators ++ and += are never
// split points.
func splitTop(s string, sep byte) ([]string, error) {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); {
		if k, _ := literalAt(s, i); k != litNone {
			end := skipLiteral(s, i)
			if end < 0 {
				return nil, errUnterminated
			}
			i = end
			continue
		}
		c := s[i]
		switch c {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth < 0 {
				return nil, errUnbalanced
			}
		default:
			if c == sep && depth == 0 && isSplitPoint(s, i) {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
		i++
	}
	if depth != 0 {
		return nil, errUnbalanced
	}
	return append(parts, s[start:]), nil
}

func isSplitPoint(s string, i int) bool {
	if s[i] != '+' {
		return true
	}
	if i+1 < len(s) && (s[i+1] == '+' || s[i+1] == '=') {
		return false
	}
	if i > 0 && s[i-1] == '+' {
		return false
	}
	return true
}

// closeIndex returns the index of the bracket closing the one at open, or -1.
func closeIndex(s string, open int) int {
	depth := 0
	for i := open; i < len(s); {
		if k, _ := literalAt(s, i); k != litNone {
			end := skipLiteral(s, i)
			if end < 0 {
				return -1
			}
			i = end
			continue
		}
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				return i
			}
		}
		i++
	}
	return -1
}

// formatCut returns the index of a top-level alignment (',') or format (':')
// separator inside an interpolation hole, or len(s).
func formatCut(s string) int {
	depth := 0
	for i := 0; i < len(s); {
		if k, _ := literalAt(s, i); k != litNone {
			end := skipLiteral(s, i)
			if end < 0 {
				return len(s)
			}
			i = end
			continue
		}
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',', ':':
			if depth == 0 {
				return i
			}
		}
		i++
	}
	return len(s)
}
