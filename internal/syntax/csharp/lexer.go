package csharp

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/podhmo/cslit/internal/syntax"
)

// TokenKind classifies a token.
type TokenKind uint8

const (
	EOF TokenKind = iota
	Ident
	Number
	String
	Char
	Punct
)

func (k TokenKind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Ident:
		return "Ident"
	case Number:
		return "Number"
	case String:
		return "String"
	case Char:
		return "Char"
	case Punct:
		return "Punct"
	}
	return fmt.Sprintf("TokenKind(%d)", k)
}

// Token is a lexeme. Keywords are Ident tokens.
type Token struct {
	Kind TokenKind
	Text string
	Span syntax.Span
}

// cursor is a position in the source.
type cursor struct {
	src   []byte
	off   uint32
	limit uint32
}

func newCursor(src []byte) (cursor, error) {
	limit, err := safecast.Conv[uint32](len(src))
	if err != nil {
		return cursor{}, fmt.Errorf("source too large: %w", err)
	}
	return cursor{src: src, limit: limit}, nil
}

func (c *cursor) eof() bool { return c.off >= c.limit }

func (c *cursor) peek() byte {
	if c.eof() {
		return 0
	}
	return c.src[c.off]
}

// peekAt reads the byte n positions ahead, or 0.
func (c *cursor) peekAt(n uint32) byte {
	if c.off+n >= c.limit {
		return 0
	}
	return c.src[c.off+n]
}

func (c *cursor) bump() byte {
	if c.eof() {
		return 0
	}
	b := c.src[c.off]
	c.off++
	return b
}

// atLineStart reports whether only blanks precede the cursor on its line.
func (c *cursor) atLineStart() bool {
	for i := int(c.off) - 1; i >= 0; i-- {
		switch c.src[i] {
		case ' ', '\t', '\r':
			continue
		case '\n':
			return true
		default:
			return false
		}
	}
	return true
}

func (c *cursor) errorf(off uint32, format string, args ...any) error {
	return &syntax.ParseError{Offset: int(off), Msg: fmt.Sprintf(format, args...)}
}

// Tokenize splits src into tokens, dropping comments and preprocessor lines.
// The result always ends with an EOF token. Unterminated comments and
// literals are reported as *syntax.ParseError.
func Tokenize(src []byte) ([]Token, error) {
	c, err := newCursor(src)
	if err != nil {
		return nil, err
	}
	var toks []Token
	for {
		if err := c.skipTrivia(); err != nil {
			return nil, err
		}
		start := c.off
		if c.eof() {
			return append(toks, Token{Kind: EOF, Span: syntax.Span{Start: start, End: start}}), nil
		}
		kind, err := c.scanToken()
		if err != nil {
			return nil, err
		}
		toks = append(toks, Token{Kind: kind, Text: string(src[start:c.off]), Span: syntax.Span{Start: start, End: c.off}})
	}
}

func (c *cursor) skipTrivia() error {
	for !c.eof() {
		b := c.peek()
		switch {
		case b == ' ' || b == '\t' || b == '\r' || b == '\n' || b == '\f' || b == '\v':
			c.bump()
		case b == '/' && c.peekAt(1) == '/':
			c.skipLine()
		case b == '/' && c.peekAt(1) == '*':
			start := c.off
			c.off += 2
			for {
				if c.eof() {
					return c.errorf(start, "unterminated comment")
				}
				if c.peek() == '*' && c.peekAt(1) == '/' {
					c.off += 2
					break
				}
				c.bump()
			}
		case b == '#' && c.atLineStart():
			c.skipLine()
		case b == 0xEF && c.peekAt(1) == 0xBB && c.peekAt(2) == 0xBF:
			c.off += 3 // BOM
		default:
			return nil
		}
	}
	return nil
}

// skipEscape consumes a backslash and the byte it escapes.
func (c *cursor) skipEscape() {
	c.bump()
	c.bump()
}

func (c *cursor) skipLine() {
	for !c.eof() && c.peek() != '\n' {
		c.bump()
	}
}

func (c *cursor) scanToken() (TokenKind, error) {
	b := c.peek()
	switch {
	case isStringStart(c):
		return String, c.scanString()
	case b == '@' && isIdentStart(c.peekAt(1)):
		c.bump()
		c.scanIdent()
		return Ident, nil
	case isIdentStart(b):
		c.scanIdent()
		return Ident, nil
	case isDigit(b) || (b == '.' && isDigit(c.peekAt(1))):
		c.scanNumber()
		return Number, nil
	case b == '\'':
		return Char, c.scanChar()
	}
	c.scanPunct()
	return Punct, nil
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b >= 0x80
}

func isIdentPart(b byte) bool { return isIdentStart(b) || isDigit(b) }

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func (c *cursor) scanIdent() {
	for !c.eof() && isIdentPart(c.peek()) {
		c.bump()
	}
}

func (c *cursor) scanNumber() {
	for {
		for !c.eof() && (isIdentPart(c.peek())) {
			prev := c.bump()
			if (prev == 'e' || prev == 'E') && (c.peek() == '+' || c.peek() == '-') && isDigit(c.peekAt(1)) {
				c.bump()
			}
		}
		if c.peek() == '.' && isDigit(c.peekAt(1)) {
			c.bump()
			continue
		}
		return
	}
}

var puncts = []string{
	"??=", "<<=",
	"=>", "==", "!=", "<=", "&&", "||", "??", "?.", "::", "++", "--", "->",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<",
}

// scanPunct consumes an operator or a single byte. Tokens starting with '>'
// are never merged so that nested generic argument lists close one at a time.
func (c *cursor) scanPunct() {
	rest := c.src[c.off:]
	for _, p := range puncts {
		if len(rest) >= len(p) && string(rest[:len(p)]) == p {
			c.off += uint32(len(p))
			return
		}
	}
	c.bump()
}

func (c *cursor) scanChar() error {
	start := c.off
	c.bump() // '
	for {
		if c.eof() || c.peek() == '\n' {
			return c.errorf(start, "unterminated character literal")
		}
		switch c.peek() {
		case '\\':
			c.skipEscape()
		case '\'':
			c.bump()
			return nil
		default:
			c.bump()
		}
	}
}

// isStringStart reports whether a string literal starts at the cursor:
// "...", @"...", $"...", $@"...", @$"...", $$"""...""" and friends.
func isStringStart(c *cursor) bool {
	i := uint32(0)
	for c.peekAt(i) == '$' {
		i++
	}
	if c.peekAt(i) == '@' {
		i++
		for c.peekAt(i) == '$' {
			i++
		}
	}
	return c.peekAt(i) == '"'
}

func (c *cursor) scanString() error {
	start := c.off
	dollars, verbatim := 0, false
	for {
		switch c.peek() {
		case '$':
			dollars++
			c.bump()
			continue
		case '@':
			verbatim = true
			c.bump()
			continue
		}
		break
	}

	quotes := uint32(0)
	for c.peekAt(quotes) == '"' {
		quotes++
	}
	if quotes >= 3 {
		return c.scanRaw(start, quotes)
	}
	if quotes == 2 && !verbatim {
		c.off += 2 // ""
		return nil
	}

	c.bump() // opening quote
	for {
		if c.eof() {
			return c.errorf(start, "unterminated string literal")
		}
		switch b := c.peek(); {
		case b == '"':
			if verbatim && c.peekAt(1) == '"' {
				c.off += 2
				continue
			}
			c.bump()
			return nil
		case b == '\\' && !verbatim:
			c.skipEscape()
		case b == '\n' && !verbatim:
			return c.errorf(start, "unterminated string literal")
		case b == '{' && dollars > 0:
			if c.peekAt(1) == '{' {
				c.off += 2
				continue
			}
			if err := c.scanHole(start); err != nil {
				return err
			}
		default:
			c.bump()
		}
	}
}

// scanHole consumes an interpolation hole, including nested literals.
func (c *cursor) scanHole(litStart uint32) error {
	depth := 0
	for {
		if c.eof() {
			return c.errorf(litStart, "unterminated interpolation hole")
		}
		switch b := c.peek(); {
		case b == '{':
			depth++
			c.bump()
		case b == '}':
			depth--
			c.bump()
			if depth == 0 {
				return nil
			}
		case isStringStart(c):
			if err := c.scanString(); err != nil {
				return err
			}
		case b == '\'':
			if err := c.scanChar(); err != nil {
				return err
			}
		default:
			c.bump()
		}
	}
}

// scanRaw consumes a raw string literal opened by n quotes.
func (c *cursor) scanRaw(start, n uint32) error {
	c.off += n
	for !c.eof() {
		if c.peek() != '"' {
			c.bump()
			continue
		}
		run := uint32(0)
		for c.peekAt(run) == '"' {
			run++
		}
		c.off += run
		if run >= n {
			return nil
		}
	}
	return c.errorf(start, "unterminated raw string literal")
}
