package codegen

import (
	"strconv"
	"strings"

	"github.com/podhmo/cslit/internal/metadata"
	"github.com/podhmo/cslit/internal/object"
)

// LiteralHandler converts a resolved value of one kind into a Go constant expression.
type LiteralHandler interface {
	// GoLiteral returns the Go expression for text and false when text
	// cannot be expressed as a constant.
	GoLiteral(text string) (string, bool)
}

// GetLiteralHandler returns the handler for the value kind, or nil for kinds
// that never become constants.
func GetLiteralHandler(v *metadata.Value) LiteralHandler {
	switch object.Kind(v.Kind) {
	case object.StringLit:
		return &StringHandler{}
	case object.IntLit:
		return &IntHandler{}
	case object.DoubleLit:
		return &DoubleHandler{}
	case object.BoolLit:
		return &BoolHandler{}
	default:
		return nil
	}
}

// StringHandler keeps regular literals whose escapes Go understands as
// written and requotes verbatim and raw literals. A literal with an escape Go
// does not know is not a Go constant.
type StringHandler struct{}

func (h *StringHandler) GoLiteral(text string) (string, bool) {
	content, ok := object.Unquote(text)
	if !ok {
		return "", false
	}
	quoted := `"` + content + `"`
	decoded, err := strconv.Unquote(quoted)
	if err != nil {
		return "", false
	}
	if quoted == text {
		return text, true
	}
	return strconv.Quote(decoded), true
}

// IntHandler drops C# integer suffixes (u, l, ul) and digit separators.
type IntHandler struct{}

func (h *IntHandler) GoLiteral(text string) (string, bool) {
	s := strings.ReplaceAll(text, "_", "")
	s = strings.TrimRight(s, "uUlL")
	if _, err := strconv.ParseInt(s, 0, 64); err != nil {
		if _, err := strconv.ParseUint(s, 0, 64); err != nil {
			return "", false
		}
	}
	return s, true
}

// DoubleHandler drops the f, d and m suffixes.
type DoubleHandler struct{}

func (h *DoubleHandler) GoLiteral(text string) (string, bool) {
	s := strings.ReplaceAll(text, "_", "")
	s = strings.TrimRight(s, "fFdDmM")
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return "", false
	}
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s, true
}

type BoolHandler struct{}

func (h *BoolHandler) GoLiteral(text string) (string, bool) {
	switch strings.ToLower(text) {
	case "true":
		return "true", true
	case "false":
		return "false", true
	}
	return "", false
}
