package stringutils

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	matchSeparators = regexp.MustCompile(`[^A-Za-z0-9]+`)
	matchAllCap     = regexp.MustCompile("([a-z0-9])([A-Z])")
)

// ToPascalCase converts snake_case, kebab-case, dotted or camelCase names to
// PascalCase, preserving existing capitalization inside words.
// Example: "share_link" -> "ShareLink", "endpointUrl" -> "EndpointUrl", "API" -> "API"
func ToPascalCase(s string) string {
	var sb strings.Builder
	for _, word := range matchSeparators.Split(s, -1) {
		if word == "" {
			continue
		}
		sb.WriteString(strings.ToUpper(word[:1]))
		sb.WriteString(word[1:])
	}
	return sb.String()
}

// ToSnakeCase converts PascalCase or camelCase to snake_case.
// Example: "EndpointWithShareLink" -> "endpoint_with_share_link"
func ToSnakeCase(s string) string {
	if s == "" {
		return ""
	}
	snake := matchAllCap.ReplaceAllString(s, "${1}_${2}")
	snake = matchSeparators.ReplaceAllString(snake, "_")
	return strings.Trim(strings.ToLower(snake), "_")
}

// GoIdentifier joins parts into an exported Go identifier.
// A leading digit is prefixed with "X" and an empty result becomes "X".
// Example: ("Admin_Share", "Endpoint") -> "AdminShareEndpoint"
func GoIdentifier(parts ...string) string {
	var sb strings.Builder
	for _, p := range parts {
		sb.WriteString(ToPascalCase(p))
	}
	id := sb.String()
	if id == "" {
		return "X"
	}
	if unicode.IsDigit(rune(id[0])) {
		id = "X" + id
	}
	return id
}
