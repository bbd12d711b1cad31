package codegen_test

import (
	"context"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podhmo/cslit/internal/codegen"
	"github.com/podhmo/cslit/internal/evaluator"
	"github.com/podhmo/cslit/internal/metadata"
	"github.com/podhmo/cslit/internal/object"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// normalize compacts all whitespace into single spaces, so that gofmt's
// alignment does not matter when looking for snippets.
func normalize(code string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(code, " "))
}

func assertCodeContains(t *testing.T, code, snippet string) {
	t.Helper()
	if !strings.Contains(normalize(code), normalize(snippet)) {
		t.Errorf("expected generated code to contain:\n%s\n\ngot:\n%s", snippet, code)
	}
}

func reports() []*metadata.FileReport {
	return []*metadata.FileReport{
		{
			Path:   "admin.cs",
			Values: []*metadata.Value{{Name: "version", Kind: "STRING", Text: `"v2"`}},
			Classes: []*metadata.Class{
				{
					Name: "Admin_Share",
					Values: []*metadata.Value{
						{Name: "Endpoint", Kind: "STRING", Text: `"https://h/v2/admin"`},
						{Name: "Dir", Kind: "STRING", Text: `@"C:\tmp\""x"""`},
						{Name: "Port", Kind: "INT", Text: "8080UL"},
						{Name: "Ratio", Kind: "DOUBLE", Text: "2d"},
						{Name: "Enabled", Kind: "BOOL", Text: "true"},
						{Name: "Token", Kind: "UNKNOWN", Text: `"GetToken()"`},
						{Name: "Big", Kind: "INT", Text: "10 5"},
					},
				},
			},
		},
		{Path: "broken.cs", Error: "syntax error"},
		{
			Path: "other.cs",
			Classes: []*metadata.Class{
				{Name: "Admin", Values: []*metadata.Value{{Name: "ShareEndpoint", Kind: "STRING", Text: `"/x"`}}},
				{Name: "Empty", Values: []*metadata.Value{{Name: "obj", Kind: "UNKNOWN", Text: "null"}}},
			},
		},
	}
}

func TestGenerateConstants(t *testing.T) {
	code, err := codegen.GenerateConstants(reports(), codegen.Options{Package: "endpoints", IncludeUnresolved: true})
	require.NoError(t, err)

	formatted, err := codegen.Format("endpoints.go", code)
	require.NoError(t, err)
	out := string(formatted)

	_, err = parser.ParseFile(token.NewFileSet(), "endpoints.go", formatted, parser.ParseComments)
	require.NoError(t, err, "generated code must parse:\n%s", out)

	assert.True(t, strings.HasPrefix(out, "// Code generated by cslit; DO NOT EDIT.\n\npackage endpoints\n"))
	assertCodeContains(t, out, `// admin.cs
const (
	Version = "v2"
)`)
	assertCodeContains(t, out, `// Admin_Share (admin.cs)
const (
	AdminShareEndpoint = "https://h/v2/admin"
	AdminShareDir = "C:\\tmp\\\"x\""
	AdminSharePort = 8080
	AdminShareRatio = 2.0
	AdminShareEnabled = true
	// Token: unresolved "GetToken()"
	// Big: 10 5 is not a Go constant
)`)
	// AdminShareEndpoint is taken by the first class
	assertCodeContains(t, out, `AdminShareEndpoint2 = "/x"`)
	assertCodeContains(t, out, `// Empty (other.cs) const ( // obj: unresolved null )`)
	assert.NotContains(t, out, "broken.cs")
}

func TestGenerateConstants_Options(t *testing.T) {
	t.Run("unresolved dropped by default", func(t *testing.T) {
		code, err := codegen.GenerateConstants(reports(), codegen.Options{})
		require.NoError(t, err)
		assert.Contains(t, code, "package constants\n")
		assert.NotContains(t, code, "GetToken")
		assert.NotContains(t, code, "Empty (other.cs)")
	})

	t.Run("invalid package", func(t *testing.T) {
		_, err := codegen.GenerateConstants(nil, codegen.Options{Package: "my-pkg"})
		assert.ErrorContains(t, err, `invalid package name "my-pkg"`)
	})
}

func TestLiteralHandlers(t *testing.T) {
	cases := []struct {
		kind, text string
		want       string
		ok         bool
	}{
		{"STRING", `"a\tb"`, `"a\tb"`, true},
		{"STRING", `"\x41\u0042"`, `"\x41\u0042"`, true},
		{"STRING", `"C:\d"`, "", false},
		{"STRING", `"C:\newdir"`, `"C:\newdir"`, true},
		{"STRING", `@"C:\d"`, `"C:\\d"`, true},
		{"STRING", `@"C:\new"`, `"C:\\new"`, true},
		{"STRING", `@"a""b"`, `"a\"b"`, true},
		{"STRING", `"""say "hi" \n"""`, `"say \"hi\" \\n"`, true},
		{"STRING", "abc", "", false},
		{"INT", "0x1F", "0x1F", true},
		{"INT", "1_000L", "1000", true},
		{"INT", "18446744073709551615UL", "18446744073709551615", true},
		{"INT", "105abc", "", false},
		{"DOUBLE", "1.5f", "1.5", true},
		{"DOUBLE", "1e3", "1e3", true},
		{"DOUBLE", "0", "0.0", true},
		{"BOOL", "False", "false", true},
		{"BOOL", "yes", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.kind+" "+tc.text, func(t *testing.T) {
			h := codegen.GetLiteralHandler(&metadata.Value{Kind: tc.kind, Text: tc.text})
			require.NotNil(t, h)
			got, ok := h.GoLiteral(tc.text)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
	assert.Nil(t, codegen.GetLiteralHandler(&metadata.Value{Kind: "UNKNOWN"}))
}

func TestLiteralHandlers_EvaluatedStrings(t *testing.T) {
	env := object.NewEnvironment()
	env.Define("dir", object.String(`@"C:\tmp"`))

	cases := []struct {
		name string
		expr string
		want string
	}{
		{"verbatim concat", `@"C:\new" + "dir"`, `"C:\\newdir"`},
		{"verbatim doubled quote", `@"a""b" + "c"`, `"a\"bc"`},
		{"verbatim value in a hole", `$"{dir}\\x"`, `"C:\\tmp\\x"`},
		{"verbatim template", `$@"{dir}\x"`, `"C:\\tmp\\x"`},
		{"raw", `"""raw "q" """ + "!"`, `"raw \"q\" !"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := evaluator.New().Eval(context.Background(), tc.expr, env)
			require.Equal(t, object.StringLit, v.Kind, "text: %s", v.Text)
			got, ok := (&codegen.StringHandler{}).GoLiteral(v.Text)
			require.True(t, ok, "text: %s", v.Text)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gen", "endpoints.go")
	require.NoError(t, codegen.WriteFile(path, "package gen\nconst   X = \"x\"\n"))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "package gen\n\nconst X = \"x\"\n", string(got))

	err = codegen.WriteFile(path, "package gen\nconst = \n")
	assert.ErrorContains(t, err, "processing (goimports)")
}
