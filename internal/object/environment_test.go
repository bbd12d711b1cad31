package object

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvironment_LookupWalksChain(t *testing.T) {
	root := NewEnvironment()
	mid := NewEnclosedEnvironment(root)
	leaf := NewEnclosedEnvironment(mid)

	root.Define("a", Quote("root"))

	for _, env := range []*Environment{root, mid, leaf} {
		got, ok := env.Lookup("a")
		require.True(t, ok)
		assert.Equal(t, `"root"`, got.Text)
	}

	// a nearer define shadows the outer binding for that scope and its descendants only
	mid.Define("a", Quote("mid"))
	got, _ := leaf.Lookup("a")
	assert.Equal(t, `"mid"`, got.Text)
	got, _ = root.Lookup("a")
	assert.Equal(t, `"root"`, got.Text)

	_, ok := leaf.Lookup("missing")
	assert.False(t, ok)
}

func TestEnvironment_DefineOverwritesLocally(t *testing.T) {
	env := NewEnvironment()
	env.Define("x", Int("1"))
	env.Define("y", Int("2"))
	env.Define("x", Int("3"))

	want := []Binding{
		{Name: "x", Value: Int("3")},
		{Name: "y", Value: Int("2")},
	}
	if diff := cmp.Diff(want, env.Bindings()); diff != "" {
		t.Errorf("Bindings() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"x", "y"}, env.Names())
}

func TestEnvironment_Assign(t *testing.T) {
	root := NewEnvironment()
	mid := NewEnclosedEnvironment(root)
	leaf := NewEnclosedEnvironment(mid)

	root.Define("n", Int("1"))
	mid.Define("n", Int("2"))

	t.Run("unbound", func(t *testing.T) {
		assert.False(t, leaf.Assign("missing", Int("9")))
		_, ok := leaf.Lookup("missing")
		assert.False(t, ok)
		assert.Equal(t, 0, leaf.Len())
	})

	t.Run("nearest binding only", func(t *testing.T) {
		require.True(t, leaf.Assign("n", Int("5")))
		got, _ := mid.Local("n")
		assert.Equal(t, "5", got.Text)
		got, _ = root.Local("n")
		assert.Equal(t, "1", got.Text)
		_, ok := leaf.Local("n")
		assert.False(t, ok, "assign must not create a local binding")
	})
}

func TestEnvironment_Sealed(t *testing.T) {
	root := NewEnvironment()
	root.Define("Host", Quote("example.com"))
	root.Seal()

	child := NewEnclosedEnvironment(root)
	assert.False(t, child.Assign("Host", Quote("other")))
	got, _ := child.Lookup("Host")
	assert.Equal(t, `"example.com"`, got.Text)

	// shadowing in a child is still allowed
	child.Define("Host", Quote("local"))
	got, _ = child.Lookup("Host")
	assert.Equal(t, `"local"`, got.Text)

	assert.Panics(t, func() { root.Define("x", Int("1")) })
}

func TestValue_SpliceText(t *testing.T) {
	m := NewMethod("Greet", NewEnvironment())
	c := NewClass("Admin", NewEnvironment())

	cases := []struct {
		name string
		v    Value
		want string
	}{
		{"quoted string", Quote("abc"), "abc"},
		{"verbatim string", String(`@"C:\tmp"`), `C:\\tmp`},
		{"verbatim doubled quote", String(`@"a""b"`), `a\"b`},
		{"verbatim line break", String("@\"a\nb\""), `a\nb`},
		{"raw string", String(`"""say "hi" \n"""`), `say \"hi\" \\n`},
		{"multi-line raw string", String("\"\"\"\n    one\n      two\n    \"\"\""), `one\n  two`},
		{"regular escapes kept", String(`"C:\\new\n"`), `C:\\new\n`},
		{"int", Int("10"), "10"},
		{"bool", Bool("TRUE"), "true"},
		{"unknown quoted", UnresolvedQuoted("zzz"), "zzz"},
		{"unknown bare", Unresolved("a * b"), "a * b"},
		{"method", MethodValue(m), "Greet"},
		{"class", ClassValue(c), "Admin"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.v.SpliceText())
		})
	}
}

func TestClassValues_SkipsReferences(t *testing.T) {
	c := NewClass("C", NewEnvironment())
	c.Env.Define("a", Quote("x"))
	c.Env.Define("F", MethodValue(NewMethod("F", c.Env)))
	c.Env.Define("b", Int("1"))

	want := []Binding{{Name: "a", Value: Quote("x")}, {Name: "b", Value: Int("1")}}
	if diff := cmp.Diff(want, c.Values()); diff != "" {
		t.Errorf("Values() mismatch (-want +got):\n%s", diff)
	}
}
