package loader

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podhmo/cslit/internal/diag"
	"github.com/podhmo/cslit/internal/object"
	"github.com/podhmo/cslit/internal/syntax"
	"github.com/podhmo/cslit/internal/syntax/csharp"
)

func load(t *testing.T, src string, bootstrap *object.Environment) *FileScope {
	t.Helper()
	scope, err := New(csharp.NewProvider()).LoadFile(context.Background(), []byte(src), bootstrap)
	require.NoError(t, err)
	return scope
}

func lookup(t *testing.T, env *object.Environment, name string) object.Value {
	t.Helper()
	v, ok := env.Lookup(name)
	require.True(t, ok, "%s is not bound", name)
	return v
}

func sealed(pairs ...string) *object.Environment {
	env := object.NewEnvironment()
	for i := 0; i+1 < len(pairs); i += 2 {
		env.Define(pairs[i], object.Quote(pairs[i+1]))
	}
	env.Seal()
	return env
}

func names(bindings []object.Binding) []string {
	var r []string
	for _, b := range bindings {
		r = append(r, b.Name)
	}
	return r
}

func TestLoadFile_Examples(t *testing.T) {
	src := `
class Examples {
    string a = "abc";
    string b = $"{a}def";
    int n = 10;
    string m = n + 5;
    string Greet(string name) => $"Hi {name}";
    string greeting = Greet("Sam");
    string missing = zzz;
}`
	scope := load(t, src, nil)
	require.Len(t, scope.Classes(), 1)
	class := scope.Classes()[0]
	env := class.Env

	assert.Equal(t, object.Quote("abc"), lookup(t, env, "a"))
	assert.Equal(t, object.Quote("abcdef"), lookup(t, env, "b"))
	assert.Equal(t, object.Int("10"), lookup(t, env, "n"))
	assert.Equal(t, object.Quote("105"), lookup(t, env, "m"))
	assert.Equal(t, object.MethodRef, lookup(t, env, "Greet").Kind)
	assert.Equal(t, object.Quote("Hi Sam"), lookup(t, env, "greeting"))
	assert.Equal(t, object.UnresolvedQuoted("zzz"), lookup(t, env, "missing"))

	if diff := cmp.Diff([]string{"a", "b", "n", "m", "greeting", "missing"}, names(class.Values())); diff != "" {
		t.Errorf("Values() mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, scope.Diagnostics(), 1)
	d := scope.Diagnostics()[0]
	assert.Equal(t, diag.UnresolvedReference, d.Code)
	assert.Equal(t, "Examples", d.Scope)
	assert.Equal(t, "zzz", src[d.Span.Start:d.Span.End])
	assert.Equal(t, []diag.Diagnostic{d}, class.Diagnostics)
	assert.False(t, scope.HasErrors())
}

func TestLoadFile_FileLevelAndBootstrap(t *testing.T) {
	src := `
string root = Base + "/api";
string Join(string p) => root + "/" + p;

namespace App.Routing
{
    class Paths : RouteBase<string>
    {
        string users = Join("users");
        static string Version { get; } = "v1";
        string Url => $"{root}/{Version}";
        string Getter { get => Version + "!"; }
        int count;
        double ratio;
        bool enabled;
        char sep;
        object obj;
        int? maybe;
        string Name { get; set; }
    }
}`
	bootstrap := sealed("Base", "https://x")
	scope := load(t, src, bootstrap)

	assert.Equal(t, object.Quote("https://x/api"), lookup(t, scope.Env(), "root"))
	require.Len(t, scope.Methods(), 1)
	assert.Equal(t, "Join", scope.Methods()[0].Name)
	assert.Equal(t, []string{"p"}, scope.Methods()[0].Params)

	paths, ok := scope.Class("Paths")
	require.True(t, ok)
	assert.Equal(t, "RouteBase", paths.Super)
	assert.Same(t, scope.Env(), paths.Env.Outer())
	assert.Equal(t, object.ClassRef, lookup(t, scope.Env(), "Paths").Kind)

	want := []object.Binding{
		{Name: "users", Value: object.Quote("https://x/api/users")},
		{Name: "Version", Value: object.Quote("v1")},
		{Name: "Url", Value: object.Quote("https://x/api/v1")},
		{Name: "Getter", Value: object.Quote("v1!")},
		{Name: "count", Value: object.Int("0")},
		{Name: "ratio", Value: object.Double("0")},
		{Name: "enabled", Value: object.Bool("false")},
		{Name: "sep", Value: object.Quote("")},
		{Name: "obj", Value: object.Unresolved("null")},
		{Name: "maybe", Value: object.Unresolved("null")},
		{Name: "Name", Value: object.Quote("")},
	}
	if diff := cmp.Diff(want, paths.Values()); diff != "" {
		t.Errorf("Values() mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, scope.Diagnostics())
	assert.Equal(t, 1, bootstrap.Len())
}

func TestLoadFile_MethodBodies(t *testing.T) {
	src := `
class Svc {
    string prefix = "p";
    void Run(string id) {
        var a = prefix + "-" + id;
        string Local(string x) => a + x;
        if (true) { var inner = Local("!"); }
        a = "changed";
        undeclared = "x";
    }
    string Block() { return "x"; }
    string useBlock = Block();
}`
	scope := load(t, src, nil)
	svc, ok := scope.Class("Svc")
	require.True(t, ok)
	require.Len(t, svc.Methods, 2)

	run := svc.Methods[0]
	assert.Equal(t, "Run", run.Name)
	assert.False(t, run.HasExprBody)
	require.Len(t, run.Methods, 1)
	assert.Equal(t, "Local", run.Methods[0].Name)
	assert.Same(t, run.Env, run.Methods[0].Closure)

	want := []object.Binding{
		{Name: "id", Value: object.Quote("{id}")},
		{Name: "a", Value: object.Quote("changed")},
		{Name: "inner", Value: object.Quote("p-{id}!")},
	}
	if diff := cmp.Diff(want, run.Locals()); diff != "" {
		t.Errorf("Locals() mismatch (-want +got):\n%s", diff)
	}
	// locals never leak into the class
	_, leaked := svc.Env.Local("a")
	assert.False(t, leaked)

	bag := diag.NewBag()
	for _, d := range scope.Diagnostics() {
		bag.Report(d)
	}
	assert.Equal(t, 1, bag.Count(diag.UnresolvedReference))
	assert.Equal(t, 1, bag.Count(diag.UnresolvedCall))
	assert.Equal(t, object.UnresolvedQuoted("Block()"), lookup(t, svc.Env, "useBlock"))
}

func TestLoadFile_AssignDoesNotTouchBootstrap(t *testing.T) {
	bootstrap := sealed("Base", "https://x")
	scope := load(t, `Base = "other";`, bootstrap)

	assert.Equal(t, object.Quote("https://x"), lookup(t, bootstrap, "Base"))
	require.Len(t, scope.Diagnostics(), 1)
	assert.Equal(t, diag.UnresolvedReference, scope.Diagnostics()[0].Code)
	assert.Contains(t, scope.Diagnostics()[0].Message, "read-only")
}

func TestLoadFile_MissingContainerBody(t *testing.T) {
	src := `
record Person(string Name);
class Keep { string x = "y"; }`
	scope := load(t, src, nil)

	require.Len(t, scope.Classes(), 1)
	assert.Equal(t, "Keep", scope.Classes()[0].Name)
	_, bound := scope.Env().Lookup("Person")
	assert.False(t, bound)

	require.Len(t, scope.Diagnostics(), 1)
	d := scope.Diagnostics()[0]
	assert.Equal(t, diag.MissingContainerBody, d.Code)
	assert.Equal(t, diag.SevError, d.Severity)
	assert.Contains(t, d.Message, `"Person"`)
	assert.True(t, scope.HasErrors())
}

func TestLoadFile_NestedAndQualified(t *testing.T) {
	src := `
class Outer {
    string name = "outer";
    class Inner {
        string full = name + "/inner";
    }
    string viaInner = Inner.full;
}
class Routes {
    string Base = "/r";
    string Item(string id) => Base + "/" + id;
}
class Client {
    string url = Routes.Item("7");
    string b = Routes.Base;
}`
	scope := load(t, src, nil)

	var got []string
	for _, c := range scope.Classes() {
		got = append(got, c.Name)
	}
	assert.Equal(t, []string{"Outer", "Inner", "Routes", "Client"}, got)

	outer, _ := scope.Class("Outer")
	inner, _ := scope.Class("Inner")
	assert.Same(t, outer.Env, inner.Env.Outer())
	assert.Equal(t, object.Quote("outer/inner"), lookup(t, inner.Env, "full"))
	assert.Equal(t, object.Quote("outer/inner"), lookup(t, outer.Env, "viaInner"))
	_, visible := scope.Env().Lookup("Inner")
	assert.False(t, visible)

	client, _ := scope.Class("Client")
	assert.Equal(t, object.Quote("/r/7"), lookup(t, client.Env, "url"))
	assert.Equal(t, object.Quote("/r"), lookup(t, client.Env, "b"))
	assert.Empty(t, scope.Diagnostics())
}

func TestLoadFile_Logging(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	l := New(csharp.NewProvider(), WithLogger(logger))
	_, err := l.LoadFile(context.Background(), []byte(`class A { }`), nil)
	require.NoError(t, err)
	assert.Contains(t, logBuf.String(), "LoadFile: start")
	assert.Contains(t, logBuf.String(), "LoadFile: end")

	logBuf.Reset()
	_, err = l.LoadFile(context.Background(), []byte(`class A { string s = "x; }`), nil)
	require.Error(t, err)
	assert.Contains(t, logBuf.String(), "LoadFile: end (error)")
}

func TestLoadFile_RecursiveFanOut(t *testing.T) {
	// a library caller's default logger stays quiet
	var logBuf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logBuf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	src := `
class R {
    static string F(string x) => F(x) + F(x) + F(x);
    string v = F("a");
    string w = "after";
}`
	done := make(chan *FileScope, 1)
	go func() {
		scope, err := New(csharp.NewProvider()).LoadFile(context.Background(), []byte(src), nil)
		if err != nil {
			scope = nil
		}
		done <- scope
	}()
	var scope *FileScope
	select {
	case scope = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("loading a fanning-out recursion did not finish")
	}
	require.NotNil(t, scope)

	r, ok := scope.Class("R")
	require.True(t, ok)
	assert.Contains(t, lookup(t, r.Env, "v").Text, "F(x)")
	assert.Equal(t, object.Quote("after"), lookup(t, r.Env, "w"))
	require.Len(t, scope.Diagnostics(), 1)
	assert.Contains(t, scope.Diagnostics()[0].Message, "recursion limit")
	assert.Empty(t, logBuf.String())
}

func TestLoadFile_ArrowMethodWithoutParameters(t *testing.T) {
	scope := load(t, `
class Api {
    string a = "abc";
    string Url() => a + "/x";
    string called = Url();
    string named = Url;
}`, nil)

	api, ok := scope.Class("Api")
	require.True(t, ok)
	url := lookup(t, api.Env, "Url")
	assert.Equal(t, object.MethodRef, url.Kind, "methods bind as references even without parameters")
	assert.Equal(t, object.Quote("abc/x"), lookup(t, api.Env, "called"))
	assert.Equal(t, object.Quote("Url"), lookup(t, api.Env, "named"))
	assert.Equal(t, []string{"a", "called", "named"}, names(api.Values()))
	assert.Empty(t, scope.Diagnostics())
}

func TestLoadFile_StringLiteralForms(t *testing.T) {
	scope := load(t, `
class Paths {
    string r = """raw "text" """;
    string dir = @"C:\new";
    string file = dir + "\\a.txt";
    string both = $"{r}|{dir}";
}`, nil)

	paths, ok := scope.Class("Paths")
	require.True(t, ok)
	assert.Equal(t, object.String(`"""raw "text" """`), lookup(t, paths.Env, "r"))
	assert.Equal(t, object.String(`@"C:\new"`), lookup(t, paths.Env, "dir"))
	assert.Equal(t, object.Quote(`C:\\new\\a.txt`), lookup(t, paths.Env, "file"))
	assert.Equal(t, object.Quote(`raw \"text\" |C:\\new`), lookup(t, paths.Env, "both"))
	assert.Empty(t, scope.Diagnostics())
}

func TestLoadPath_Errors(t *testing.T) {
	l := New(csharp.NewProvider())
	ctx := context.Background()

	_, err := l.LoadPath(ctx, "non_existent_file.cs", nil)
	var srcErr *SourceError
	require.True(t, errors.As(err, &srcErr))
	assert.Equal(t, "non_existent_file.cs", srcErr.Path)
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	path := filepath.Join(t.TempDir(), "broken.cs")
	require.NoError(t, os.WriteFile(path, []byte("class A { /* open"), 0o644))
	_, err = l.LoadPath(ctx, path, nil)
	var perr *syntax.ParseError
	require.True(t, errors.As(err, &perr), "got %v", err)
	assert.Equal(t, 10, perr.Offset)
}

func TestLoadPath_Samples(t *testing.T) {
	ctx := context.Background()
	l := New(csharp.NewProvider())
	bootstrap := sealed("GlobalLabShare", "https://lab.example")

	t.Run("share recipients", func(t *testing.T) {
		scope, err := l.LoadPath(ctx, filepath.Join("testdata", "csharp", "share_recipients.cs"), bootstrap)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("testdata", "csharp", "share_recipients.cs"), scope.Path())

		class, ok := scope.Class("Admin_Share_Recipients")
		require.True(t, ok)
		assert.Equal(t, "APITest", class.Super)
		assert.Len(t, class.Attributes, 2)
		assert.Equal(t, object.Quote("https://lab.example/gl-share/api/Admin/share"), lookup(t, class.Env, "Endpoint"))

		require.Len(t, class.Methods, 2)
		link := class.Methods[0]
		assert.Equal(t, "EndpointWithShareLink", link.Name)
		assert.True(t, link.HasExprBody)
		assert.Equal(t, []string{"shareLink"}, link.Params)

		post := class.Methods[1]
		assert.False(t, post.HasExprBody)
		assert.Len(t, post.Attributes, 4)
		assert.Equal(t, []string{"token", "shareGroup", "toAdd", "recipient", "shareResponseBeforeAdd", "shareResponseAfterAdd"}, names(post.Locals()))
		assert.Empty(t, scope.Diagnostics())
	})

	t.Run("external pricing", func(t *testing.T) {
		scope, err := l.LoadPath(ctx, filepath.Join("testdata", "csharp", "external_pricing.cs"), bootstrap)
		require.NoError(t, err)

		class, ok := scope.Class("Admin_External_Pricing_Update")
		require.True(t, ok)
		assert.Equal(t, object.Quote("https://lab.example/gl-share/api/Admin/user/external/pricing"), lookup(t, class.Env, "Endpoint"))
		assert.Len(t, class.Methods, 10)

		var days *object.Method
		for _, m := range class.Methods {
			if m.Name == "POST_Admin_External_Pricing_ChangeTrialDaysRemaining_200_133282" {
				days = m
			}
		}
		require.NotNil(t, days)
		assert.Equal(t, object.Int("5"), lookup(t, days.Env, "days"))

		bag := diag.NewBag()
		for _, d := range scope.Diagnostics() {
			bag.Report(d)
		}
		assert.Zero(t, bag.Count(diag.MalformedExpression))
		assert.Zero(t, bag.Count(diag.UnresolvedReference))
		assert.Positive(t, bag.Count(diag.UnresolvedCall))
	})
}
