package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podhmo/cslit/internal/loader"
	"github.com/podhmo/cslit/internal/object"
	"github.com/podhmo/cslit/internal/syntax"
	"github.com/podhmo/cslit/internal/syntax/csharp"
)

func newDriver(jobs int) *Driver {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(loader.New(csharp.NewProvider(), loader.WithLogger(logger)), jobs, logger)
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestLoadFiles_OrderAndSharedBootstrap(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := range 12 {
		name := fmt.Sprintf("c%02d.cs", i)
		writeFiles(t, dir, map[string]string{
			name: fmt.Sprintf(`class C%d { string Url => $"{Host}/%d"; }`, i, i),
		})
		paths = append(paths, filepath.Join(dir, name))
	}
	bootstrap := object.NewEnvironment()
	bootstrap.Define("Host", object.Quote("https://h"))

	results, err := newDriver(3).LoadFiles(context.Background(), paths, bootstrap)
	require.NoError(t, err)
	require.Len(t, results, len(paths))
	assert.True(t, bootstrap.Sealed())

	for i, res := range results {
		require.NoError(t, res.Err)
		assert.Equal(t, paths[i], res.Path)
		class, ok := res.Scope.Class(fmt.Sprintf("C%d", i))
		require.True(t, ok)
		url, _ := class.Env.Lookup("Url")
		assert.Equal(t, object.Quote(fmt.Sprintf("https://h/%d", i)), url)
		assert.Same(t, bootstrap, res.Scope.Env().Outer())
	}
	assert.Equal(t, 1, bootstrap.Len())
}

func TestLoadFiles_FailureIsPerFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"ok.cs":     `class A { string x = "1"; }`,
		"broken.cs": `class B { string x = "open; }`,
	})
	paths := []string{
		filepath.Join(dir, "ok.cs"),
		filepath.Join(dir, "broken.cs"),
		filepath.Join(dir, "missing.cs"),
	}

	results, err := newDriver(0).LoadFiles(context.Background(), paths, nil)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.NotNil(t, results[0].Scope)

	var perr *syntax.ParseError
	assert.True(t, errors.As(results[1].Err, &perr))
	assert.Nil(t, results[1].Scope)

	var serr *loader.SourceError
	require.True(t, errors.As(results[2].Err, &serr))
	assert.Equal(t, paths[2], serr.Path)

	failed := Failed(results)
	require.Len(t, failed, 2)
	assert.Equal(t, paths[1], failed[0].Path)
}

func TestLoadFiles_Canceled(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.cs": `class A { }`})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newDriver(1).LoadFiles(ctx, []string{filepath.Join(dir, "a.cs")}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestListFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"b.cs":            "",
		"a.CS":            "",
		"readme.md":       "",
		"sub/c.cs":        "",
		"obj/gen.cs":      "",
		".git/hook.cs":    "",
		"other/single.cs": "",
	})

	got, err := ListFiles([]string{filepath.Join(dir, "other", "single.cs"), dir})
	require.NoError(t, err)
	want := []string{
		filepath.Join(dir, "other", "single.cs"),
		filepath.Join(dir, "a.CS"),
		filepath.Join(dir, "b.cs"),
		filepath.Join(dir, "other", "single.cs"),
		filepath.Join(dir, "sub", "c.cs"),
	}
	assert.Equal(t, want, got)

	_, err = ListFiles([]string{filepath.Join(dir, "nope")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
