package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podhmo/cslit/internal/syntax"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
vars = ["global.txt", "/etc/cslit/hosts.toml"]
max_depth = 16
jobs = 4
format = "json"
package = "endpoints"

[kinds]
class = ["class_declaration", "struct_declaration", "class_definition"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.MaxDepth)
	assert.Equal(t, 4, cfg.Jobs)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "endpoints", cfg.Package)
	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, []string{filepath.Join(dir, "global.txt"), "/etc/cslit/hosts.toml"}, cfg.VarPaths())

	kinds, err := cfg.KindMap()
	require.NoError(t, err)
	assert.Equal(t, []string{"class_declaration", "struct_declaration", "class_definition"}, kinds[syntax.RoleClass])
	assert.Equal(t, syntax.DefaultKindMap()[syntax.RoleField], kinds[syntax.RoleField])
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	writeConfig(t, ".", `format = "msgpack"`)
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "msgpack", cfg.Format)
	assert.Equal(t, "constants", cfg.Package, "unset keys keep their defaults")
}

func TestLoad_Errors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", `format = `, ""},
		{"unknown key", `colour = "on"`, "unknown keys"},
		{"bad format", `format = "xml"`, `unknown format "xml"`},
		{"negative jobs", `jobs = -1`, "jobs must not be negative"},
		{"unknown role", "[kinds]\nklass = [\"x\"]\n", "klass"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tc.content)
			_, err := Load(path)
			var derr *DecodeError
			require.True(t, errors.As(err, &derr), "got %v", err)
			assert.Equal(t, path, derr.Path)
			assert.Contains(t, err.Error(), tc.want)
		})
	}

	t.Run("explicit path must exist", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})
}
