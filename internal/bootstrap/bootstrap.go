// Package bootstrap builds the root environment every file scope is enclosed
// by: a flat table of externally supplied names (hosts, tokens, base URLs).
package bootstrap

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/podhmo/cslit/internal/object"
)

// Format selects how a bootstrap file is decoded.
type Format string

const (
	FormatKeyValue Format = "kv"
	FormatTOML     Format = "toml"
	FormatYAML     Format = "yaml"
)

// FormatFor picks the format from the file extension; anything unknown is key=value.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatKeyValue
	}
}

// FormatError indicates that a bootstrap file could not be decoded.
type FormatError struct {
	Path   string
	Format Format
	Key    string // empty when the whole document is invalid
	Err    error
}

func (e *FormatError) Error() string {
	path := e.Path
	if path == "" {
		path = "<input>"
	}
	if e.Key != "" {
		return fmt.Sprintf("bootstrap %s (%s): key %q: %v", path, e.Format, e.Key, e.Err)
	}
	return fmt.Sprintf("bootstrap %s (%s): %v", path, e.Format, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Load reads a bootstrap file and returns a sealed environment.
func Load(path string) (*object.Environment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bootstrap file: %w", err)
	}
	env, err := Parse(data, FormatFor(path))
	if err != nil {
		var ferr *FormatError
		if errors.As(err, &ferr) {
			ferr.Path = path
		}
		return nil, err
	}
	return env, nil
}

// LoadAll merges several bootstrap files; later files overwrite earlier keys.
func LoadAll(paths []string) (*object.Environment, error) {
	merged := object.NewEnvironment()
	for _, path := range paths {
		env, err := Load(path)
		if err != nil {
			return nil, err
		}
		for _, b := range env.Bindings() {
			merged.Define(b.Name, b.Value)
		}
	}
	merged.Seal()
	return merged, nil
}

// Parse decodes data in the given format and returns a sealed environment.
func Parse(data []byte, format Format) (*object.Environment, error) {
	switch format {
	case FormatTOML:
		return parseTOML(data)
	case FormatYAML:
		return parseYAML(data)
	default:
		return ParseKeyValue(data), nil
	}
}

// ParseKeyValue reads key=value lines. The first '=' splits a line, lines
// without one (blank lines, # comments) are ignored, surrounding quotes are
// stripped and later keys overwrite earlier ones. Every value is a string.
func ParseKeyValue(data []byte) *object.Environment {
	env := object.NewEnvironment()
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		env.Define(key, object.Quote(unquote(strings.TrimSpace(value))))
	}
	env.Seal()
	return env
}

// FromPairs builds a sealed environment of string values.
func FromPairs(pairs map[string]string) *object.Environment {
	env := object.NewEnvironment()
	for _, k := range sortedKeys(pairs) {
		env.Define(k, object.Quote(pairs[k]))
	}
	env.Seal()
	return env
}

// With returns a sealed copy of base with extra string values layered on top.
func With(base *object.Environment, pairs map[string]string) *object.Environment {
	env := object.NewEnvironment()
	if base != nil {
		for _, b := range base.Bindings() {
			env.Define(b.Name, b.Value)
		}
	}
	for _, k := range sortedKeys(pairs) {
		env.Define(k, object.Quote(pairs[k]))
	}
	env.Seal()
	return env
}

func parseTOML(data []byte) (*object.Environment, error) {
	var raw map[string]any
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, &FormatError{Format: FormatTOML, Err: err}
	}
	return fromMap(raw, FormatTOML)
}

func parseYAML(data []byte) (*object.Environment, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &FormatError{Format: FormatYAML, Err: err}
	}
	return fromMap(raw, FormatYAML)
}

func fromMap(raw map[string]any, format Format) (*object.Environment, error) {
	env := object.NewEnvironment()
	for _, k := range sortedKeys(raw) {
		v, err := literal(raw[k])
		if err != nil {
			return nil, &FormatError{Format: format, Key: k, Err: err}
		}
		env.Define(k, v)
	}
	env.Seal()
	return env, nil
}

func literal(v any) (object.Value, error) {
	switch v := v.(type) {
	case string:
		return object.Quote(v), nil
	case bool:
		return object.Bool(strconv.FormatBool(v)), nil
	case int:
		return object.Int(strconv.Itoa(v)), nil
	case int64:
		return object.Int(strconv.FormatInt(v, 10)), nil
	case uint64:
		return object.Int(strconv.FormatUint(v, 10)), nil
	case float64:
		return object.Double(strconv.FormatFloat(v, 'g', -1, 64)), nil
	case nil:
		return object.Unresolved("null"), nil
	default:
		return object.Value{}, fmt.Errorf("unsupported value of type %T, only flat scalars are allowed", v)
	}
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
