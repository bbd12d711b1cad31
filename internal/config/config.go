package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/podhmo/cslit/internal/syntax"
)

// DefaultFileName is looked up in the working directory when no --config is given.
const DefaultFileName = "cslit.toml"

// Config holds the configuration for the cslit tool itself, read from
// cslit.toml and then overridden by command-line flags.
type Config struct {
	Vars     []string            `toml:"vars"`      // bootstrap files, relative to the config file
	MaxDepth int                 `toml:"max_depth"` // call depth ceiling, 0 means the default
	Jobs     int                 `toml:"jobs"`      // concurrent files, 0 means GOMAXPROCS
	Format   string              `toml:"format"`    // scan output: text, json or msgpack
	Package  string              `toml:"package"`   // package name of emitted Go files
	Kinds    map[string][]string `toml:"kinds"`     // role name -> provider kind tags

	// Path is the file the configuration was read from; empty for defaults.
	Path string `toml:"-"`
}

// DecodeError indicates an invalid configuration file.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid config %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func Default() *Config {
	return &Config{Format: "text", Package: "constants"}
}

// Load reads path. When path is empty, DefaultFileName is used if it exists
// and the defaults are returned otherwise.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, &DecodeError{Path: path, Err: err}
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("unknown keys %v", undecoded)}
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return cfg, nil
}

// Validate checks value ranges and role names.
func (c *Config) Validate() error {
	switch c.Format {
	case "", "text", "json", "msgpack":
	default:
		return fmt.Errorf("unknown format %q", c.Format)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative: %d", c.MaxDepth)
	}
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative: %d", c.Jobs)
	}
	_, err := c.KindMap()
	return err
}

// VarPaths resolves Vars relative to the directory of the config file.
func (c *Config) VarPaths() []string {
	paths := make([]string, 0, len(c.Vars))
	for _, v := range c.Vars {
		if c.Path != "" && !filepath.IsAbs(v) {
			v = filepath.Join(filepath.Dir(c.Path), v)
		}
		paths = append(paths, v)
	}
	return paths
}

// KindMap applies the [kinds] overrides to syntax.DefaultKindMap.
func (c *Config) KindMap() (syntax.KindMap, error) {
	return syntax.DefaultKindMap().WithOverrides(c.Kinds)
}
