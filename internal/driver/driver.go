// Package driver loads many source files concurrently against one shared,
// sealed bootstrap environment.
package driver

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/podhmo/cslit/internal/loader"
	"github.com/podhmo/cslit/internal/object"
)

// SourceExt is the extension collected when a directory is given.
const SourceExt = ".cs"

// Result is the outcome of one file. Err is set for hard failures only
// (unreadable or unparsable file); Scope is nil in that case.
type Result struct {
	Path  string
	Scope *loader.FileScope
	Err   error
}

type Driver struct {
	loader *loader.Loader
	jobs   int
	logger *slog.Logger
}

// New creates a driver running at most jobs files at once; jobs <= 0 means GOMAXPROCS.
func New(l *loader.Loader, jobs int, logger *slog.Logger) *Driver {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Driver{loader: l, jobs: jobs, logger: logger}
}

// LoadFiles loads every path and returns the results in input order. A file
// that fails does not stop the others; the returned error is non-nil only
// when ctx is canceled.
func (d *Driver) LoadFiles(ctx context.Context, paths []string, bootstrap *object.Environment) ([]Result, error) {
	if bootstrap == nil {
		bootstrap = object.NewEnvironment()
	}
	if !bootstrap.Sealed() {
		// file scopes must never write into a bootstrap shared by goroutines
		bootstrap.Seal()
	}

	results := make([]Result, len(paths))
	if len(paths) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(d.jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			scope, err := d.loader.LoadPath(gctx, path, bootstrap)
			if err != nil {
				d.logger.InfoContext(gctx, "failed to load file", "path", path, "error", err)
			}
			results[i] = Result{Path: path, Scope: scope, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("loading files: %w", err)
	}
	return results, nil
}

// ListFiles expands directories into the sorted list of source files under
// them. Plain file arguments are kept as given, in order.
func ListFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		var found []string
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != arg && (strings.HasPrefix(d.Name(), ".") || d.Name() == "bin" || d.Name() == "obj") {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.EqualFold(filepath.Ext(path), SourceExt) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

// Failed returns the results that carry a hard error.
func Failed(results []Result) []Result {
	var r []Result
	for _, res := range results {
		if res.Err != nil {
			r = append(r, res)
		}
	}
	return r
}
