// Package scan walks directory trees for Python sources and parses them
// concurrently.
package scan

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"
	"golang.org/x/sync/errgroup"

	"pyimports"
	apperrors "pyimports/internal/errors"
	"pyimports/internal/observability"
)

// Result is the outcome of parsing one file. Err is set when the file could
// not be read or its imports could not be recognized; a failed file does not
// abort the surrounding run.
type Result struct {
	Path    string
	Imports []pyimports.Import
	Err     error
}

type Scanner struct {
	workers      int
	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob
}

func New(workers int, excludeDirs, excludeFiles []string) (*Scanner, error) {
	if workers <= 0 {
		workers = 1
	}
	s := &Scanner{workers: workers}

	for _, pattern := range excludeDirs {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude dir pattern %q: %w", pattern, err)
		}
		s.excludeDirs = append(s.excludeDirs, g)
	}
	for _, pattern := range excludeFiles {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude file pattern %q: %w", pattern, err)
		}
		s.excludeFiles = append(s.excludeFiles, g)
	}
	return s, nil
}

// Discover walks the given roots and returns the Python files to parse, in
// sorted order. Hidden directories are skipped unless explicitly listed as a
// root.
func (s *Scanner) Discover(roots []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			base := filepath.Base(path)

			if d.IsDir() {
				if path != root && s.shouldExcludeDir(base) {
					return filepath.SkipDir
				}
				return nil
			}
			if !IsPythonFile(path) || s.shouldExcludeFile(base) {
				return nil
			}
			if !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			derr := &apperrors.DomainError{Code: apperrors.CodeNotFound, Message: "walk scan root", Err: err}
			return nil, derr.WithContext(apperrors.CtxPath, root)
		}
	}

	sort.Strings(files)
	return files, nil
}

// Run parses the given files with at most the configured number of workers.
// Results come back ordered by path regardless of completion order.
func (s *Scanner) Run(ctx context.Context, files []string) ([]Result, error) {
	results := make([]Result, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, path := range files {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			results[i] = parseFile(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func parseFile(path string) Result {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{Path: path, Err: apperrors.Wrap(err, apperrors.CodeUnreadable, "read source file")}
	}

	start := time.Now()
	imports, err := pyimports.Parse(string(data))
	observability.ParseDuration.Observe(time.Since(start).Seconds())
	observability.FilesScannedTotal.Inc()

	if err != nil {
		observability.ParseErrorsTotal.Inc()
		return Result{Path: path, Err: apperrors.Wrap(err, apperrors.CodeParse, "parse imports")}
	}
	observability.ImportsFoundTotal.Add(float64(len(imports)))
	return Result{Path: path, Imports: imports}
}

// IsPythonFile reports whether path looks like a Python source file.
func IsPythonFile(path string) bool {
	return strings.HasSuffix(path, ".py") || strings.HasSuffix(path, ".pyi")
}

func (s *Scanner) shouldExcludeDir(base string) bool {
	if strings.HasPrefix(base, ".") {
		return true
	}
	for _, g := range s.excludeDirs {
		if g.Match(base) {
			return true
		}
	}
	return false
}

func (s *Scanner) shouldExcludeFile(base string) bool {
	for _, g := range s.excludeFiles {
		if g.Match(base) {
			return true
		}
	}
	return false
}

// Snapshot is an immutable view over the results of one run, keyed by path.
type Snapshot struct {
	mu      sync.RWMutex
	results map[string]Result
}

func NewSnapshot() *Snapshot {
	return &Snapshot{results: make(map[string]Result)}
}

func (s *Snapshot) Update(results []Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range results {
		s.results[r.Path] = r
	}
}

func (s *Snapshot) Remove(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.results, path)
}

// All returns the current results sorted by path.
func (s *Snapshot) All() []Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Result, 0, len(s.results))
	for _, r := range s.results {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Totals reports file, import, and failed-file counts.
func (s *Snapshot) Totals() (files, imports, failures int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.results {
		files++
		if r.Err != nil {
			failures++
			continue
		}
		imports += len(r.Imports)
	}
	return files, imports, failures
}
