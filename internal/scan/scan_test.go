package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	apperrors "pyimports/internal/errors"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestDiscover(t *testing.T) {
	root := writeTree(t, map[string]string{
		"pkg/a.py":            "import os",
		"pkg/b.pyi":           "import sys",
		"pkg/readme.md":       "not python",
		"venv/lib/ignored.py": "import json",
		".git/hidden.py":      "import json",
	})

	s, err := New(2, []string{"venv"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	files, err := s.Discover([]string{root})
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	want := []string{
		filepath.Join(root, "pkg", "a.py"),
		filepath.Join(root, "pkg", "b.pyi"),
	}
	if len(files) != len(want) {
		t.Fatalf("Discover = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %s, want %s", i, files[i], want[i])
		}
	}
}

func TestDiscoverExcludesFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.py":        "import os",
		"conftest.py": "import pytest",
	})

	s, err := New(1, nil, []string{"conftest.py"})
	if err != nil {
		t.Fatal(err)
	}
	files, err := s.Discover([]string{root})
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "a.py" {
		t.Errorf("Discover = %v, want just a.py", files)
	}
}

func TestDiscoverMissingRoot(t *testing.T) {
	s, err := New(1, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = s.Discover([]string{"/definitely/not/here"})
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("Expected NOT_FOUND, got %v", err)
	}
}

func TestRunParsesInParallel(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.py": "import os\nfrom sys import path",
		"b.py": "if TYPE_CHECKING:\n    import typing_extensions",
		"c.py": "from broken",
	})

	s, err := New(4, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	files, err := s.Discover([]string{root})
	if err != nil {
		t.Fatal(err)
	}
	results, err := s.Run(context.Background(), files)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}

	byName := make(map[string]Result)
	for _, r := range results {
		byName[filepath.Base(r.Path)] = r
	}

	a := byName["a.py"]
	if a.Err != nil || len(a.Imports) != 2 {
		t.Errorf("a.py = %+v, want 2 imports", a)
	}
	if a.Imports[0].ImportedObject != "os" || a.Imports[1].ImportedObject != "sys.path" {
		t.Errorf("a.py imports = %v", a.Imports)
	}

	b := byName["b.py"]
	if b.Err != nil || len(b.Imports) != 1 || !b.Imports[0].TypecheckingOnly {
		t.Errorf("b.py = %+v, want one typechecking-only import", b)
	}

	c := byName["c.py"]
	if !apperrors.IsCode(c.Err, apperrors.CodeParse) {
		t.Errorf("c.py error = %v, want PARSE_ERROR", c.Err)
	}
}

func TestSnapshotTotals(t *testing.T) {
	snap := NewSnapshot()
	snap.Update([]Result{
		{Path: "a.py", Imports: nil},
		{Path: "b.py", Err: apperrors.New(apperrors.CodeParse, "boom")},
	})
	snap.Update([]Result{
		{Path: "a.py"},
	})

	files, _, failures := snap.Totals()
	if files != 2 || failures != 1 {
		t.Errorf("Totals = (%d files, %d failures), want (2, 1)", files, failures)
	}

	snap.Remove("b.py")
	files, _, failures = snap.Totals()
	if files != 1 || failures != 0 {
		t.Errorf("Totals after remove = (%d files, %d failures), want (1, 0)", files, failures)
	}
}
