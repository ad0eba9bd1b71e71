package history

import (
	"path/filepath"
	"testing"
	"time"

	"pyimports"
	apperrors "pyimports/internal/errors"
	"pyimports/internal/scan"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleResults() []scan.Result {
	return []scan.Result{
		{
			Path: "pkg/a.py",
			Imports: []pyimports.Import{
				{ImportedObject: "os", LineNumber: 1},
				{ImportedObject: "typing.List", LineNumber: 3, TypecheckingOnly: true},
			},
		},
		{Path: "pkg/broken.py", Err: apperrors.New(apperrors.CodeParse, "boom")},
	}
}

func TestSaveAndQueryRun(t *testing.T) {
	store := openTestStore(t)

	runID, err := store.SaveRun(time.Now(), 42*time.Millisecond, sampleResults())
	if err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	if runID == "" {
		t.Fatal("Expected non-empty run id")
	}

	runs, err := store.RecentRuns(10)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("Expected 1 run, got %d", len(runs))
	}

	run := runs[0]
	if run.ID != runID {
		t.Errorf("Run id = %s, want %s", run.ID, runID)
	}
	if run.Files != 2 || run.Imports != 2 || run.TypecheckingImports != 1 || run.Failures != 1 {
		t.Errorf("Run counts = %+v, want files=2 imports=2 typechecking=1 failures=1", run)
	}
}

func TestPruneKeepsNewestRuns(t *testing.T) {
	store := openTestStore(t)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		if _, err := store.SaveRun(base.Add(time.Duration(i)*time.Minute), time.Millisecond, sampleResults()); err != nil {
			t.Fatalf("SaveRun failed: %v", err)
		}
	}

	if err := store.Prune(2); err != nil {
		t.Fatalf("Prune failed: %v", err)
	}

	runs, err := store.RecentRuns(10)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs after prune, got %d", len(runs))
	}
	if !runs[0].StartedAt.After(runs[1].StartedAt) {
		t.Errorf("Runs not ordered newest first: %v, %v", runs[0].StartedAt, runs[1].StartedAt)
	}
}

func TestOpenRejectsEmptyAndDirectoryPaths(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Error("Expected error for empty path")
	}
	if _, err := Open(t.TempDir()); err == nil {
		t.Error("Expected error for directory path")
	}
}
