package output

import (
	"encoding/json"
	"strings"
	"testing"

	"pyimports"
	apperrors "pyimports/internal/errors"
	"pyimports/internal/scan"
)

func sampleResults() []scan.Result {
	return []scan.Result{
		{
			Path: "pkg/b.py",
			Imports: []pyimports.Import{
				{ImportedObject: "os.path", LineNumber: 2},
			},
		},
		{
			Path: "pkg/a.py",
			Imports: []pyimports.Import{
				{ImportedObject: "json", LineNumber: 1},
				{ImportedObject: "typing.Any", LineNumber: 4, TypecheckingOnly: true},
			},
		},
		{Path: "pkg/broken.py", Err: apperrors.New(apperrors.CodeParse, "boom")},
	}
}

func TestJSONDocumentShape(t *testing.T) {
	data, err := JSON(sampleResults())
	if err != nil {
		t.Fatalf("JSON failed: %v", err)
	}

	var doc struct {
		Data map[string][]struct {
			ImportedObject   string `json:"imported_object"`
			LineNumber       int    `json:"line_number"`
			TypecheckingOnly bool   `json:"typechecking_only"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}

	if len(doc.Data) != 2 {
		t.Errorf("Expected 2 files in document, got %d", len(doc.Data))
	}
	if _, ok := doc.Data["pkg/broken.py"]; ok {
		t.Error("Failed file must be omitted from JSON output")
	}

	records := doc.Data["pkg/a.py"]
	if len(records) != 2 {
		t.Fatalf("Expected 2 records for pkg/a.py, got %d", len(records))
	}
	if records[1].ImportedObject != "typing.Any" || !records[1].TypecheckingOnly || records[1].LineNumber != 4 {
		t.Errorf("Unexpected record: %+v", records[1])
	}
}

func TestTSVSortedByPath(t *testing.T) {
	out := TSV(sampleResults())
	lines := strings.Split(strings.TrimSpace(out), "\n")

	if lines[0] != "File\tImported\tLine\tTypecheckingOnly" {
		t.Errorf("Unexpected header: %q", lines[0])
	}
	// 3 records, broken file skipped.
	if len(lines) != 4 {
		t.Fatalf("Expected 4 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[1], "pkg/a.py\tjson\t1\tfalse") {
		t.Errorf("Rows not sorted by path: %q", lines[1])
	}
	if !strings.HasPrefix(lines[3], "pkg/b.py\tos.path\t2\tfalse") {
		t.Errorf("Unexpected final row: %q", lines[3])
	}
}
