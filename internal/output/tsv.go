package output

import (
	"fmt"
	"strings"

	"pyimports/internal/scan"
	"pyimports/internal/util"
)

// TSV renders one row per import record, sorted by file path.
func TSV(results []scan.Result) string {
	byPath := make(map[string]scan.Result, len(results))
	for _, r := range results {
		byPath[r.Path] = r
	}

	var buf strings.Builder
	buf.WriteString("File\tImported\tLine\tTypecheckingOnly\n")

	for _, path := range util.SortedStringKeys(byPath) {
		r := byPath[path]
		if r.Err != nil {
			continue
		}
		for _, imp := range r.Imports {
			buf.WriteString(fmt.Sprintf("%s\t%s\t%d\t%t\n",
				path, imp.ImportedObject, imp.LineNumber, imp.TypecheckingOnly))
		}
	}
	return buf.String()
}

// WriteTSV renders results and writes them to path, creating parent
// directories as needed.
func WriteTSV(path string, results []scan.Result) error {
	return util.WriteFileWithDirs(path, []byte(TSV(results)), 0o644)
}
