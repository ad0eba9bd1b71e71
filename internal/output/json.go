// Package output renders scan results for files and pipelines.
package output

import (
	"encoding/json"

	"pyimports/internal/scan"
	"pyimports/internal/util"
)

// jsonImport is the stable wire shape of one record.
type jsonImport struct {
	ImportedObject   string `json:"imported_object"`
	LineNumber       int    `json:"line_number"`
	TypecheckingOnly bool   `json:"typechecking_only"`
}

// jsonDocument wraps the per-file map under a "data" key.
type jsonDocument struct {
	Data map[string][]jsonImport `json:"data"`
}

// JSON renders results as an indented document keyed by file path. Files
// that failed to parse are omitted; their absence, not an empty list, marks
// them unreadable.
func JSON(results []scan.Result) ([]byte, error) {
	doc := jsonDocument{Data: make(map[string][]jsonImport, len(results))}
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		records := make([]jsonImport, 0, len(r.Imports))
		for _, imp := range r.Imports {
			records = append(records, jsonImport{
				ImportedObject:   imp.ImportedObject,
				LineNumber:       imp.LineNumber,
				TypecheckingOnly: imp.TypecheckingOnly,
			})
		}
		doc.Data[r.Path] = records
	}
	return json.MarshalIndent(doc, "", "  ")
}

// WriteJSON renders results and writes them to path, creating parent
// directories as needed.
func WriteJSON(path string, results []scan.Result) error {
	data, err := JSON(results)
	if err != nil {
		return err
	}
	return util.WriteFileWithDirs(path, data, 0o644)
}
