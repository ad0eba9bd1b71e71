package history

import "database/sql"

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at TIMESTAMP NOT NULL,
	duration_ms INTEGER NOT NULL,
	files INTEGER NOT NULL,
	imports INTEGER NOT NULL,
	typechecking_imports INTEGER NOT NULL,
	failures INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS file_imports (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	path TEXT NOT NULL,
	imported_object TEXT NOT NULL,
	line_number INTEGER NOT NULL,
	typechecking_only INTEGER NOT NULL,
	PRIMARY KEY (run_id, path, imported_object, line_number)
);

CREATE INDEX IF NOT EXISTS idx_file_imports_path ON file_imports(path);
`

func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
