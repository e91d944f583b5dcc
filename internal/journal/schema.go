package journal

import (
	"database/sql"
	"fmt"
)

// schema is the journal table definition. created_at is stored as
// RFC 3339 text so lexicographic comparison matches chronological order.
const schema = `
CREATE TABLE IF NOT EXISTS operations (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	kind              TEXT NOT NULL,
	mode              TEXT NOT NULL,
	original_tokens   INTEGER NOT NULL DEFAULT 0,
	compressed_tokens INTEGER NOT NULL DEFAULT 0,
	ratio             REAL NOT NULL DEFAULT 0,
	created_at        TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_operations_created_at ON operations(created_at);
CREATE INDEX IF NOT EXISTS idx_operations_kind ON operations(kind);
`

// migrate applies the schema. All statements are idempotent.
func migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("journal: migrate schema: %w", err)
	}
	return nil
}
