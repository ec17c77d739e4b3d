package store

import (
	"context"
	"database/sql"
)

// ensureSchema creates the chapter table used as an alternative corpus source.
func ensureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS corpus_chapters (
			id SERIAL PRIMARY KEY,
			doc_name TEXT NOT NULL,
			position INT NOT NULL,
			title TEXT NOT NULL,
			body TEXT NOT NULL,
			UNIQUE (doc_name, position)
		)`,
		`CREATE INDEX IF NOT EXISTS corpus_chapters_doc_idx ON corpus_chapters (doc_name, position)`,
	}

	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
