package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"github.com/katakuxiko/polity-linker/internal/corpus"
)

var ErrDocumentNotFound = errors.New("document not found")

// PgStore keeps whole books in Postgres, one row per chapter.
type PgStore struct {
	db *sql.DB
}

func NewPgStore(ctx context.Context, conn string) (*PgStore, error) {
	db, err := sql.Open("postgres", conn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := ensureSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &PgStore{db: db}, nil
}

func (s *PgStore) Close() error { return s.db.Close() }

// SaveDocument replaces every stored chapter of doc with the chapters of c.
func (s *PgStore) SaveDocument(ctx context.Context, doc string, c *corpus.Corpus) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM corpus_chapters WHERE doc_name = $1`, doc); err != nil {
		return 0, err
	}

	text := c.Text()
	chapters := c.Chapters()
	for i, ch := range chapters {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO corpus_chapters (doc_name, position, title, body)
			VALUES ($1, $2, $3, $4)
		`, doc, i, ch.Title, text[ch.Start:ch.End])
		if err != nil {
			return 0, fmt.Errorf("insert chapter %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(chapters), nil
}

// LoadDocument reassembles the stored text of doc in chapter order.
func (s *PgStore) LoadDocument(ctx context.Context, doc string) (string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT body
		FROM corpus_chapters
		WHERE doc_name = $1
		ORDER BY position
	`, doc)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var parts []string
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return "", err
		}
		parts = append(parts, body)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	if len(parts) == 0 {
		return "", ErrDocumentNotFound
	}
	// Bodies are stored verbatim, so concatenation restores the text.
	return strings.Join(parts, ""), nil
}

// LoadCorpus loads doc and wraps it as a corpus. Every failure is reported
// as a MissingCorpusError so callers treat both sources alike.
func (s *PgStore) LoadCorpus(ctx context.Context, doc string) (*corpus.Corpus, error) {
	text, err := s.LoadDocument(ctx, doc)
	if err != nil {
		return nil, &corpus.MissingCorpusError{Source: "postgres:" + doc, Err: err}
	}
	return corpus.New("postgres:"+doc, text)
}
