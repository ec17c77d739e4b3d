package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/katakuxiko/polity-linker/internal/corpus"
	"github.com/katakuxiko/polity-linker/internal/store"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Store a book (.txt or .pdf) in Postgres, one row per chapter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.PgConn == "" {
			return errors.New("pg_conn is not configured (set PG_CONN)")
		}
		ctx := cmd.Context()

		c, err := corpus.Load(args[0])
		if err != nil {
			return err
		}
		doc, _ := cmd.Flags().GetString("doc")
		if doc == "" {
			doc = docName(args[0])
		}

		st, err := store.NewPgStore(ctx, cfg.PgConn)
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := st.SaveDocument(ctx, doc, c)
		if err != nil {
			return fmt.Errorf("save %s: %w", doc, err)
		}
		logger.Info("book ingested", zap.String("doc", doc), zap.Int("chapters", n))
		fmt.Fprintf(cmd.OutOrStdout(), "stored %d chapters as %q; serve it with CORPUS_DOC=%s\n", n, doc, doc)
		return nil
	},
}

// docName derives a document name from a file path: "books/pol.txt" -> "pol".
func docName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func init() {
	ingestCmd.Flags().String("doc", "", "document name (default: file name without extension)")
}
