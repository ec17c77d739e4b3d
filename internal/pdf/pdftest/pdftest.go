// Package pdftest writes small single-font PDF files for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Page is the raw content stream of one page, e.g.
// "BT /F1 12 Tf 72 720 Td (Preamble) Tj ET".
type Page struct {
	Content string
	Filter  string // stream /Filter name; empty for none
}

// Write stores a PDF with one page per entry under t.TempDir and returns
// its path. Every page shares a Courier font named /F1 with no Widths.
func Write(t testing.TB, pages ...Page) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book.pdf")
	if err := os.WriteFile(path, Build(pages...), 0o644); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	return path
}

// Build renders the file with a classic xref table.
func Build(pages ...Page) []byte {
	// 1 catalog, 2 page tree, 3 font, then a page and content pair each.
	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Courier >>",
	}
	kids := make([]string, 0, len(pages))
	for i, p := range pages {
		pageNum := 4 + 2*i
		kids = append(kids, fmt.Sprintf("%d 0 R", pageNum))
		objs = append(objs,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", pageNum+1),
			stream(p),
		)
	}
	objs[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func stream(p Page) string {
	filter := ""
	if p.Filter != "" {
		filter = " /Filter /" + p.Filter
	}
	return fmt.Sprintf("<< /Length %d%s >>\nstream\n%s\nendstream", len(p.Content), filter, p.Content)
}
