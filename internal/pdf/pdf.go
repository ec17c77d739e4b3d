package pdf

import (
	"fmt"
	"io"
	"os"
	"strings"

	"rsc.io/pdf"
)

// kernGap is the TJ adjustment, in thousandths of an em, past which a
// positioning number is read as a word break.
const kernGap = 200

// ExtractText reads every page of the PDF at path and returns its text.
// Line breaks follow the text positioning operators of each page, so
// headings drawn on their own line stay on their own line.
//
// rsc.io/pdf reports malformed files by panicking; those panics come back
// as errors.
func ExtractText(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	r, err := pdf.NewReader(f, fi.Size())
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		pageText(&sb, p)
		sb.WriteString("\n")
	}
	return Sanitize(sb.String()), nil
}

// pageText interprets the content streams of p. Glyph geometry from
// Page.Content is not used since fonts without a Widths array report zero
// advance, which loses every space and line break.
func pageText(sb *strings.Builder, p pdf.Page) {
	w := &textWriter{sb: sb, page: p}
	contents := p.V.Key("Contents")
	if contents.IsNull() {
		return
	}
	if contents.Kind() != pdf.Array {
		interpret(contents, w)
		return
	}
	for i := 0; i < contents.Len(); i++ {
		interpret(contents.Index(i), w)
	}
}

func interpret(strm pdf.Value, w *textWriter) {
	rc := strm.Reader()
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		panic(err)
	}
	// The rsc.io/pdf lexer reads past the end of a stream forever when a
	// string literal is left open.
	if !literalsClosed(data) {
		panic("unterminated string in content stream")
	}
	pdf.Interpret(strm, w.do)
}

// literalsClosed reports whether every ( string literal in a content stream
// is closed, honoring nesting, backslash escapes and % comments.
func literalsClosed(data []byte) bool {
	depth := 0
	for i := 0; i < len(data); i++ {
		c := data[i]
		switch {
		case depth > 0 && c == '\\':
			i++
		case depth > 0 && c == ')':
			depth--
		case c == '(':
			depth++
		case depth == 0 && c == '%':
			for i < len(data) && data[i] != '\n' && data[i] != '\r' {
				i++
			}
		}
	}
	return depth == 0
}

type textWriter struct {
	sb   *strings.Builder
	page pdf.Page
	enc  pdf.TextEncoding
	y    float64
}

func (w *textWriter) do(stk *pdf.Stack, op string) {
	n := stk.Len()
	args := make([]pdf.Value, n)
	for i := n - 1; i >= 0; i-- {
		args[i] = stk.Pop()
	}
	arity := func(want int) {
		if len(args) != want {
			panic(fmt.Sprintf("bad %s operator", op))
		}
	}

	switch op {
	case "BT":
		w.y = 0
	case "Tf":
		arity(2)
		w.enc = w.page.Font(args[0].Name()).Encoder()
	case "Td", "TD":
		arity(2)
		if args[1].Float64() != 0 {
			w.newline()
		} else {
			w.space()
		}
	case "T*":
		w.newline()
	case "Tm":
		arity(6)
		y := args[5].Float64()
		if y != w.y {
			w.newline()
		} else {
			w.space()
		}
		w.y = y
	case "Tj":
		arity(1)
		w.show(args[0])
	case "'":
		arity(1)
		w.newline()
		w.show(args[0])
	case "\"":
		arity(3)
		w.newline()
		w.show(args[2])
	case "TJ":
		arity(1)
		v := args[0]
		for i := 0; i < v.Len(); i++ {
			x := v.Index(i)
			if x.Kind() == pdf.String {
				w.show(x)
			} else if x.Float64() < -kernGap {
				w.space()
			}
		}
	}
}

func (w *textWriter) show(v pdf.Value) {
	raw := v.RawString()
	if w.enc != nil {
		raw = w.enc.Decode(raw)
	}
	w.sb.WriteString(raw)
}

func (w *textWriter) newline() {
	if w.sb.Len() == 0 || strings.HasSuffix(w.sb.String(), "\n") {
		return
	}
	w.sb.WriteString("\n")
}

func (w *textWriter) space() {
	s := w.sb.String()
	if s == "" || strings.HasSuffix(s, " ") || strings.HasSuffix(s, "\n") {
		return
	}
	w.sb.WriteString(" ")
}

// Sanitize normalizes line endings, drops NUL bytes and turns tabs into
// spaces. Line structure is preserved since chapter markers are line based.
func Sanitize(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\t", " ")
	return s
}
