package service

import (
	"strings"
	"unicode/utf8"

	"github.com/katakuxiko/polity-linker/internal/corpus"
	"github.com/katakuxiko/polity-linker/internal/model"
)

// DefaultWindow is the maximum number of runes kept on each side of a hit.
const DefaultWindow = 300

// Retriever finds every mention of a concept in the corpus.
type Retriever struct {
	Window int
}

// NewRetriever returns a Retriever keeping at most window runes on each
// side of a hit; window <= 0 means DefaultWindow.
func NewRetriever(window int) *Retriever {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Retriever{Window: window}
}

// Find returns one match per case-insensitive, non-overlapping occurrence of
// query, in corpus order. No occurrence is not an error.
func (r *Retriever) Find(c *corpus.Corpus, query string) ([]model.Match, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, ErrEmptyQuery
	}
	// EqualFold reads every invalid byte as U+FFFD.
	if !utf8.ValidString(q) {
		return nil, ErrInvalidQuery
	}
	text := c.Text()
	qRunes := utf8.RuneCountInString(q)

	matches := []model.Match{}
	for i := 0; i < len(text); {
		end, ok := runeSpan(text, i, qRunes)
		if ok && strings.EqualFold(text[i:end], q) {
			matches = append(matches, model.Match{
				Offset:  i,
				Chapter: c.ChapterAt(i),
				Term:    text[i:end],
				Text:    r.window(c, i, end),
			})
			i = end
			continue
		}
		if !ok {
			break
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return matches, nil
}

// runeSpan returns the byte offset n runes after start.
func runeSpan(s string, start, n int) (int, bool) {
	i := start
	for ; n > 0; n-- {
		if i >= len(s) {
			return 0, false
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return i, true
}

// window returns the sentence around text[start:end], clamped to r.Window
// runes on each side and to the chapter body holding the hit.
func (r *Retriever) window(c *corpus.Corpus, start, end int) string {
	text := c.Text()
	span := c.SpanAt(start)
	floor := span.Start
	if start >= span.Body {
		floor = span.Body
	}

	lo := start
	for n := 0; lo > floor && n < r.Window; n++ {
		ch, size := utf8.DecodeLastRuneInString(text[:lo])
		if isTerminator(ch) || (ch == '\n' && blankLineBefore(text, lo-size)) {
			break
		}
		lo -= size
	}
	hi := end
	for n := 0; hi < span.End && n < r.Window; n++ {
		ch, size := utf8.DecodeRuneInString(text[hi:])
		if ch == '\n' && blankLineAfter(text, hi) {
			break
		}
		hi += size
		if isTerminator(ch) {
			break
		}
	}
	return strings.Join(strings.Fields(text[lo:hi]), " ")
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// blankLineBefore reports whether the line ending at the newline text[nl]
// is blank.
func blankLineBefore(text string, nl int) bool {
	k := strings.LastIndexByte(text[:nl], '\n')
	return strings.TrimSpace(text[k+1:nl]) == ""
}

// blankLineAfter reports whether the line starting after the newline
// text[nl] is blank.
func blankLineAfter(text string, nl int) bool {
	rest := text[nl+1:]
	if k := strings.IndexByte(rest, '\n'); k >= 0 {
		rest = rest[:k]
	}
	return strings.TrimSpace(rest) == ""
}

// GroupByChapter buckets matches by chapter, keeping first-seen order.
func GroupByChapter(matches []model.Match) []model.ChapterHits {
	var out []model.ChapterHits
	index := map[string]int{}
	for _, m := range matches {
		i, ok := index[m.Chapter]
		if !ok {
			i = len(out)
			index[m.Chapter] = i
			out = append(out, model.ChapterHits{Chapter: m.Chapter})
		}
		out[i].Matches = append(out[i].Matches, m)
	}
	return out
}
