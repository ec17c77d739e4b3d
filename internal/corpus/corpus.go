// Package corpus holds the book text that every search runs against.
package corpus

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/katakuxiko/polity-linker/internal/model"
	"github.com/katakuxiko/polity-linker/internal/pdf"
)

// ErrEmpty is wrapped by MissingCorpusError when the text has no content.
var ErrEmpty = errors.New("corpus is empty")

// MissingCorpusError reports that the book could not be loaded.
type MissingCorpusError struct {
	Source string
	Err    error
}

func (e *MissingCorpusError) Error() string {
	return fmt.Sprintf("corpus %q unavailable: %v", e.Source, e.Err)
}

func (e *MissingCorpusError) Unwrap() error { return e.Err }

// Chapter is a span of the corpus introduced by a "CHAPTER n" line.
// Body starts after the heading line.
type Chapter struct {
	Title string
	Start int
	Body  int
	End   int
}

// Corpus is read-only after construction and safe for concurrent use.
type Corpus struct {
	name     string
	text     string
	chapters []Chapter
}

var chapterRe = regexp.MustCompile(`(?m)^CHAPTER \d+:?[ \t]+(.*)$`)

// Load reads a plain text or PDF book from disk.
func Load(path string) (*Corpus, error) {
	var (
		text string
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		text, err = pdf.ExtractText(path)
	} else {
		var data []byte
		data, err = os.ReadFile(path)
		text = pdf.Sanitize(string(data))
	}
	if err != nil {
		return nil, &MissingCorpusError{Source: path, Err: err}
	}
	return New(path, text)
}

// New builds a corpus from text obtained elsewhere (e.g. the database).
func New(name, text string) (*Corpus, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &MissingCorpusError{Source: name, Err: ErrEmpty}
	}
	return &Corpus{name: name, text: text, chapters: splitChapters(text)}, nil
}

func (c *Corpus) Name() string { return c.name }

func (c *Corpus) Text() string { return c.text }

// Chapters returns a copy of the chapter table in corpus order.
func (c *Corpus) Chapters() []Chapter {
	out := make([]Chapter, len(c.chapters))
	copy(out, c.chapters)
	return out
}

// ChapterAt returns the title of the chapter containing offset.
func (c *Corpus) ChapterAt(offset int) string {
	return c.SpanAt(offset).Title
}

// SpanAt returns the chapter containing offset.
func (c *Corpus) SpanAt(offset int) Chapter {
	i := sort.Search(len(c.chapters), func(i int) bool { return c.chapters[i].End > offset })
	if i < len(c.chapters) && c.chapters[i].Start <= offset {
		return c.chapters[i]
	}
	return Chapter{Title: model.UnknownChapter, End: len(c.text)}
}

func splitChapters(text string) []Chapter {
	locs := chapterRe.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return []Chapter{{Title: model.UnknownChapter, End: len(text)}}
	}
	var out []Chapter
	if locs[0][0] > 0 {
		out = append(out, Chapter{Title: model.UnknownChapter, End: locs[0][0]})
	}
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		title := strings.TrimSpace(text[loc[2]:loc[3]])
		if title == "" {
			title = model.UnknownChapter
		}
		out = append(out, Chapter{Title: title, Start: loc[0], Body: loc[1], End: end})
	}
	return out
}
