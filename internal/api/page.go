package api

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"

	"github.com/gofiber/fiber/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"github.com/katakuxiko/polity-linker/internal/model"
	"github.com/katakuxiko/polity-linker/internal/service"
	"github.com/katakuxiko/polity-linker/internal/util"
)

const (
	snippetsPerChapter = 3
	snippetRunes       = 280
)

//go:embed templates/index.html
var templateFS embed.FS

var (
	indexTmpl  = template.Must(template.ParseFS(templateFS, "templates/index.html"))
	htmlPolicy = bluemonday.UGCPolicy()
)

type chapterCard struct {
	Title    string
	Snippets []string
	More     int
}

type pageData struct {
	Concept      string
	Count        int
	Chapters     []chapterCard
	Error        string
	Warning      string
	Info         string
	Notes        template.HTML
	NotesWarning string
	NotesError   string
}

// Index renders the search form. A POST, or a GET carrying ?concept=, also
// runs the search and, when a key is available, the synthesis. Keys are
// never read from the query string; a GET only uses the operator key.
func (h *Handler) Index(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		concept := c.Query("concept")
		if concept == "" {
			return h.render(c, pageData{})
		}
		return h.render(c, h.buildPage(c, concept, ""))
	}
	return h.render(c, h.buildPage(c, c.FormValue("concept"), c.FormValue("api_key")))
}

func (h *Handler) buildPage(c *fiber.Ctx, concept, apiKey string) pageData {
	data := pageData{Concept: concept}

	res, err := h.search(data.Concept)
	switch {
	case errors.Is(err, service.ErrEmptyQuery):
		data.Warning = userMessage(err)
		return data
	case err != nil:
		data.Error = userMessage(err)
		return data
	}
	data.Concept = res.Concept
	if len(res.Matches) == 0 {
		data.Info = fmt.Sprintf("No mentions found for '%s' in the current material.", res.Concept)
		return data
	}

	data.Count = res.Count
	data.Chapters = cards(res.Chapters)

	key := h.credential(apiKey)
	if key == "" {
		data.NotesWarning = userMessage(service.ErrMissingAPIKey)
		return data
	}
	notes, err := h.notes.Synthesize(c.UserContext(), res.Concept, res.Matches, key)
	if err != nil {
		h.log.Warn("synthesis failed", zap.String("concept", res.Concept), zap.Error(err))
		data.NotesError = userMessage(err)
		return data
	}
	html, err := renderMarkdown(notes.Notes)
	if err != nil {
		data.NotesError = err.Error()
		return data
	}
	data.Notes = html
	return data
}

func (h *Handler) render(c *fiber.Ctx, data pageData) error {
	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, data); err != nil {
		h.log.Error("render page", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).SendString("failed to render page")
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func cards(chapters []model.ChapterHits) []chapterCard {
	out := make([]chapterCard, 0, len(chapters))
	for _, ch := range chapters {
		card := chapterCard{Title: ch.Chapter}
		for i, m := range ch.Matches {
			if i == snippetsPerChapter {
				card.More = len(ch.Matches) - snippetsPerChapter
				break
			}
			card.Snippets = append(card.Snippets, util.TruncateRunes(m.Text, snippetRunes))
		}
		out = append(out, card)
	}
	return out
}

// renderMarkdown converts model output to sanitized HTML.
func renderMarkdown(md string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render notes: %w", err)
	}
	return template.HTML(htmlPolicy.SanitizeBytes(buf.Bytes())), nil
}
