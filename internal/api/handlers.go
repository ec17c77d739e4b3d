package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/katakuxiko/polity-linker/internal/corpus"
	"github.com/katakuxiko/polity-linker/internal/model"
	"github.com/katakuxiko/polity-linker/internal/service"
)

// Deps are the collaborators of the HTTP handlers.
type Deps struct {
	Corpus    *corpus.Corpus
	CorpusErr error // why Corpus is nil; rendered to users instead of failing
	Retriever *service.Retriever
	Notes     *service.NotesService
	APIKey    string // operator fallback when the request carries no key
	Log       *zap.Logger
}

// Handler holds the dependencies of the request handlers.
type Handler struct {
	corpus    *corpus.Corpus
	corpusErr error
	retriever *service.Retriever
	notes     *service.NotesService
	apiKey    string
	log       *zap.Logger
}

// NewHandler fills in defaults for the optional Deps: a DefaultWindow
// retriever, a no-op logger and, with neither Corpus nor CorpusErr set, a
// missing-corpus error.
func NewHandler(d Deps) *Handler {
	h := &Handler{
		corpus:    d.Corpus,
		corpusErr: d.CorpusErr,
		retriever: d.Retriever,
		notes:     d.Notes,
		apiKey:    d.APIKey,
		log:       d.Log,
	}
	if h.retriever == nil {
		h.retriever = service.NewRetriever(0)
	}
	if h.log == nil {
		h.log = zap.NewNop()
	}
	if h.corpus == nil && h.corpusErr == nil {
		h.corpusErr = &corpus.MissingCorpusError{Source: "(none)", Err: corpus.ErrEmpty}
	}
	return h
}

// Health is a liveness probe.
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.SendString("ok")
}

// Search returns every passage mentioning the concept.
func (h *Handler) Search(c *fiber.Ctx) error {
	var req model.SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": `invalid request, expected JSON: {"concept":"..."}`})
	}
	res, err := h.search(req.Concept)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(res)
}

// Notes searches the corpus and synthesizes notes from the matches.
func (h *Handler) Notes(c *fiber.Ctx) error {
	var req model.NotesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": `invalid request, expected JSON: {"concept":"...","api_key":"..."}`})
	}
	res, err := h.search(req.Concept)
	if err != nil {
		return h.fail(c, err)
	}
	if len(res.Matches) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   service.ErrNoMatches.Error(),
			"concept": res.Concept,
			"outcome": model.OutcomeNotFound,
		})
	}

	notes, err := h.notes.Synthesize(c.UserContext(), res.Concept, res.Matches, h.credential(req.APIKey, c.Get("X-API-Key")))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(notes)
}

func (h *Handler) search(concept string) (model.SearchResult, error) {
	if h.corpusErr != nil {
		return model.SearchResult{}, h.corpusErr
	}
	concept = strings.TrimSpace(concept)
	matches, err := h.retriever.Find(h.corpus, concept)
	if err != nil {
		return model.SearchResult{}, err
	}
	res := model.SearchResult{
		Concept:  concept,
		Outcome:  model.OutcomeNotFound,
		Count:    len(matches),
		Matches:  matches,
		Chapters: service.GroupByChapter(matches),
	}
	if len(matches) > 0 {
		res.Outcome = model.OutcomeFound
	}
	if res.Chapters == nil {
		res.Chapters = []model.ChapterHits{}
	}
	h.log.Debug("search", zap.String("concept", concept), zap.Int("matches", len(matches)))
	return res, nil
}

// credential picks the first non-empty key: form/body, header, operator default.
func (h *Handler) credential(keys ...string) string {
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			return k
		}
	}
	return h.apiKey
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := errorStatus(err)
	if status >= fiber.StatusInternalServerError {
		h.log.Warn("request failed", zap.String("path", c.Path()), zap.Int("status", status), zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": userMessage(err)})
}

func errorStatus(err error) int {
	var mce *corpus.MissingCorpusError
	var ext *service.ExternalServiceError
	switch {
	case errors.Is(err, service.ErrEmptyQuery), errors.Is(err, service.ErrInvalidQuery), errors.Is(err, service.ErrMissingAPIKey):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrNoMatches):
		return fiber.StatusNotFound
	case errors.As(err, &mce):
		return fiber.StatusServiceUnavailable
	case errors.As(err, &ext):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// userMessage is the text shown to users for err.
func userMessage(err error) string {
	var mce *corpus.MissingCorpusError
	var ext *service.ExternalServiceError
	switch {
	case errors.Is(err, service.ErrEmptyQuery):
		return "Please enter a concept to search."
	case errors.Is(err, service.ErrMissingAPIKey):
		return "Enter your API key to generate smart notes."
	case errors.As(err, &mce):
		return "The book text is not available: " + mce.Err.Error()
	case errors.As(err, &ext):
		return "The AI service failed: " + ext.Err.Error()
	default:
		return err.Error()
	}
}
