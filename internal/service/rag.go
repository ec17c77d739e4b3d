package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/katakuxiko/polity-linker/internal/model"
)

const DefaultRequestTimeout = 60 * time.Second

// NotesService turns retrieved passages into synthesized study notes with
// exactly one provider call per request. Failures are not retried.
type NotesService struct {
	provider Provider
	timeout  time.Duration
	log      *zap.Logger
}

// NewNotesService uses DefaultRequestTimeout when timeout <= 0 and a no-op
// logger when log is nil.
func NewNotesService(provider Provider, timeout time.Duration, log *zap.Logger) *NotesService {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &NotesService{provider: provider, timeout: timeout, log: log}
}

func (s *NotesService) Provider() Provider { return s.provider }

// Synthesize makes one provider call over the matches. Validation failures
// return ErrEmptyQuery, ErrNoMatches or ErrMissingAPIKey without reaching the
// provider; provider failures come back as *ExternalServiceError.
func (s *NotesService) Synthesize(ctx context.Context, concept string, matches []model.Match, apiKey string) (*model.SynthesisResult, error) {
	concept = strings.TrimSpace(concept)
	if concept == "" {
		return nil, ErrEmptyQuery
	}
	if len(matches) == 0 {
		return nil, ErrNoMatches
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	id := uuid.NewString()
	log := s.log.With(
		zap.String("synthesis_id", id),
		zap.String("concept", concept),
		zap.String("provider", s.provider.Name()),
	)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	gen, err := s.provider.New(ctx, apiKey)
	if err != nil {
		log.Warn("provider setup failed", zap.Error(err))
		return nil, &ExternalServiceError{Provider: s.provider.Name(), Err: err}
	}

	start := time.Now()
	notes, err := gen.Generate(ctx, BuildPrompt(concept, matches))
	if err != nil {
		log.Warn("synthesis failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return nil, &ExternalServiceError{Provider: s.provider.Name(), StatusCode: statusCode(err), Err: err}
	}
	log.Info("synthesis complete",
		zap.Int("matches", len(matches)),
		zap.Int("notes_len", len(notes)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &model.SynthesisResult{
		ID:       id,
		Concept:  concept,
		Provider: s.provider.Name(),
		Model:    s.provider.Model(),
		Notes:    notes,
		Matches:  matches,
	}, nil
}
