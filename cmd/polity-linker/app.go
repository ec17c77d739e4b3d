package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/katakuxiko/polity-linker/internal/config"
	"github.com/katakuxiko/polity-linker/internal/corpus"
	"github.com/katakuxiko/polity-linker/internal/service"
	"github.com/katakuxiko/polity-linker/internal/store"
)

// loadCorpus reads the book from Postgres when a document is configured,
// otherwise from the corpus file.
func loadCorpus(ctx context.Context, c *config.Config) (*corpus.Corpus, error) {
	if !c.UseDatabase() {
		return corpus.Load(c.CorpusPath)
	}
	st, err := store.NewPgStore(ctx, c.PgConn)
	if err != nil {
		return nil, &corpus.MissingCorpusError{Source: "postgres:" + c.CorpusDoc, Err: err}
	}
	defer st.Close()
	return st.LoadCorpus(ctx, c.CorpusDoc)
}

func newProvider(c *config.Config) service.Provider {
	if c.Provider == config.ProviderOpenAI {
		return &service.OpenAIProvider{BaseURL: c.LMBaseURL, ChatModel: c.ChatModel}
	}
	return &service.GeminiProvider{ModelName: c.ChatModel, BaseURL: c.GeminiBaseURL}
}

func newNotesService(c *config.Config, log *zap.Logger) *service.NotesService {
	return service.NewNotesService(newProvider(c), c.RequestTimeout, log)
}
