package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katakuxiko/polity-linker/internal/model"
)

// stubProvider hands out a generator backed by fn and counts calls.
type stubProvider struct {
	fn       func(ctx context.Context, prompt string) (string, error)
	newErr   error
	calls    int32
	lastKey  string
	newCalls int32
}

func (p *stubProvider) Name() string  { return "stub" }
func (p *stubProvider) Model() string { return "stub-model" }

func (p *stubProvider) New(_ context.Context, apiKey string) (Generator, error) {
	atomic.AddInt32(&p.newCalls, 1)
	p.lastKey = apiKey
	if p.newErr != nil {
		return nil, p.newErr
	}
	return generatorFunc(func(ctx context.Context, prompt string) (string, error) {
		atomic.AddInt32(&p.calls, 1)
		return p.fn(ctx, prompt)
	}), nil
}

type generatorFunc func(ctx context.Context, prompt string) (string, error)

func (f generatorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func echo(_ context.Context, prompt string) (string, error) { return prompt, nil }

var sampleMatches = []model.Match{
	{Offset: 4, Chapter: "Union Executive", Text: "The President is elected by an electoral college."},
	{Offset: 54, Chapter: "Union Executive", Text: "The President serves a five-year term."},
}

func TestSynthesizeEchoContainsConceptAndMatches(t *testing.T) {
	p := &stubProvider{fn: echo}
	svc := NewNotesService(p, 0, nil)

	res, err := svc.Synthesize(context.Background(), "President", sampleMatches, "key-123")
	require.NoError(t, err)

	assert.Contains(t, res.Notes, "President")
	for _, m := range sampleMatches {
		assert.Contains(t, res.Notes, m.Text)
	}
	assert.Equal(t, "President", res.Concept)
	assert.Equal(t, "stub", res.Provider)
	assert.Equal(t, "stub-model", res.Model)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, sampleMatches, res.Matches)
	assert.Equal(t, "key-123", p.lastKey)
	assert.Equal(t, int32(1), atomic.LoadInt32(&p.calls))
}

func TestSynthesizeValidation(t *testing.T) {
	tests := []struct {
		name    string
		concept string
		matches []model.Match
		key     string
		wantErr error
	}{
		{name: "empty concept", concept: " ", matches: sampleMatches, key: "k", wantErr: ErrEmptyQuery},
		{name: "no matches", concept: "Judiciary", matches: nil, key: "k", wantErr: ErrNoMatches},
		{name: "missing key", concept: "President", matches: sampleMatches, key: "  ", wantErr: ErrMissingAPIKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &stubProvider{fn: echo}
			svc := NewNotesService(p, 0, nil)

			_, err := svc.Synthesize(context.Background(), tt.concept, tt.matches, tt.key)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, int32(0), atomic.LoadInt32(&p.newCalls), "provider must not be contacted")
		})
	}
}

func TestSynthesizeFailureIsNotRetried(t *testing.T) {
	netErr := errors.New("dial tcp: connection refused")
	p := &stubProvider{fn: func(context.Context, string) (string, error) { return "", netErr }}
	svc := NewNotesService(p, 0, nil)

	res, err := svc.Synthesize(context.Background(), "President", sampleMatches, "k")
	require.Error(t, err)
	assert.Nil(t, res)

	var ext *ExternalServiceError
	require.ErrorAs(t, err, &ext)
	assert.Equal(t, "stub", ext.Provider)
	assert.ErrorIs(t, err, netErr)
	assert.Equal(t, int32(1), atomic.LoadInt32(&p.calls))
}

func TestSynthesizeProviderSetupFailure(t *testing.T) {
	p := &stubProvider{newErr: errors.New("bad key format")}
	svc := NewNotesService(p, 0, nil)

	_, err := svc.Synthesize(context.Background(), "President", sampleMatches, "k")
	var ext *ExternalServiceError
	require.ErrorAs(t, err, &ext)
	assert.Equal(t, int32(0), atomic.LoadInt32(&p.calls))
}

func TestSynthesizeTimeout(t *testing.T) {
	p := &stubProvider{fn: func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	svc := NewNotesService(p, 10*time.Millisecond, nil)

	_, err := svc.Synthesize(context.Background(), "President", sampleMatches, "k")
	var ext *ExternalServiceError
	require.ErrorAs(t, err, &ext)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestOpenAIProviderAgainstServer(t *testing.T) {
	var calls int32
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  ## Holistic Overview\n..."},"finish_reason":"stop"}]}`))
	}))
	defer ts.Close()

	svc := NewNotesService(&OpenAIProvider{BaseURL: ts.URL + "/v1", ChatModel: "gemma"}, time.Second, nil)
	res, err := svc.Synthesize(context.Background(), "President", sampleMatches, "sk-test")
	require.NoError(t, err)

	assert.Equal(t, "## Holistic Overview\n...", res.Notes)
	assert.Equal(t, "openai", res.Provider)
	assert.Equal(t, "gemma", res.Model)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestOpenAIProviderUnauthorized(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`))
	}))
	defer ts.Close()

	svc := NewNotesService(&OpenAIProvider{BaseURL: ts.URL + "/v1", ChatModel: "gemma"}, time.Second, nil)
	_, err := svc.Synthesize(context.Background(), "President", sampleMatches, "wrong")

	var ext *ExternalServiceError
	require.ErrorAs(t, err, &ext)
	assert.Equal(t, http.StatusUnauthorized, ext.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
