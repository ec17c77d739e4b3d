package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// geminiServer answers generateContent with the given status and body.
func geminiServer(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "g-key", r.Header.Get("x-goog-api-key"))

		var req struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		if assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) && assert.NotEmpty(t, req.Contents) {
			assert.Contains(t, req.Contents[0].Parts[0].Text, "The President is elected by an electoral college.")
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts, &calls
}

func TestGeminiProviderAgainstServer(t *testing.T) {
	ts, calls := geminiServer(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"  ## Holistic Overview\n..."}]},"finishReason":"STOP"}]}`)

	svc := NewNotesService(&GeminiProvider{BaseURL: ts.URL}, time.Second, nil)
	res, err := svc.Synthesize(context.Background(), "President", sampleMatches, "g-key")
	require.NoError(t, err)

	assert.Equal(t, "## Holistic Overview\n...", res.Notes)
	assert.Equal(t, "gemini", res.Provider)
	assert.Equal(t, DefaultGeminiModel, res.Model)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestGeminiProviderFailures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantErr    string
	}{
		{
			name:    "empty candidates",
			status:  http.StatusOK,
			body:    `{"candidates":[]}`,
			wantErr: "empty response",
		},
		{
			name:       "rejected key",
			status:     http.StatusBadRequest,
			body:       `{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`,
			wantStatus: http.StatusBadRequest,
			wantErr:    "API key not valid",
		},
		{
			name:       "quota exhausted",
			status:     http.StatusTooManyRequests,
			body:       `{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`,
			wantStatus: http.StatusTooManyRequests,
			wantErr:    "exhausted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, calls := geminiServer(t, tt.status, tt.body)

			svc := NewNotesService(&GeminiProvider{BaseURL: ts.URL}, time.Second, nil)
			_, err := svc.Synthesize(context.Background(), "President", sampleMatches, "g-key")

			var ext *ExternalServiceError
			require.ErrorAs(t, err, &ext)
			assert.Equal(t, "gemini", ext.Provider)
			assert.Equal(t, tt.wantStatus, ext.StatusCode)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, int32(1), atomic.LoadInt32(calls))
		})
	}
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, statusCode(genai.APIError{Code: http.StatusForbidden}))
	assert.Equal(t, http.StatusNotFound, statusCode(&genai.APIError{Code: http.StatusNotFound}))
	assert.Equal(t, 0, statusCode(errors.New("connection reset")))
}
