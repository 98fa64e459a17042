package coach

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fakeEndpoint(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "gemini-1.5-flash", "test-key", zap.NewNop())
}

func modelReply(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	}
}

func TestAsk_ReturnsModelText(t *testing.T) {
	var gotBody generateRequest
	c := fakeEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		require.NoError(t, json.NewEncoder(w).Encode(modelReply("play for picks early")))
	})

	out := c.Ask(context.Background(), "how to open Ascent A site?", "")
	assert.Equal(t, "play for picks early", out)
	require.Len(t, gotBody.Contents, 1)
	assert.Equal(t, "how to open Ascent A site?", gotBody.Contents[0].Parts[0].Text)
	assert.Equal(t, DefaultInstruction, gotBody.SystemInstruction.Parts[0].Text)
}

func TestAsk_NonSuccessIsOfflineFallback(t *testing.T) {
	c := fakeEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	assert.Equal(t, FallbackOffline, c.Ask(context.Background(), "q", ""))
}

func TestAsk_TransportFailureIsCommsFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening: the POST itself fails
	c := New(srv.URL, "gemini-1.5-flash", "k", zap.NewNop())

	assert.Equal(t, FallbackComms, c.Ask(context.Background(), "q", ""))
}

func TestAsk_MalformedBodyIsCommsFallback(t *testing.T) {
	c := fakeEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	})
	assert.Equal(t, FallbackComms, c.Ask(context.Background(), "q", ""))
}

func TestAsk_EmptyCandidatesIsNoTextFallback(t *testing.T) {
	c := fakeEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})
	assert.Equal(t, FallbackNoText, c.Ask(context.Background(), "q", ""))
}

func TestRefineMessage_StripsWrappingQuotes(t *testing.T) {
	c := fakeEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(modelReply("\"Lock in. We take this one together.\"")))
	})
	out := c.RefineMessage(context.Background(), "lets win lol")
	assert.Equal(t, "Lock in. We take this one together.", out)
}

func TestMapInsight_UsesMapNameInPrompt(t *testing.T) {
	var prompt string
	c := fakeEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		prompt = req.Contents[0].Parts[0].Text
		require.NoError(t, json.NewEncoder(w).Encode(modelReply("mid control wins Fracture")))
	})

	out := c.MapInsight(context.Background(), "Fracture")
	assert.Equal(t, "mid control wins Fracture", out)
	assert.Contains(t, prompt, "Fracture")
}
