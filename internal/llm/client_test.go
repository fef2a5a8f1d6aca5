package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trrebwatch/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(config.LLMConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		Model:      "test-model",
		Timeout:    5 * time.Second,
		RatePerSec: 100,
	})
	return client, server
}

func TestComplete(t *testing.T) {
	var captured chatRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "a,b,c\n1,2,3"}},
			},
		})
	})

	got, err := client.Complete(context.Background(), "You are a CSV table extractor.", "extract this")
	require.NoError(t, err)
	assert.Equal(t, "a,b,c\n1,2,3", got)

	// Requests must be deterministic.
	assert.Equal(t, float64(0), captured.Temperature)
	assert.Equal(t, "test-model", captured.Model)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
}

func TestComplete_ServiceError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"overloaded"}}`))
	})

	_, err := client.Complete(context.Background(), "sys", "prompt")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestComplete_EmptyChoices(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})

	_, err := client.Complete(context.Background(), "sys", "prompt")
	assert.Error(t, err)
}

func TestComplete_MissingAPIKey(t *testing.T) {
	client := NewClient(config.LLMConfig{BaseURL: "http://localhost:1", Model: "m"})
	_, err := client.Complete(context.Background(), "sys", "prompt")
	assert.Error(t, err)
}

func TestComplete_ContextCancelled(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := client.Complete(ctx, "sys", "prompt")
	assert.Error(t, err)
}
