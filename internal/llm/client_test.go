package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBaseURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://api.example.com/v1", normalizeBaseURL("https://api.example.com/v1"))
	assert.Equal(t, "https://api.example.com/v1", normalizeBaseURL("https://api.example.com/v1/"))
	assert.Equal(t, "https://api.example.com/v1", normalizeBaseURL("https://api.example.com/v1/chat/completions"))
	assert.Equal(t, "https://api.example.com/v1", normalizeBaseURL("https://api.example.com/v1/chat/completions/"))
	assert.Equal(t, "", normalizeBaseURL(""))
}

func TestStripFences(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `{"a":1}`, StripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, "plain text", StripFences("plain text"))
	assert.Equal(t, "label", StripFences("  label  "))
}

func TestComplete(t *testing.T) {
	t.Parallel()

	t.Run("returns assistant content", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/chat/completions", r.URL.Path)
			require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

			var req chatRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, "test-model", req.Model)
			require.Len(t, req.Messages, 2)

			resp := map[string]any{
				"choices": []map[string]any{
					{"message": map[string]any{"content": "meeting-scheduling"}},
				},
			}
			require.NoError(t, json.NewEncoder(w).Encode(resp))
		}))
		defer server.Close()

		client := NewClient(server.URL, "test-key", "test-model")
		out, err := client.Complete(context.Background(), "system", "user")
		require.NoError(t, err)
		assert.Equal(t, "meeting-scheduling", out)
	})

	t.Run("surfaces API errors", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			resp := map[string]any{"error": map[string]any{"message": "model overloaded"}}
			require.NoError(t, json.NewEncoder(w).Encode(resp))
		}))
		defer server.Close()

		client := NewClient(server.URL, "k", "m")
		_, err := client.Complete(context.Background(), "s", "u")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "model overloaded")
	})

	t.Run("surfaces HTTP failures", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream timeout", http.StatusBadGateway)
		}))
		defer server.Close()

		client := NewClient(server.URL, "k", "m")
		_, err := client.Complete(context.Background(), "s", "u")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP 502")
	})
}
