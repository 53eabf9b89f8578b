package retrieval

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrieve(t *testing.T) {
	t.Parallel()

	t.Run("returns scored passages", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/search", r.URL.Path)

			var req searchRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, "offsite venues", req.Query)
			require.Equal(t, "conv-1", req.ScopeID)
			require.Equal(t, 5, req.Limit)

			resp := searchResponse{Passages: []Passage{
				{Text: "last year's offsite was in Hakone", Score: 0.92},
				{Text: "the team prefers early sessions", Score: 0.71},
			}}
			require.NoError(t, json.NewEncoder(w).Encode(resp))
		}))
		defer server.Close()

		client := NewClient(server.URL)
		passages, err := client.Retrieve(context.Background(), "offsite venues", "conv-1", 5)
		require.NoError(t, err)
		require.Len(t, passages, 2)
		assert.Equal(t, 0.92, passages[0].Score)
	})

	t.Run("surfaces service failures", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "index unavailable", http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := NewClient(server.URL)
		_, err := client.Retrieve(context.Background(), "q", "scope", 3)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP 503")
	})
}
