package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gleamform/survey-backend/internal"
)

func TestClient_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "test-model", req.Model)
		require.NotEmpty(t, req.Messages)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "hello there"}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(zap.NewNop(), server.URL, "test-key", "test-model")

	content, err := client.Complete(context.Background(), []Message{
		{Role: RoleUser, Content: "hi"},
	})
	require.NoError(t, err)
	require.Equal(t, "hello there", content)
}

func TestClient_Complete_GatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(zap.NewNop(), server.URL, "test-key", "test-model")

	_, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	require.ErrorIs(t, err, internal.ErrGeneratorUnavailable)
}

func TestClient_Complete_NotConfigured(t *testing.T) {
	client := NewClient(zap.NewNop(), "", "", "test-model")
	require.False(t, client.Available())

	_, err := client.Complete(context.Background(), nil)
	require.ErrorIs(t, err, internal.ErrGeneratorUnavailable)
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around object", `Here you go: {"a":1} enjoy`, `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, extractJSON(tt.content))
		})
	}
}
