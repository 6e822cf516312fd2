package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carelink-ai/carelink/internal/config"
	apperrors "github.com/carelink-ai/carelink/internal/errors"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.GeminiConfig{
		APIKey:      "test-key",
		BaseURL:     baseURL,
		Model:       "gemini-1.5-pro",
		Temperature: 0.5,
		TopP:        0.9,
		Timeout:     5,
	})
}

func TestGenerateContent(t *testing.T) {
	var gotReq GenerateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{"parts": []map[string]string{{"text": "hello"}}}},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	text, err := client.GenerateContent(context.Background(), "describe my symptoms")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	// The fixed generation config rides along on every call
	require.NotNil(t, gotReq.GenerationConfig)
	assert.Equal(t, 0.5, gotReq.GenerationConfig.Temperature)
	assert.Equal(t, 0.9, gotReq.GenerationConfig.TopP)
	require.Len(t, gotReq.Contents, 1)
	assert.Equal(t, "describe my symptoms", gotReq.Contents[0].Parts[0].Text)
}

func TestGenerateContentAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GenerateContent(context.Background(), "hi")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrModelUnavailable.Code, apperrors.GetCode(err))
}

func TestGenerateContentEmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GenerateContent(context.Background(), "hi")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrModelEmpty.Code, apperrors.GetCode(err))
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	for i := 0; i < 5; i++ {
		_, err := client.GenerateContent(context.Background(), "hi")
		require.Error(t, err)
	}

	// Breaker is now open; the failure is reported without hitting the server
	_, err := client.GenerateContent(context.Background(), "hi")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrModelUnavailable.Code, apperrors.GetCode(err))
}
