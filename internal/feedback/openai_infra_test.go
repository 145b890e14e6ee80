package feedback

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/Vovarama1992/speech_coach/internal/ports"
	"github.com/goccy/go-json"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticKey(key string) ports.CredentialSource {
	return func() string { return key }
}

func chatResponse(content string) []byte {
	b, _ := json.Marshal(map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	})
	return b
}

func TestOpenAIClient_Analyze(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, SystemPrompt, req.Messages[0].Content)
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.Equal(t, "I feel good today", req.Messages[1].Content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(chatResponse("```json\n" + validReportJSON + "\n```"))
	}))
	defer server.Close()

	c := NewOpenAIClient(staticKey("test-key"), server.URL, "", 0)
	raw, err := c.Analyze(context.Background(), "I feel good today")
	require.NoError(t, err)
	assert.Contains(t, raw, "```json")

	report, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, Rating("positive"), report.Sentiment.Rating)
}

func TestOpenAIClient_EmptyInput(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	// checked before the credential
	c := NewOpenAIClient(staticKey(""), server.URL, "", 0)
	for _, in := range []string{"", "   ", "\n\t"} {
		_, err := c.Analyze(context.Background(), in)
		assert.ErrorIs(t, err, ErrEmptyInput)
	}
	assert.Equal(t, int32(0), calls.Load())
}

func TestOpenAIClient_MissingCredential(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	c := NewOpenAIClient(staticKey(""), server.URL, "", 0)
	_, err := c.Analyze(context.Background(), "hello")

	var cfgErr *ports.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, int32(0), calls.Load())
}

func TestOpenAIClient_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests"}}`))
	}))
	defer server.Close()

	c := NewOpenAIClient(staticKey("k"), server.URL, "", 0)
	_, err := c.Analyze(context.Background(), "hello")

	var aerr *AnalysisError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, http.StatusTooManyRequests, aerr.StatusCode)
	assert.Equal(t, `{"error":{"message":"Rate limit reached","type":"requests"}}`, aerr.Body)

	var apiErr *openai.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Rate limit reached", apiErr.Message)
}

func TestOpenAIClient_ServerErrorKeepsRawBody(t *testing.T) {
	const body = `{"error":{"message":"boom","type":"server_error","code":"x"}}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	c := NewOpenAIClient(staticKey("k"), server.URL, "", 0)
	_, err := c.Analyze(context.Background(), "hello")

	var aerr *AnalysisError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, http.StatusInternalServerError, aerr.StatusCode)
	assert.Equal(t, body, aerr.Body)
	assert.Equal(t, "analysis failed: 500 - "+body, aerr.Error())
}

func TestOpenAIClient_UnreadableResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>proxy</html>"))
	}))
	defer server.Close()

	c := NewOpenAIClient(staticKey("k"), server.URL, "", 0)
	_, err := c.Analyze(context.Background(), "hello")

	var aerr *AnalysisError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, http.StatusOK, aerr.StatusCode)
	assert.Equal(t, "<html>proxy</html>", aerr.Body)

	var nerr *ports.NetworkError
	assert.False(t, errors.As(err, &nerr))
}

func TestOpenAIClient_PlainTextError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream unavailable"))
	}))
	defer server.Close()

	c := NewOpenAIClient(staticKey("k"), server.URL, "", 0)
	_, err := c.Analyze(context.Background(), "hello")

	var aerr *AnalysisError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, http.StatusBadGateway, aerr.StatusCode)
	assert.Equal(t, "upstream unavailable", aerr.Body)
}

func TestOpenAIClient_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","choices":[]}`))
	}))
	defer server.Close()

	c := NewOpenAIClient(staticKey("k"), server.URL, "", 0)
	_, err := c.Analyze(context.Background(), "hello")

	var aerr *AnalysisError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, http.StatusOK, aerr.StatusCode)
	assert.Equal(t, `{"id":"x","choices":[]}`, aerr.Body)
	assert.ErrorIs(t, err, errNoChoices)
}

func TestOpenAIClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	c := NewOpenAIClient(staticKey("k"), url, "", 0)
	_, err := c.Analyze(context.Background(), "hello")

	var nerr *ports.NetworkError
	require.ErrorAs(t, err, &nerr)
}
