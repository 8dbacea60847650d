package clients

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/sentiflow-kv/internal/models"
)

func TestHuggingFaceClient_Generate(t *testing.T) {
	var got models.TextGenerationRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer hf_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`[{"generated_text":"Bot: negative\nUser:"}]`))
	}))
	defer srv.Close()

	h := NewHuggingFaceClient(srv.URL, "", "hf_test", time.Second)
	text, err := h.Generate(context.Background(), "User: I am so sad today\n", 8)

	require.NoError(t, err)
	assert.Equal(t, "Bot: negative\nUser:", text)
	assert.Equal(t, "User: I am so sad today\n", got.Inputs)
	assert.Equal(t, 8, got.Parameters.MaxNewTokens)
	assert.False(t, got.Parameters.ReturnFullText)
}

func TestHuggingFaceClient_GenerateSingleObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"generated_text":"Bot: neutral"}`))
	}))
	defer srv.Close()

	text, err := NewHuggingFaceClient(srv.URL, "", "", time.Second).Generate(context.Background(), "p", 8)

	require.NoError(t, err)
	assert.Equal(t, "Bot: neutral", text)
}

func TestHuggingFaceClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[{"generated_text":"Bot: positive"}]`))
	}))
	defer srv.Close()

	h := NewHuggingFaceClient(srv.URL, "", "", time.Second, WithInitialBackoff(time.Millisecond))
	text, err := h.Generate(context.Background(), "p", 8)

	require.NoError(t, err)
	assert.Equal(t, "Bot: positive", text)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHuggingFaceClient_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Invalid credentials"}`))
	}))
	defer srv.Close()

	h := NewHuggingFaceClient(srv.URL, "", "", time.Second, WithInitialBackoff(time.Millisecond))
	_, err := h.Generate(context.Background(), "p", 8)

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHuggingFaceClient_GivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	h := NewHuggingFaceClient(srv.URL, "", "", time.Second, WithInitialBackoff(time.Millisecond))
	_, err := h.Generate(context.Background(), "p", 8)

	require.Error(t, err)
	assert.Equal(t, int32(MAX_RETRIES), calls.Load())
}

func TestHuggingFaceClient_HealthCheck(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))
	defer healthy.Close()
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	assert.True(t, NewHuggingFaceClient(healthy.URL, "", "", time.Second).HealthCheck(context.Background()))
	assert.False(t, NewHuggingFaceClient(down.URL, "", "", time.Second).HealthCheck(context.Background()))
}

func TestHuggingFaceClient_WithHTTPClient(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, USER_AGENT, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`[{"generated_text":"Bot: neutral"}]`))
	}))
	defer srv.Close()

	h := NewHuggingFaceClient(srv.URL, "", "", time.Second, WithHTTPClient(srv.Client()))
	text, err := h.Generate(context.Background(), "User: Hi, my name is Bob\n", 8)

	require.NoError(t, err)
	assert.Equal(t, "Bot: neutral", text)
	assert.Same(t, srv.Client(), h.Client)
}

func TestNewHuggingFaceClient_DefaultEndpoint(t *testing.T) {
	h := NewHuggingFaceClient("", "meta-llama/Llama-2-7b-chat-hf", "", time.Second)
	assert.Equal(t, HF_INFERENCE_BASE_URL+"meta-llama/Llama-2-7b-chat-hf", h.endpoint)
}

func TestOpenAIClient_Generate(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "llama-2-7b-chat",
			"choices": [{
				"index": 0,
				"finish_reason": "length",
				"message": {"role": "assistant", "content": "Bot: positive"}
			}]
		}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("sk-test", srv.URL+"/v1/", "llama-2-7b-chat", option.WithMaxRetries(0))
	text, err := c.Generate(context.Background(), "User: I am so happy today\n", 8)

	require.NoError(t, err)
	assert.Equal(t, "Bot: positive", text)
	assert.Equal(t, "llama-2-7b-chat", body["model"])
	assert.EqualValues(t, 8, body["max_tokens"])
}

func TestOpenAIClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded"}}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("sk-test", srv.URL+"/v1/", "gpt-4o-mini", option.WithMaxRetries(0))
	_, err := c.Generate(context.Background(), "prompt", 8)

	assert.Error(t, err)
}
