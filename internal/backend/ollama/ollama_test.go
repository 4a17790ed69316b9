package ollama

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	ollama "github.com/danilofalcao/torchserve-gateway/internal/api/ollama/v1"
	torchserve "github.com/danilofalcao/torchserve-gateway/internal/api/torchserve/v1"
	"github.com/danilofalcao/torchserve-gateway/internal/backend"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T, h http.HandlerFunc) backend.Backend {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewOllamaBackend(Options{
		Endpoint: srv.URL,
		Models:   map[string]string{"llama2-7b-chat": "llama2:7b-chat"},
		Timeout:  2 * time.Second,
	})
}

func TestPredictUsesRawPromptAndModelMapping(t *testing.T) {
	be := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		var req ollama.GenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "llama2:7b-chat", req.Model)
		require.Equal(t, "[INST] Hi [/INST] ", req.Prompt)
		require.True(t, req.Raw)
		require.False(t, req.Stream)
		json.NewEncoder(w).Encode(ollama.GenerateResponse{Response: "Hello!", Done: true})
	})

	got, err := be.Predict(context.Background(), "llama2-7b-chat", "[INST] Hi [/INST] ")
	require.NoError(t, err)
	require.Equal(t, "Hello!", got.GeneratedText)
}

func TestPredictNotFound(t *testing.T) {
	be := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":"model 'nope' not found"}`)
	})

	_, err := be.Predict(context.Background(), "nope", "p")
	require.True(t, backend.IsNotFound(err))
}

func TestListModelsConvertsTags(t *testing.T) {
	be := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		io.WriteString(w, `{"models":[{"name":"llama2:7b-chat","digest":"sha256:abc","size":1}]}`)
	})

	body, err := be.ListModels(context.Background())
	require.NoError(t, err)

	var listing torchserve.ListModelsResponse
	require.NoError(t, json.Unmarshal(body, &listing))
	require.Equal(t, []torchserve.ModelSummary{{ModelName: "llama2:7b-chat", ModelURL: "sha256:abc"}}, listing.Models)
}

func TestModelInfo(t *testing.T) {
	be := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/show", r.URL.Path)
		var req ollama.ShowRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Model != "llama2:7b-chat" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, `{"template":"{{ .Prompt }}","details":{"family":"llama"}}`)
	})

	details, err := be.ModelInfo(context.Background(), "llama2-7b-chat")
	require.NoError(t, err)
	require.Len(t, details, 1)
	require.Equal(t, "llama2-7b-chat", details[0].ModelName)
	require.Equal(t, "ollama", details[0].Runtime)
	require.Contains(t, details[0].Extra, "details")

	_, err = be.ModelInfo(context.Background(), "other")
	require.True(t, backend.IsNotFound(err))
}

func TestHealthCheckFailure(t *testing.T) {
	be := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := be.HealthCheck(context.Background())
	require.Equal(t, backend.KindFailure, backend.KindOf(err))
}
