package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3", req.Model)
		assert.False(t, req.Stream)
		if assert.Len(t, req.Messages, 1) {
			assert.Equal(t, "user", req.Messages[0].Role)
			assert.Equal(t, "hello", req.Messages[0].Content)
		}
		w.Write([]byte(`{"message":{"role":"assistant","content":"The water is warm."},"done":true}`))
	}))
	defer srv.Close()

	g := NewGenerator(Config{BaseURL: srv.URL})
	out, err := g.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "The water is warm.", out)
	assert.Equal(t, "ollama:llama3", g.Name())
}

func TestGenerate_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model 'llama3' not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewGenerator(Config{BaseURL: srv.URL}).Generate(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	_, err = NewGenerator(Config{BaseURL: "http://127.0.0.1:1"}).Generate(context.Background(), "q")
	assert.Error(t, err)
}
