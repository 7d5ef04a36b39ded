package openai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator(t *testing.T, url string) *Generator {
	t.Helper()
	t.Setenv("TEST_OPENAI_KEY", "sk-test")
	g, err := NewGenerator(Config{BaseURL: url, APIKeyEnv: "TEST_OPENAI_KEY"})
	require.NoError(t, err)
	return g
}

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		w.Write([]byte(`{"choices":[{"message":{"content":"Salinity was 35.1 PSU."},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	out, err := newTestGenerator(t, srv.URL).Generate(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "Salinity was 35.1 PSU.", out)
}

func TestGenerate_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited","type":"requests"}}`))
	}))
	defer srv.Close()

	_, err := newTestGenerator(t, srv.URL).Generate(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestGenerate_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := newTestGenerator(t, srv.URL).Generate(context.Background(), "q")
	assert.Error(t, err)
}

func TestNewGenerator_MissingKey(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "")
	_, err := NewGenerator(Config{APIKeyEnv: "TEST_OPENAI_KEY"})
	assert.Error(t, err)
}
