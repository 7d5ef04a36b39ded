package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhishektayde15/argo-chatbot-rag/internal/config"
	"github.com/abhishektayde15/argo-chatbot-rag/internal/logger"
	"github.com/abhishektayde15/argo-chatbot-rag/internal/service"
)

const profilesJSON = `{
  "platform_number": ["5906142"],
  "latitude": [-10.5, -10.7],
  "longitude": [70.1, 70.3],
  "juld": [27028.5, 27038.5],
  "pres": [[5, 10, 20], [5, 10, 20]],
  "temp": [[28.1, 27.9, 26.5], [28.3, null, 26.0]],
  "psal": [[35.1, 35.2, 35.3], [35.0, 35.1, 35.2]]
}`

func setup(t *testing.T) (dir, cfgPath string) {
	t.Helper()
	dir = t.TempDir()
	cfgPath = filepath.Join(dir, "config.yaml")
	cfg := fmt.Sprintf(`
record_store:
  path: %[1]s/argo.db
vector_store:
  type: sqlite
  sqlite:
    path: %[1]s/vectors.db
generator:
  type: ollama
  ollama:
    base_url: http://127.0.0.1:1
    timeout_secs: 2
index:
  batch_size: 2
  lock_file: %[1]s/index.lock
`, dir)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "profiles.json"), []byte(profilesJSON), 0o644))

	var logs bytes.Buffer
	logger.SetOutput(&logs)
	t.Cleanup(func() {
		logger.SetOutput(os.Stderr)
		logger.SetVerbose(false)
	})
	return dir, cfgPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCLI_IngestIndexAsk(t *testing.T) {
	dir, cfg := setup(t)

	out, err := run(t, "--config", cfg, "ingest", filepath.Join(dir, "profiles.json"))
	require.NoError(t, err)
	assert.Contains(t, out, "Inserted 5 observations for float 5906142")

	out, err = run(t, "--config", cfg, "ingest", "--truncate", filepath.Join(dir, "profiles.json"))
	require.NoError(t, err)
	assert.Contains(t, out, "Inserted 5")

	out, err = run(t, "--config", cfg, "index")
	require.NoError(t, err)
	assert.Contains(t, out, "Indexed 5 documents in 3 batches")

	out, err = run(t, "--config", cfg, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "5 observations from 1 float(s) across 2 profiles")
	assert.Contains(t, out, "Vectors: 5 documents")
	assert.NotContains(t, out, "out of date")

	out, err = run(t, "--config", cfg, "ask", "--sources", "-k", "2", "temperature", "for", "float", "5906142")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, service.DiagnosticMarker), out)
	assert.Contains(t, out, "Sources:")
	assert.Contains(t, out, "profile_5906142_")
}

func TestCLI_AskWithoutIndexFails(t *testing.T) {
	_, cfg := setup(t)
	_, err := run(t, "--config", cfg, "ask", "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vector index unavailable")
}

func TestCLI_IngestMissingFile(t *testing.T) {
	dir, cfg := setup(t)
	_, err := run(t, "--config", cfg, "ingest", filepath.Join(dir, "absent.json"))
	assert.ErrorContains(t, err, "source read error")
}

func TestFactories(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	emb, err := newEmbedder(cfg)
	require.NoError(t, err)
	assert.Equal(t, "hashing", emb.Name())
	assert.Equal(t, 384, emb.Dimension())

	gen, err := newGenerator(cfg)
	require.NoError(t, err)
	assert.Equal(t, "ollama:llama3", gen.Name())

	cfg.VectorStore.Type = "memory"
	vs, err := openVectorStore(cfg)
	require.NoError(t, err)
	vs.Close()

	cfg.Embedder.Type = "bert"
	_, err = newEmbedder(cfg)
	assert.Error(t, err)
	cfg.VectorStore.Type = "chroma"
	_, err = openVectorStore(cfg)
	assert.Error(t, err)
	cfg.Generator.Type = "gemini"
	_, err = newGenerator(cfg)
	assert.Error(t, err)
}
