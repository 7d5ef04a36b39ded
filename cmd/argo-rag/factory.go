package main

import (
	"fmt"
	"os"
	"time"

	"github.com/abhishektayde15/argo-chatbot-rag/internal/config"
	"github.com/abhishektayde15/argo-chatbot-rag/internal/domain"
	"github.com/abhishektayde15/argo-chatbot-rag/internal/embedding/hashing"
	ollamaemb "github.com/abhishektayde15/argo-chatbot-rag/internal/embedding/ollama"
	openaiemb "github.com/abhishektayde15/argo-chatbot-rag/internal/embedding/openai"
	ollamallm "github.com/abhishektayde15/argo-chatbot-rag/internal/llm/ollama"
	openaillm "github.com/abhishektayde15/argo-chatbot-rag/internal/llm/openai"
	"github.com/abhishektayde15/argo-chatbot-rag/internal/logger"
	recordsqlite "github.com/abhishektayde15/argo-chatbot-rag/internal/recordstore/sqlite"
	"github.com/abhishektayde15/argo-chatbot-rag/internal/vectorstore/memory"
	"github.com/abhishektayde15/argo-chatbot-rag/internal/vectorstore/qdrant"
	vectorsqlite "github.com/abhishektayde15/argo-chatbot-rag/internal/vectorstore/sqlite"
)

func secs(n int) time.Duration { return time.Duration(n) * time.Second }

func openRecordStore(cfg *config.AppConfig) (domain.RecordStore, error) {
	return recordsqlite.NewStore(cfg.RecordStore.Path)
}

// newEmbedder builds the one embedder used for both indexing and querying.
func newEmbedder(cfg *config.AppConfig) (domain.Embedder, error) {
	switch cfg.Embedder.Type {
	case "hashing":
		return hashing.NewEmbedder(cfg.Embedder.Hashing.Dimension), nil
	case "openai":
		o := cfg.Embedder.OpenAI
		return openaiemb.NewClient(openaiemb.Config{
			BaseURL:    o.BaseURL,
			APIKeyEnv:  o.APIKeyEnv,
			Model:      o.Model,
			Timeout:    secs(o.TimeoutSecs),
			Dimension:  o.Dimension,
			MaxRetries: o.MaxRetries,
		})
	case "ollama":
		o := cfg.Embedder.Ollama
		return ollamaemb.NewClient(ollamaemb.Config{
			BaseURL:     o.BaseURL,
			Model:       o.Model,
			Timeout:     secs(o.TimeoutSecs),
			Dimensions:  o.Dimension,
			Concurrency: o.Concurrency,
		}), nil
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}
}

func openVectorStore(cfg *config.AppConfig) (domain.VectorStore, error) {
	vs := cfg.VectorStore
	switch vs.Type {
	case "sqlite":
		return vectorsqlite.Open(vs.SQLite.Path, vs.Collection)
	case "memory":
		logger.Warn("the memory vector store lives only as long as this process")
		return memory.NewStorage(vs.Collection), nil
	case "qdrant":
		q := vs.Qdrant
		key := q.APIKey
		if key == "" && q.APIKeyEnv != "" {
			key = os.Getenv(q.APIKeyEnv)
		}
		return qdrant.NewStorage(qdrant.Config{
			URL:        q.URL,
			APIKey:     key,
			Collection: vs.Collection,
			Timeout:    secs(q.TimeoutSecs),
		}), nil
	default:
		return nil, fmt.Errorf("unknown vector store: %s", vs.Type)
	}
}

func newGenerator(cfg *config.AppConfig) (domain.Generator, error) {
	switch cfg.Generator.Type {
	case "ollama":
		g := cfg.Generator.Ollama
		return ollamallm.NewGenerator(ollamallm.Config{
			BaseURL:     g.BaseURL,
			Model:       g.Model,
			Timeout:     secs(g.TimeoutSecs),
			Temperature: g.Temperature,
		}), nil
	case "openai":
		g := cfg.Generator.OpenAI
		return openaillm.NewGenerator(openaillm.Config{
			BaseURL:     g.BaseURL,
			APIKeyEnv:   g.APIKeyEnv,
			Model:       g.Model,
			Timeout:     secs(g.TimeoutSecs),
			Temperature: g.Temperature,
		})
	default:
		return nil, fmt.Errorf("unknown generator: %s", cfg.Generator.Type)
	}
}
