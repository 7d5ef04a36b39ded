package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abhishektayde15/argo-chatbot-rag/internal/domain"
)

// DefaultTopK is the number of documents retrieved when k is not given.
const DefaultTopK = 5

// Retriever embeds questions with the indexing embedder and searches the
// vector collection.
type Retriever struct {
	embedder domain.Embedder
	store    domain.VectorStore
	defaultK int
}

// NewRetriever checks that the collection exists, is non-empty and was built
// by the same embedder. Serving must not start when this fails.
func NewRetriever(ctx context.Context, embedder domain.Embedder, store domain.VectorStore, defaultK int) (*Retriever, error) {
	if defaultK <= 0 {
		defaultK = DefaultTopK
	}
	info, err := store.Describe(ctx)
	if err != nil {
		return nil, domain.Wrap("open collection", domain.ErrVectorIndexUnavailable, err)
	}
	if info.Count == 0 {
		return nil, domain.Wrap("open collection", domain.ErrVectorIndexUnavailable,
			fmt.Errorf("collection %q is empty; run the index command first", info.Name))
	}
	if info.Embedder != "" && info.Embedder != embedder.Name() {
		return nil, domain.Wrap("open collection", domain.ErrVectorIndexUnavailable,
			fmt.Errorf("collection %q was built with embedder %s, not %s; rebuild the index", info.Name, info.Embedder, embedder.Name()))
	}
	if info.Dimension != embedder.Dimension() {
		return nil, domain.Wrap("open collection", domain.ErrVectorIndexUnavailable,
			fmt.Errorf("%w: collection %q has dimension %d, embedder produces %d", domain.ErrDimensionMismatch, info.Name, info.Dimension, embedder.Dimension()))
	}
	return &Retriever{embedder: embedder, store: store, defaultK: defaultK}, nil
}

// Retrieve returns at most k documents nearest to query, nearest first.
// A k of zero or less means the default.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]domain.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query is empty")
	}
	if k <= 0 {
		k = r.defaultK
	}
	vecs, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, domain.Wrap("embed query", domain.ErrEmbeddingBackend, err)
	}
	if len(vecs) != 1 {
		return nil, domain.Wrap("embed query", domain.ErrEmbeddingBackend, fmt.Errorf("got %d vectors for 1 query", len(vecs)))
	}
	results, err := r.store.Search(ctx, vecs[0], k)
	if err != nil {
		return nil, domain.Wrap("search", domain.ErrVectorIndexUnavailable, err)
	}
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Texts returns the document texts of results in order.
func Texts(results []domain.SearchResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Document.Text
	}
	return out
}
