package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/liliang-cn/sqvect/v2/pkg/core"

	"github.com/abhishektayde15/argo-chatbot-rag/internal/domain"
	"github.com/abhishektayde15/argo-chatbot-rag/internal/vectorstore"
)

var _ domain.VectorStore = (*Storage)(nil)

// Storage is a simple in-memory vector store using brute-force cosine distance.
// It holds a single named collection.
type Storage struct {
	mu   sync.RWMutex
	name string
	coll *collection
}

type collection struct {
	spec  domain.CollectionSpec
	order []string
	docs  map[string]domain.SummaryDocument
}

func NewStorage(name string) *Storage {
	if name == "" {
		name = vectorstore.DefaultCollection
	}
	return &Storage{name: name}
}

func (s *Storage) Drop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.coll == nil {
		return domain.ErrCollectionNotFound
	}
	s.coll = nil
	return nil
}

func (s *Storage) Create(ctx context.Context, spec domain.CollectionSpec) error {
	if spec.Dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.coll != nil {
		return fmt.Errorf("collection %q already exists", s.name)
	}
	s.coll = &collection{spec: spec, docs: make(map[string]domain.SummaryDocument)}
	return nil
}

func (s *Storage) Describe(ctx context.Context) (domain.CollectionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.coll == nil {
		return domain.CollectionInfo{}, fmt.Errorf("%w: collection %q does not exist", domain.ErrVectorIndexUnavailable, s.name)
	}
	return domain.CollectionInfo{
		Name:      s.name,
		Dimension: s.coll.spec.Dimension,
		Embedder:  s.coll.spec.Embedder,
		Count:     len(s.coll.docs),
	}, nil
}

// Upsert replaces documents that share an id.
func (s *Storage) Upsert(ctx context.Context, docs []domain.SummaryDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.coll == nil {
		return fmt.Errorf("%w: collection %q does not exist", domain.ErrVectorIndexUnavailable, s.name)
	}
	for _, d := range docs {
		if err := vectorstore.CheckDimension(d.Embedding, s.coll.spec.Dimension); err != nil {
			return fmt.Errorf("document %s: %w", d.ID, err)
		}
	}
	for _, d := range docs {
		if _, exists := s.coll.docs[d.ID]; !exists {
			s.coll.order = append(s.coll.order, d.ID)
		}
		s.coll.docs[d.ID] = d
	}
	return nil
}

func (s *Storage) Search(ctx context.Context, vector []float32, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.coll == nil {
		return nil, fmt.Errorf("%w: collection %q does not exist", domain.ErrVectorIndexUnavailable, s.name)
	}
	if err := vectorstore.CheckDimension(vector, s.coll.spec.Dimension); err != nil {
		return nil, err
	}
	if topK <= 0 {
		return nil, nil
	}
	results := make([]domain.SearchResult, 0, len(s.coll.order))
	for _, id := range s.coll.order {
		d := s.coll.docs[id]
		results = append(results, domain.SearchResult{Document: d, Distance: 1 - core.CosineSimilarity(vector, d.Embedding)})
	}
	return vectorstore.Rank(results, topK), nil
}

func (s *Storage) Close() error { return nil }
