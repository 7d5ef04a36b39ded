// Package sqlite is the persistent VectorStore, backed by a sqvect database
// file. sqvect owns the collections, the vector blobs and the scoring; this
// package maps them onto the domain types and keeps the embedder name that
// built each collection in a side table of the same file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/liliang-cn/sqvect/v2/pkg/core"

	"github.com/abhishektayde15/argo-chatbot-rag/internal/domain"
	"github.com/abhishektayde15/argo-chatbot-rag/internal/vectorstore"
)

var _ domain.VectorStore = (*Storage)(nil)

const embedderSchema = `
CREATE TABLE IF NOT EXISTS collection_embedders (
	collection TEXT PRIMARY KEY,
	embedder TEXT NOT NULL DEFAULT ''
);
`

// Storage is a VectorStore bound to one collection of a sqvect database.
type Storage struct {
	store      *core.SQLiteStore
	collection string
	// Embedding ids are unique per file in sqvect, so they carry the
	// collection name as a prefix.
	prefix string
}

// Open opens (creating if needed) the database at path and binds the store to
// the named collection.
func Open(path, collection string) (*Storage, error) {
	if path == "" {
		return nil, domain.Wrap("open vector store", domain.ErrVectorIndexUnavailable, errors.New("database path cannot be empty"))
	}
	if collection == "" {
		collection = vectorstore.DefaultCollection
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, domain.Wrap("open vector store", domain.ErrVectorIndexUnavailable, fmt.Errorf("creating data directory: %w", err))
		}
	}

	// Dimension 0 leaves the check to each collection.
	store, err := core.New(path, 0)
	if err != nil {
		return nil, domain.Wrap("open vector store", domain.ErrVectorIndexUnavailable, err)
	}
	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		store.Close()
		return nil, domain.Wrap("open vector store", domain.ErrVectorIndexUnavailable, err)
	}
	if _, err := store.GetDB().ExecContext(ctx, embedderSchema); err != nil {
		store.Close()
		return nil, domain.Wrap("open vector store", domain.ErrVectorIndexUnavailable, fmt.Errorf("creating embedder table: %w", err))
	}
	return &Storage{store: store, collection: collection, prefix: collection + ":"}, nil
}

func (s *Storage) Close() error { return s.store.Close() }

// lookup returns the bound collection, or nil when it does not exist.
func (s *Storage) lookup(ctx context.Context) (*core.Collection, error) {
	colls, err := s.store.ListCollections(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range colls {
		if c.Name == s.collection {
			return c, nil
		}
	}
	return nil, nil
}

func (s *Storage) mustLookup(ctx context.Context, op string) (*core.Collection, error) {
	coll, err := s.lookup(ctx)
	if err != nil {
		return nil, domain.Wrap(op, domain.ErrVectorIndexUnavailable, err)
	}
	if coll == nil {
		return nil, fmt.Errorf("%w: collection %q does not exist", domain.ErrVectorIndexUnavailable, s.collection)
	}
	return coll, nil
}

func (s *Storage) Drop(ctx context.Context) error {
	coll, err := s.lookup(ctx)
	if err != nil {
		return domain.Wrap("drop collection", domain.ErrVectorIndexUnavailable, err)
	}
	if coll == nil {
		return domain.ErrCollectionNotFound
	}
	if err := s.store.DeleteCollection(ctx, s.collection); err != nil {
		return domain.Wrap("drop collection", domain.ErrVectorIndexUnavailable, err)
	}
	if _, err := s.store.GetDB().ExecContext(ctx, "DELETE FROM collection_embedders WHERE collection = ?", s.collection); err != nil {
		return domain.Wrap("drop collection", domain.ErrVectorIndexUnavailable, err)
	}
	return nil
}

func (s *Storage) Create(ctx context.Context, spec domain.CollectionSpec) error {
	if spec.Dimension <= 0 {
		return errors.New("invalid dimension")
	}
	if _, err := s.store.CreateCollection(ctx, s.collection, spec.Dimension); err != nil {
		return domain.Wrap("create collection", domain.ErrVectorIndexUnavailable, err)
	}
	_, err := s.store.GetDB().ExecContext(ctx, `
		INSERT INTO collection_embedders (collection, embedder) VALUES (?, ?)
		ON CONFLICT (collection) DO UPDATE SET embedder = excluded.embedder
	`, s.collection, spec.Embedder)
	if err != nil {
		return domain.Wrap("create collection", domain.ErrVectorIndexUnavailable, err)
	}
	return nil
}

func (s *Storage) Describe(ctx context.Context) (domain.CollectionInfo, error) {
	if _, err := s.mustLookup(ctx, "describe collection"); err != nil {
		return domain.CollectionInfo{}, err
	}
	stats, err := s.store.GetCollectionStats(ctx, s.collection)
	if err != nil {
		return domain.CollectionInfo{}, domain.Wrap("describe collection", domain.ErrVectorIndexUnavailable, err)
	}
	info := domain.CollectionInfo{Name: s.collection, Dimension: stats.Dimensions, Count: int(stats.Count)}

	var embedder sql.NullString
	err = s.store.GetDB().QueryRowContext(ctx,
		"SELECT embedder FROM collection_embedders WHERE collection = ?", s.collection,
	).Scan(&embedder)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return domain.CollectionInfo{}, domain.Wrap("describe collection", domain.ErrVectorIndexUnavailable, err)
	}
	info.Embedder = embedder.String
	return info, nil
}

// Upsert writes docs in one sqvect batch, replacing rows with the same id.
func (s *Storage) Upsert(ctx context.Context, docs []domain.SummaryDocument) error {
	if len(docs) == 0 {
		return nil
	}
	coll, err := s.mustLookup(ctx, "upsert")
	if err != nil {
		return err
	}
	embs := make([]*core.Embedding, len(docs))
	for i, d := range docs {
		if err := vectorstore.CheckDimension(d.Embedding, coll.Dimensions); err != nil {
			return fmt.Errorf("document %s: %w", d.ID, err)
		}
		embs[i] = &core.Embedding{
			ID:           s.prefix + d.ID,
			CollectionID: coll.ID,
			Collection:   s.collection,
			Vector:       d.Embedding,
			Content:      d.Text,
			Metadata:     d.Metadata,
		}
	}
	if err := s.store.UpsertBatch(ctx, embs); err != nil {
		return domain.Wrap("upsert", domain.ErrVectorIndexUnavailable, err)
	}
	return nil
}

func (s *Storage) Search(ctx context.Context, vector []float32, topK int) ([]domain.SearchResult, error) {
	coll, err := s.mustLookup(ctx, "search")
	if err != nil {
		return nil, err
	}
	if err := vectorstore.CheckDimension(vector, coll.Dimensions); err != nil {
		return nil, err
	}
	if topK <= 0 {
		return nil, nil
	}

	// Ties are broken by id in Rank, so take every candidate from sqvect.
	scored, err := s.store.Search(ctx, vector, core.SearchOptions{Collection: s.collection, TopK: math.MaxInt32})
	if err != nil {
		return nil, domain.Wrap("search", domain.ErrVectorIndexUnavailable, err)
	}
	results := make([]domain.SearchResult, 0, len(scored))
	for _, se := range scored {
		results = append(results, domain.SearchResult{
			Document: domain.SummaryDocument{
				ID:        strings.TrimPrefix(se.ID, s.prefix),
				Text:      se.Content,
				Embedding: se.Vector,
				Metadata:  se.Metadata,
			},
			Distance: 1 - se.Score,
		})
	}
	return vectorstore.Rank(results, topK), nil
}
