package domain

import (
	"context"
	"time"
)

// ObservationRecord is one valid (profile, level) cell of a float profile file.
// Records are immutable once produced by the flattener.
type ObservationRecord struct {
	FloatID       string
	ProfileNumber int
	Time          time.Time
	Lat           float64
	Lon           float64
	Depth         float64
	Temperature   float64
	Salinity      float64
}

// SummaryDocument is the unit stored in the vector index.
type SummaryDocument struct {
	ID        string
	Text      string
	Embedding []float32
	Metadata  map[string]string
}

// SearchResult is a retrieved document with its distance to the query.
// Smaller distances are closer.
type SearchResult struct {
	Document SummaryDocument
	Distance float64
}

// CollectionSpec describes a vector collection at creation time.
type CollectionSpec struct {
	Dimension int
	Embedder  string
}

// CollectionInfo describes an existing vector collection.
type CollectionInfo struct {
	Name      string
	Dimension int
	Embedder  string
	Count     int
}

// StoreOverview aggregates the contents of the tabular store.
type StoreOverview struct {
	Rows     int
	Floats   int
	Profiles int
	First    time.Time
	Last     time.Time
	MinDepth float64
	MaxDepth float64
}

// Embedder converts texts into vectors. The same Embedder value must be used
// for indexing and for querying a collection.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// RecordStore is the append-only tabular store of observation records.
// Appending the same records twice stores them twice.
type RecordStore interface {
	Append(ctx context.Context, records []ObservationRecord) (int, error)
	CountAll(ctx context.Context) (int, error)
	// Page returns up to limit records starting at offset, in insertion order.
	Page(ctx context.Context, offset, limit int) ([]ObservationRecord, error)
	Truncate(ctx context.Context) error
	Overview(ctx context.Context) (StoreOverview, error)
	Close() error
}

// VectorStore persists one named collection of summary documents and
// supports nearest-neighbour search over it.
type VectorStore interface {
	// Drop deletes the collection. It returns ErrCollectionNotFound when there
	// is nothing to delete.
	Drop(ctx context.Context) error
	Create(ctx context.Context, spec CollectionSpec) error
	// Describe returns ErrVectorIndexUnavailable when the collection is missing.
	Describe(ctx context.Context) (CollectionInfo, error)
	Upsert(ctx context.Context, docs []SummaryDocument) error
	// Search returns at most topK results ordered by non-decreasing distance.
	Search(ctx context.Context, vector []float32, topK int) ([]SearchResult, error)
	Close() error
}

// Generator produces free text from a single prompt.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}
