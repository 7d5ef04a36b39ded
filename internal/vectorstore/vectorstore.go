// Package vectorstore holds the ranking helpers shared by the VectorStore
// implementations in its subpackages.
package vectorstore

import (
	"fmt"
	"sort"

	"github.com/abhishektayde15/argo-chatbot-rag/internal/domain"
)

// DefaultCollection is the collection name used when none is configured.
const DefaultCollection = "argo_profiles"

// Rank sorts results by non-decreasing distance, breaking ties by document
// id, and keeps at most topK of them.
func Rank(results []domain.SearchResult, topK int) []domain.SearchResult {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].Document.ID < results[j].Document.ID
	})
	if topK < len(results) {
		results = results[:topK]
	}
	return results
}

// CheckDimension reports ErrDimensionMismatch when v does not have dim entries.
func CheckDimension(v []float32, dim int) error {
	if len(v) != dim {
		return fmt.Errorf("%w: got %d, want %d", domain.ErrDimensionMismatch, len(v), dim)
	}
	return nil
}
