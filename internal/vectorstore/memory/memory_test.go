package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhishektayde15/argo-chatbot-rag/internal/domain"
)

func doc(id string, v ...float32) domain.SummaryDocument {
	return domain.SummaryDocument{ID: id, Text: "text " + id, Embedding: v}
}

func TestStorage_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewStorage("")

	assert.ErrorIs(t, s.Drop(ctx), domain.ErrCollectionNotFound)
	_, err := s.Describe(ctx)
	assert.ErrorIs(t, err, domain.ErrVectorIndexUnavailable)

	require.NoError(t, s.Create(ctx, domain.CollectionSpec{Dimension: 2, Embedder: "hashing"}))
	require.NoError(t, s.Upsert(ctx, []domain.SummaryDocument{doc("a", 1, 0), doc("b", 0, 1)}))
	require.NoError(t, s.Upsert(ctx, []domain.SummaryDocument{doc("a", 1, 1)}))

	info, err := s.Describe(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.CollectionInfo{Name: "argo_profiles", Dimension: 2, Embedder: "hashing", Count: 2}, info)

	require.NoError(t, s.Drop(ctx))
	_, err = s.Describe(ctx)
	assert.ErrorIs(t, err, domain.ErrVectorIndexUnavailable)
}

func TestStorage_SearchOrderedAndBounded(t *testing.T) {
	ctx := context.Background()
	s := NewStorage("c")
	require.NoError(t, s.Create(ctx, domain.CollectionSpec{Dimension: 2}))
	require.NoError(t, s.Upsert(ctx, []domain.SummaryDocument{
		doc("far", -1, 0), doc("near", 1, 0.1), doc("mid", 0, 1),
	}))

	res, err := s.Search(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "near", res[0].Document.ID)
	assert.Equal(t, "mid", res[1].Document.ID)
	assert.LessOrEqual(t, res[0].Distance, res[1].Distance)

	res, err = s.Search(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, res, 3)
}

func TestStorage_DimensionChecks(t *testing.T) {
	ctx := context.Background()
	s := NewStorage("c")
	require.NoError(t, s.Create(ctx, domain.CollectionSpec{Dimension: 3}))

	err := s.Upsert(ctx, []domain.SummaryDocument{doc("a", 1, 0)})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	_, err = s.Search(ctx, []float32{1}, 1)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	assert.Error(t, s.Create(ctx, domain.CollectionSpec{Dimension: 3}))
	assert.Error(t, NewStorage("x").Create(ctx, domain.CollectionSpec{}))
}
