package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhishektayde15/argo-chatbot-rag/internal/domain"
	"github.com/abhishektayde15/argo-chatbot-rag/internal/logger"
	recordmem "github.com/abhishektayde15/argo-chatbot-rag/internal/recordstore/memory"
	vectormem "github.com/abhishektayde15/argo-chatbot-rag/internal/vectorstore/memory"
)

// recordingStore counts upsert batch sizes on top of the in-memory store.
type recordingStore struct {
	*vectormem.Storage
	mu        sync.Mutex
	batches   []int
	dropErr   error
	upsertErr error
}

func newRecordingStore() *recordingStore {
	return &recordingStore{Storage: vectormem.NewStorage("test")}
}

func (s *recordingStore) Drop(ctx context.Context) error {
	if s.dropErr != nil {
		return s.dropErr
	}
	return s.Storage.Drop(ctx)
}

func (s *recordingStore) Upsert(ctx context.Context, docs []domain.SummaryDocument) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.mu.Lock()
	s.batches = append(s.batches, len(docs))
	s.mu.Unlock()
	return s.Storage.Upsert(ctx, docs)
}

// stubEmbedder returns a fixed-size vector derived from the text length and
// can be told to fail on its n-th call.
type stubEmbedder struct {
	dim    int
	calls  int
	failOn int
}

func (e *stubEmbedder) Name() string   { return "stub" }
func (e *stubEmbedder) Dimension() int { return e.dim }

func (e *stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.failOn > 0 && e.calls == e.failOn {
		return nil, errors.New("backend went away")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v := make([]float32, e.dim)
		v[0], v[1] = 1, float32(len(t))
		out[i] = v
	}
	return out, nil
}

func seedRecords(t *testing.T, n int) *recordmem.Store {
	t.Helper()
	store := recordmem.NewStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	recs := make([]domain.ObservationRecord, n)
	for i := range recs {
		// Several records share float and profile so only the offset keeps ids apart.
		recs[i] = domain.ObservationRecord{
			FloatID:       "5906142",
			ProfileNumber: i / 50,
			Time:          base.Add(time.Duration(i/50) * 240 * time.Hour),
			Lat:           -10.5, Lon: 70.1,
			Depth: float64(i % 50), Temperature: 28.1, Salinity: 35.1,
		}
	}
	_, err := store.Append(context.Background(), recs)
	require.NoError(t, err)
	return store
}

func TestRebuild_ThousandRecordsInBatchesOf300(t *testing.T) {
	ctx := context.Background()
	records := seedRecords(t, 1000)
	vectors := newRecordingStore()

	report, err := NewIndexer(records, vectors, &stubEmbedder{dim: 4}).Rebuild(ctx, 300)
	require.NoError(t, err)

	assert.Equal(t, []int{300, 300, 300, 100}, vectors.batches)
	assert.Equal(t, 1000, report.Documents)
	assert.Equal(t, 4, report.Batches)

	info, err := vectors.Describe(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1000, info.Count)
	assert.Equal(t, "stub", info.Embedder)
	assert.Equal(t, 4, info.Dimension)
}

func TestRebuild_ThroughputOnlyWhenVerbose(t *testing.T) {
	var logs bytes.Buffer
	logger.SetOutput(&logs)
	t.Cleanup(func() {
		logger.SetOutput(os.Stderr)
		logger.SetVerbose(false)
	})
	ctx := context.Background()

	_, err := NewIndexer(seedRecords(t, 10), newRecordingStore(), &stubEmbedder{dim: 4}).Rebuild(ctx, 5)
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "upserted batch 2/2 (offset 5, 5 documents)")
	assert.NotContains(t, logs.String(), "docs/s")

	logs.Reset()
	logger.SetVerbose(true)
	_, err = NewIndexer(seedRecords(t, 10), newRecordingStore(), &stubEmbedder{dim: 4}).Rebuild(ctx, 5)
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "[DEBUG] 10/10 documents after")
	assert.Contains(t, logs.String(), "docs/s")
}

func TestRebuild_CompleteForAnyBatchSize(t *testing.T) {
	ctx := context.Background()
	records := seedRecords(t, 137)
	for _, size := range []int{1, 2, 7, 50, 136, 137, 138, 1000} {
		t.Run(fmt.Sprint(size), func(t *testing.T) {
			vectors := newRecordingStore()
			report, err := NewIndexer(records, vectors, &stubEmbedder{dim: 2}).Rebuild(ctx, size)
			require.NoError(t, err)
			assert.Equal(t, 137, report.Documents)

			sum := 0
			for _, b := range vectors.batches {
				sum += b
			}
			assert.Equal(t, 137, sum)

			info, err := vectors.Describe(ctx)
			require.NoError(t, err)
			assert.Equal(t, 137, info.Count, "ids must not collide")
		})
	}
}

func TestRebuild_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	records := seedRecords(t, 20)
	vectors := newRecordingStore()
	ix := NewIndexer(records, vectors, &stubEmbedder{dim: 2})

	_, err := ix.Rebuild(ctx, 6)
	require.NoError(t, err)
	_, err = ix.Rebuild(ctx, 6)
	require.NoError(t, err)

	info, err := vectors.Describe(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, info.Count)
}

func TestRebuild_DropFailureIsNotFatal(t *testing.T) {
	records := seedRecords(t, 5)
	vectors := newRecordingStore()
	vectors.dropErr = errors.New("permission denied")

	report, err := NewIndexer(records, vectors, &stubEmbedder{dim: 2}).Rebuild(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 5, report.Documents)
}

func TestRebuild_EmbeddingFailureAborts(t *testing.T) {
	records := seedRecords(t, 10)
	vectors := newRecordingStore()

	_, err := NewIndexer(records, vectors, &stubEmbedder{dim: 2, failOn: 2}).Rebuild(context.Background(), 4)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingBackend)
	assert.Contains(t, err.Error(), "offset 4")
	assert.Equal(t, []int{4}, vectors.batches)
}

func TestRebuild_UpsertFailureAborts(t *testing.T) {
	vectors := newRecordingStore()
	vectors.upsertErr = errors.New("disk full")

	_, err := NewIndexer(seedRecords(t, 3), vectors, &stubEmbedder{dim: 2}).Rebuild(context.Background(), 2)
	assert.ErrorIs(t, err, domain.ErrVectorIndexUnavailable)
}

func TestRebuild_EmptyStoreAndBadBatchSize(t *testing.T) {
	vectors := newRecordingStore()
	ix := NewIndexer(recordmem.NewStore(), vectors, &stubEmbedder{dim: 2})

	report, err := ix.Rebuild(context.Background(), 10)
	require.NoError(t, err)
	assert.Zero(t, report.Documents)

	_, err = ix.Rebuild(context.Background(), 0)
	assert.Error(t, err)
}

func TestRebuild_DocumentIDsUseGlobalOffset(t *testing.T) {
	ctx := context.Background()
	vectors := newRecordingStore()
	_, err := NewIndexer(seedRecords(t, 3), vectors, &stubEmbedder{dim: 2}).Rebuild(ctx, 2)
	require.NoError(t, err)

	res, err := vectors.Search(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	var ids []string
	for _, r := range res {
		ids = append(ids, r.Document.ID)
		assert.Equal(t, "5906142", r.Document.Metadata[domain.MetaFloatID])
	}
	assert.ElementsMatch(t, []string{"profile_5906142_0_0", "profile_5906142_0_1", "profile_5906142_0_2"}, ids)
}

func TestNewRetriever_StartupChecks(t *testing.T) {
	ctx := context.Background()
	emb := &stubEmbedder{dim: 2}

	_, err := NewRetriever(ctx, emb, vectormem.NewStorage("missing"), 5)
	assert.ErrorIs(t, err, domain.ErrVectorIndexUnavailable)

	empty := vectormem.NewStorage("empty")
	require.NoError(t, empty.Create(ctx, domain.CollectionSpec{Dimension: 2, Embedder: "stub"}))
	_, err = NewRetriever(ctx, emb, empty, 5)
	assert.ErrorIs(t, err, domain.ErrVectorIndexUnavailable)

	other := vectormem.NewStorage("other")
	require.NoError(t, other.Create(ctx, domain.CollectionSpec{Dimension: 2, Embedder: "hashing"}))
	require.NoError(t, other.Upsert(ctx, []domain.SummaryDocument{{ID: "a", Embedding: []float32{1, 0}}}))
	_, err = NewRetriever(ctx, emb, other, 5)
	assert.ErrorIs(t, err, domain.ErrVectorIndexUnavailable)
	assert.Contains(t, err.Error(), "hashing")

	wrongDim := vectormem.NewStorage("dim")
	require.NoError(t, wrongDim.Create(ctx, domain.CollectionSpec{Dimension: 3, Embedder: "stub"}))
	require.NoError(t, wrongDim.Upsert(ctx, []domain.SummaryDocument{{ID: "a", Embedding: []float32{1, 0, 0}}}))
	_, err = NewRetriever(ctx, emb, wrongDim, 5)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestRetrieve_BoundedAndOrdered(t *testing.T) {
	ctx := context.Background()
	vectors := newRecordingStore()
	emb := &stubEmbedder{dim: 2}
	_, err := NewIndexer(seedRecords(t, 12), vectors, emb).Rebuild(ctx, 5)
	require.NoError(t, err)

	r, err := NewRetriever(ctx, emb, vectors, 0)
	require.NoError(t, err)

	res, err := r.Retrieve(ctx, "temperature near float 5906142", 0)
	require.NoError(t, err)
	assert.Len(t, res, DefaultTopK)
	for i := 1; i < len(res); i++ {
		assert.LessOrEqual(t, res[i-1].Distance, res[i].Distance)
	}

	res, err = r.Retrieve(ctx, "x", 50)
	require.NoError(t, err)
	assert.Len(t, res, 12)

	_, err = r.Retrieve(ctx, "  ", 3)
	assert.Error(t, err)
}

func TestAcquireRebuildLock(t *testing.T) {
	path := t.TempDir() + "/locks/index.lock"

	release, err := AcquireRebuildLock(path, 0)
	require.NoError(t, err)

	_, err = AcquireRebuildLock(path, 0)
	assert.ErrorIs(t, err, domain.ErrRebuildInProgress)

	release()
	release2, err := AcquireRebuildLock(path, time.Second)
	require.NoError(t, err)
	release2()
}
