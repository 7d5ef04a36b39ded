package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abhishektayde15/argo-chatbot-rag/internal/batch"
	"github.com/abhishektayde15/argo-chatbot-rag/internal/domain"
	"github.com/abhishektayde15/argo-chatbot-rag/internal/logger"
	"github.com/abhishektayde15/argo-chatbot-rag/internal/summarizer"
	"github.com/abhishektayde15/argo-chatbot-rag/internal/vectorstore"
)

// DefaultBatchSize is the number of records embedded and upserted together.
const DefaultBatchSize = 1000

// Indexer rebuilds the vector collection from the record store.
type Indexer struct {
	records  domain.RecordStore
	vectors  domain.VectorStore
	embedder domain.Embedder
}

func NewIndexer(records domain.RecordStore, vectors domain.VectorStore, embedder domain.Embedder) *Indexer {
	return &Indexer{records: records, vectors: vectors, embedder: embedder}
}

// IndexReport describes a completed rebuild.
type IndexReport struct {
	Documents int
	Batches   int
	Elapsed   time.Duration
}

// pending is one batch moving through the rebuild stages.
type pending struct {
	window batch.Window
	docs   []domain.SummaryDocument
}

// Rebuild drops and recreates the collection, then indexes every stored
// record. Reading, embedding and upserting run as separate stages joined by
// single-slot channels; upserts happen one batch at a time in offset order.
// Any stage failure aborts the rebuild and leaves the partial collection.
func (ix *Indexer) Rebuild(ctx context.Context, batchSize int) (IndexReport, error) {
	start := time.Now()
	if batchSize < 1 {
		return IndexReport{}, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}

	logger.Section("Rebuild index")
	if err := ix.vectors.Drop(ctx); err != nil {
		if !errors.Is(err, domain.ErrCollectionNotFound) {
			logger.Warn("dropping collection failed, treating it as absent: %v", err)
		} else {
			logger.Debug("no previous collection to drop")
		}
	}
	spec := domain.CollectionSpec{Dimension: ix.embedder.Dimension(), Embedder: ix.embedder.Name()}
	if err := ix.vectors.Create(ctx, spec); err != nil {
		return IndexReport{}, domain.Wrap("create collection", domain.ErrVectorIndexUnavailable, err)
	}

	total, err := ix.records.CountAll(ctx)
	if err != nil {
		return IndexReport{}, domain.Wrap("count records", domain.ErrStorageUnavailable, err)
	}
	windows := batch.Plan(total, batchSize)
	logger.Info("indexing %d records in %d batches of up to %d with %s", total, len(windows), batchSize, spec.Embedder)

	rendered := make(chan pending, 1)
	embedded := make(chan pending, 1)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(rendered)
		for _, w := range windows {
			p, err := ix.render(gctx, w)
			if err != nil {
				return err
			}
			select {
			case rendered <- p:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	g.Go(func() error {
		defer close(embedded)
		for p := range rendered {
			if err := ix.embed(gctx, p); err != nil {
				return err
			}
			select {
			case embedded <- p:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	report := IndexReport{}
	g.Go(func() error {
		for p := range embedded {
			if err := ix.vectors.Upsert(gctx, p.docs); err != nil {
				return domain.Wrap(fmt.Sprintf("upsert batch at offset %d", p.window.Offset), domain.ErrVectorIndexUnavailable, err)
			}
			report.Documents += len(p.docs)
			report.Batches++
			logger.Info("upserted batch %d/%d (offset %d, %d documents)", p.window.Index+1, len(windows), p.window.Offset, len(p.docs))
			if logger.IsVerbose() {
				elapsed := time.Since(start)
				logger.Debug("%d/%d documents after %s (%.0f docs/s)", report.Documents, total,
					elapsed.Round(time.Millisecond), float64(report.Documents)/max(elapsed.Seconds(), 1e-9))
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return report, err
	}
	report.Elapsed = time.Since(start)
	return report, nil
}

// render reads one window and turns each record into a document with its
// text, metadata and globally unique id.
func (ix *Indexer) render(ctx context.Context, w batch.Window) (pending, error) {
	recs, err := ix.records.Page(ctx, w.Offset, w.Limit)
	if err != nil {
		return pending{}, domain.Wrap(fmt.Sprintf("read batch at offset %d", w.Offset), domain.ErrStorageUnavailable, err)
	}
	if len(recs) != w.Limit {
		return pending{}, domain.Wrap(fmt.Sprintf("read batch at offset %d", w.Offset), domain.ErrStorageUnavailable,
			fmt.Errorf("expected %d records, got %d; the store changed during the rebuild", w.Limit, len(recs)))
	}
	docs := make([]domain.SummaryDocument, len(recs))
	for i, r := range recs {
		docs[i] = domain.SummaryDocument{
			ID:       domain.DocumentID(r, w.Offset+i),
			Text:     summarizer.RenderRecord(r),
			Metadata: r.Metadata(),
		}
	}
	logger.Debug("rendered batch %d (offset %d)", w.Index+1, w.Offset)
	return pending{window: w, docs: docs}, nil
}

// embed fills in the embeddings of p.docs with a single embedder call.
func (ix *Indexer) embed(ctx context.Context, p pending) error {
	stage := fmt.Sprintf("embed batch at offset %d", p.window.Offset)
	texts := make([]string, len(p.docs))
	for i, d := range p.docs {
		texts[i] = d.Text
	}
	vecs, err := ix.embedder.Embed(ctx, texts)
	if err != nil {
		return domain.Wrap(stage, domain.ErrEmbeddingBackend, err)
	}
	if len(vecs) != len(texts) {
		return domain.Wrap(stage, domain.ErrEmbeddingBackend, fmt.Errorf("got %d vectors for %d texts", len(vecs), len(texts)))
	}
	for i, v := range vecs {
		if err := vectorstore.CheckDimension(v, ix.embedder.Dimension()); err != nil {
			return domain.Wrap(stage, domain.ErrEmbeddingBackend, err)
		}
		p.docs[i].Embedding = v
	}
	return nil
}
