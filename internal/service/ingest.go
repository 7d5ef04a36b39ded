package service

import (
	"context"
	"fmt"

	"github.com/abhishektayde15/argo-chatbot-rag/internal/dataset"
	"github.com/abhishektayde15/argo-chatbot-rag/internal/domain"
	"github.com/abhishektayde15/argo-chatbot-rag/internal/logger"
)

// DefaultIngestChunk is the number of records written per transaction.
const DefaultIngestChunk = 1000

// Ingestor flattens datasets into the record store.
type Ingestor struct {
	store     domain.RecordStore
	chunkSize int
}

func NewIngestor(store domain.RecordStore) *Ingestor {
	return &Ingestor{store: store, chunkSize: DefaultIngestChunk}
}

// Ingest appends every valid record of ds and returns the number stored.
// Without truncate, ingesting the same dataset twice duplicates its rows.
func (in *Ingestor) Ingest(ctx context.Context, ds *dataset.Dataset, truncate bool) (int, error) {
	if err := ds.Validate(); err != nil {
		return 0, err
	}
	if truncate {
		if err := in.store.Truncate(ctx); err != nil {
			return 0, err
		}
		logger.Debug("record store truncated")
	}

	total := 0
	buf := make([]domain.ObservationRecord, 0, in.chunkSize)
	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		n, err := in.store.Append(ctx, buf)
		if err != nil {
			return fmt.Errorf("appending records %d-%d: %w", total, total+len(buf)-1, err)
		}
		total += n
		logger.Debug("appended %d records (total %d)", n, total)
		buf = buf[:0]
		return nil
	}
	for rec := range dataset.Flatten(ds) {
		buf = append(buf, rec)
		if len(buf) == in.chunkSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	if err := flush(); err != nil {
		return total, err
	}
	return total, nil
}
