package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceRead is returned when the raw dataset is missing variables or
	// has the wrong shape.
	ErrSourceRead = errors.New("source read error")

	// ErrStorageUnavailable is returned when the tabular store cannot be
	// opened or written.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrVectorIndexUnavailable is returned when the vector collection is
	// missing, empty or unreachable.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrCollectionNotFound is returned by VectorStore.Drop when there is no
	// collection to delete.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrEmbeddingBackend is returned when embeddings cannot be computed.
	ErrEmbeddingBackend = errors.New("embedding backend error")

	// ErrGenerationBackend is returned when the generator fails.
	ErrGenerationBackend = errors.New("generation backend error")

	// ErrDimensionMismatch is returned when a vector does not have the
	// dimension of its collection.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrRebuildInProgress is returned when another rebuild holds the lock.
	ErrRebuildInProgress = errors.New("rebuild already in progress")
)

// StageError attaches the pipeline stage to an error while keeping the
// taxonomy sentinel reachable through errors.Is.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	if e.Stage == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Wrap tags err with stage and kind. It returns nil when err is nil.
func Wrap(stage string, kind, err error) error {
	if err == nil {
		return nil
	}
	if kind != nil && !errors.Is(err, kind) {
		err = fmt.Errorf("%w: %w", kind, err)
	}
	return &StageError{Stage: stage, Err: err}
}
