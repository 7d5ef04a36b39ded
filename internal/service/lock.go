package service

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/abhishektayde15/argo-chatbot-rag/internal/domain"
)

// AcquireRebuildLock takes the file lock that keeps rebuilds from overlapping.
// It retries until timeout and returns ErrRebuildInProgress if another
// process still holds the lock. The returned func releases it.
func AcquireRebuildLock(path string, timeout time.Duration) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return func() {}, fmt.Errorf("creating lock directory: %w", err)
	}
	l := flock.New(path)
	deadline := time.Now().Add(timeout)
	for {
		locked, err := l.TryLock()
		if err != nil {
			return func() {}, fmt.Errorf("cannot acquire rebuild lock: %w", err)
		}
		if locked {
			return func() { _ = l.Unlock() }, nil
		}
		if time.Now().After(deadline) {
			return func() {}, fmt.Errorf("%w (lock: %s)", domain.ErrRebuildInProgress, path)
		}
		time.Sleep(200 * time.Millisecond)
	}
}
