package indexing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fluentpro/internal/repository"

	"github.com/google/uuid"
)

type stubEmbedder struct {
	mu       sync.Mutex
	failures int
}

func (s *stubEmbedder) Embed(context.Context, string) ([]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return nil, errors.New("embed failed")
	}
	return []float32{0.5}, nil
}

type stubIndex struct {
	mu       sync.Mutex
	err      error
	upserted []uuid.UUID
}

func (s *stubIndex) Upsert(_ context.Context, roleID uuid.UUID, _ []float32, _ *uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.upserted = append(s.upserted, roleID)
	return nil
}

type stubMarker struct {
	mu     sync.Mutex
	marked []uuid.UUID
}

func (s *stubMarker) MarkEmbedded(_ context.Context, roleID uuid.UUID, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marked = append(s.marked, roleID)
	return nil
}

func TestQueue_IndexesEnqueuedRole(t *testing.T) {
	embedder := &stubEmbedder{}
	index := &stubIndex{}
	marker := &stubMarker{}

	q := NewQueue(embedder, index, marker, 1, 4, nil)
	role := repository.Role{ID: uuid.New(), Title: "Operations Manager"}
	q.EnqueueRole(role)
	q.Close()

	index.mu.Lock()
	defer index.mu.Unlock()
	if len(index.upserted) != 1 || index.upserted[0] != role.ID {
		t.Fatalf("expected role upserted, got %v", index.upserted)
	}

	marker.mu.Lock()
	defer marker.mu.Unlock()
	if len(marker.marked) != 1 {
		t.Fatal("expected role marked embedded")
	}
}

func TestQueue_RetriesTransientEmbedFailure(t *testing.T) {
	embedder := &stubEmbedder{failures: 1}
	index := &stubIndex{}

	q := NewQueue(embedder, index, nil, 1, 4, nil)
	q.EnqueueRole(repository.Role{ID: uuid.New(), Title: "Compliance Officer"})
	q.Close()

	index.mu.Lock()
	defer index.mu.Unlock()
	if len(index.upserted) != 1 {
		t.Fatalf("expected retry to index the role, got %d upserts", len(index.upserted))
	}
}

func TestQueue_PermanentFailureIsSwallowed(t *testing.T) {
	embedder := &stubEmbedder{}
	index := &stubIndex{err: errors.New("index down")}

	q := NewQueue(embedder, index, nil, 1, 4, nil)
	q.EnqueueRole(repository.Role{ID: uuid.New(), Title: "Freight Coordinator"})
	// Close drains; a permanently failing role must not hang or panic.
	q.Close()
}

func TestQueue_IgnoresNilRole(t *testing.T) {
	q := NewQueue(&stubEmbedder{}, &stubIndex{}, nil, 1, 4, nil)
	q.EnqueueRole(repository.Role{})
	q.Close()
}

func TestQueue_CloseIsIdempotent(t *testing.T) {
	q := NewQueue(&stubEmbedder{}, &stubIndex{}, nil, 1, 4, nil)
	q.Close()
	q.Close()
}
