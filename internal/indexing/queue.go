package indexing

import (
	"context"
	"sync"
	"time"

	"fluentpro/internal/pkg/logger"
	"fluentpro/internal/repository"

	"github.com/google/uuid"
)

const (
	taskTimeout    = 30 * time.Second
	taskAttempts   = 3
	taskBackoff    = 500 * time.Millisecond
	defaultWorkers = 2
	defaultBuffer  = 64
)

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Index interface {
	Upsert(ctx context.Context, roleID uuid.UUID, vector []float32, industryID *uuid.UUID) error
}

type EmbeddedMarker interface {
	MarkEmbedded(ctx context.Context, roleID uuid.UUID, at time.Time) error
}

// Queue embeds and indexes roles in the background. Work is best-effort:
// a role that fails all attempts stays selectable by id and is retried the
// next time the catalog is reindexed.
type Queue struct {
	embedder Embedder
	index    Index
	marker   EmbeddedMarker
	log      *logger.Logger

	tasks chan repository.Role
	wg    sync.WaitGroup

	closeOnce sync.Once
}

func NewQueue(embedder Embedder, index Index, marker EmbeddedMarker, workers, buffer int, log *logger.Logger) *Queue {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	if log == nil {
		log = logger.Nop()
	}

	q := &Queue{
		embedder: embedder,
		index:    index,
		marker:   marker,
		log:      log.With("component", "role_indexer"),
		tasks:    make(chan repository.Role, buffer),
	}

	q.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go q.worker()
	}
	return q
}

// EnqueueRole never blocks; when the buffer is full the role is skipped and
// picked up by the next reindex pass.
func (q *Queue) EnqueueRole(role repository.Role) {
	if q == nil || role.ID == uuid.Nil {
		return
	}
	select {
	case q.tasks <- role:
	default:
		q.log.Warn("indexing queue full, skipping role", "role_id", role.ID)
	}
}

// Close stops accepting work and drains in-flight tasks.
func (q *Queue) Close() {
	if q == nil {
		return
	}
	q.closeOnce.Do(func() {
		close(q.tasks)
	})
	q.wg.Wait()
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for role := range q.tasks {
		q.process(role)
	}
}

func (q *Queue) process(role repository.Role) {
	// Detached from any request context: the caller has long since
	// received its response.
	ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
	defer cancel()

	text := role.Title
	if role.Description != "" {
		text += "\n" + role.Description
	}

	var lastErr error
	for attempt := 0; attempt < taskAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(taskBackoff << (attempt - 1))
		}
		vec, err := q.embedder.Embed(ctx, text)
		if err != nil {
			lastErr = err
			continue
		}
		if err := q.index.Upsert(ctx, role.ID, vec, role.IndustryID); err != nil {
			lastErr = err
			continue
		}
		if q.marker != nil {
			if err := q.marker.MarkEmbedded(ctx, role.ID, time.Now()); err != nil {
				q.log.Warn("failed to mark role embedded", "role_id", role.ID, "error", err)
			}
		}
		q.log.Info("role indexed", "role_id", role.ID, "attempts", attempt+1)
		return
	}
	q.log.Error("role indexing failed", "role_id", role.ID, "error", lastErr)
}
