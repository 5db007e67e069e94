package media

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vidtube/backend/internal/config"
)

const reaperDeleteTimeout = 30 * time.Second

// ObjectRemover deletes stored objects addressed by the locations Save returned.
type ObjectRemover interface {
	Delete(ctx context.Context, key string) error
	KeyForURL(location string) (string, bool)
}

// Reaper asynchronously deletes objects that are no longer referenced.
type Reaper struct {
	store  ObjectRemover
	logger *slog.Logger

	jobs   chan string
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewReaper starts the worker pool.
func NewReaper(store ObjectRemover, cfg config.ReaperConfig, logger *slog.Logger) *Reaper {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Reaper{
		store:  store,
		logger: logger,
		jobs:   make(chan string, cfg.QueueSize),
	}

	r.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go r.worker()
	}

	return r
}

// Schedule queues the objects behind locations for deletion. Empty locations
// and locations outside the store are skipped. Schedule never blocks.
func (r *Reaper) Schedule(locations ...string) error {
	if r == nil || r.store == nil {
		return ErrStorageUnavailable
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return ErrReaperClosed
	}

	for _, location := range locations {
		key, ok := r.store.KeyForURL(location)
		if !ok {
			continue
		}
		select {
		case r.jobs <- key:
		default:
			r.logger.Warn("asset reaper queue full, dropping object", "key", key)
			return ErrReaperBusy
		}
	}
	return nil
}

// Shutdown stops accepting work and waits for queued deletions to finish.
func (r *Reaper) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.jobs)
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (r *Reaper) worker() {
	defer r.wg.Done()

	for key := range r.jobs {
		r.delete(key)
	}
}

func (r *Reaper) delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), reaperDeleteTimeout)
	defer cancel()

	if err := r.store.Delete(ctx, key); err != nil {
		r.logger.Error("delete orphaned object", "key", key, "error", err)
		return
	}
	r.logger.Debug("deleted orphaned object", "key", key)
}
