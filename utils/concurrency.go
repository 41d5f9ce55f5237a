package utils

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// WorkerPool runs fetch jobs with bounded concurrency and a shared request
// rate. The first job error cancels the context handed to the rest.
type WorkerPool struct {
	group   *errgroup.Group
	ctx     context.Context
	limiter *rate.Limiter
}

// NewWorkerPool creates a WorkerPool. ratePerSecond <= 0 disables pacing.
func NewWorkerPool(ctx context.Context, maxWorkers int, ratePerSecond float64) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	limit := rate.Inf
	if ratePerSecond > 0 {
		limit = rate.Limit(ratePerSecond)
	}
	return &WorkerPool{
		group:   g,
		ctx:     gctx,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Submit enqueues a job. It blocks while maxWorkers jobs are running.
func (wp *WorkerPool) Submit(job func(ctx context.Context) error) {
	wp.group.Go(func() error {
		if err := wp.limiter.Wait(wp.ctx); err != nil {
			return err
		}
		return job(wp.ctx)
	})
}

// Wait blocks until all submitted jobs have completed and returns the first error.
func (wp *WorkerPool) Wait() error {
	return wp.group.Wait()
}

// URLSet is a thread-safe set for tracking seen listing links.
type URLSet struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewURLSet creates an empty URLSet.
func NewURLSet() *URLSet {
	return &URLSet{seen: make(map[string]struct{})}
}

// Add returns true if the URL was newly added, false if already present.
func (s *URLSet) Add(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.seen[url]; exists {
		return false
	}
	s.seen[url] = struct{}{}
	return true
}

// Contains returns true if the URL has already been seen.
func (s *URLSet) Contains(url string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.seen[url]
	return exists
}

// Size returns the number of unique URLs tracked.
func (s *URLSet) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}
