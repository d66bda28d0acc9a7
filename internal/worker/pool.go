// Package worker provides a bounded pool for acquisition work. The pool
// caps concurrent video processing so a burst of requests cannot exhaust
// upstream API quota or file descriptors.
package worker

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/ytdoc/youtube-doc-service-go/pkg/logger"
)

// ErrPoolClosed is returned by Submit after Shutdown has started.
var ErrPoolClosed = errors.New("worker pool is closed")

// Pool runs submitted tasks with at most size concurrent executions.
// Submit blocks until a slot frees or the caller's context expires.
type Pool struct {
	slots  chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

// NewPool creates a pool with the given concurrency limit. A size of zero
// or less falls back to 1.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	return &Pool{slots: make(chan struct{}, size)}
}

// Submit acquires a slot and runs task synchronously. The slot is released
// when the task returns. Cancellation of ctx while waiting aborts the
// submission; a task already running is never interrupted by Shutdown.
func (p *Pool) Submit(ctx context.Context, task func(context.Context) error) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.wg.Add(1)
	p.mu.Unlock()
	defer p.wg.Done()

	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-p.slots }()

	return task(ctx)
}

// Shutdown stops accepting new tasks and waits for in-flight tasks to
// finish, or for ctx to expire.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		logger.Log.Warn("worker pool shutdown timed out",
			zap.Error(ctx.Err()),
		)
		return ctx.Err()
	}
}
