// Package workerpool implements bounded worker queues, a per-connection
// keep-alive loop, and a graceful-shutdown server, following the
// Connection.Serve() keep-alive loop in
// shockwave/pkg/shockwave/http11/connection.go generalized to a named,
// multi-queue admission model instead of one implicit pool.
package workerpool

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Unbounded marks a queue with no admission cap.
const Unbounded = -1

// queue is one named worker class. A nil sem means unbounded.
type queue struct {
	name string
	sem  *semaphore.Weighted
}

func newQueue(name string, cap int) *queue {
	if cap <= 0 {
		return &queue{name: name}
	}
	return &queue{name: name, sem: semaphore.NewWeighted(int64(cap))}
}

// acquire blocks until a slot is free in both this queue and the shared
// total-across-queues budget.
func (q *queue) acquire(ctx context.Context, total *semaphore.Weighted) error {
	if total != nil {
		if err := total.Acquire(ctx, 1); err != nil {
			return err
		}
	}
	if q.sem != nil {
		if err := q.sem.Acquire(ctx, 1); err != nil {
			if total != nil {
				total.Release(1)
			}
			return err
		}
	}
	return nil
}

func (q *queue) release(total *semaphore.Weighted) {
	if q.sem != nil {
		q.sem.Release(1)
	}
	if total != nil {
		total.Release(1)
	}
}

// Queues owns the named worker queues a Server admits work through. The
// mandatory "request" queue defaults to Unbounded unless configured
// otherwise.
type Queues struct {
	mu     sync.Mutex
	byName map[string]*queue
	total  *semaphore.Weighted
}

// QueueConfig names the per-queue admission caps; a cap of 0 or Unbounded
// means unlimited. TotalCap, if > 0, bounds the sum of concurrently admitted
// work across every queue.
type QueueConfig struct {
	Caps     map[string]int
	TotalCap int
}

// NewQueues builds a Queues from cfg, always including a "request" queue
// (unbounded unless cfg overrides it).
func NewQueues(cfg QueueConfig) *Queues {
	q := &Queues{byName: make(map[string]*queue)}
	if cfg.TotalCap > 0 {
		q.total = semaphore.NewWeighted(int64(cfg.TotalCap))
	}
	if _, ok := cfg.Caps["request"]; !ok {
		q.byName["request"] = newQueue("request", Unbounded)
	}
	for name, cap := range cfg.Caps {
		q.byName[name] = newQueue(name, cap)
	}
	return q
}

// Acquire blocks (respecting ctx) for a slot on the named queue, creating an
// unbounded queue on first use if name was never configured.
func (q *Queues) Acquire(ctx context.Context, name string) (release func(), err error) {
	q.mu.Lock()
	qu, ok := q.byName[name]
	if !ok {
		qu = newQueue(name, Unbounded)
		q.byName[name] = qu
	}
	q.mu.Unlock()

	if err := qu.acquire(ctx, q.total); err != nil {
		return nil, err
	}
	return func() { qu.release(q.total) }, nil
}
