// Package pool runs a fixed set of workers, one goroutine each.
package pool

import (
	"context"
	"fmt"

	"go.trai.ch/kcache/internal/core/domain"
	"go.trai.ch/kcache/internal/core/ports"
	"go.trai.ch/kcache/internal/engine/worker"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// queueDepth bounds the number of calls buffered per worker.
const queueDepth = 64

// Factory builds the worker with the given index.
type Factory func(id int) (*worker.Worker, error)

// Pool owns a fixed set of workers. Workers share no state: every worker is
// driven by its own goroutine during Run and keeps its caches between runs.
type Pool struct {
	workers []*worker.Worker
	router  Router
	logger  ports.Logger
}

// New builds n workers with factory. If any worker cannot be built, the ones
// already built are closed.
func New(n int, factory Factory, router Router, logger ports.Logger) (*Pool, error) {
	if n < 1 {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidWorkerCount, "cannot create worker pool"), "workers", n)
	}

	workers := make([]*worker.Worker, 0, n)
	for i := range n {
		w, err := factory(i)
		if err != nil {
			for _, built := range workers {
				built.Close()
			}
			return nil, zerr.With(zerr.Wrap(err, "failed to build worker"), "worker", i)
		}
		workers = append(workers, w)
	}

	return &Pool{
		workers: workers,
		router:  router,
		logger:  logger,
	}, nil
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

type queuedCall struct {
	index int
	call  domain.Call
}

// Run dispatches calls to the workers and waits until every call has been
// served. Calls routed to the same worker are served in order. The first
// failing call cancels the run and its error is returned.
//
// Run must not be called concurrently with itself or with Close.
func (p *Pool) Run(ctx context.Context, calls []domain.Call) error {
	p.logger.Info(fmt.Sprintf("dispatching %d calls to %d workers", len(calls), len(p.workers)))

	g, ctx := errgroup.WithContext(ctx)

	queues := make([]chan queuedCall, len(p.workers))
	for i, w := range p.workers {
		q := make(chan queuedCall, queueDepth)
		queues[i] = q
		g.Go(func() error {
			return serve(ctx, w, q)
		})
	}

	g.Go(func() error {
		defer func() {
			for _, q := range queues {
				close(q)
			}
		}()
		for i, call := range calls {
			q := queues[p.router.Route(call, len(queues))]
			select {
			case q <- queuedCall{index: i, call: call}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	return g.Wait()
}

func serve(ctx context.Context, w *worker.Worker, q <-chan queuedCall) error {
	for qc := range q {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := w.Run(ctx, qc.call); err != nil {
			err = zerr.With(zerr.Wrap(err, "call failed"), "worker", w.ID())
			return zerr.With(err, "call", qc.index)
		}
	}
	return nil
}

// Stats returns a snapshot of every worker's counters, indexed by worker id.
func (p *Pool) Stats() []domain.WorkerStats {
	stats := make([]domain.WorkerStats, len(p.workers))
	for i, w := range p.workers {
		stats[i] = w.Stats()
	}
	return stats
}

// Total returns the counters of all workers summed up.
func (p *Pool) Total() domain.WorkerStats {
	total := domain.WorkerStats{Worker: -1}
	for i, s := range p.Stats() {
		if i == 0 {
			total.Kernels.Capacity = s.Kernels.Capacity
		}
		total.Add(s)
	}
	return total
}

// Close releases the kernels held by every worker.
func (p *Pool) Close() {
	for _, w := range p.workers {
		w.Close()
	}
	p.logger.Info(fmt.Sprintf("closed %d workers", len(p.workers)))
}
