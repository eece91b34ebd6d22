// Package worker implements the per-worker compile-and-cache path.
package worker

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.trai.ch/kcache/internal/core/domain"
	"go.trai.ch/kcache/internal/core/ports"
	"go.trai.ch/kcache/internal/engine/kernelcache"
	"go.trai.ch/kcache/internal/engine/partitioncache"
	"go.trai.ch/zerr"
)

// SpanCompile is the name of the span wrapping every compiler invocation.
const SpanCompile = "kernel.compile"

// Worker owns one partition cache and one kernel cache.
//
// A Worker is not safe for concurrent use. Each worker goroutine owns exactly
// one Worker and nothing is shared between workers.
type Worker struct {
	id          int
	partitioner ports.Partitioner
	compiler    ports.Compiler
	executor    ports.Executor
	tracer      ports.Tracer
	logger      ports.Logger

	partitions *partitioncache.Cache
	kernels    *kernelcache.Cache

	calls           uint64
	failures        uint64
	compiles        uint64
	compileFailures uint64
	closed          bool
}

// New creates a Worker whose kernel cache holds at most cfg.Capacity kernels.
func New(
	id int,
	cfg domain.Config,
	partitioner ports.Partitioner,
	compiler ports.Compiler,
	executor ports.Executor,
	tracer ports.Tracer,
	logger ports.Logger,
) (*Worker, error) {
	kernels, err := kernelcache.New(cfg.Capacity, cfg.DuplicatePolicy, logger)
	if err != nil {
		return nil, zerr.With(err, "worker", id)
	}
	return &Worker{
		id:          id,
		partitioner: partitioner,
		compiler:    compiler,
		executor:    executor,
		tracer:      tracer,
		logger:      logger,
		partitions:  partitioncache.New(),
		kernels:     kernels,
	}, nil
}

// ID returns the worker index within its pool.
func (w *Worker) ID() int {
	return w.id
}

// RegisterPartition stores p in the partition cache, replacing any partition
// previously registered under the same pattern id.
func (w *Worker) RegisterPartition(p *domain.Partition) {
	w.partitions.Insert(p.ID(), p)
}

// ResolvePartition returns the partition for id, asking the partitioner only
// the first time this worker sees id.
func (w *Worker) ResolvePartition(ctx context.Context, id domain.PatternID) (*domain.Partition, error) {
	if p, ok := w.partitions.Lookup(id); ok {
		return p, nil
	}
	p, err := w.partitioner.Partition(ctx, id)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to resolve partition"), "pattern_id", int64(id))
	}
	w.partitions.Insert(id, p)
	return p, nil
}

// CompileAndCache returns the kernel for p bound to the given concrete
// descriptors. The compiler runs only when no kernel is cached for the
// resulting shape signature; its error is returned unchanged and nothing is
// cached on failure.
//
// The returned kernel is borrowed from the cache.
func (w *Worker) CompileAndCache(
	ctx context.Context,
	p *domain.Partition,
	inputs, outputs []domain.LogicalTensor,
) (domain.CompiledKernel, error) {
	k, _, err := w.compileAndCache(ctx, p, inputs, outputs)
	return k, err
}

func (w *Worker) compileAndCache(
	ctx context.Context,
	p *domain.Partition,
	inputs, outputs []domain.LogicalTensor,
) (domain.CompiledKernel, domain.CallOutcome, error) {
	// 1. Derive the signature
	sig := domain.NewShapeSignature(p.ID(), inputs, outputs)

	// 2. Check the cache
	if k, ok := w.kernels.Lookup(sig); ok {
		return k, domain.OutcomeKernelHit, nil
	}

	// 3. Compile (cache miss)
	k, err := w.compile(ctx, p, sig, inputs, outputs)
	if err != nil {
		return nil, domain.OutcomeFailed, err
	}

	// 4. Update the cache
	w.kernels.Insert(sig, k)
	return k, domain.OutcomeCompiled, nil
}

func (w *Worker) compile(
	ctx context.Context,
	p *domain.Partition,
	sig domain.ShapeSignature,
	inputs, outputs []domain.LogicalTensor,
) (domain.CompiledKernel, error) {
	ctx, span := w.tracer.Start(ctx, SpanCompile,
		ports.WithAttribute("pattern_id", int64(p.ID())),
		ports.WithAttribute("signature", fingerprint(sig)),
		ports.WithAttribute("worker", w.id),
	)
	defer span.End()

	w.compiles++
	k, err := w.compiler.Compile(ctx, p, inputs, outputs)
	if err == nil && k == nil {
		err = zerr.With(zerr.Wrap(domain.ErrCompileFailed, "compiler returned no kernel"), "pattern_id", int64(p.ID()))
	}
	if err != nil {
		w.compileFailures++
		span.RecordError(err)
		w.logger.Warn(fmt.Sprintf("worker %d: compile of pattern %s %s failed: %v", w.id, p.ID(), sig, err))
		return nil, err
	}
	span.SetAttribute("kernel", k.ID())
	return k, nil
}

// Run serves one call: it resolves the partition, binds the call's shapes,
// fetches or compiles the kernel and executes it.
func (w *Worker) Run(ctx context.Context, call domain.Call) (domain.CallOutcome, error) {
	if w.closed {
		return domain.OutcomeFailed, zerr.With(zerr.Wrap(domain.ErrWorkerClosed, "call rejected"), "worker", w.id)
	}
	w.calls++
	outcome, err := w.run(ctx, call)
	if err != nil {
		w.failures++
	}
	return outcome, err
}

func (w *Worker) run(ctx context.Context, call domain.Call) (domain.CallOutcome, error) {
	p, err := w.ResolvePartition(ctx, call.Pattern)
	if err != nil {
		return domain.OutcomeFailed, err
	}

	inputs, outputs, err := p.Bind(call.InputDims, call.OutputDims)
	if err != nil {
		return domain.OutcomeFailed, err
	}

	k, outcome, err := w.compileAndCache(ctx, p, inputs, outputs)
	if err != nil {
		return outcome, err
	}

	if err := w.executor.Execute(ctx, k, inputs, outputs); err != nil {
		err = zerr.With(errors.Join(domain.ErrExecutionFailed, err), "kernel", k.ID())
		return domain.OutcomeFailed, zerr.With(err, "pattern_id", int64(call.Pattern))
	}
	return outcome, nil
}

// Stats returns a snapshot of the worker counters.
func (w *Worker) Stats() domain.WorkerStats {
	ps := w.partitions.Stats()
	return domain.WorkerStats{
		Worker:          w.id,
		Calls:           w.calls,
		Failures:        w.failures,
		PartitionHits:   ps.Hits,
		PartitionMisses: ps.Misses,
		Partitions:      ps.Len,
		Compiles:        w.compiles,
		CompileFailures: w.compileFailures,
		Kernels:         w.kernels.Stats(),
	}
}

// Close releases every cached kernel. Calls made after Close fail with
// domain.ErrWorkerClosed. Closing twice is a no-op.
func (w *Worker) Close() {
	if w.closed {
		return
	}
	w.closed = true
	w.kernels.Close()
}

func fingerprint(sig domain.ShapeSignature) string {
	return strconv.FormatUint(sig.Fingerprint(), 16)
}
