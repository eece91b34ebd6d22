// Package executor provides an Executor that records kernel launches
// instead of running them on a device.
package executor

import (
	"context"
	"maps"
	"sync"

	"go.trai.ch/kcache/internal/core/domain"
	"go.trai.ch/zerr"
)

// Recorder implements ports.Executor. It is safe for concurrent use.
type Recorder struct {
	mu   sync.Mutex
	runs map[string]uint64
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{runs: make(map[string]uint64)}
}

// Execute records one launch of kernel. It fails if the kernel was already
// released or if a tensor is not bound to concrete dims.
func (r *Recorder) Execute(
	ctx context.Context,
	kernel domain.CompiledKernel,
	inputs, outputs []domain.LogicalTensor,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if kernel == nil {
		return zerr.Wrap(domain.ErrExecutionFailed, "nil kernel")
	}
	if rel, ok := kernel.(interface{ Released() bool }); ok && rel.Released() {
		return zerr.With(zerr.Wrap(domain.ErrExecutionFailed, "kernel used after release"), "kernel", kernel.ID())
	}
	for _, group := range [][]domain.LogicalTensor{inputs, outputs} {
		for _, t := range group {
			if !t.IsConcrete() {
				err := zerr.With(zerr.Wrap(domain.ErrExecutionFailed, "tensor is not concrete"), "kernel", kernel.ID())
				return zerr.With(err, "tensor", t.String())
			}
		}
	}

	r.mu.Lock()
	r.runs[kernel.ID()]++
	r.mu.Unlock()
	return nil
}

// Executions returns the total number of recorded launches.
func (r *Recorder) Executions() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n uint64
	for _, c := range r.runs {
		n += c
	}
	return n
}

// Runs returns a snapshot of launches per kernel id.
func (r *Recorder) Runs() map[string]uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.runs)
}
