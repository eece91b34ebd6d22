// Package compiler provides a synthetic kernel compiler used to replay traces
// without a code generator behind the cache.
package compiler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/kcache/internal/core/domain"
	"go.trai.ch/zerr"
)

// Kernel is the artifact produced by Compiler.
type Kernel struct {
	id       string
	released atomic.Bool
}

// ID returns the deterministic kernel identity.
func (k *Kernel) ID() string { return k.id }

// Released reports whether Release has been called.
func (k *Kernel) Released() bool { return k.released.Load() }

// Release marks the kernel as freed. Releasing twice is an error.
func (k *Kernel) Release() error {
	if !k.released.CompareAndSwap(false, true) {
		return zerr.With(zerr.Wrap(domain.ErrKernelReleaseFailed, "kernel already released"), "kernel", k.id)
	}
	return nil
}

// Compiler implements ports.Compiler. The kernel id is a pure function of the
// partition and the concrete shapes, so compiling the same signature twice
// yields kernels with equal ids.
type Compiler struct {
	latency  time.Duration
	compiles atomic.Uint64
}

// New creates a Compiler that spends latency on every compile.
func New(latency time.Duration) *Compiler {
	return &Compiler{latency: latency}
}

// Compiles returns the number of kernels produced so far.
func (c *Compiler) Compiles() uint64 {
	return c.compiles.Load()
}

// Compile produces a kernel for p bound to the concrete inputs and outputs.
func (c *Compiler) Compile(
	ctx context.Context,
	p *domain.Partition,
	inputs, outputs []domain.LogicalTensor,
) (domain.CompiledKernel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkTensors(p, "input", p.Inputs(), inputs); err != nil {
		return nil, err
	}
	if err := checkTensors(p, "output", p.Outputs(), outputs); err != nil {
		return nil, err
	}

	if c.latency > 0 {
		timer := time.NewTimer(c.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	sig := domain.NewShapeSignature(p.ID(), inputs, outputs)
	h := xxhash.New()
	_, _ = h.WriteString(p.Name())
	_, _ = h.WriteString(string(sig.Key()))

	c.compiles.Add(1)
	return &Kernel{id: fmt.Sprintf("%s-%016x", p.Name(), h.Sum64())}, nil
}

func checkTensors(p *domain.Partition, kind string, logical, concrete []domain.LogicalTensor) error {
	if len(logical) != len(concrete) {
		return compileError(p, kind, -1, "count", len(logical), len(concrete))
	}
	for i, t := range concrete {
		if t.Rank() != logical[i].Rank() {
			return compileError(p, kind, i, "rank", logical[i].Rank(), t.Rank())
		}
		for j, d := range t.Dims {
			if d <= 0 {
				return compileError(p, kind, i, fmt.Sprintf("dim %d", j), 1, int(d))
			}
		}
	}
	return nil
}

func compileError(p *domain.Partition, kind string, index int, field string, want, got int) error {
	err := zerr.With(zerr.Wrap(domain.ErrCompileFailed, "unsupported shapes"), "pattern_id", int64(p.ID()))
	err = zerr.With(err, "tensor", kind)
	if index >= 0 {
		err = zerr.With(err, "index", index)
	}
	err = zerr.With(err, "field", field)
	err = zerr.With(err, "want", want)
	return zerr.With(err, "got", got)
}
