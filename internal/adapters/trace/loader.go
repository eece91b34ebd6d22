// Package trace loads recorded workload traces for replay.
package trace

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"go.trai.ch/kcache/internal/core/domain"
	"go.trai.ch/kcache/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// DefaultDataType is used for tensors that do not declare a dtype.
const DefaultDataType = "f32"

// Loader implements ports.WorkloadLoader for YAML traces.
type Loader struct {
	logger ports.Logger
}

// NewLoader creates a new trace loader.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load reads and validates the trace at path.
func (l *Loader) Load(path string) (*domain.Workload, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.With(errors.Join(domain.ErrTraceReadFailed, err), "path", path)
	}

	w, err := Parse(data)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}

	l.logger.Info(fmt.Sprintf("loaded trace %s: %d patterns, %d calls", path, len(w.Patterns), len(w.Calls)))
	return w, nil
}

// Parse decodes and validates a YAML trace.
func Parse(data []byte) (*domain.Workload, error) {
	var file File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Join(domain.ErrTraceParseFailed, err)
	}
	return file.toDomain()
}

func (f *File) toDomain() (*domain.Workload, error) {
	w := &domain.Workload{
		Patterns: make([]domain.PartitionSpec, 0, len(f.Patterns)),
	}

	seen := make(map[int64]struct{}, len(f.Patterns))
	for i := range f.Patterns {
		p := &f.Patterns[i]
		if _, dup := seen[p.ID]; dup {
			return nil, zerr.With(zerr.Wrap(domain.ErrDuplicatePattern, "invalid trace"), "pattern_id", p.ID)
		}
		seen[p.ID] = struct{}{}

		spec, err := p.toDomain()
		if err != nil {
			return nil, err
		}
		w.Patterns = append(w.Patterns, spec)
	}

	for i, c := range f.Calls {
		if _, ok := seen[c.Pattern]; !ok {
			err := zerr.With(zerr.Wrap(domain.ErrUnknownPattern, "invalid trace"), "pattern_id", c.Pattern)
			return nil, zerr.With(err, "call", i)
		}
		if c.Repeat < 0 {
			err := zerr.With(zerr.Wrap(domain.ErrInvalidTrace, "negative repeat"), "call", i)
			return nil, zerr.With(err, "repeat", c.Repeat)
		}
		call := domain.Call{
			Pattern:    domain.PatternID(c.Pattern),
			InputDims:  c.Inputs,
			OutputDims: c.Outputs,
		}
		for range max(c.Repeat, 1) {
			w.Calls = append(w.Calls, call)
		}
	}

	return w, nil
}

func (p *PatternDTO) toDomain() (domain.PartitionSpec, error) {
	name := p.Name
	if name == "" {
		name = fmt.Sprintf("pattern_%d", p.ID)
	}

	spec := domain.PartitionSpec{
		ID:    domain.PatternID(p.ID),
		Name:  name,
		Ops:   slices.Clone(p.Ops),
		Attrs: p.Attrs,
	}

	var next uint64
	for i, t := range p.Inputs {
		lt, err := t.toDomain(next)
		if err != nil {
			return domain.PartitionSpec{}, zerr.With(zerr.With(err, "pattern_id", p.ID), "input", i)
		}
		spec.Inputs = append(spec.Inputs, lt)
		next++
	}
	for i, t := range p.Outputs {
		lt, err := t.toDomain(next)
		if err != nil {
			return domain.PartitionSpec{}, zerr.With(zerr.With(err, "pattern_id", p.ID), "output", i)
		}
		spec.Outputs = append(spec.Outputs, lt)
		next++
	}
	return spec, nil
}

func (t TensorDTO) toDomain(id uint64) (domain.LogicalTensor, error) {
	dtype := t.DType
	if dtype == "" {
		dtype = DefaultDataType
	}

	dims := t.Dims
	switch {
	case t.Rank != nil && *t.Rank < 0:
		return domain.LogicalTensor{}, zerr.With(zerr.Wrap(domain.ErrInvalidTrace, "negative rank"), "rank", *t.Rank)
	case t.Rank != nil && dims == nil:
		dims = make([]int64, *t.Rank)
		for i := range dims {
			dims[i] = domain.UnknownDim
		}
	case t.Rank != nil && len(dims) != *t.Rank:
		err := zerr.With(zerr.Wrap(domain.ErrInvalidTrace, "rank does not match dims"), "rank", *t.Rank)
		return domain.LogicalTensor{}, zerr.With(err, "dims", len(dims))
	}

	for i, d := range dims {
		if d < domain.UnknownDim {
			err := zerr.With(zerr.Wrap(domain.ErrInvalidTrace, "invalid dim"), "dim", i)
			return domain.LogicalTensor{}, zerr.With(err, "value", d)
		}
	}
	return domain.NewLogicalTensor(id, dtype, dims...), nil
}
