// Package domain contains the core domain models for partition and kernel caching.
package domain

import (
	"slices"
	"strconv"

	"go.trai.ch/zerr"
)

// PatternID identifies a recognized fusion pattern.
// An id is stable from the first time the pattern is recognized and is never
// reused for a different pattern.
type PatternID int64

func (id PatternID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Partition is a fusible subgraph produced by the pattern matcher.
// A Partition is immutable: accessors return copies so a cached Partition
// cannot be changed through a reference handed out by a cache.
type Partition struct {
	id      PatternID
	name    InternedString
	ops     []InternedString
	inputs  []LogicalTensor
	outputs []LogicalTensor
	attrs   map[string]string
}

// PartitionSpec holds the fields used to build a Partition.
type PartitionSpec struct {
	ID      PatternID
	Name    string
	Ops     []string
	Inputs  []LogicalTensor
	Outputs []LogicalTensor
	// Attrs carries fusion metadata that is opaque to the caches.
	Attrs map[string]string
}

// NewPartition creates a Partition, deep-copying everything in spec.
func NewPartition(spec PartitionSpec) *Partition {
	p := &Partition{
		id:      spec.ID,
		name:    NewInternedString(spec.Name),
		ops:     InternStrings(spec.Ops),
		inputs:  cloneTensors(spec.Inputs),
		outputs: cloneTensors(spec.Outputs),
	}
	if len(spec.Attrs) > 0 {
		p.attrs = make(map[string]string, len(spec.Attrs))
		for k, v := range spec.Attrs {
			p.attrs[k] = v
		}
	}
	return p
}

// ID returns the pattern id the partition was recognized under.
func (p *Partition) ID() PatternID { return p.id }

// Name returns the human-readable pattern name.
func (p *Partition) Name() string { return p.name.String() }

// Ops returns the fused op kinds in execution order.
func (p *Partition) Ops() []string {
	ops := make([]string, len(p.ops))
	for i, op := range p.ops {
		ops[i] = op.String()
	}
	return ops
}

// NumInputs returns the number of logical inputs.
func (p *Partition) NumInputs() int { return len(p.inputs) }

// NumOutputs returns the number of logical outputs.
func (p *Partition) NumOutputs() int { return len(p.outputs) }

// Inputs returns copies of the logical input descriptors.
func (p *Partition) Inputs() []LogicalTensor { return cloneTensors(p.inputs) }

// Outputs returns copies of the logical output descriptors.
func (p *Partition) Outputs() []LogicalTensor { return cloneTensors(p.outputs) }

// Attr returns a fusion metadata value.
func (p *Partition) Attr(key string) (string, bool) {
	v, ok := p.attrs[key]
	return v, ok
}

// Bind pairs the partition's logical descriptors with concrete dims supplied
// by a call. It returns ErrShapeMismatch if the counts or ranks disagree, or if
// a concrete dim contradicts a static dim of the partition.
func (p *Partition) Bind(inputDims, outputDims [][]int64) (inputs, outputs []LogicalTensor, err error) {
	inputs, err = bindTensors(p.id, "input", p.inputs, inputDims)
	if err != nil {
		return nil, nil, err
	}
	outputs, err = bindTensors(p.id, "output", p.outputs, outputDims)
	if err != nil {
		return nil, nil, err
	}
	return inputs, outputs, nil
}

func bindTensors(id PatternID, kind string, logical []LogicalTensor, dims [][]int64) ([]LogicalTensor, error) {
	if len(logical) != len(dims) {
		return nil, shapeMismatch(id, kind, -1, "count", len(logical), len(dims))
	}
	bound := make([]LogicalTensor, len(logical))
	for i, lt := range logical {
		if lt.Rank() != len(dims[i]) {
			return nil, shapeMismatch(id, kind, i, "rank", lt.Rank(), len(dims[i]))
		}
		for j, d := range lt.Dims {
			if d != UnknownDim && d != dims[i][j] {
				return nil, shapeMismatch(id, kind, i, "dim "+strconv.Itoa(j), int(d), int(dims[i][j]))
			}
		}
		bound[i] = lt.WithDims(dims[i])
	}
	return bound, nil
}

func cloneTensors(ts []LogicalTensor) []LogicalTensor {
	if ts == nil {
		return nil
	}
	out := make([]LogicalTensor, len(ts))
	for i, t := range ts {
		out[i] = t.WithDims(t.Dims)
	}
	return slices.Clip(out)
}

func shapeMismatch(id PatternID, kind string, index int, what string, want, got int) error {
	err := zerr.With(zerr.Wrap(ErrShapeMismatch, "cannot bind call shapes"), "pattern_id", int64(id))
	err = zerr.With(err, "tensor", kind)
	if index >= 0 {
		err = zerr.With(err, "index", index)
	}
	err = zerr.With(err, "field", what)
	err = zerr.With(err, "want", want)
	return zerr.With(err, "got", got)
}
