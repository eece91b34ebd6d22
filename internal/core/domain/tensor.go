package domain

import (
	"slices"
	"strconv"
	"strings"
)

// UnknownDim marks a dimension whose size is only known at call time.
const UnknownDim int64 = -1

// LogicalTensor describes a tensor at a partition boundary.
// Dims may contain UnknownDim when the descriptor belongs to a Partition; the
// descriptors passed alongside a call always carry concrete dims.
type LogicalTensor struct {
	ID       uint64
	DataType InternedString
	Dims     []int64
}

// NewLogicalTensor creates a descriptor with a copy of dims.
func NewLogicalTensor(id uint64, dtype string, dims ...int64) LogicalTensor {
	return LogicalTensor{
		ID:       id,
		DataType: NewInternedString(dtype),
		Dims:     slices.Clone(dims),
	}
}

// Rank returns the number of dimensions.
func (t LogicalTensor) Rank() int {
	return len(t.Dims)
}

// IsConcrete reports whether every dimension is known and non-negative.
func (t LogicalTensor) IsConcrete() bool {
	for _, d := range t.Dims {
		if d < 0 {
			return false
		}
	}
	return true
}

// WithDims returns a copy of t with its dims replaced.
func (t LogicalTensor) WithDims(dims []int64) LogicalTensor {
	t.Dims = slices.Clone(dims)
	return t
}

func (t LogicalTensor) String() string {
	parts := make([]string, len(t.Dims))
	for i, d := range t.Dims {
		if d == UnknownDim {
			parts[i] = "?"
			continue
		}
		parts[i] = strconv.FormatInt(d, 10)
	}
	return t.DataType.String() + "[" + strings.Join(parts, ",") + "]"
}
