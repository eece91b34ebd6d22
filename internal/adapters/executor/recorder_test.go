package executor_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kcache/internal/adapters/executor"
	"go.trai.ch/kcache/internal/core/domain"
)

type kernel struct {
	id       string
	released bool
}

func (k *kernel) ID() string     { return k.id }
func (k *kernel) Release() error { k.released = true; return nil }
func (k *kernel) Released() bool { return k.released }

func tensors(dims ...int64) []domain.LogicalTensor {
	return []domain.LogicalTensor{domain.NewLogicalTensor(0, "f32", dims...)}
}

func TestExecute_Records(t *testing.T) {
	r := executor.NewRecorder()
	a := &kernel{id: "a"}
	b := &kernel{id: "b"}

	require.NoError(t, r.Execute(context.Background(), a, tensors(2, 2), tensors(2)))
	require.NoError(t, r.Execute(context.Background(), a, tensors(2, 2), tensors(2)))
	require.NoError(t, r.Execute(context.Background(), b, nil, nil))

	assert.Equal(t, uint64(3), r.Executions())
	assert.Equal(t, map[string]uint64{"a": 2, "b": 1}, r.Runs())
}

func TestExecute_Concurrent(t *testing.T) {
	r := executor.NewRecorder()
	k := &kernel{id: "k"}

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			for range 100 {
				assert.NoError(t, r.Execute(context.Background(), k, tensors(1), tensors(1)))
			}
		})
	}
	wg.Wait()

	assert.Equal(t, uint64(800), r.Executions())
}

func TestExecute_Errors(t *testing.T) {
	released := &kernel{id: "gone"}
	require.NoError(t, released.Release())

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name        string
		ctx         context.Context
		kernel      domain.CompiledKernel
		inputs      []domain.LogicalTensor
		expectedErr error
	}{
		{name: "nil kernel", ctx: context.Background(), kernel: nil, expectedErr: domain.ErrExecutionFailed},
		{name: "released kernel", ctx: context.Background(), kernel: released, expectedErr: domain.ErrExecutionFailed},
		{name: "unbound tensor", ctx: context.Background(), kernel: &kernel{id: "k"}, inputs: tensors(-1, 4), expectedErr: domain.ErrExecutionFailed},
		{name: "canceled", ctx: canceled, kernel: &kernel{id: "k"}, expectedErr: context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := executor.NewRecorder()
			err := r.Execute(tt.ctx, tt.kernel, tt.inputs, nil)
			require.ErrorIs(t, err, tt.expectedErr)
			assert.Zero(t, r.Executions())
		})
	}
}
