package ports

import (
	"context"

	"go.trai.ch/kcache/internal/core/domain"
)

// Compiler defines the interface for turning a partition bound to concrete
// shapes into a runnable kernel.
//
//go:generate go run go.uber.org/mock/mockgen -source=compiler.go -destination=mocks/mock_compiler.go -package=mocks
type Compiler interface {
	// Compile builds a kernel for partition. Ownership of the returned kernel
	// passes to the caller. Compile may block for a long time.
	Compile(ctx context.Context, partition *domain.Partition, inputs, outputs []domain.LogicalTensor) (domain.CompiledKernel, error)
}
