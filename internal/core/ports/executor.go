// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/kcache/internal/core/domain"
)

// Executor defines the interface for running compiled kernels.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs kernel against tensors bound to a call's concrete shapes.
	// The kernel is borrowed: implementations must not retain or release it.
	Execute(ctx context.Context, kernel domain.CompiledKernel, inputs, outputs []domain.LogicalTensor) error
}
