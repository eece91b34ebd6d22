package ports

import (
	"context"

	"go.trai.ch/kcache/internal/core/domain"
)

// Partitioner defines the interface for recognizing a pattern as a partition.
//
//go:generate go run go.uber.org/mock/mockgen -source=partitioner.go -destination=mocks/mock_partitioner.go -package=mocks
type Partitioner interface {
	// Partition returns the partition recognized under id.
	// It returns domain.ErrUnknownPattern if id was never recognized.
	Partition(ctx context.Context, id domain.PatternID) (*domain.Partition, error)
}
