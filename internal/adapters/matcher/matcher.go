// Package matcher provides a Partitioner backed by a fixed table of
// recognized patterns.
package matcher

import (
	"context"
	"slices"

	"go.trai.ch/kcache/internal/core/domain"
	"go.trai.ch/zerr"
)

// Matcher implements ports.Partitioner. The table is never modified after
// construction, so a Matcher is safe to share across workers.
type Matcher struct {
	partitions map[domain.PatternID]*domain.Partition
}

// New creates a Matcher over partitions.
// It returns domain.ErrDuplicatePattern if two partitions share an id.
func New(partitions []*domain.Partition) (*Matcher, error) {
	m := &Matcher{partitions: make(map[domain.PatternID]*domain.Partition, len(partitions))}
	for _, p := range partitions {
		if _, dup := m.partitions[p.ID()]; dup {
			return nil, zerr.With(zerr.Wrap(domain.ErrDuplicatePattern, "cannot build matcher"), "pattern_id", int64(p.ID()))
		}
		m.partitions[p.ID()] = p
	}
	return m, nil
}

// FromWorkload creates a Matcher over the patterns a workload declares.
func FromWorkload(w *domain.Workload) (*Matcher, error) {
	return New(w.Partitions())
}

// Partition returns the partition recognized under id.
func (m *Matcher) Partition(ctx context.Context, id domain.PatternID) (*domain.Partition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, ok := m.partitions[id]
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownPattern, "pattern not recognized"), "pattern_id", int64(id))
	}
	return p, nil
}

// Patterns returns the known pattern ids in ascending order.
func (m *Matcher) Patterns() []domain.PatternID {
	ids := make([]domain.PatternID, 0, len(m.partitions))
	for id := range m.partitions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
