package domain

// Workload is a recorded sequence of calls together with the partitions the
// calls refer to.
type Workload struct {
	Patterns []PartitionSpec
	Calls    []Call
}

// Partitions builds the immutable partitions declared by the workload.
func (w *Workload) Partitions() []*Partition {
	out := make([]*Partition, len(w.Patterns))
	for i, spec := range w.Patterns {
		out[i] = NewPartition(spec)
	}
	return out
}
