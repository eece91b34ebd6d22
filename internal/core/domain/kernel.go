package domain

// CompiledKernel is the opaque, executable artifact a compiler produces for a
// partition bound to concrete shapes.
//
// The kernel cache owns a kernel from insertion until eviction. Lookups hand out
// non-owning references that stay valid until the owning worker evicts the
// entry or is closed; at that point the cache calls Release exactly once.
type CompiledKernel interface {
	// ID identifies the kernel for logging and diagnostics.
	ID() string
	// Release frees any resource associated with the kernel.
	Release() error
}

// Call is one request to run a recognized pattern with concrete shapes.
type Call struct {
	Pattern    PatternID
	InputDims  [][]int64
	OutputDims [][]int64
}
