package domain

import "go.trai.ch/zerr"

var (
	// ErrInvalidCapacity is returned when a kernel cache is configured with a non-positive capacity.
	ErrInvalidCapacity = zerr.New("kernel cache capacity must be greater than zero")

	// ErrInvalidDuplicatePolicy is returned when the duplicate-key policy is neither "strict" nor "lazy".
	ErrInvalidDuplicatePolicy = zerr.New("invalid duplicate policy, expected 'strict' or 'lazy'")

	// ErrInvalidWorkerCount is returned when the worker pool is configured with fewer than one worker.
	ErrInvalidWorkerCount = zerr.New("worker count must be at least one")

	// ErrInvalidRouting is returned when the routing mode is neither "pattern" nor "round_robin".
	ErrInvalidRouting = zerr.New("invalid routing, expected 'pattern' or 'round_robin'")

	// ErrInvalidLogFormat is returned when the log format is neither "text" nor "json".
	ErrInvalidLogFormat = zerr.New("invalid log format, expected 'text' or 'json'")

	// ErrInvalidCompileLatency is returned when the synthetic compile latency is negative.
	ErrInvalidCompileLatency = zerr.New("compile latency must not be negative")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrTraceReadFailed is returned when a workload trace cannot be read.
	ErrTraceReadFailed = zerr.New("failed to read workload trace")

	// ErrTraceParseFailed is returned when a workload trace cannot be parsed.
	ErrTraceParseFailed = zerr.New("failed to parse workload trace")

	// ErrInvalidTrace is returned when a workload trace is structurally invalid.
	ErrInvalidTrace = zerr.New("invalid workload trace")

	// ErrDuplicatePattern is returned when a trace declares the same pattern id twice.
	ErrDuplicatePattern = zerr.New("duplicate pattern id")

	// ErrUnknownPattern is returned when no partition is known for a pattern id.
	ErrUnknownPattern = zerr.New("unknown pattern id")

	// ErrShapeMismatch is returned when concrete shapes do not fit a partition's logical tensors.
	ErrShapeMismatch = zerr.New("concrete shapes do not match partition")

	// ErrCompileFailed is returned by compilers that reject a partition.
	ErrCompileFailed = zerr.New("failed to compile partition")

	// ErrExecutionFailed is returned when a compiled kernel cannot be executed.
	ErrExecutionFailed = zerr.New("kernel execution failed")

	// ErrKernelReleaseFailed is returned when an evicted kernel fails to release its resources.
	ErrKernelReleaseFailed = zerr.New("failed to release compiled kernel")

	// ErrWorkerClosed is returned when a call reaches a worker that has been closed.
	ErrWorkerClosed = zerr.New("worker is closed")

	// ErrReplayFailed is returned when a workload replay does not complete.
	ErrReplayFailed = zerr.New("workload replay failed")
)
