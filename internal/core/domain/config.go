package domain

import (
	"runtime"
	"strings"
	"time"

	"go.trai.ch/zerr"
)

// DefaultCapacity is the kernel cache bound used when none is configured.
const DefaultCapacity = 75000

// LogFormat selects the log handler.
type LogFormat string

const (
	// LogText renders human-readable log lines.
	LogText LogFormat = "text"
	// LogJSON renders one JSON object per log line.
	LogJSON LogFormat = "json"
)

// Routing selects how a pool assigns calls to workers.
type Routing string

const (
	// RouteByPattern sends every call of a pattern to the same worker.
	RouteByPattern Routing = "pattern"
	// RouteRoundRobin spreads calls evenly regardless of pattern.
	RouteRoundRobin Routing = "round_robin"
)

// ParseRouting converts a config string to a Routing.
// The empty string selects RouteByPattern.
func ParseRouting(s string) (Routing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(RouteByPattern):
		return RouteByPattern, nil
	case string(RouteRoundRobin), "round-robin":
		return RouteRoundRobin, nil
	default:
		return "", ErrInvalidRouting
	}
}

// Config holds the tunables of a worker pool.
type Config struct {
	Capacity        int
	DuplicatePolicy DuplicatePolicy
	Workers         int
	Routing         Routing
	LogFormat       LogFormat
	// CompileLatency is an artificial delay added by the synthetic compiler.
	CompileLatency time.Duration
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() Config {
	return Config{
		Capacity:        DefaultCapacity,
		DuplicatePolicy: DuplicateStrict,
		Workers:         runtime.NumCPU(),
		Routing:         RouteByPattern,
		LogFormat:       LogText,
	}
}

// ParseLogFormat converts a config string to a LogFormat.
// The empty string selects LogText.
func ParseLogFormat(s string) (LogFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(LogText):
		return LogText, nil
	case string(LogJSON):
		return LogJSON, nil
	default:
		return "", ErrInvalidLogFormat
	}
}

// Validate checks every field and returns the first violation.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return zerr.With(zerr.Wrap(ErrInvalidCapacity, "invalid configuration"), "capacity", c.Capacity)
	}
	if c.Workers < 1 {
		return zerr.With(zerr.Wrap(ErrInvalidWorkerCount, "invalid configuration"), "workers", c.Workers)
	}
	if _, err := ParseDuplicatePolicy(string(c.DuplicatePolicy)); err != nil {
		return zerr.With(zerr.Wrap(err, "invalid configuration"), "duplicate_policy", string(c.DuplicatePolicy))
	}
	if _, err := ParseRouting(string(c.Routing)); err != nil {
		return zerr.With(zerr.Wrap(err, "invalid configuration"), "routing", string(c.Routing))
	}
	if _, err := ParseLogFormat(string(c.LogFormat)); err != nil {
		return zerr.With(zerr.Wrap(err, "invalid configuration"), "log_format", string(c.LogFormat))
	}
	if c.CompileLatency < 0 {
		return zerr.With(zerr.Wrap(ErrInvalidCompileLatency, "invalid configuration"), "compile_latency", c.CompileLatency.String())
	}
	return nil
}
