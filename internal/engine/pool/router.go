package pool

import "go.trai.ch/kcache/internal/core/domain"

// Router picks the worker that serves a call.
type Router interface {
	// Route returns a worker index in [0, n).
	Route(call domain.Call, n int) int
}

// NewRouter returns the router for the given routing mode.
func NewRouter(r domain.Routing) Router {
	if r == domain.RouteRoundRobin {
		return &RoundRobin{}
	}
	return ByPattern{}
}

// ByPattern sends every call of a pattern to the same worker, so each pattern
// is compiled by one worker only.
type ByPattern struct{}

// Route implements Router.
func (ByPattern) Route(call domain.Call, n int) int {
	return int(uint64(call.Pattern) % uint64(n)) //nolint:gosec // n is a positive worker count
}

// RoundRobin cycles through the workers in order. It is not safe for
// concurrent use.
type RoundRobin struct {
	next int
}

// Route implements Router.
func (r *RoundRobin) Route(_ domain.Call, n int) int {
	i := r.next % n
	r.next = i + 1
	return i
}
