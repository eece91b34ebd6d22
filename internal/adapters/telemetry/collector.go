package telemetry

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// CompileTiming aggregates the compile spans of one pattern.
type CompileTiming struct {
	PatternID int64
	Compiles  int
	Failures  int
	Total     time.Duration
	Max       time.Duration
}

// Mean returns the average compile duration.
func (t CompileTiming) Mean() time.Duration {
	if t.Compiles == 0 {
		return 0
	}
	return t.Total / time.Duration(t.Compiles)
}

// Collector implements sdktrace.SpanProcessor and aggregates the durations of
// spans with a given name by their pattern_id attribute.
type Collector struct {
	spanName string

	mu        sync.Mutex
	byPattern map[int64]*CompileTiming
}

// NewCollector returns a Collector for spans named spanName.
func NewCollector(spanName string) *Collector {
	return &Collector{
		spanName:  spanName,
		byPattern: make(map[int64]*CompileTiming),
	}
}

// OnStart does nothing.
func (c *Collector) OnStart(_ context.Context, _ sdktrace.ReadWriteSpan) {}

// OnEnd records the duration of a matching span.
func (c *Collector) OnEnd(s sdktrace.ReadOnlySpan) {
	if s.Name() != c.spanName {
		return
	}

	var id int64
	for _, kv := range s.Attributes() {
		if kv.Key == "pattern_id" && kv.Value.Type() == attribute.INT64 {
			id = kv.Value.AsInt64()
			break
		}
	}
	d := s.EndTime().Sub(s.StartTime())

	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.byPattern[id]
	if !ok {
		t = &CompileTiming{PatternID: id}
		c.byPattern[id] = t
	}
	t.Compiles++
	if s.Status().Code == codes.Error {
		t.Failures++
	}
	t.Total += d
	t.Max = max(t.Max, d)
}

// Timings returns the aggregated timings ordered by pattern id.
func (c *Collector) Timings() []CompileTiming {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]CompileTiming, 0, len(c.byPattern))
	for _, t := range c.byPattern {
		out = append(out, *t)
	}
	slices.SortFunc(out, func(a, b CompileTiming) int {
		return cmp.Compare(a.PatternID, b.PatternID)
	})
	return out
}

// Shutdown does nothing.
func (c *Collector) Shutdown(_ context.Context) error {
	return nil
}

// ForceFlush does nothing.
func (c *Collector) ForceFlush(_ context.Context) error {
	return nil
}

// NewProvider returns a tracer provider that feeds every ended span to the
// given processors.
func NewProvider(processors ...sdktrace.SpanProcessor) *sdktrace.TracerProvider {
	opts := make([]sdktrace.TracerProviderOption, 0, len(processors))
	for _, p := range processors {
		opts = append(opts, sdktrace.WithSpanProcessor(p))
	}
	return sdktrace.NewTracerProvider(opts...)
}
