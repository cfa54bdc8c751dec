package domain

import "context"

type extractionTraceKey struct{}

// ExtractionTrace records how entities were obtained for a single HTTP request.
// The handler puts a mutable pointer into the context before calling the service;
// the resolver writes to it; the handler reads it for response headers.
type ExtractionTrace struct {
	Failed           bool
	Cached           bool
	FallbackEntities int
}

// NewContextWithExtractionTrace returns a context with an embedded trace collector.
func NewContextWithExtractionTrace(ctx context.Context) (context.Context, *ExtractionTrace) {
	t := &ExtractionTrace{}
	return context.WithValue(ctx, extractionTraceKey{}, t), t
}

// ExtractionTraceFromContext extracts the trace collector from context. Returns nil if not set.
func ExtractionTraceFromContext(ctx context.Context) *ExtractionTrace {
	t, _ := ctx.Value(extractionTraceKey{}).(*ExtractionTrace)
	return t
}

// MarkFailed records a recognizer failure.
func (t *ExtractionTrace) MarkFailed() {
	if t != nil {
		t.Failed = true
	}
}

// MarkCached records a cache hit.
func (t *ExtractionTrace) MarkCached() {
	if t != nil {
		t.Cached = true
	}
}

// AddFallback records entities synthesized from the fallback lexicon.
func (t *ExtractionTrace) AddFallback(n int) {
	if t != nil {
		t.FallbackEntities += n
	}
}
