package testutil

// FixedTraceGenerator returns the same trace id every time.
//
// This enables deterministic CLI output and golden snapshot comparison:
// JSON responses carry the trace id, so a fixed value keeps them byte-identical.
//
// Thread-safety: FixedTraceGenerator is stateless and safe for concurrent use.
type FixedTraceGenerator struct {
	id string
}

// NewFixedTraceGenerator creates a new fixed trace id generator.
//
// If id is empty, Generate() returns "test-trace-default".
func NewFixedTraceGenerator(id string) *FixedTraceGenerator {
	if id == "" {
		id = "test-trace-default"
	}
	return &FixedTraceGenerator{id: id}
}

// Generate returns the fixed trace id.
//
// Implements cli.TraceIDGenerator.
func (g *FixedTraceGenerator) Generate() string {
	return g.id
}
