package ports

import "context"

//go:generate go run go.uber.org/mock/mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks

// Telemetry records progress for units of work.
type Telemetry interface {
	// Record starts a new vertex named name.
	Record(ctx context.Context, name string) (context.Context, Vertex)
	// Close flushes the recording session.
	Close() error
}

// Vertex is one recorded unit of work. Its writers receive the unit's output.
type Vertex interface {
	OutputSink
	// Complete marks the vertex finished, failed when err is non-nil.
	Complete(err error)
	// Cached marks the vertex as not needing work.
	Cached()
}
