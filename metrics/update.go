package metrics

import "sync/atomic"

// IngestMetrics are in-process batch counters, read by the status surface
// while a run is in flight.
type IngestMetrics struct {
	MatchedCount  atomic.Int32
	CreatedCount  atomic.Int32
	QueuedCount   atomic.Int32
	FailedCount   atomic.Int32
	SessionsCount atomic.Int32
}
