package mvbtree

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    insertCounter  prometheus.Counter
//	    findHistogram  prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordInsert(duration time.Duration, existed bool) {
//	    p.insertCounter.Inc()
//	    // ... record duration, overwrite rate, etc.
//	}
type MetricsCollector interface {
	// RecordInsert is called after each insert operation.
	// existed reports whether the key was already live.
	RecordInsert(duration time.Duration, existed bool)

	// RecordErase is called after each erase operation.
	// existed reports whether the key was present to erase.
	RecordErase(duration time.Duration, existed bool)

	// RecordFind is called after each point lookup.
	RecordFind(duration time.Duration, found bool)

	// RecordRangeQuery is called after each range query.
	// count is the number of entries returned.
	RecordRangeQuery(count int, duration time.Duration)

	// RecordSnapshot is called after each snapshot take or release.
	RecordSnapshot(release bool)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInsert(time.Duration, bool)    {}
func (NoopMetricsCollector) RecordErase(time.Duration, bool)     {}
func (NoopMetricsCollector) RecordFind(time.Duration, bool)      {}
func (NoopMetricsCollector) RecordRangeQuery(int, time.Duration) {}
func (NoopMetricsCollector) RecordSnapshot(bool)                 {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	InsertCount       atomic.Int64
	InsertOverwrites  atomic.Int64
	InsertTotalNanos  atomic.Int64
	EraseCount        atomic.Int64
	EraseMisses       atomic.Int64
	FindCount         atomic.Int64
	FindMisses        atomic.Int64
	FindTotalNanos    atomic.Int64
	RangeQueryCount   atomic.Int64
	RangeQueryEntries atomic.Int64
	SnapshotsTaken    atomic.Int64
	SnapshotsReleased atomic.Int64
}

// RecordInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInsert(duration time.Duration, existed bool) {
	b.InsertCount.Add(1)
	b.InsertTotalNanos.Add(duration.Nanoseconds())
	if existed {
		b.InsertOverwrites.Add(1)
	}
}

// RecordErase implements MetricsCollector.
func (b *BasicMetricsCollector) RecordErase(duration time.Duration, existed bool) {
	b.EraseCount.Add(1)
	if !existed {
		b.EraseMisses.Add(1)
	}
}

// RecordFind implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFind(duration time.Duration, found bool) {
	b.FindCount.Add(1)
	b.FindTotalNanos.Add(duration.Nanoseconds())
	if !found {
		b.FindMisses.Add(1)
	}
}

// RecordRangeQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRangeQuery(count int, duration time.Duration) {
	b.RangeQueryCount.Add(1)
	b.RangeQueryEntries.Add(int64(count))
}

// RecordSnapshot implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshot(release bool) {
	if release {
		b.SnapshotsReleased.Add(1)
	} else {
		b.SnapshotsTaken.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		InsertCount:       b.InsertCount.Load(),
		InsertOverwrites:  b.InsertOverwrites.Load(),
		InsertAvgNanos:    avg(b.InsertTotalNanos.Load(), b.InsertCount.Load()),
		EraseCount:        b.EraseCount.Load(),
		EraseMisses:       b.EraseMisses.Load(),
		FindCount:         b.FindCount.Load(),
		FindMisses:        b.FindMisses.Load(),
		FindAvgNanos:      avg(b.FindTotalNanos.Load(), b.FindCount.Load()),
		RangeQueryCount:   b.RangeQueryCount.Load(),
		RangeQueryEntries: b.RangeQueryEntries.Load(),
		SnapshotsTaken:    b.SnapshotsTaken.Load(),
		SnapshotsReleased: b.SnapshotsReleased.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	InsertCount       int64
	InsertOverwrites  int64
	InsertAvgNanos    int64
	EraseCount        int64
	EraseMisses       int64
	FindCount         int64
	FindMisses        int64
	FindAvgNanos      int64
	RangeQueryCount   int64
	RangeQueryEntries int64
	SnapshotsTaken    int64
	SnapshotsReleased int64
}
