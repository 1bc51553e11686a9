package goRedact

import (
	"sync/atomic"
	"time"
)

// MetricID defines a public type used by goRedact APIs.
//
// MetricID instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricID uint16

const (
	// MetricRedactionSuccess is an exported constant or variable used by the redaction engine.
	MetricRedactionSuccess MetricID = iota
	// MetricRedactionFailure is an exported constant or variable used by the redaction engine.
	MetricRedactionFailure
	// MetricImageRejected is an exported constant or variable used by the redaction engine.
	MetricImageRejected
	// MetricDetectionFailure is an exported constant or variable used by the redaction engine.
	MetricDetectionFailure
	// MetricRegionsBlurred is an exported constant or variable used by the redaction engine.
	MetricRegionsBlurred
	// MetricSelectiveSuccess is an exported constant or variable used by the redaction engine.
	MetricSelectiveSuccess
	// MetricSelectiveFailure is an exported constant or variable used by the redaction engine.
	MetricSelectiveFailure
	// MetricFacesPreserved is an exported constant or variable used by the redaction engine.
	MetricFacesPreserved
	// MetricReferenceUploaded is an exported constant or variable used by the redaction engine.
	MetricReferenceUploaded
	// MetricReferenceRejected is an exported constant or variable used by the redaction engine.
	MetricReferenceRejected
	// MetricReferenceCleared is an exported constant or variable used by the redaction engine.
	MetricReferenceCleared
	// MetricSessionCreated is an exported constant or variable used by the redaction engine.
	MetricSessionCreated
	// MetricSessionExpired is an exported constant or variable used by the redaction engine.
	MetricSessionExpired
	// MetricSessionDeleted is an exported constant or variable used by the redaction engine.
	MetricSessionDeleted
	// MetricArtifactStored is an exported constant or variable used by the redaction engine.
	MetricArtifactStored
	// MetricArtifactDeleted is an exported constant or variable used by the redaction engine.
	MetricArtifactDeleted
	// MetricSweepReaped is an exported constant or variable used by the redaction engine.
	MetricSweepReaped
	// MetricTokenIssued is an exported constant or variable used by the redaction engine.
	MetricTokenIssued
	// MetricTokenRejected is an exported constant or variable used by the redaction engine.
	MetricTokenRejected
	// MetricRenderLatency is an exported constant or variable used by the redaction engine.
	MetricRenderLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics defines a public type used by goRedact APIs.
//
// Metrics instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot defines a public type used by goRedact APIs.
//
// MetricsSnapshot instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates a [Metrics] instance configured by cfg. When Enabled is
// false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether metric collection is active.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether the render latency histogram is active.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc atomically increments one counter. Unknown IDs are ignored.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Add atomically adds n to one counter. Unknown IDs are ignored.
func (m *Metrics) Add(id MetricID, n uint64) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, n)
}

// Observe records a render duration in the latency histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricRenderLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns the current value of one counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot returns a point-in-time deep copy of all counters and histograms.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricRenderLatency].buckets[i])
		}
		s.Histograms[MetricRenderLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
