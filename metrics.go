package adauth

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a specific counter or histogram in the in-process
// metrics system.
type MetricID uint16

const (
	// MetricRegistrationRequest counts registration code requests.
	MetricRegistrationRequest MetricID = iota
	// MetricRegistrationSuccess counts completed registrations.
	MetricRegistrationSuccess
	// MetricRegistrationFailure counts rejected registration requests and
	// confirmations.
	MetricRegistrationFailure
	// MetricLoginCodeRequest counts login code requests.
	MetricLoginCodeRequest
	// MetricLoginSuccess counts completed code logins.
	MetricLoginSuccess
	// MetricLoginFailure counts rejected login requests and confirmations.
	MetricLoginFailure
	// MetricEmailChangeRequest counts email-change code requests.
	MetricEmailChangeRequest
	// MetricEmailChangeSuccess counts applied email changes.
	MetricEmailChangeSuccess
	// MetricEmailChangeFailure counts rejected email-change requests and
	// confirmations.
	MetricEmailChangeFailure
	// MetricChallengeExpired counts consume attempts on stale challenges.
	MetricChallengeExpired
	// MetricChallengeCodeMismatch counts consume attempts with a wrong code.
	MetricChallengeCodeMismatch
	// MetricMailDispatchFailure counts verification emails the dispatcher
	// could not deliver.
	MetricMailDispatchFailure
	// MetricCacheFallback counts cache operations degraded to the
	// in-process fallback map.
	MetricCacheFallback
	// MetricTokenIssued counts minted session credentials.
	MetricTokenIssued
	// MetricAuthenticateSuccess counts credential verifications that
	// produced a session.
	MetricAuthenticateSuccess
	// MetricAuthenticateFailure counts credential verifications collapsed
	// to unauthenticated.
	MetricAuthenticateFailure
	// MetricAuthenticateLatency is the Authenticate latency histogram.
	MetricAuthenticateLatency
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

// Metrics holds atomic counters and an optional latency histogram. When
// disabled, all operations are no-ops.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates a [Metrics] instance configured by the given
// [MetricsConfig].
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are recording.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc adds one to the counter identified by id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records one Authenticate latency sample.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id != MetricAuthenticateLatency {
		return
	}

	atomic.AddUint64(&m.histograms[id].buckets[bucketIndex(d)], 1)
}

// Value returns the current count for id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot deep-copies all counters and histogram buckets.
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
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricAuthenticateLatency].buckets[i])
		}
		s.Histograms[MetricAuthenticateLatency] = buckets
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
