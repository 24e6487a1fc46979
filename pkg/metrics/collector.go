package metrics

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Namespace prefixes every metric name.
const Namespace = "httpreplay"

// Collector holds the engine metrics. It is safe for concurrent use.
type Collector struct {
	replayHits       prometheus.Counter
	replayMisses     *prometheus.CounterVec
	recordings       prometheus.Counter
	policyViolations *prometheus.CounterVec

	stubHits   *prometheus.CounterVec
	stubMisses *prometheus.CounterVec

	liveRequests        *prometheus.CounterVec
	liveRequestDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// NewCollector registers the engine metrics on reg. If reg is also a
// prometheus.Gatherer it is used by WriteText.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	c := &Collector{
		replayHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "replay_hits_total",
			Help:      "Requests answered from a stored entry",
		}),
		replayMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "replay_misses_total",
			Help:      "Lookups that did not produce a replayable entry",
		}, []string{"reason"}),
		recordings: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "recordings_total",
			Help:      "Entries written to disk",
		}),
		policyViolations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "policy_violations_total",
			Help:      "Live calls refused by the record mode",
		}, []string{"reason"}),
		stubHits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "stub_hits_total",
			Help:      "Stub lookups that matched a registered response",
		}, []string{"strictness"}),
		stubMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "stub_misses_total",
			Help:      "Stub lookups that matched nothing",
		}, []string{"default"}),
		liveRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "live_requests_total",
			Help:      "Requests sent to the live transport",
		}, []string{"method", "status"}),
		liveRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "live_request_duration_seconds",
			Help:      "Duration of live transport requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
	if g, ok := reg.(prometheus.Gatherer); ok {
		c.gatherer = g
	}
	return c
}

// RecordReplayHit counts a request answered from disk.
func (c *Collector) RecordReplayHit() {
	if c == nil {
		return
	}
	c.replayHits.Inc()
}

// RecordReplayMiss counts a lookup that fell through to the transport.
func (c *Collector) RecordReplayMiss(reason string) {
	if c == nil {
		return
	}
	c.replayMisses.WithLabelValues(reason).Inc()
}

// RecordRecording counts a persisted entry.
func (c *Collector) RecordRecording() {
	if c == nil {
		return
	}
	c.recordings.Inc()
}

// RecordPolicyViolation counts a refused live call.
func (c *Collector) RecordPolicyViolation(reason string) {
	if c == nil {
		return
	}
	c.policyViolations.WithLabelValues(reason).Inc()
}

// RecordStubHit counts a matched stub lookup.
func (c *Collector) RecordStubHit(strictness string) {
	if c == nil {
		return
	}
	c.stubHits.WithLabelValues(strictness).Inc()
}

// RecordStubMiss counts an unmatched stub lookup.
func (c *Collector) RecordStubMiss(fallback string) {
	if c == nil {
		return
	}
	c.stubMisses.WithLabelValues(fallback).Inc()
}

// RecordLiveRequest counts a request sent to the live transport. A status of
// zero means the transport returned an error.
func (c *Collector) RecordLiveRequest(method string, status int, d time.Duration) {
	if c == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	c.liveRequests.WithLabelValues(method, label).Inc()
	c.liveRequestDuration.WithLabelValues(method).Observe(d.Seconds())
}

// WriteText writes every gathered metric family in the text exposition format.
func (c *Collector) WriteText(w io.Writer) error {
	if c == nil || c.gatherer == nil {
		return fmt.Errorf("metrics: no gatherer available")
	}
	families, err := c.gatherer.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to write metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
