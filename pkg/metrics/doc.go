// Package metrics exposes Prometheus metrics for the replay and stub engines.
//
// A Collector groups the counters and histograms the engines update. Every
// Record method is safe to call on a nil *Collector, so engines constructed
// without metrics need no special casing.
//
// # Default Metrics
//
//   - httpreplay_replay_hits_total: requests answered from a stored entry
//   - httpreplay_replay_misses_total: lookups that fell through (labels: reason)
//   - httpreplay_recordings_total: entries written to disk
//   - httpreplay_policy_violations_total: refused live calls (labels: reason)
//   - httpreplay_stub_hits_total: stub lookups that matched (labels: strictness)
//   - httpreplay_stub_misses_total: stub lookups that did not match (labels: default)
//   - httpreplay_live_requests_total: requests sent over the network by client.Direct (labels: method, status)
//   - httpreplay_live_request_duration_seconds: live transport latency (labels: method)
//
// # Label Conventions
//
//   - reason (misses): absent, changed, forced
//   - reason (violations): miss, force_record
//   - status: numeric HTTP code, or "error" when the transport failed
//
// # Usage
//
//	c := metrics.Init()
//	client, _ := replay.New(replay.Options{Target: replay.Dir("testdata"), Metrics: c})
//
//	// Dump in text exposition format
//	_ = c.WriteText(os.Stdout)
//
// Tests should use NewCollector with a private prometheus.Registry.
package metrics
