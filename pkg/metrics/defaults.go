package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// defaultCollector is the process-wide collector created by Init.
	defaultCollector *Collector

	// defaultRegistry backs defaultCollector. It also carries the Go runtime
	// and process collectors.
	defaultRegistry *prometheus.Registry

	// initOnce ensures Init() is only called once.
	initOnce sync.Once
)

// Init initializes the default collector and returns it.
// This function is idempotent and safe to call multiple times.
func Init() *Collector {
	initOnce.Do(func() {
		defaultRegistry = prometheus.NewRegistry()
		defaultRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		defaultCollector = NewCollector(defaultRegistry)
	})
	return defaultCollector
}

// Default returns the default collector.
// Returns nil if Init() has not been called.
func Default() *Collector {
	return defaultCollector
}

// DefaultRegistry returns the registry behind the default collector.
// Returns nil if Init() has not been called.
func DefaultRegistry() *prometheus.Registry {
	return defaultRegistry
}

// Reset drops the default collector. Useful for testing.
// This also resets the initOnce, allowing Init() to be called again.
func Reset() {
	initOnce = sync.Once{}
	defaultCollector = nil
	defaultRegistry = nil
}
