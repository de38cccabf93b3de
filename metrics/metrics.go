package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

//nolint:gochecknoglobals
var (
	reg  = prometheus.NewRegistry()
	once sync.Once
)

// RegisterMetric registers prometheus collector
func RegisterMetric(c prometheus.Collector) {
	_ = reg.Register(c)
}

// StartCollection starts prometheus metrics collection. Subsequent calls are
// no-ops, the event listeners must not be subscribed twice.
func StartCollection() {
	once.Do(func() {
		_ = reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		_ = reg.Register(collectors.NewGoCollector())

		registerEventListeners()
	})
}

// Registry returns the registry the exporter should expose
func Registry() *prometheus.Registry {
	return reg
}
