package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gnunet-go/gns/evt"
	"github.com/gnunet-go/gns/util"
)

// registerEventListeners registers all metric handlers by the event bus
func registerEventListeners() {
	registerResolutionEventListeners()
	registerNamestoreEventListeners()
	registerDhtEventListeners()
}

func registerResolutionEventListeners() {
	resolutionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gns_resolutions_total",
			Help: "Number of finished resolutions by outcome",
		}, []string{"outcome"},
	)

	delegationsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gns_dns_delegations_total",
		Help: "Number of GNS2DNS handoffs to legacy DNS",
	})

	vpnRedirectsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gns_vpn_redirects_total",
		Help: "Number of VPN address allocations requested",
	})

	RegisterMetric(resolutionsTotal)
	RegisterMetric(delegationsTotal)
	RegisterMetric(vpnRedirectsTotal)

	subscribe(evt.ResolutionCompleted, func(cnt int) {
		resolutionsTotal.WithLabelValues("success").Inc()
	})

	subscribe(evt.ResolutionFailed, func(name string) {
		resolutionsTotal.WithLabelValues("failure").Inc()
	})

	subscribe(evt.DnsDelegation, func(name string) {
		delegationsTotal.Inc()
	})

	subscribe(evt.VpnRedirectRequested, func(peer string) {
		vpnRedirectsTotal.Inc()
	})
}

func registerNamestoreEventListeners() {
	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gns_namestore_hits_total",
		Help: "Blocks answered from the local namestore",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gns_namestore_misses_total",
		Help: "Labels that had to go to the DHT",
	})

	RegisterMetric(cacheHits)
	RegisterMetric(cacheMisses)

	subscribe(evt.NamestoreCacheHit, func(label string) {
		cacheHits.Inc()
	})

	subscribe(evt.NamestoreCacheMiss, func(label string) {
		cacheMisses.Inc()
	})
}

func registerDhtEventListeners() {
	dhtQueries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gns_dht_queries_total",
		Help: "DHT GET operations issued",
	})

	dhtEvictions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gns_dht_evictions_total",
		Help: "Lookups force-failed by the admission heap",
	})

	RegisterMetric(dhtQueries)
	RegisterMetric(dhtEvictions)

	subscribe(evt.DhtQueryStarted, func(label string) {
		dhtQueries.Inc()
	})

	subscribe(evt.DhtQueryEvicted, func(name string) {
		dhtEvictions.Inc()
	})
}

func subscribe(topic string, fn interface{}) {
	util.FatalOnError("can't subscribe to topic: ", evt.Bus().Subscribe(topic, fn))
}
