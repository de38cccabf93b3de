package evt

import (
	"github.com/asaskevich/EventBus"
)

const (
	// ResolutionStarted fires when a new lookup is admitted. Parameter: name
	ResolutionStarted = "resolution:started"

	// ResolutionCompleted fires when a lookup callback delivered records. Parameter: record count
	ResolutionCompleted = "resolution:completed"

	// ResolutionFailed fires when a lookup ends with zero records. Parameter: name
	ResolutionFailed = "resolution:failed"

	// NamestoreCacheHit fires if a block was served from the namestore. Parameter: label
	NamestoreCacheHit = "namestore:cacheHit"

	// NamestoreCacheMiss fires if the namestore had no unexpired block. Parameter: label
	NamestoreCacheMiss = "namestore:cacheMiss"

	// DhtQueryStarted fires when a DHT GET is issued. Parameter: label
	DhtQueryStarted = "dht:queryStarted"

	// DhtQueryEvicted fires when the admission heap force-fails its oldest entry.
	// Parameter: name of the evicted lookup
	DhtQueryEvicted = "dht:queryEvicted"

	// DnsDelegation fires when a GNS2DNS hop hands off to legacy DNS. Parameter: dns name
	DnsDelegation = "dns:delegation"

	// VpnRedirectRequested fires when a VPN record triggers an allocation. Parameter: peer
	VpnRedirectRequested = "vpn:redirectRequested"
)

// nolint:gochecknoglobals
var evtBus = EventBus.New()

// Bus returns the global bus instance
func Bus() EventBus.Bus {
	return evtBus
}
