package resolver

import (
	"time"

	"github.com/gnunet-go/gns/evt"
	"github.com/gnunet-go/gns/zone"
)

// stepLocked advances the resolution by one hop. The kind of the chain tail
// decides between a GNS lookup (namestore, then DHT) and delegated DNS.
//
// The chain is driven iteratively through completion callbacks; the
// recursion guard bounds delegation cycles the way a timeout would.
func (h *Handle) stepLocked() {
	h.loops++
	if h.loops > h.ctx.maxRecursion {
		h.failLocked("delegation chain exceeded %d hops", h.ctx.maxRecursion)

		return
	}

	tail := h.tail()
	if tail == nil {
		h.failLocked("resolution has no authority")

		return
	}

	switch auth := tail.auth.(type) {
	case *gnsAuthority:
		h.queryGNSLocked(tail.label, auth.zone)
	case *dnsAuthority:
		h.queryDNSLocked(auth)
	}
}

// queryGNSLocked asks the namestore for (zone, label) and falls through to
// the DHT on a miss
func (h *Handle) queryGNSLocked(label string, z *zone.PublicKey) {
	query := zone.QueryHash(z, label)

	h.log.WithField("label", label).WithField("zone", z).Debug("namestore lookup")

	var seq uint64

	op := h.ctx.collab.Namestore.LookupBlock(query, func(block *Block) {
		h.ctx.mu.Lock()
		defer h.ctx.mu.Unlock()

		if !h.resumeLocked(pendingNamestore, seq) {
			return
		}

		h.detachPendingLocked()
		h.onNamestoreBlockLocked(label, z, query, block)
	})

	seq = h.setPendingLocked(pendingNamestore, op, nil)
}

func (h *Handle) onNamestoreBlockLocked(label string, z *zone.PublicKey, query zone.Hash, block *Block) {
	if block != nil && !block.Expired(time.Now()) {
		records, err := h.ctx.collab.Namestore.DecryptBlock(block, z, label)
		if err != nil {
			h.failLocked("malformed block in namestore for '%s': %v", label, err)

			return
		}

		evt.Bus().Publish(evt.NamestoreCacheHit, label)
		h.handleRecordsLocked(records)

		return
	}

	evt.Bus().Publish(evt.NamestoreCacheMiss, label)

	if h.onlyCached {
		h.failLocked("no cached result for '%s'", label)

		return
	}

	h.startDHTLocked(label, z, query)
}

// startDHTLocked issues the background DHT GET under admission control:
// when the heap is at capacity, its oldest entry is force-failed to make
// room for the new one.
func (h *Handle) startDHTLocked(label string, z *zone.PublicKey, query zone.Hash) {
	for h.ctx.dhtHeap.size() >= h.ctx.maxBackground {
		oldest := h.ctx.dhtHeap.popOldest()

		oldest.log.Debug("evicted from DHT admission heap")
		evt.Bus().Publish(evt.DhtQueryEvicted, oldest.name)

		oldest.failLocked("too many background queries, DHT lookup dropped")
	}

	h.log.WithField("label", label).Debug("starting DHT lookup")

	var seq uint64

	op := h.ctx.collab.DHT.Get(query, func(block *Block) {
		h.ctx.mu.Lock()
		defer h.ctx.mu.Unlock()

		if !h.resumeLocked(pendingDHT, seq) {
			return
		}

		h.onDHTBlockLocked(label, z, block)
	})

	timer := time.AfterFunc(h.ctx.dhtTimeout, func() {
		h.ctx.mu.Lock()
		defer h.ctx.mu.Unlock()

		if !h.resumeLocked(pendingDHT, seq) {
			return
		}

		h.failLocked("DHT lookup for '%s' timed out", label)
	})

	seq = h.setPendingLocked(pendingDHT, op, timer)

	h.dhtStarted = time.Now()
	h.ctx.dhtHeap.push(h)

	evt.Bus().Publish(evt.DhtQueryStarted, label)
}

// onDHTBlockLocked inspects one DHT delivery. Unusable blocks keep the GET
// running; the first usable one stops it and is cached back into the
// namestore, best effort.
func (h *Handle) onDHTBlockLocked(label string, z *zone.PublicKey, block *Block) {
	if block == nil || block.Expired(time.Now()) {
		h.log.Debug("ignoring unusable DHT delivery")

		return
	}

	records, err := h.ctx.collab.Namestore.DecryptBlock(block, z, label)
	if err != nil {
		h.log.Warnf("ignoring malformed DHT block for '%s': %v", label, err)

		return
	}

	h.clearPendingLocked()
	h.ctx.dhtHeap.remove(h)

	h.ctx.startCacheWriteLocked(block)

	h.handleRecordsLocked(records)
}
