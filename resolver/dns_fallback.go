package resolver

import (
	"net"
	"time"

	"github.com/gnunet-go/gns/rr"
)

// startFallbackLocked handles names with no GNS suffix: one standard
// hostname resolution, addresses accumulated until the sentinel arrives.
func (h *Handle) startFallbackLocked() {
	std := h.ctx.collab.StdResolver
	if std == nil {
		h.failLocked("no standard resolver available for '%s'", h.name)

		return
	}

	family := FamilyUnspec

	switch h.recordType {
	case rr.TypeA:
		family = FamilyIPv4
	case rr.TypeAAAA:
		family = FamilyIPv6
	}

	h.log.WithField("family", family).Debug("standard DNS fallback")

	var seq uint64

	op := std.LookupIP(h.name, family, func(ip net.IP) {
		h.ctx.mu.Lock()
		defer h.ctx.mu.Unlock()

		if !h.resumeLocked(pendingStdResolve, seq) {
			return
		}

		if ip != nil {
			h.appendFallbackAddressLocked(ip)

			return
		}

		// sentinel: convert whatever arrived and finish
		h.detachPendingLocked()

		results := h.dnsResults
		h.dnsResults = nil

		h.deliverLocked(results)
	})

	seq = h.setPendingLocked(pendingStdResolve, op, nil)
}

// appendFallbackAddressLocked records one delivered address. The records
// carry no expiration: the fallback path is non-authoritative.
func (h *Handle) appendFallbackAddressLocked(ip net.IP) {
	var (
		rec *rr.Record
		err error
	)

	if ip.To4() != nil {
		rec, err = rr.NewA(ip, time.Time{})
	} else {
		rec, err = rr.NewAAAA(ip, time.Time{})
	}

	if err != nil {
		h.log.Debug("skipping fallback address: ", err)

		return
	}

	h.dnsResults = append(h.dnsResults, rec)
}
