package resolver

import (
	"encoding/hex"
	"net"
	"time"

	"github.com/gnunet-go/gns/evt"
	"github.com/gnunet-go/gns/rr"
	"github.com/gnunet-go/gns/zone"
)

// vpnAddressLifetime is the expiration the bridge assigns to the address it
// synthesizes in place of the VPN record
const vpnAddressLifetime = 5 * time.Minute

// vpnContext bridges an in-flight VPN allocation back to its resolution.
// It holds a serialized snapshot of the whole co-occurring record set: only
// the VPN record gets substituted, the siblings must survive, and the
// original buffer may be gone by the time the allocation completes.
type vpnContext struct {
	snapshot []byte
	count    int
}

// startVPNLocked asks the VPN service for a concrete address in place of
// the placeholder record
func (h *Handle) startVPNLocked(vpnRec *rr.Record, records []*rr.Record) {
	if h.ctx.collab.VPN == nil {
		h.failLocked("VPN record found but no VPN service is available")

		return
	}

	peer, proto, service, err := rr.VPNDetails(vpnRec)
	if err != nil {
		h.failLocked("malformed VPN record: %v", err)

		return
	}

	h.vpnCtx = &vpnContext{
		snapshot: rr.MarshalAll(records),
		count:    len(records),
	}

	family := FamilyIPv4
	if h.recordType == rr.TypeAAAA {
		family = FamilyIPv6
	}

	h.log.WithField("peer", hex.EncodeToString(peer[:4])).Debug("requesting VPN redirect")
	evt.Bus().Publish(evt.VpnRedirectRequested, hex.EncodeToString(peer[:]))

	var seq uint64

	op := h.ctx.collab.VPN.RedirectToPeer(family, proto, peer, zone.HashData([]byte(service)),
		func(family Family, addr net.IP, err error) {
			h.ctx.mu.Lock()
			defer h.ctx.mu.Unlock()

			if !h.resumeLocked(pendingVPN, seq) {
				return
			}

			h.detachPendingLocked()

			if err != nil || addr == nil {
				h.failLocked("VPN address allocation failed: %v", err)

				return
			}

			h.finishVPNLocked(family, addr)
		})

	seq = h.setPendingLocked(pendingVPN, op, nil)
}

// finishVPNLocked restores the snapshotted set, substitutes the first VPN
// record with the allocated address and re-enters the post-processor.
// The substitution pass runs at most once per resolution.
func (h *Handle) finishVPNLocked(family Family, addr net.IP) {
	restored, err := rr.UnmarshalAll(h.vpnCtx.snapshot)
	if err != nil {
		debugAssert(false, "VPN snapshot does not decode: "+err.Error())
		h.failLocked("can't restore record set after VPN allocation: %v", err)

		return
	}

	debugAssert(len(restored) == h.vpnCtx.count, "VPN snapshot record count changed")
	h.vpnCtx = nil

	idx := -1

	for i, rec := range restored {
		if rec.Type == rr.TypeVPN {
			idx = i

			break
		}
	}

	if idx < 0 {
		debugAssert(false, "restored record set is missing its VPN record")
		h.failLocked("restored record set is missing its VPN record")

		return
	}

	var rec *rr.Record

	expiry := time.Now().Add(vpnAddressLifetime)

	if family == FamilyIPv6 {
		rec, err = rr.NewAAAA(addr, expiry)
	} else {
		rec, err = rr.NewA(addr, expiry)
	}

	if err != nil {
		h.failLocked("VPN service returned an unusable address: %v", err)

		return
	}

	restored[idx] = rec
	h.vpnSubstituted = true

	h.handleRecordsLocked(restored)
}
