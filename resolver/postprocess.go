package resolver

import (
	"strings"

	"github.com/gnunet-go/gns/evt"
	"github.com/gnunet-go/gns/rr"
	"github.com/gnunet-go/gns/zone"
)

// handleRecordsLocked interprets the record set one hop produced: terminate,
// rewrite or delegate further.
func (h *Handle) handleRecordsLocked(records []*rr.Record) {
	if h.pos == 0 {
		h.processTerminalLocked(records)
	} else {
		h.processIntermediateLocked(records)
	}
}

// processTerminalLocked decides what a fully consumed name resolves to.
// The order of the checks is significant: CNAME redirection wins over VPN
// substitution, which wins over DNS delegation, which wins over plain
// delivery.
func (h *Handle) processTerminalLocked(records []*rr.Record) {
	if cname := rr.FirstOfType(records, rr.TypeCNAME); cname != nil && h.recordType != rr.TypeCNAME {
		h.followCNAMERecordLocked(cname)

		return
	}

	if h.recordType.IsAddress() && !h.vpnSubstituted {
		if vpnRec := rr.FirstOfType(records, rr.TypeVPN); vpnRec != nil {
			h.startVPNLocked(vpnRec, records)

			return
		}
	}

	if g2d := rr.FirstOfType(records, rr.TypeGNS2DNS); g2d != nil && h.recordType != rr.TypeGNS2DNS {
		h.delegateToDNSLocked(g2d, records)

		return
	}

	if pkey := rr.FirstOfType(records, rr.TypePKEY); pkey != nil {
		target, err := rr.PKEYZone(pkey)
		if err != nil {
			h.failLocked("malformed PKEY record: %v", err)

			return
		}

		h.shortenLocked(h.tail().label, target)

		if h.recordType != rr.TypePKEY {
			// the name ended on a delegation: follow it into the
			// target zone's root label
			h.chain = append(h.chain, &hop{label: rootLabel, auth: &gnsAuthority{zone: target}})
			h.stepLocked()

			return
		}
	}

	h.deliverRewrittenLocked(records)
}

// processIntermediateLocked only cares about delegation records; anything
// else cannot consume further labels.
func (h *Handle) processIntermediateLocked(records []*rr.Record) {
	if pkey := rr.FirstOfType(records, rr.TypePKEY); pkey != nil {
		target, err := rr.PKEYZone(pkey)
		if err != nil {
			h.failLocked("malformed PKEY record: %v", err)

			return
		}

		h.shortenLocked(h.tail().label, target)
		h.pushGNSHop(target)
		h.stepLocked()

		return
	}

	if g2d := rr.FirstOfType(records, rr.TypeGNS2DNS); g2d != nil {
		h.delegateToDNSLocked(g2d, records)

		return
	}

	if cname := rr.FirstOfType(records, rr.TypeCNAME); cname != nil {
		h.followCNAMERecordLocked(cname)

		return
	}

	h.failLocked("no delegation record found for '%s'", h.tail().label)
}

func (h *Handle) followCNAMERecordLocked(cname *rr.Record) {
	target, err := rr.CNAMETarget(cname)
	if err != nil {
		h.failLocked("malformed CNAME record: %v", err)

		return
	}

	h.followCNAMELocked(target)
}

// followCNAMELocked restarts resolution at a CNAME target. A relative
// target (".+") splices onto the still-unresolved prefix and stays in the
// zone the CNAME was found in; an absolute target starts over from scratch.
// The recursion guard persists across both, bounding CNAME cycles.
func (h *Handle) followCNAMELocked(target string) {
	if !strings.HasSuffix(target, relativeSuffix) {
		h.restartLocked(target)

		return
	}

	z := h.tailZone()
	if z == nil {
		h.failLocked("relative CNAME '%s' outside of a GNS zone", target)

		return
	}

	newName := strings.TrimSuffix(target, relativeSuffix)
	if unresolved := h.unresolved(); unresolved != "" {
		newName = unresolved + "." + newName
	}

	h.log.Debugf("following relative CNAME to '%s'", newName)

	h.name = newName
	h.pos = len(newName)
	h.chain = nil
	h.pushGNSHop(z)
	h.stepLocked()
}

// delegateToDNSLocked turns a GNS2DNS record into a DNS-authority hop.
// The server address comes from a companion A/AAAA glue record in the same
// set; without glue the resolution fails hard.
func (h *Handle) delegateToDNSLocked(g2d *rr.Record, records []*rr.Record) {
	if h.ctx.collab.DNSStub == nil {
		h.failLocked("DNS delegation requested but no DNS stub is available")

		return
	}

	dnsName, serverName, err := rr.GNS2DNSNames(g2d)
	if err != nil {
		h.failLocked("malformed GNS2DNS record: %v", err)

		return
	}

	// TODO: pick the glue record matching the requested address family
	// instead of the first A/AAAA encountered
	var glue *rr.Record

	for _, rec := range records {
		if rec.Type.IsAddress() {
			glue = rec

			break
		}
	}

	if glue == nil {
		h.failLocked("GNS2DNS record for '%s' has no A/AAAA glue", dnsName)

		return
	}

	serverIP, err := rr.IP(glue)
	if err != nil {
		h.failLocked("unusable glue record for '%s': %v", serverName, err)

		return
	}

	fullName := dnsName
	if unresolved := h.unresolved(); unresolved != "" {
		fullName = unresolved + "." + dnsName
	}

	// the answer-owner filter compares lowercased names
	fullName = strings.ToLower(fullName)

	consumed := h.unresolved()
	h.pos = 0

	h.chain = append(h.chain, &hop{
		label: consumed,
		auth:  &dnsAuthority{name: fullName, serverName: serverName, serverIP: serverIP},
	})

	evt.Bus().Publish(evt.DnsDelegation, fullName)
	h.stepLocked()
}

// deliverRewrittenLocked finishes the resolution: every relative name still
// embedded in the set is rewritten into its absolute zkey form using the
// zone that owns the records.
func (h *Handle) deliverRewrittenLocked(records []*rr.Record) {
	z := h.tailZone()

	translate := func(name string) string {
		return absoluteName(name, z)
	}

	out := make([]*rr.Record, 0, len(records))

	for _, rec := range records {
		rewritten, err := rr.RewriteNames(rec, translate)
		if err != nil {
			h.failLocked("can't rewrite %s record: %v", rec.Type, err)

			return
		}

		out = append(out, rewritten)
	}

	h.deliverLocked(out)
}

// absoluteName turns a ".+" relative name into its zkey form
func absoluteName(name string, z *zone.PublicKey) string {
	if z == nil {
		return name
	}

	if name == rootLabel {
		return z.Zkey() + zkeyTLD
	}

	if strings.HasSuffix(name, relativeSuffix) {
		return strings.TrimSuffix(name, relativeSuffix) + "." + z.Zkey() + zkeyTLD
	}

	return name
}

// shortenLocked hands a freshly learned delegation to the shortening cache,
// fire and forget
func (h *Handle) shortenLocked(label string, target *zone.PublicKey) {
	shortener := h.ctx.collab.Shortener
	if shortener == nil || h.shortenKey == nil {
		return
	}

	key := h.shortenKey

	go shortener.Shorten(label, target, key)
}
