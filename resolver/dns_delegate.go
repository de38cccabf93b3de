package resolver

import (
	"strings"
	"time"

	"github.com/miekg/dns"

	"github.com/gnunet-go/gns/log"
	"github.com/gnunet-go/gns/rr"
	"github.com/gnunet-go/gns/util"
)

// queryDNSLocked sends one question for the hop's full name to the
// delegated-to server. This path is terminal: its answers are converted and
// delivered directly, never fed back into GNS.
func (h *Handle) queryDNSLocked(auth *dnsAuthority) {
	qtype := uint16(dns.TypeANY)
	if h.recordType != rr.TypeAny && uint32(h.recordType) < 1<<16 {
		qtype = uint16(h.recordType)
	}

	msg := util.NewMsgWithQuestion(auth.name, qtype)
	msg.RecursionDesired = true
	msg.Id = dns.Id()

	raw, err := msg.Pack()
	if err != nil {
		h.failLocked("can't build DNS query for '%s': %v", auth.name, err)

		return
	}

	h.log.WithField("server", auth.serverIP).Debugf("delegating '%s' to DNS", auth.name)

	queryID := msg.Id

	var seq uint64

	op := h.ctx.collab.DNSStub.Exchange(auth.serverIP, raw, func(rawResponse []byte, err error) {
		h.ctx.mu.Lock()
		defer h.ctx.mu.Unlock()

		if !h.resumeLocked(pendingDNS, seq) {
			return
		}

		h.detachPendingLocked()

		if err != nil {
			h.failLocked("DNS exchange with %s failed: %v", auth.serverIP, err)

			return
		}

		response := new(dns.Msg)
		if err := response.Unpack(rawResponse); err != nil {
			h.failLocked("malformed DNS response from %s: %v", auth.serverIP, err)

			return
		}

		if response.Id != queryID {
			h.failLocked("DNS response id mismatch from %s", auth.serverIP)

			return
		}

		h.onDNSResponseLocked(auth, response)
	})

	timer := time.AfterFunc(h.ctx.dnsTimeout, func() {
		h.ctx.mu.Lock()
		defer h.ctx.mu.Unlock()

		if !h.resumeLocked(pendingDNS, seq) {
			return
		}

		h.failLocked("DNS query for '%s' timed out", auth.name)
	})

	seq = h.setPendingLocked(pendingDNS, op, timer)
}

func (h *Handle) onDNSResponseLocked(auth *dnsAuthority, response *dns.Msg) {
	logger := log.WithPrefix(h.log, "dns")
	logger.Debugf("answer from %s: %s", auth.serverIP, util.AnswerToString(response.Answer))

	// a CNAME answer redirects the whole resolution, not just this hop
	if h.recordType != rr.TypeCNAME {
		for _, answer := range response.Answer {
			if cname, ok := answer.(*dns.CNAME); ok {
				h.followCNAMELocked(strings.TrimSuffix(cname.Target, "."))

				return
			}
		}
	}

	now := time.Now()
	records := make([]*rr.Record, 0, len(response.Answer))

	for _, answer := range response.Answer {
		owner := strings.TrimSuffix(strings.ToLower(answer.Header().Name), ".")
		if owner != auth.name {
			logger.Debugf("dropping DNS record owned by '%s'", log.EscapeInput(owner))

			continue
		}

		if answer.Header().Rrtype == dns.TypeDNAME {
			// DNAME delegation is not implemented
			logger.Warn("ignoring DNAME record in DNS response")

			continue
		}

		rec, err := rr.FromRR(answer, now)
		if err != nil {
			logger.Debug("skipping DNS record: ", err)

			continue
		}

		records = append(records, rec)
	}

	if len(records) == 0 {
		h.failLocked("no usable records in DNS response for '%s'", auth.name)

		return
	}

	h.deliverLocked(records)
}
