package resolver

import (
	"net"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gnunet-go/gns/rr"
	"github.com/gnunet-go/gns/zone"
)

// rootLabel stands in for the empty name inside a zone
const rootLabel = "+"

// relativeSuffix marks a name as relative to the zone it was found in
const relativeSuffix = ".+"

// pendingKind enumerates the mutually exclusive sub-operation slots
type pendingKind int

const (
	pendingNone pendingKind = iota
	pendingNamestore
	pendingDHT
	pendingDNS
	pendingStdResolve
	pendingVPN
)

// pendingOp is the single live sub-operation of a handle. Modelling it as
// one tagged slot makes the at-most-one invariant structural.
type pendingOp struct {
	kind  pendingKind
	op    SubOp
	timer *time.Timer
	seq   uint64
}

// authority is the tagged payload of one authority-chain hop
type authority interface {
	isAuthority()
}

// gnsAuthority resolves labels inside a GNS zone
type gnsAuthority struct {
	zone *zone.PublicKey
}

// dnsAuthority hands the rest of the name to a legacy DNS server
type dnsAuthority struct {
	// name is the full DNS name to ask for
	name string

	// serverName and serverIP identify the authoritative server
	serverName string
	serverIP   net.IP
}

func (*gnsAuthority) isAuthority() {}
func (*dnsAuthority) isAuthority() {}

// hop is one node of the authority chain: the label consumed to get here
// plus the authority answering for it
type hop struct {
	label string
	auth  authority
}

// ResultCallback receives the outcome of a lookup exactly once.
// An empty record slice signals failure. Delivery is asynchronous.
type ResultCallback func(records []*rr.Record)

// LookupRequest describes one resolution
type LookupRequest struct {
	// Name to resolve
	Name string

	// Type of the desired records; rr.TypeAny matches everything
	Type rr.Type

	// Zone all ".gnu" names are anchored in
	Zone *zone.PublicKey

	// ShortenKey enables opportunistic shortening when set
	ShortenKey *zone.PrivateKey

	// OnlyCached fails instead of consulting the DHT
	OnlyCached bool
}

// Handle is one in-flight resolution
type Handle struct {
	ctx *Context
	id  string
	log *logrus.Entry

	// name is the not-yet-consumed part of the query; pos is the length
	// of its unconsumed prefix and strictly decreases towards zero
	name string
	pos  int

	recordType rr.Type
	startZone  *zone.PublicKey
	shortenKey *zone.PrivateKey
	onlyCached bool

	// loops guards against delegation cycles
	loops int

	chain   []*hop
	pending pendingOp

	// dnsResults accumulates addresses during top-level DNS fallback
	dnsResults []*rr.Record

	vpnCtx *vpnContext

	// vpnSubstituted blocks a second trip through the VPN bridge
	vpnSubstituted bool

	callback ResultCallback

	// heapIndex is the handle's slot in the DHT admission heap, -1 outside
	heapIndex  int
	dhtStarted time.Time

	done bool
}

// tail returns the current end of the authority chain
func (h *Handle) tail() *hop {
	if len(h.chain) == 0 {
		return nil
	}

	return h.chain[len(h.chain)-1]
}

// peelLabel consumes the right-most unconsumed label. With nothing left to
// consume it returns the root label.
func (h *Handle) peelLabel() string {
	if h.pos == 0 {
		return rootLabel
	}

	rest := h.name[:h.pos]

	idx := strings.LastIndexByte(rest, '.')
	if idx < 0 {
		h.pos = 0

		return rest
	}

	h.pos = idx

	return rest[idx+1:]
}

// unresolved returns the part of the name no hop has consumed yet
func (h *Handle) unresolved() string {
	return h.name[:h.pos]
}

// pushGNSHop appends a GNS-authority hop for the next unconsumed label
func (h *Handle) pushGNSHop(z *zone.PublicKey) {
	h.chain = append(h.chain, &hop{label: h.peelLabel(), auth: &gnsAuthority{zone: z}})
}

// tailZone returns the zone of the tail hop, or nil for a DNS tail
func (h *Handle) tailZone() *zone.PublicKey {
	if t := h.tail(); t != nil {
		if gns, ok := t.auth.(*gnsAuthority); ok {
			return gns.zone
		}
	}

	return nil
}

// Cancel aborts the resolution. It synchronously tears down whatever
// sub-operation is live; the result callback will not fire afterwards.
func (h *Handle) Cancel() {
	h.ctx.mu.Lock()
	defer h.ctx.mu.Unlock()

	if h.done {
		return
	}

	h.done = true
	h.teardownLocked()
}

// teardownLocked releases everything the handle holds. Called with the
// context lock held, exactly once per handle.
func (h *Handle) teardownLocked() {
	delete(h.ctx.active, h)

	h.clearPendingLocked()

	if h.heapIndex >= 0 {
		h.ctx.dhtHeap.remove(h)
	}

	h.vpnCtx = nil
	h.chain = nil
	h.dnsResults = nil
}

// setPendingLocked installs the next live sub-operation
func (h *Handle) setPendingLocked(kind pendingKind, op SubOp, timer *time.Timer) uint64 {
	debugAssert(h.pending.kind == pendingNone, "sub-operation already in flight")

	h.ctx.seq++
	h.pending = pendingOp{kind: kind, op: op, timer: timer, seq: h.ctx.seq}

	return h.pending.seq
}

// clearPendingLocked cancels and drops the live sub-operation, if any
func (h *Handle) clearPendingLocked() {
	if h.pending.kind == pendingNone {
		return
	}

	if h.pending.timer != nil {
		h.pending.timer.Stop()
	}

	if h.pending.op != nil {
		h.pending.op.Cancel()
	}

	h.pending = pendingOp{}
}

// resumeLocked checks whether a completion callback still belongs to the
// handle's current sub-operation. Late callbacks (after cancel, timeout or
// eviction) are dropped here.
func (h *Handle) resumeLocked(kind pendingKind, seq uint64) bool {
	return !h.done && h.pending.kind == kind && h.pending.seq == seq
}

// detachPendingLocked forgets the live sub-operation without cancelling it,
// for completion paths where the operation just finished on its own
func (h *Handle) detachPendingLocked() {
	if h.pending.timer != nil {
		h.pending.timer.Stop()
	}

	h.pending = pendingOp{}
}
