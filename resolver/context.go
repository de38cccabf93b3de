// Package resolver implements the GNS recursive resolver: it walks a chain
// of cryptographic zone delegations, consulting the local namestore, the
// DHT, legacy DNS and the VPN address allocator, and reinterprets records
// (CNAME, PKEY, GNS2DNS, VPN) along the way.
package resolver

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/gnunet-go/gns/config"
	"github.com/gnunet-go/gns/evt"
	"github.com/gnunet-go/gns/log"
	"github.com/gnunet-go/gns/rr"
)

// debugAssertions turns invariant violations into panics; tests enable it
// nolint:gochecknoglobals
var debugAssertions = false

// EnableDebugAssertions makes invariant violations fatal
func EnableDebugAssertions(enabled bool) {
	debugAssertions = enabled
}

func debugAssert(cond bool, msg string) {
	if cond {
		return
	}

	if debugAssertions {
		panic("resolver invariant violated: " + msg)
	}

	log.PrefixedLog("resolver").Error("invariant violated: ", msg)
}

// Context owns all process-wide resolver state: the collaborator
// connections, the set of active resolutions, the DHT admission heap and
// the in-flight namestore cache writes.
//
// All state transitions of all handles are serialized by one mutex; within
// a handle, resolution steps are therefore strictly sequential.
type Context struct {
	collab Collaborators

	maxBackground int
	maxRecursion  int
	dhtTimeout    time.Duration
	dnsTimeout    time.Duration

	mu     sync.Mutex
	seq    uint64
	active map[*Handle]struct{}

	// dhtHeap holds the handles waiting for a DHT GET, oldest on top;
	// its capacity is maxBackground
	dhtHeap *admissionHeap

	// cacheWrites tracks fire-and-forget namestore writes so Close can
	// cancel them; entries remove themselves on completion
	cacheWrites map[*cacheWrite]struct{}

	closed bool
}

type cacheWrite struct {
	op SubOp
}

// NewContext creates the process-wide resolver state. Namestore and DHT
// are mandatory collaborators.
func NewContext(cfg *config.Config, collab Collaborators) (*Context, error) {
	if collab.Namestore == nil || collab.DHT == nil {
		return nil, fmt.Errorf("namestore and DHT collaborators are required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Context{
		collab:        collab,
		maxBackground: cfg.Resolver.MaxBackgroundQueries,
		maxRecursion:  cfg.Resolver.MaxRecursion,
		dhtTimeout:    cfg.Resolver.DhtTimeout.ToDuration(),
		dnsTimeout:    cfg.DNS.Timeout.ToDuration(),
		active:        map[*Handle]struct{}{},
		dhtHeap:       newAdmissionHeap(),
		cacheWrites:   map[*cacheWrite]struct{}{},
	}, nil
}

// Lookup starts one resolution. The callback fires exactly once, with nil
// records on failure; Cancel on the returned handle suppresses it.
func (c *Context) Lookup(req *LookupRequest, callback ResultCallback) *Handle {
	id := uuid.New().String()

	h := &Handle{
		ctx:        c,
		id:         id,
		log:        log.PrefixedLog("resolver").WithField("lookup", id[:8]).WithField("name", log.EscapeInput(req.Name)),
		recordType: req.Type,
		startZone:  req.Zone,
		shortenKey: req.ShortenKey,
		onlyCached: req.OnlyCached,
		callback:   callback,
		heapIndex:  -1,
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		h.done = true
		h.completeLocked(nil)

		return h
	}

	c.active[h] = struct{}{}
	evt.Bus().Publish(evt.ResolutionStarted, req.Name)

	h.classifyLocked(req.Name)

	return h
}

// Close force-fails every active resolution, cancels outstanding cache
// writes and closes all closable collaborators.
func (c *Context) Close() error {
	c.mu.Lock()

	c.closed = true

	for h := range c.active {
		h.log.Debug("force-failing resolution on shutdown")
		h.done = true
		h.teardownLocked()
		h.completeLocked(nil)
	}

	for cw := range c.cacheWrites {
		if cw.op != nil {
			cw.op.Cancel()
		}

		delete(c.cacheWrites, cw)
	}

	c.mu.Unlock()

	var result *multierror.Error

	for _, collaborator := range []interface{}{
		c.collab.Namestore, c.collab.DHT, c.collab.DNSStub,
		c.collab.StdResolver, c.collab.VPN, c.collab.Shortener,
	} {
		if closer, ok := collaborator.(io.Closer); ok {
			result = multierror.Append(result, closer.Close())
		}
	}

	return result.ErrorOrNil()
}

// ActiveCount returns the number of in-flight resolutions
func (c *Context) ActiveCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.active)
}

// startCacheWriteLocked issues a best-effort namestore write of a block the
// DHT delivered. Failures are logged, never retried.
func (c *Context) startCacheWriteLocked(block *Block) {
	cw := &cacheWrite{}
	c.cacheWrites[cw] = struct{}{}

	cw.op = c.collab.Namestore.CacheBlock(block, func(err error) {
		c.mu.Lock()
		delete(c.cacheWrites, cw)
		c.mu.Unlock()

		if err != nil {
			log.PrefixedLog("resolver").Warn("namestore cache write failed: ", err)
		}
	})
}

// failLocked funnels every failure into the single teardown path: one
// callback with no records, handle destroyed.
func (h *Handle) failLocked(reason string, args ...interface{}) {
	if h.done {
		return
	}

	h.log.Warnf("resolution failed: "+reason, args...)

	h.done = true
	h.teardownLocked()
	h.completeLocked(nil)
}

// deliverLocked finishes the resolution successfully
func (h *Handle) deliverLocked(records []*rr.Record) {
	if h.done {
		return
	}

	h.done = true
	h.teardownLocked()
	h.completeLocked(records)
}

// completeLocked schedules the one and only result callback. Delivery
// happens on its own goroutine so callbacks may issue new lookups freely.
func (h *Handle) completeLocked(records []*rr.Record) {
	if len(records) > 0 {
		evt.Bus().Publish(evt.ResolutionCompleted, len(records))
	} else {
		evt.Bus().Publish(evt.ResolutionFailed, h.name)
	}

	callback := h.callback
	h.callback = nil

	if callback == nil {
		return
	}

	go callback(records)
}
