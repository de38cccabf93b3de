// Package namestore provides the in-memory namestore: the local block
// cache the resolver consults before going to the DHT.
package namestore

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/gnunet-go/gns/cache/expirationcache"
	"github.com/gnunet-go/gns/resolver"
	"github.com/gnunet-go/gns/rr"
	"github.com/gnunet-go/gns/util"
	"github.com/gnunet-go/gns/zone"
)

// defaultBlockTTL bounds how long a block without expiration is kept
const defaultBlockTTL = time.Hour

// Memory is a size-bounded in-process namestore. Block payloads are the
// binary record-set encoding; DecryptBlock is the matching decode.
type Memory struct {
	blocks *expirationcache.ExpiringLRUCache[resolver.Block]
}

// NewMemory creates a namestore holding at most maxItems blocks
func NewMemory(maxItems uint) *Memory {
	return &Memory{
		blocks: expirationcache.NewCache(
			expirationcache.WithMaxSize[resolver.Block](maxItems),
		),
	}
}

// LookupBlock implements resolver.Namestore
func (m *Memory) LookupBlock(query zone.Hash, callback func(block *resolver.Block)) resolver.SubOp {
	op := util.NewAsyncOp(nil)

	go func() {
		block, _ := m.blocks.Get(cacheKey(query))
		op.Deliver(func() { callback(block) })
	}()

	return op
}

// CacheBlock implements resolver.Namestore
func (m *Memory) CacheBlock(block *resolver.Block, done func(err error)) resolver.SubOp {
	op := util.NewAsyncOp(nil)

	go func() {
		err := m.put(block)
		op.Deliver(func() { done(err) })
	}()

	return op
}

// DecryptBlock implements resolver.Namestore
func (m *Memory) DecryptBlock(block *resolver.Block, z *zone.PublicKey, label string) ([]*rr.Record, error) {
	records, err := rr.UnmarshalAll(block.Data)
	if err != nil {
		return nil, fmt.Errorf("can't decode block for '%s': %w", label, err)
	}

	now := time.Now()
	usable := make([]*rr.Record, 0, len(records))

	for _, rec := range records {
		if !rec.Expired(now) {
			usable = append(usable, rec)
		}
	}

	return usable, nil
}

// PutRecords stores a record set under (zone, label), the write side the
// resolver's cache path uses in reverse
func (m *Memory) PutRecords(z *zone.PublicKey, label string, records []*rr.Record) {
	expiry := earliestExpiry(records)

	_ = m.put(&resolver.Block{
		Query:  zone.QueryHash(z, label),
		Data:   rr.MarshalAll(records),
		Expiry: expiry,
	})
}

// TotalCount returns the number of stored blocks
func (m *Memory) TotalCount() int {
	return m.blocks.TotalCount()
}

// Close stops the cache's cleanup goroutine
func (m *Memory) Close() error {
	m.blocks.Close()

	return nil
}

func (m *Memory) put(block *resolver.Block) error {
	ttl := defaultBlockTTL
	if !block.Expiry.IsZero() {
		ttl = time.Until(block.Expiry)
	}

	if ttl <= 0 {
		return fmt.Errorf("block is already expired")
	}

	stored := *block
	m.blocks.Put(cacheKey(block.Query), &stored, ttl)

	return nil
}

func cacheKey(query zone.Hash) string {
	return hex.EncodeToString(query[:])
}

func earliestExpiry(records []*rr.Record) time.Time {
	var earliest time.Time

	for _, rec := range records {
		if rec.Expiry.IsZero() {
			continue
		}

		if earliest.IsZero() || rec.Expiry.Before(earliest) {
			earliest = rec.Expiry
		}
	}

	return earliest
}
