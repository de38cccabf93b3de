// Package dht provides a minimal in-process DHT for tests and
// single-machine use: a block store keyed by query hash.
package dht

import (
	"encoding/hex"
	"sync"

	"github.com/gnunet-go/gns/resolver"
	"github.com/gnunet-go/gns/util"
	"github.com/gnunet-go/gns/zone"
)

// Memory is a map-backed DHT. A GET delivers the stored block once;
// a missing key delivers nothing, leaving the GET pending like a real
// DHT lookup that found no peers.
type Memory struct {
	mu     sync.RWMutex
	blocks map[string]*resolver.Block
}

// NewMemory creates an empty in-process DHT
func NewMemory() *Memory {
	return &Memory{blocks: map[string]*resolver.Block{}}
}

// Put publishes a block under its query hash
func (m *Memory) Put(block *resolver.Block) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *block
	m.blocks[hex.EncodeToString(block.Query[:])] = &stored
}

// Get implements resolver.DHT
func (m *Memory) Get(query zone.Hash, callback func(block *resolver.Block)) resolver.SubOp {
	op := util.NewAsyncOp(nil)

	go func() {
		m.mu.RLock()
		block := m.blocks[hex.EncodeToString(query[:])]
		m.mu.RUnlock()

		if block == nil {
			return
		}

		op.Deliver(func() { callback(block) })
	}()

	return op
}
