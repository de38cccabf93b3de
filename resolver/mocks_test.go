package resolver

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/mock"

	"github.com/gnunet-go/gns/rr"
	"github.com/gnunet-go/gns/zone"
)

// countingOp counts how often the resolver cancels it
type countingOp struct {
	cancels *int32
}

func (o *countingOp) Cancel() {
	if o.cancels != nil {
		atomic.AddInt32(o.cancels, 1)
	}
}

// mockNamestore serves blocks from a map and records all cache writes
type mockNamestore struct {
	mu          sync.Mutex
	blocks      map[zone.Hash]*Block
	lookups     int32
	cacheWrites int32
	decryptErr  error
}

func newMockNamestore() *mockNamestore {
	return &mockNamestore{blocks: map[zone.Hash]*Block{}}
}

func (m *mockNamestore) store(z *zone.PublicKey, label string, expiry time.Time, records ...*rr.Record) {
	query := zone.QueryHash(z, label)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.blocks[query] = &Block{Query: query, Data: rr.MarshalAll(records), Expiry: expiry}
}

func (m *mockNamestore) LookupBlock(query zone.Hash, callback func(block *Block)) SubOp {
	atomic.AddInt32(&m.lookups, 1)

	m.mu.Lock()
	block := m.blocks[query]
	m.mu.Unlock()

	go callback(block)

	return &countingOp{}
}

func (m *mockNamestore) CacheBlock(block *Block, done func(err error)) SubOp {
	atomic.AddInt32(&m.cacheWrites, 1)

	m.mu.Lock()
	m.blocks[block.Query] = block
	m.mu.Unlock()

	go done(nil)

	return &countingOp{}
}

func (m *mockNamestore) DecryptBlock(block *Block, z *zone.PublicKey, label string) ([]*rr.Record, error) {
	if m.decryptErr != nil {
		return nil, m.decryptErr
	}

	return rr.UnmarshalAll(block.Data)
}

func (m *mockNamestore) lookupCount() int {
	return int(atomic.LoadInt32(&m.lookups))
}

func (m *mockNamestore) cacheWriteCount() int {
	return int(atomic.LoadInt32(&m.cacheWrites))
}

// mockDHT serves blocks from a map; with silent set it never answers,
// leaving GETs pending
type mockDHT struct {
	mu     sync.Mutex
	blocks map[zone.Hash]*Block
	silent bool
	gets   int32
	stops  int32
}

func newMockDHT() *mockDHT {
	return &mockDHT{blocks: map[zone.Hash]*Block{}}
}

func (m *mockDHT) store(z *zone.PublicKey, label string, expiry time.Time, records ...*rr.Record) {
	query := zone.QueryHash(z, label)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.blocks[query] = &Block{Query: query, Data: rr.MarshalAll(records), Expiry: expiry}
}

func (m *mockDHT) Get(query zone.Hash, callback func(block *Block)) SubOp {
	atomic.AddInt32(&m.gets, 1)

	m.mu.Lock()
	block := m.blocks[query]
	silent := m.silent
	m.mu.Unlock()

	if !silent && block != nil {
		go callback(block)
	}

	return &countingOp{cancels: &m.stops}
}

func (m *mockDHT) getCount() int {
	return int(atomic.LoadInt32(&m.gets))
}

func (m *mockDHT) stopCount() int {
	return int(atomic.LoadInt32(&m.stops))
}

// mockDNSStub answers every exchange with answerFn's response
type mockDNSStub struct {
	mu        sync.Mutex
	answerFn  func(request *dns.Msg) *dns.Msg
	exchanges int32
	lastIP    net.IP
}

func (m *mockDNSStub) Exchange(server net.IP, rawQuery []byte,
	callback func(rawResponse []byte, err error),
) SubOp {
	atomic.AddInt32(&m.exchanges, 1)

	m.mu.Lock()
	m.lastIP = server
	answerFn := m.answerFn
	m.mu.Unlock()

	go func() {
		request := new(dns.Msg)
		if err := request.Unpack(rawQuery); err != nil {
			callback(nil, err)

			return
		}

		response := answerFn(request)
		response.SetReply(request)

		raw, err := response.Pack()
		callback(raw, err)
	}()

	return &countingOp{}
}

func (m *mockDNSStub) exchangeCount() int {
	return int(atomic.LoadInt32(&m.exchanges))
}

func (m *mockDNSStub) serverIP() net.IP {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.lastIP
}

// mockStdResolver delivers its fixed addresses followed by the sentinel
type mockStdResolver struct {
	addresses []net.IP
	calls     int32
}

func (m *mockStdResolver) LookupIP(hostname string, family Family, callback func(ip net.IP)) SubOp {
	atomic.AddInt32(&m.calls, 1)

	go func() {
		for _, ip := range m.addresses {
			callback(ip)
		}

		callback(nil)
	}()

	return &countingOp{}
}

func (m *mockStdResolver) callCount() int {
	return int(atomic.LoadInt32(&m.calls))
}

// mockVPN allocates a fixed address, or nothing when silent
type mockVPN struct {
	addr     net.IP
	family   Family
	err      error
	silent   bool
	requests int32
	cancels  int32
}

func (m *mockVPN) RedirectToPeer(family Family, proto uint16, peer [rr.PeerSize]byte,
	serviceHash zone.Hash, callback func(family Family, addr net.IP, err error),
) SubOp {
	atomic.AddInt32(&m.requests, 1)

	if !m.silent {
		go callback(m.family, m.addr, m.err)
	}

	return &countingOp{cancels: &m.cancels}
}

func (m *mockVPN) requestCount() int {
	return int(atomic.LoadInt32(&m.requests))
}

func (m *mockVPN) cancelCount() int {
	return int(atomic.LoadInt32(&m.cancels))
}

// mockShortener records shorten calls via testify
type mockShortener struct {
	mock.Mock
}

func (m *mockShortener) Shorten(label string, target *zone.PublicKey, shortenKey *zone.PrivateKey) {
	m.Called(label, target, shortenKey)
}
