package resolver

import (
	"net"
	"time"

	"github.com/gnunet-go/gns/rr"
	"github.com/gnunet-go/gns/zone"
)

// SubOp is one cancellable in-flight collaborator operation. A resolution
// has at most one of these alive at any time.
//
// Collaborators must deliver their callbacks asynchronously, never from
// inside the issuing call; the resolver suspends immediately after issuing
// and resumes only inside the completion callback.
type SubOp interface {
	Cancel()
}

// Block is an encrypted record block as stored in namestore and DHT.
// Its payload encoding is owned by the namestore, not by the resolver.
// Query identifies the (zone, label) derivation the block was stored under,
// so that DHT-sourced blocks can be cached back into the namestore.
type Block struct {
	Query  zone.Hash
	Data   []byte
	Expiry time.Time
}

// Expired reports whether the block's expiration time has passed
func (b *Block) Expired(now time.Time) bool {
	return !b.Expiry.IsZero() && b.Expiry.Before(now)
}

// Family selects an address family for DNS fallback and VPN allocations
type Family int

const (
	FamilyUnspec Family = iota
	FamilyIPv4
	FamilyIPv6
)

// String implements `fmt.Stringer`
func (f Family) String() string {
	switch f {
	case FamilyIPv4:
		return "ipv4"
	case FamilyIPv6:
		return "ipv6"
	default:
		return "unspec"
	}
}

// Namestore is the local record storage the resolver consults before the DHT
type Namestore interface {
	// LookupBlock fetches the block stored under the query hash;
	// the callback receives nil on a miss
	LookupBlock(query zone.Hash, callback func(block *Block)) SubOp

	// CacheBlock stores a DHT-sourced block, best effort
	CacheBlock(block *Block, done func(err error)) SubOp

	// DecryptBlock decodes a block into its records; pure and synchronous
	DecryptBlock(block *Block, z *zone.PublicKey, label string) ([]*rr.Record, error)
}

// DHT is the distributed hash table holding published blocks
type DHT interface {
	// Get starts a GET for the query hash. The callback may be invoked
	// repeatedly; the resolver cancels after the first usable block.
	Get(query zone.Hash, callback func(block *Block)) SubOp
}

// DNSStub sends one raw DNS query to one concrete server
type DNSStub interface {
	Exchange(server net.IP, rawQuery []byte, callback func(rawResponse []byte, err error)) SubOp
}

// StdResolver performs a standard hostname resolution. The callback is
// invoked once per delivered address and a final time with nil as sentinel.
type StdResolver interface {
	LookupIP(hostname string, family Family, callback func(ip net.IP)) SubOp
}

// VPN allocates a tunneled address for a peer's service
type VPN interface {
	RedirectToPeer(family Family, proto uint16, peer [rr.PeerSize]byte,
		serviceHash zone.Hash, callback func(family Family, addr net.IP, err error)) SubOp
}

// Shortener is the opportunistic shortening cache; fire and forget
type Shortener interface {
	Shorten(label string, target *zone.PublicKey, shortenKey *zone.PrivateKey)
}

// Collaborators bundles everything the resolver consumes. Namestore and DHT
// are required; the remaining fields may be nil, which disables the
// corresponding path (DNS fallback, delegated DNS, VPN, shortening).
type Collaborators struct {
	Namestore   Namestore
	DHT         DHT
	DNSStub     DNSStub
	StdResolver StdResolver
	VPN         VPN
	Shortener   Shortener
}
