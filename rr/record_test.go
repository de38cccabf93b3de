package rr_test

import (
	"net"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/gnunet-go/gns/rr"
	"github.com/gnunet-go/gns/zone"
)

var _ = Describe("Records", func() {
	var now time.Time

	BeforeEach(func() {
		now = time.Now()
	})

	Describe("Type", func() {
		It("names DNS types through their mnemonic", func() {
			Expect(TypeA.String()).Should(Equal("A"))
			Expect(TypeCNAME.String()).Should(Equal("CNAME"))
		})

		It("names the GNS-specific types", func() {
			Expect(TypePKEY.String()).Should(Equal("PKEY"))
			Expect(TypeGNS2DNS.String()).Should(Equal("GNS2DNS"))
		})

		It("falls back to a numeric form for unknown types", func() {
			Expect(Type(70000).String()).Should(Equal("TYPE70000"))
		})

		It("treats only A and AAAA as address types", func() {
			Expect(TypeA.IsAddress()).Should(BeTrue())
			Expect(TypeAAAA.IsAddress()).Should(BeTrue())
			Expect(TypeCNAME.IsAddress()).Should(BeFalse())
			Expect(TypeVPN.IsAddress()).Should(BeFalse())
			Expect(TypeAny.IsAddress()).Should(BeFalse())
		})
	})

	Describe("Expiration", func() {
		It("treats the zero time as never expiring", func() {
			rec := &Record{Type: TypeA, Data: []byte{192, 0, 2, 1}}

			Expect(rec.Expired(now)).Should(BeFalse())
		})

		It("expires once the expiration time passes", func() {
			rec := &Record{Type: TypeA, Data: []byte{192, 0, 2, 1}, Expiry: now.Add(-time.Second)}

			Expect(rec.Expired(now)).Should(BeTrue())
		})
	})

	Describe("Matching", func() {
		It("matches the wildcard type against everything", func() {
			rec := &Record{Type: TypeLEHO}

			Expect(rec.Matches(TypeAny)).Should(BeTrue())
		})

		It("matches the exact type only", func() {
			rec := &Record{Type: TypeA}

			Expect(rec.Matches(TypeA)).Should(BeTrue())
			Expect(rec.Matches(TypeAAAA)).Should(BeFalse())
		})
	})

	Describe("Payload accessors", func() {
		It("builds and reads address records", func() {
			rec, err := NewA(net.ParseIP("192.0.2.1"), now)
			Expect(err).Should(Succeed())

			ip, err := IP(rec)
			Expect(err).Should(Succeed())
			Expect(ip.String()).Should(Equal("192.0.2.1"))
		})

		It("rejects an IPv6 address for an A record", func() {
			_, err := NewA(net.ParseIP("2001:db8::1"), now)

			Expect(err).Should(HaveOccurred())
		})

		It("rejects an IPv4 address for an AAAA record", func() {
			_, err := NewAAAA(net.ParseIP("192.0.2.1"), now)

			Expect(err).Should(HaveOccurred())
		})

		It("refuses to read an address out of a non-address record", func() {
			_, err := IP(&Record{Type: TypeLEHO, Data: []byte("host")})

			Expect(err).Should(HaveOccurred())
		})

		It("round-trips a zone delegation", func() {
			key, err := zone.GeneratePrivateKey()
			Expect(err).Should(Succeed())

			target, err := PKEYZone(NewPKEY(key.Public(), now))
			Expect(err).Should(Succeed())
			Expect(target.Equal(key.Public())).Should(BeTrue())
		})

		It("round-trips a DNS delegation", func() {
			rec := NewGNS2DNS("example.com", "ns1.example.com", now)

			name, server, err := GNS2DNSNames(rec)
			Expect(err).Should(Succeed())
			Expect(name).Should(Equal("example.com"))
			Expect(server).Should(Equal("ns1.example.com"))
		})

		It("rejects a DNS delegation with a missing terminator", func() {
			rec := &Record{Type: TypeGNS2DNS, Data: []byte("example.com\x00ns1.example.com")}

			_, _, err := GNS2DNSNames(rec)
			Expect(err).Should(HaveOccurred())
		})

		It("rejects a DNS delegation with an empty field", func() {
			rec := &Record{Type: TypeGNS2DNS, Data: []byte("example.com\x00\x00")}

			_, _, err := GNS2DNSNames(rec)
			Expect(err).Should(HaveOccurred())
		})

		It("round-trips a VPN pointer", func() {
			var peer [PeerSize]byte
			copy(peer[:], "some peer identity for testing!!")

			peerOut, proto, service, err := VPNDetails(NewVPN(peer, 6, "www", now))
			Expect(err).Should(Succeed())
			Expect(peerOut).Should(Equal(peer))
			Expect(proto).Should(Equal(uint16(6)))
			Expect(service).Should(Equal("www"))
		})

		It("rejects a VPN record without a service name", func() {
			rec := &Record{Type: TypeVPN, Data: make([]byte, PeerSize+2)}

			_, _, _, err := VPNDetails(rec)
			Expect(err).Should(HaveOccurred())
		})
	})
})
