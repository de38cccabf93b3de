package dht_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/gnunet-go/gns/dht"
	"github.com/gnunet-go/gns/resolver"
	"github.com/gnunet-go/gns/zone"
)

var _ = Describe("In-process DHT", func() {
	var (
		sut   *Memory
		query zone.Hash
	)

	BeforeEach(func() {
		sut = NewMemory()

		key, err := zone.GeneratePrivateKey()
		Expect(err).Should(Succeed())

		query = zone.QueryHash(key.Public(), "www")
	})

	It("delivers a published block", func() {
		sut.Put(&resolver.Block{Query: query, Data: []byte{1, 2, 3}})

		delivered := make(chan *resolver.Block, 1)
		sut.Get(query, func(block *resolver.Block) { delivered <- block })

		var block *resolver.Block

		Eventually(delivered).Should(Receive(&block))
		Expect(block.Data).Should(Equal([]byte{1, 2, 3}))
	})

	It("stays silent for an unknown query", func() {
		delivered := make(chan *resolver.Block, 1)
		sut.Get(query, func(block *resolver.Block) { delivered <- block })

		Consistently(delivered, "100ms").ShouldNot(Receive())
	})

	It("detaches the stored block from the caller's copy", func() {
		original := &resolver.Block{Query: query, Expiry: time.Now().Add(time.Hour)}

		sut.Put(original)
		original.Data = []byte{0xFF}

		delivered := make(chan *resolver.Block, 1)
		sut.Get(query, func(block *resolver.Block) { delivered <- block })

		var block *resolver.Block

		Eventually(delivered).Should(Receive(&block))
		Expect(block.Data).Should(BeNil())
	})
})
