package dnsstub_test

import (
	"net"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/gnunet-go/gns/dnsstub"
	"github.com/gnunet-go/gns/resolver"
)

var _ = Describe("System resolver", func() {
	var sut *StdResolver

	BeforeEach(func() {
		sut = NewStdResolver()
	})

	collect := func(hostname string, family resolver.Family) chan []net.IP {
		result := make(chan []net.IP, 1)

		var collected []net.IP

		sut.LookupIP(hostname, family, func(ip net.IP) {
			if ip != nil {
				collected = append(collected, ip)

				return
			}

			result <- collected
		})

		return result
	}

	It("resolves localhost and terminates with the sentinel", func() {
		var ips []net.IP

		Eventually(collect("localhost", resolver.FamilyUnspec), "5s").Should(Receive(&ips))
		Expect(ips).ShouldNot(BeEmpty())
	})

	It("delivers only the sentinel for an unresolvable name", func() {
		var ips []net.IP

		Eventually(collect("host.invalid", resolver.FamilyUnspec), "10s").Should(Receive(&ips))
		Expect(ips).Should(BeEmpty())
	})
})
