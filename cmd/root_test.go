package cmd

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gnunet-go/gns/metrics"
)

var _ = Describe("Root command", func() {
	When("any command runs", func() {
		It("starts metrics collection", func() {
			rootCmd.SetArgs([]string{"version"})
			Expect(rootCmd.Execute()).Should(Succeed())

			families, err := metrics.Registry().Gather()
			Expect(err).Should(Succeed())

			names := make([]string, 0, len(families))
			for _, mf := range families {
				names = append(names, mf.GetName())
			}

			Expect(names).Should(ContainElement("go_goroutines"))
			Expect(names).Should(ContainElement("gns_dns_delegations_total"))
		})
	})
})
