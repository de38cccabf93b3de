package cmd

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Version command", func() {
	When("Version command is called", func() {
		It("should execute without error", func() {
			rootCmd.SetArgs([]string{"version"})

			Expect(rootCmd.Execute()).Should(Succeed())
		})
	})
})
