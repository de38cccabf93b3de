package log

import (
	"github.com/sirupsen/logrus"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Logger", func() {
	AfterEach(func() {
		// restore the default configuration other suites rely on
		ConfigureLogger(Config{Level: "info", Format: FormatTypeText, Timestamp: true})
		Silence()
	})

	Describe("ConfigureLogger", func() {
		It("applies the configured level", func() {
			ConfigureLogger(Config{Level: "debug", Format: FormatTypeText})

			Expect(Log().Level).Should(Equal(logrus.DebugLevel))
		})

		It("selects the json formatter", func() {
			ConfigureLogger(Config{Level: "info", Format: FormatTypeJson})

			Expect(Log().Formatter).Should(BeAssignableToTypeOf(&logrus.JSONFormatter{}))
		})
	})

	Describe("PrefixedLog", func() {
		It("attaches the prefix field", func() {
			entry := PrefixedLog("resolver")

			Expect(entry.Data).Should(HaveKeyWithValue("prefix", "resolver"))
		})
	})

	Describe("WithPrefix", func() {
		It("attaches the prefix to an existing entry", func() {
			entry := WithPrefix(Log().WithField("lookup", "abc"), "resolver")

			Expect(entry.Data).Should(HaveKeyWithValue("prefix", "resolver"))
			Expect(entry.Data).Should(HaveKeyWithValue("lookup", "abc"))
		})
	})

	Describe("EscapeInput", func() {
		It("strips line breaks", func() {
			Expect(EscapeInput("www.example\n.com\r")).Should(Equal("www.example.com"))
		})

		It("leaves clean input alone", func() {
			Expect(EscapeInput("www.example.com")).Should(Equal("www.example.com"))
		})
	})
})
