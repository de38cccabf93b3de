package config

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Duration", func() {
	var d Duration

	BeforeEach(func() {
		d = Duration(time.Hour)
	})

	Describe("ToDuration", func() {
		It("returns the wrapped value", func() {
			Expect(d.ToDuration()).Should(Equal(time.Hour))
		})
	})

	Describe("IsAboveZero", func() {
		It("is false for zero and negative durations", func() {
			Expect(Duration(0).IsAboveZero()).Should(BeFalse())
			Expect(Duration(-time.Second).IsAboveZero()).Should(BeFalse())
		})

		It("is true for positive durations", func() {
			Expect(d.IsAboveZero()).Should(BeTrue())
		})
	})

	Describe("String", func() {
		It("renders a human readable form", func() {
			Expect(d.String()).Should(Equal("1 hour"))
		})
	})

	Describe("UnmarshalText", func() {
		It("parses Go duration syntax", func() {
			var out Duration

			Expect(out.UnmarshalText([]byte("1m30s"))).Should(Succeed())
			Expect(out.ToDuration()).Should(Equal(90 * time.Second))
		})

		It("rejects garbage", func() {
			var out Duration

			Expect(out.UnmarshalText([]byte("soon"))).ShouldNot(Succeed())
		})
	})
})
