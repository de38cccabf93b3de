package util

import (
	"net"

	"github.com/miekg/dns"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Common utilities", func() {
	Describe("AnswerToString", func() {
		It("renders the known record types compactly", func() {
			answer := []dns.RR{
				&dns.A{A: net.ParseIP("192.0.2.1")},
				&dns.CNAME{Target: "target.example.com."},
			}

			Expect(AnswerToString(answer)).Should(Equal("A (192.0.2.1), CNAME (target.example.com.)"))
		})
	})

	Describe("NewMsgWithQuestion", func() {
		It("builds a message with a fully qualified question", func() {
			msg := NewMsgWithQuestion("www.example.com", dns.TypeA)

			Expect(msg.Question).Should(HaveLen(1))
			Expect(msg.Question[0].Name).Should(Equal("www.example.com."))
			Expect(msg.Question[0].Qtype).Should(Equal(dns.TypeA))
		})
	})
})
